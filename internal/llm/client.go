package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

// Config holds the model service connection settings.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	MaxOutputTokens int
}

// Client is a thin adapter over the model service's Responses API. It exposes
// the two calls a conversation turn needs: a non-streamed classification call
// and a streamed generation call.
type Client struct {
	api             openai.Client
	model           string
	maxOutputTokens int
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("model service API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:             openai.NewClient(opts...),
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

// classifyDirective is appended to the triage prompt so the classification
// call yields a machine-readable verdict instead of a conversational reply.
const classifyDirective = "\n\nReply with ONLY a JSON object of the form {\"persona\": \"<id>\"} naming the persona that should handle the latest message. Valid ids: %s."

// Classify runs the routing call: the triage prompt plus the conversation so
// far, answered with a persona id. Returns "" when the service's output names
// no valid persona; the caller decides the fallback.
func (c *Client) Classify(ctx context.Context, prompt string, search *SearchConfig, allowed []string, history []HistoryMessage) (string, error) {
	system := prompt + fmt.Sprintf(classifyDirective, strings.Join(allowed, ", "))
	params := c.buildParams(system, search, history)

	result, err := c.api.Responses.New(ctx, params)
	if err != nil {
		return "", &ServiceError{Op: "classify", Err: err}
	}

	return parsePersonaID(result.OutputText(), allowed), nil
}

// Stream runs the generation call with the given persona prompt, invoking
// onEvent for each observed stream event and returning the concatenated
// reply text. On a mid-stream failure the partial text is not returned.
func (c *Client) Stream(ctx context.Context, prompt string, search *SearchConfig, history []HistoryMessage, onEvent func(StreamEvent)) (string, error) {
	params := c.buildParams(prompt, search, history)

	stream := c.api.Responses.NewStreaming(ctx, params)
	defer stream.Close()

	var full strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case responses.ResponseTextDeltaEvent:
			if ev.Delta == "" {
				continue
			}
			full.WriteString(ev.Delta)
			if onEvent != nil {
				onEvent(StreamEvent{Type: EventTextDelta, Text: ev.Delta})
			}
		case responses.ResponseContentPartDoneEvent:
			if onEvent != nil {
				onEvent(StreamEvent{Type: EventPartDone})
			}
		case responses.ResponseErrorEvent:
			return "", streamFailure("generate", full.Len(), fmt.Errorf("%s", ev.Message))
		default:
			if onEvent != nil {
				onEvent(StreamEvent{Type: EventOther})
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", streamFailure("generate", full.Len(), err)
	}

	return full.String(), nil
}

func (c *Client) buildParams(system string, search *SearchConfig, history []HistoryMessage) responses.ResponseNewParams {
	input := make(responses.ResponseInputParam, 0, len(history)+1)
	input = append(input, responses.ResponseInputItemParamOfMessage(system, responses.EasyInputMessageRoleSystem))
	for _, msg := range history {
		role := responses.EasyInputMessageRoleUser
		if msg.Role == "assistant" {
			role = responses.EasyInputMessageRoleAssistant
		}
		input = append(input, responses.ResponseInputItemParamOfMessage(msg.Content, role))
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
	}
	if c.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.maxOutputTokens))
	}
	if search != nil && search.VectorStoreID != "" {
		tool := responses.FileSearchToolParam{
			VectorStoreIDs: []string{search.VectorStoreID},
		}
		if search.MaxResults > 0 {
			tool.MaxNumResults = openai.Int(int64(search.MaxResults))
		}
		params.Tools = []responses.ToolUnionParam{{OfFileSearch: &tool}}
	}
	return params
}

// parsePersonaID extracts a persona id from the classification output. It
// accepts either the requested JSON shape or a bare id, tolerating
// surrounding prose.
func parsePersonaID(output string, allowed []string) string {
	output = strings.TrimSpace(output)

	isAllowed := func(id string) bool {
		for _, a := range allowed {
			if a == id {
				return true
			}
		}
		return false
	}

	if isAllowed(output) {
		return output
	}

	jsonStart := strings.Index(output, "{")
	jsonEnd := strings.LastIndex(output, "}")
	if jsonStart >= 0 && jsonEnd > jsonStart {
		var verdict struct {
			Persona string `json:"persona"`
		}
		if err := json.Unmarshal([]byte(output[jsonStart:jsonEnd+1]), &verdict); err == nil && isAllowed(verdict.Persona) {
			return verdict.Persona
		}
	}

	// Last resort: the output mentions exactly one valid id.
	var found string
	for _, a := range allowed {
		if strings.Contains(output, a) {
			if found != "" {
				return ""
			}
			found = a
		}
	}
	return found
}
