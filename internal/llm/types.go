package llm

// HistoryMessage is one prior conversation turn forwarded to the model
// service. Role is "user" or "assistant".
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SearchConfig enables the model service's document-search tool, scoped to a
// single vector store collection.
type SearchConfig struct {
	VectorStoreID string
	MaxResults    int
}

// StreamEvent is one event observed while consuming a streamed reply.
type StreamEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

const (
	EventTextDelta = "text_delta"
	EventPartDone  = "part_done"
	EventOther     = "other"
)
