package dispatch

import (
	"context"
	"fmt"

	"github.com/DesireeAI/odonto/internal/llm"
	"github.com/DesireeAI/odonto/internal/logger"
	"github.com/DesireeAI/odonto/internal/models"
	"github.com/DesireeAI/odonto/internal/persona"
	"github.com/DesireeAI/odonto/internal/thread"
)

// Service is the model-service boundary the dispatcher depends on: one
// classification call to pick the answering persona and one streamed
// generation call to produce the reply.
type Service interface {
	Classify(ctx context.Context, prompt string, search *llm.SearchConfig, allowed []string, history []llm.HistoryMessage) (string, error)
	Stream(ctx context.Context, prompt string, search *llm.SearchConfig, history []llm.HistoryMessage, onEvent func(llm.StreamEvent)) (string, error)
}

// Recorder receives a copy of every transcript append for durable audit.
// Recording failures never affect the turn.
type Recorder interface {
	RecordMessage(threadID, userID, role, personaID, content string)
}

// BroadcastFunc pushes a live turn event to observers of one thread. Turn
// events carry conversation text and must never fan out beyond the thread's
// own subscribers.
type BroadcastFunc func(threadID, eventType string, payload interface{})

// Options configures a Dispatcher.
type Options struct {
	// HistoryWindow caps how many trailing messages are resent to the model
	// service each turn. Zero sends the full transcript.
	HistoryWindow int
	Recorder      Recorder
	Broadcast     BroadcastFunc
}

// Dispatcher runs one conversation turn end to end: append the user message,
// classify it through the triage persona, stream the specialist reply, append
// it, and hand the thread back to triage. Failures are converted to a fixed
// apology string and never propagate to the caller.
type Dispatcher struct {
	catalog   *persona.Catalog
	registry  *thread.Registry
	svc       Service
	window    int
	recorder  Recorder
	broadcast BroadcastFunc
}

func New(catalog *persona.Catalog, registry *thread.Registry, svc Service, opts Options) *Dispatcher {
	d := &Dispatcher{
		catalog:   catalog,
		registry:  registry,
		svc:       svc,
		window:    opts.HistoryWindow,
		recorder:  opts.Recorder,
		broadcast: opts.Broadcast,
	}
	if d.broadcast == nil {
		d.broadcast = func(string, string, interface{}) {}
	}
	return d
}

// Process handles one user turn and returns the reply text. It never returns
// an error: any failure is logged and converted to an apology string. The
// appended user message is kept even when the turn fails.
func (d *Dispatcher) Process(ctx context.Context, userID, text string) string {
	th := d.registry.GetOrCreate(userID)

	th.BeginTurn()
	defer th.EndTurn()

	th.Append(thread.RoleUser, text)
	d.record(th, thread.RoleUser, th.ActivePersona(), text)

	reply, personaID, err := d.runTurn(ctx, th)
	if err != nil {
		logger.Error("turn failed for thread %s: %v", th.ID, err)
		if llm.IsAuthError(err) {
			logger.Warn("model service rejected credentials; check OPENAI_API_KEY")
		}
		d.broadcast(th.ID, "turn_failed", models.WSTurnFailed{
			ThreadID: th.ID,
			Error:    err.Error(),
		})
		return fmt.Sprintf("Sorry, an error occurred: %v", err)
	}

	th.Append(thread.RoleAssistant, reply)
	d.record(th, thread.RoleAssistant, personaID, reply)
	th.SetActivePersona(persona.Triage)

	return reply
}

// runTurn performs the two model-service round trips for a turn. The turn
// lock is already held.
func (d *Dispatcher) runTurn(ctx context.Context, th *thread.Thread) (reply, personaID string, err error) {
	history := toHistory(th.Window(d.window))
	triage := d.catalog.TriagePersona()

	ctx, endClassify := startSpan(ctx, "triage.classify", th.ID, triage.ID)
	selected, err := d.svc.Classify(ctx, triage.SystemPrompt, searchOf(triage), triage.HandoffTargets, history)
	endClassify(err)
	if err != nil {
		return "", "", err
	}

	sp, ok := d.catalog.Get(selected)
	if !ok {
		// The service's verdict named no usable persona. Hand the turn to
		// the front desk, which can ask for clarification.
		logger.Warn("classification for thread %s yielded %q, falling back to front desk", th.ID, selected)
		sp = mustGet(d.catalog, persona.FrontDesk)
	}

	th.SetActivePersona(sp.ID)
	d.broadcast(th.ID, "persona_selected", models.WSPersonaSelected{
		ThreadID: th.ID,
		Persona:  sp.ID,
	})

	ctx, endStream := startSpan(ctx, "specialist.generate", th.ID, sp.ID)
	reply, err = d.svc.Stream(ctx, sp.SystemPrompt, searchOf(sp), history, func(ev llm.StreamEvent) {
		if ev.Type == llm.EventTextDelta {
			d.broadcast(th.ID, "text_delta", models.WSTextDelta{
				ThreadID: th.ID,
				Persona:  sp.ID,
				Text:     ev.Text,
			})
		}
	})
	endStream(err)
	if err != nil {
		return "", "", err
	}

	return reply, sp.ID, nil
}

func (d *Dispatcher) record(th *thread.Thread, role, personaID, content string) {
	if d.recorder == nil {
		return
	}
	d.recorder.RecordMessage(th.ID, th.UserID, role, personaID, content)
}

func toHistory(msgs []thread.Message) []llm.HistoryMessage {
	out := make([]llm.HistoryMessage, len(msgs))
	for i, m := range msgs {
		out[i] = llm.HistoryMessage{Role: m.Role, Content: m.Content}
	}
	return out
}

func searchOf(p *persona.Persona) *llm.SearchConfig {
	if p.Search == nil {
		return nil
	}
	return &llm.SearchConfig{
		VectorStoreID: p.Search.VectorStoreID,
		MaxResults:    p.Search.MaxResults,
	}
}

func mustGet(c *persona.Catalog, id string) *persona.Persona {
	p, ok := c.Get(id)
	if !ok {
		panic(fmt.Sprintf("persona %q missing from validated catalog", id))
	}
	return p
}
