package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DesireeAI/odonto/internal/llm"
	"github.com/DesireeAI/odonto/internal/persona"
	"github.com/DesireeAI/odonto/internal/thread"
)

// fakeService scripts the two model-service calls for a turn.
type fakeService struct {
	mu sync.Mutex

	classifyResult string
	classifyErr    error
	streamDeltas   []string
	streamErr      error

	classifyHistory []llm.HistoryMessage
	streamHistory   []llm.HistoryMessage
	streamPrompt    string
	streamSearch    *llm.SearchConfig
}

func (f *fakeService) Classify(_ context.Context, _ string, _ *llm.SearchConfig, _ []string, history []llm.HistoryMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.classifyHistory = history
	return f.classifyResult, f.classifyErr
}

func (f *fakeService) Stream(_ context.Context, prompt string, search *llm.SearchConfig, history []llm.HistoryMessage, onEvent func(llm.StreamEvent)) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamHistory = history
	f.streamPrompt = prompt
	f.streamSearch = search

	var full strings.Builder
	for _, d := range f.streamDeltas {
		full.WriteString(d)
		if onEvent != nil {
			onEvent(llm.StreamEvent{Type: llm.EventTextDelta, Text: d})
		}
	}
	if onEvent != nil {
		onEvent(llm.StreamEvent{Type: llm.EventPartDone})
	}
	if f.streamErr != nil {
		return "", f.streamErr
	}
	return full.String(), nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *fakeRecorder) RecordMessage(threadID, userID, role, personaID, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, role+"/"+personaID+": "+content)
}

func newTestDispatcher(t *testing.T, svc Service, opts Options) (*Dispatcher, *thread.Registry) {
	t.Helper()
	catalog, err := persona.NewCatalog(persona.Options{})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	reg := thread.NewRegistry(persona.Triage)
	return New(catalog, reg, svc, opts), reg
}

func TestProcessHappyPath(t *testing.T) {
	svc := &fakeService{
		classifyResult: persona.Periodontics,
		streamDeltas:   []string{"Hel", "lo", "!"},
	}
	rec := &fakeRecorder{}
	d, reg := newTestDispatcher(t, svc, Options{Recorder: rec})

	reply := d.Process(context.Background(), "user-1", "my gums are bleeding")
	if reply != "Hello!" {
		t.Errorf("expected concatenated deltas, got %q", reply)
	}

	th, ok := reg.Get("user-1")
	if !ok {
		t.Fatal("thread should exist after a turn")
	}
	h := th.History()
	if len(h) != 2 {
		t.Fatalf("expected 2 transcript messages, got %d", len(h))
	}
	if h[0].Role != thread.RoleUser || h[0].Content != "my gums are bleeding" {
		t.Errorf("unexpected user message: %+v", h[0])
	}
	if h[1].Role != thread.RoleAssistant || h[1].Content != "Hello!" {
		t.Errorf("unexpected assistant message: %+v", h[1])
	}
	if th.ActivePersona() != persona.Triage {
		t.Errorf("thread should return to triage after a turn, got %q", th.ActivePersona())
	}

	if !strings.Contains(svc.streamPrompt, "periodontics specialist") {
		t.Errorf("specialist call should use the selected persona prompt, got %q", svc.streamPrompt)
	}
	if len(svc.classifyHistory) != 1 || len(svc.streamHistory) != 1 {
		t.Errorf("both calls should see the appended user message: classify=%d stream=%d",
			len(svc.classifyHistory), len(svc.streamHistory))
	}

	if len(rec.entries) != 2 {
		t.Fatalf("recorder should see both appends, got %v", rec.entries)
	}
	if !strings.HasPrefix(rec.entries[1], "assistant/periodontics:") {
		t.Errorf("assistant record should carry the answering persona, got %q", rec.entries[1])
	}
}

func TestProcessClassifyFailure(t *testing.T) {
	svc := &fakeService{classifyErr: &llm.ServiceError{Op: "classify", Err: errors.New("boom")}}
	d, reg := newTestDispatcher(t, svc, Options{})

	reply := d.Process(context.Background(), "u", "hello")
	if !strings.HasPrefix(reply, "Sorry, an error occurred: ") {
		t.Errorf("expected an apology, got %q", reply)
	}
	if !strings.Contains(reply, "boom") {
		t.Errorf("apology should carry the error detail, got %q", reply)
	}

	// The user message stays; no assistant message is appended.
	th, _ := reg.Get("u")
	h := th.History()
	if len(h) != 1 || h[0].Role != thread.RoleUser {
		t.Fatalf("expected only the user message after a failed turn, got %+v", h)
	}
}

func TestProcessAuthFailure(t *testing.T) {
	svc := &fakeService{
		classifyErr: &llm.ServiceError{Op: "classify", Err: errors.New("401 invalid_api_key")},
	}
	d, _ := newTestDispatcher(t, svc, Options{})

	reply := d.Process(context.Background(), "u", "hello")
	if !strings.HasPrefix(reply, "Sorry, an error occurred: ") {
		t.Errorf("auth failures surface as an apology like any other, got %q", reply)
	}
	if !llm.IsAuthError(svc.classifyErr) {
		t.Error("test error should classify as an auth failure")
	}
}

func TestProcessStreamFailureDiscardsPartialText(t *testing.T) {
	svc := &fakeService{
		classifyResult: persona.General,
		streamDeltas:   []string{"partial "},
		streamErr:      &llm.StreamError{Received: 8, Err: errors.New("connection reset")},
	}
	d, reg := newTestDispatcher(t, svc, Options{})

	reply := d.Process(context.Background(), "u", "hi")
	if !strings.HasPrefix(reply, "Sorry, an error occurred: ") {
		t.Errorf("expected an apology, got %q", reply)
	}
	if strings.Contains(reply, "partial") {
		t.Errorf("partial stream text must not surface, got %q", reply)
	}
	th, _ := reg.Get("u")
	for _, m := range th.History() {
		if m.Role == thread.RoleAssistant {
			t.Errorf("no assistant message should be appended on stream failure, got %+v", m)
		}
	}
}

func TestProcessFailureIsolation(t *testing.T) {
	svc := &fakeService{classifyErr: errors.New("outage")}
	d, reg := newTestDispatcher(t, svc, Options{})

	d.Process(context.Background(), "u", "first")
	before, _ := reg.Get("u")

	// Service recovers; the same thread keeps working.
	svc.mu.Lock()
	svc.classifyErr = nil
	svc.classifyResult = persona.FrontDesk
	svc.streamDeltas = []string{"We open at 9am."}
	svc.mu.Unlock()

	reply := d.Process(context.Background(), "u", "opening hours?")
	if reply != "We open at 9am." {
		t.Errorf("turn after a failure should succeed, got %q", reply)
	}
	after, _ := reg.Get("u")
	if before != after {
		t.Error("failure must not replace the thread")
	}
	if after.Len() != 4 {
		t.Errorf("transcript should hold both turns plus the orphaned user message, got %d", after.Len())
	}
}

func TestProcessUnknownVerdictFallsBackToFrontDesk(t *testing.T) {
	svc := &fakeService{
		classifyResult: "",
		streamDeltas:   []string{"Could you tell me more?"},
	}
	d, _ := newTestDispatcher(t, svc, Options{})

	reply := d.Process(context.Background(), "u", "hmm")
	if reply != "Could you tell me more?" {
		t.Errorf("unexpected reply %q", reply)
	}
	if !strings.Contains(svc.streamPrompt, "front desk assistant") {
		t.Errorf("fallback should route to the front desk, got prompt %q", svc.streamPrompt)
	}
}

func TestProcessHistoryWindow(t *testing.T) {
	svc := &fakeService{
		classifyResult: persona.General,
		streamDeltas:   []string{"ok"},
	}
	d, reg := newTestDispatcher(t, svc, Options{HistoryWindow: 3})

	th := reg.GetOrCreate("u")
	for i := 0; i < 6; i++ {
		th.Append(thread.RoleUser, "old")
	}

	d.Process(context.Background(), "u", "new")
	if len(svc.classifyHistory) != 3 {
		t.Errorf("window should cap resent history at 3, got %d", len(svc.classifyHistory))
	}
	if svc.classifyHistory[2].Content != "new" {
		t.Errorf("window should keep the newest messages, got %+v", svc.classifyHistory)
	}
}

func TestProcessBroadcastsEvents(t *testing.T) {
	svc := &fakeService{
		classifyResult: persona.Cosmetic,
		streamDeltas:   []string{"a", "b"},
	}
	var mu sync.Mutex
	var events []string
	var threadIDs []string
	d, reg := newTestDispatcher(t, svc, Options{
		Broadcast: func(threadID, eventType string, _ interface{}) {
			mu.Lock()
			events = append(events, eventType)
			threadIDs = append(threadIDs, threadID)
			mu.Unlock()
		},
	})

	d.Process(context.Background(), "u", "whitening?")

	want := []string{"persona_selected", "text_delta", "text_delta"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %q, got %q", i, want[i], events[i])
		}
	}

	// Every turn event is addressed to the owning thread, never globally.
	th, _ := reg.Get("u")
	for i, id := range threadIDs {
		if id != th.ID {
			t.Errorf("event %d addressed to thread %q, expected %q", i, id, th.ID)
		}
	}
}

func TestProcessSearchConfigForwarded(t *testing.T) {
	catalog, err := persona.NewCatalog(persona.Options{
		Search: &persona.DocumentSearch{MaxResults: 3, VectorStoreID: "vs_1"},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	svc := &fakeService{classifyResult: persona.General, streamDeltas: []string{"ok"}}
	reg := thread.NewRegistry(persona.Triage)
	d := New(catalog, reg, svc, Options{})

	d.Process(context.Background(), "u", "hi")
	if svc.streamSearch == nil {
		t.Fatal("search config should be forwarded to the generation call")
	}
	if svc.streamSearch.VectorStoreID != "vs_1" || svc.streamSearch.MaxResults != 3 {
		t.Errorf("unexpected search config: %+v", svc.streamSearch)
	}
}
