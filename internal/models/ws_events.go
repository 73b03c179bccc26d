package models

// WebSocket event payload types for the broadcast messages observers see
// while a turn is in flight.

// WSPersonaSelected is the payload for "persona_selected" broadcasts, sent
// once per turn after triage picks the answering persona.
type WSPersonaSelected struct {
	ThreadID string `json:"thread_id"`
	Persona  string `json:"persona"`
}

// WSTextDelta is the payload for "text_delta" broadcasts during specialist
// generation.
type WSTextDelta struct {
	ThreadID string `json:"thread_id"`
	Persona  string `json:"persona"`
	Text     string `json:"text"`
}

// WSTurnFailed is the payload for "turn_failed" broadcasts.
type WSTurnFailed struct {
	ThreadID string `json:"thread_id"`
	Error    string `json:"error"`
}
