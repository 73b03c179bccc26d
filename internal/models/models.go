package models

import "time"

// Session identifies one chat visitor. Sessions are anonymous: clearing a
// conversation mints a fresh session rather than wiping the old thread.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the reply for one completed turn.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Reply    string `json:"reply"`
}

// HistoryMessage is one transcript entry as returned by the history endpoint.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse is the body of GET /api/v1/chat/history.
type HistoryResponse struct {
	ThreadID      string           `json:"thread_id"`
	ActivePersona string           `json:"active_persona"`
	Messages      []HistoryMessage `json:"messages"`
}

// PersonaInfo is the public description of one persona.
type PersonaInfo struct {
	ID                 string   `json:"id"`
	RoutingDescription string   `json:"routing_description"`
	HandoffTargets     []string `json:"handoff_targets,omitempty"`
	SearchEnabled      bool     `json:"search_enabled"`
}

// HealthStatus is the body of GET /api/v1/system/health.
type HealthStatus struct {
	Status   string `json:"status"`
	Threads  int    `json:"threads"`
	Messages int    `json:"messages"`
	Personas int    `json:"personas"`
}
