package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/DesireeAI/odonto/internal/auth"
	"github.com/DesireeAI/odonto/internal/database"
	"github.com/DesireeAI/odonto/internal/middleware"
	"github.com/DesireeAI/odonto/internal/models"
	"github.com/DesireeAI/odonto/internal/thread"
)

const maxMessageLen = 8192

// Processor runs one conversation turn. Implemented by dispatch.Dispatcher.
type Processor interface {
	Process(ctx context.Context, userID, text string) string
}

type ChatHandler struct {
	processor Processor
	registry  *thread.Registry
	auth      *auth.Service
	db        *database.DB
}

func NewChatHandler(processor Processor, registry *thread.Registry, authService *auth.Service, db *database.DB) *ChatHandler {
	return &ChatHandler{processor: processor, registry: registry, auth: authService, db: db}
}

// Send handles POST /api/v1/chat: one full turn, returning the reply once
// generation finishes. Turn failures surface as an apology reply with a 200,
// never as an HTTP error.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(req.Message) > maxMessageLen {
		writeError(w, http.StatusBadRequest, "message too long")
		return
	}

	reply := h.processor.Process(r.Context(), userID, req.Message)
	th := h.registry.GetOrCreate(userID)

	writeJSON(w, http.StatusOK, models.ChatResponse{
		ThreadID: th.ID,
		Reply:    reply,
	})
}

// History handles GET /api/v1/chat/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	th, ok := h.registry.Get(userID)
	if !ok {
		writeJSON(w, http.StatusOK, models.HistoryResponse{Messages: []models.HistoryMessage{}})
		return
	}

	msgs := th.History()
	out := make([]models.HistoryMessage, len(msgs))
	for i, m := range msgs {
		out[i] = models.HistoryMessage{Role: m.Role, Content: m.Content}
	}

	writeJSON(w, http.StatusOK, models.HistoryResponse{
		ThreadID:      th.ID,
		ActivePersona: th.ActivePersona(),
		Messages:      out,
	})
}

// Clear handles POST /api/v1/chat/clear: instead of wiping the transcript,
// it mints a fresh session. The old thread stays in the registry, orphaned,
// so an in-flight turn on it can still finish.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	oldUserID := middleware.GetUserID(r.Context())

	userID := newUserID()
	token, err := h.auth.GenerateToken(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if h.db != nil {
		h.db.LogAudit(oldUserID, "session_cleared", "chat", "user", userID, "")
	}

	writeJSON(w, http.StatusOK, models.Session{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	})
}
