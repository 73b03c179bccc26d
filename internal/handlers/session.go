package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DesireeAI/odonto/internal/auth"
	"github.com/DesireeAI/odonto/internal/database"
	"github.com/DesireeAI/odonto/internal/models"
)

// SessionHandler mints anonymous chat sessions. There is no signup: a
// visitor gets a random user id and a token scoped to it.
type SessionHandler struct {
	auth *auth.Service
	db   *database.DB
}

func NewSessionHandler(authService *auth.Service, db *database.DB) *SessionHandler {
	return &SessionHandler{auth: authService, db: db}
}

func newUserID() string {
	return "web_user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := newUserID()
	token, err := h.auth.GenerateToken(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if h.db != nil {
		h.db.LogAudit(userID, "session_created", "chat", "", "", "")
	}

	writeJSON(w, http.StatusCreated, models.Session{
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	})
}
