package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/DesireeAI/odonto/internal/logger"
)

// RecordMessage appends one transcript row. Best effort: a write failure is
// logged and swallowed so it can never fail a conversation turn.
func (db *DB) RecordMessage(threadID, userID, role, personaID, content string) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(
		"INSERT INTO transcripts (id, thread_id, user_id, role, persona, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		id, threadID, userID, role, personaID, content, now,
	)
	if err != nil {
		logger.Error("record transcript message: %v", err)
	}
}

// TranscriptStats summarizes the persisted transcript.
type TranscriptStats struct {
	Threads  int
	Messages int
}

func (db *DB) TranscriptStats() (TranscriptStats, error) {
	var s TranscriptStats
	if err := db.QueryRow("SELECT COUNT(DISTINCT thread_id), COUNT(*) FROM transcripts").Scan(&s.Threads, &s.Messages); err != nil {
		return TranscriptStats{}, err
	}
	return s, nil
}

func (db *DB) LogAudit(userID, action, category, target, targetID, details string) {
	if len(details) > 200 {
		details = details[:200]
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	_, _ = db.Exec(
		"INSERT INTO audit_logs (id, user_id, action, category, target, target_id, details, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, userID, action, category, target, targetID, details, now,
	)
}
