package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/DesireeAI/odonto/internal/database"
	"github.com/DesireeAI/odonto/internal/logger"
	"github.com/DesireeAI/odonto/internal/thread"
)

// StatsSource yields a point-in-time snapshot of the live conversation
// registry.
type StatsSource interface {
	Snapshot() thread.Stats
}

// BroadcastFunc pushes an event to connected observers.
type BroadcastFunc func(eventType string, payload interface{})

// StatsReport is the payload of "registry_stats" broadcasts.
type StatsReport struct {
	Threads  int `json:"threads"`
	Messages int `json:"messages"`
}

// Scheduler runs the periodic maintenance jobs: a registry stats report
// (thread growth is unbounded, so operators need to see it) and audit-log
// retention cleanup.
type Scheduler struct {
	cron      *cron.Cron
	db        *database.DB
	source    StatsSource
	broadcast BroadcastFunc

	// Cron expressions, overridable in tests.
	StatsExpr     string
	RetentionExpr string
}

func New(db *database.DB, source StatsSource) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		db:            db,
		source:        source,
		StatsExpr:     "*/5 * * * *",
		RetentionExpr: "30 3 * * *",
	}
}

func (s *Scheduler) SetBroadcast(fn BroadcastFunc) {
	s.broadcast = fn
}

func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.StatsExpr, s.reportStats); err != nil {
		logger.Error("Failed to add stats job: %v", err)
	}
	if _, err := s.cron.AddFunc(s.RetentionExpr, s.cleanupAuditLogs); err != nil {
		logger.Error("Failed to add retention job: %v", err)
	}
	s.cron.Start()
	logger.Success("Scheduler started")
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Success("Scheduler stopped")
}

func (s *Scheduler) reportStats() {
	snap := s.source.Snapshot()
	logger.Info("Registry: %d threads, %d messages", snap.Threads, snap.Messages)

	if s.broadcast != nil {
		s.broadcast("registry_stats", StatsReport{
			Threads:  snap.Threads,
			Messages: snap.Messages,
		})
	}
}

func (s *Scheduler) cleanupAuditLogs() {
	if s.db == nil {
		return
	}
	result, err := s.db.Exec("DELETE FROM audit_logs WHERE created_at < datetime('now', '-30 days')")
	if err != nil {
		logger.Error("Audit log cleanup failed: %v", err)
		return
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		logger.Info("Audit retention: cleaned up %d old entries", rows)
	}
}
