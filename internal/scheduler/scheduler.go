// Package scheduler runs periodic database maintenance while the server is
// up.
package scheduler

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carpenike/fitcoach/internal/models"
)

// Status holds the result of the last maintenance run.
type Status struct {
	LastRun             time.Time
	NextRun             time.Time
	ChatMessagesDeleted int64
}

// Scheduler deletes chat messages older than the retention period at a fixed
// interval.
type Scheduler struct {
	db        *sql.DB
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger

	mu     sync.RWMutex
	status Status
}

// New creates a Scheduler. A zero retention disables chat pruning.
func New(db *sql.DB, retention, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		db:        db,
		retention: retention,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Run performs a maintenance pass immediately and then once per interval
// until ctx is cancelled. It always returns nil so it can share an errgroup
// with the HTTP server.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().
		Dur("interval", s.interval).
		Dur("chat_retention", s.retention).
		Msg("background scheduler started")

	s.runMaintenance(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runMaintenance(ctx)
		case <-ctx.Done():
			s.log.Info().Msg("background scheduler stopped")
			return nil
		}
	}
}

// Status returns the result of the last maintenance run.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Scheduler) runMaintenance(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	now := time.Now()
	deleted := s.pruneChatMessages(now)

	s.mu.Lock()
	s.status = Status{
		LastRun:             now,
		NextRun:             now.Add(s.interval),
		ChatMessagesDeleted: deleted,
	}
	s.mu.Unlock()

	s.log.Debug().Int64("chat_messages_deleted", deleted).Msg("scheduled maintenance complete")
}

// pruneChatMessages removes chat messages older than the retention period.
func (s *Scheduler) pruneChatMessages(now time.Time) int64 {
	if s.retention <= 0 {
		return 0
	}
	deleted, err := models.DeleteChatMessagesBefore(s.db, now.Add(-s.retention))
	if err != nil {
		s.log.Error().Err(err).Msg("prune chat messages")
		return 0
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("pruned old chat messages")
	}
	return deleted
}
