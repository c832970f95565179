package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/jobs"
	"github.com/TristanBrian/MamaCare/internal/queue"
)

type ReminderDispatcher interface {
	Dispatch(ctx context.Context, at time.Time) (int, error)
}

type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int, error)
}

// Processor runs the background tasks the scheduler enqueues.
type Processor struct {
	reminders ReminderDispatcher
	sessions  SessionPurger
	logger    zerolog.Logger
}

func NewProcessor(reminders ReminderDispatcher, sessions SessionPurger, logger zerolog.Logger) *Processor {
	return &Processor{
		reminders: reminders,
		sessions:  sessions,
		logger:    logger,
	}
}

// Handle returns an error only for failures worth retrying; malformed and
// unknown tasks are logged and dropped.
func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case jobs.TaskReminders:
		return p.handleReminders(ctx, task)
	case jobs.TaskSessionCleanup:
		return p.handleSessionCleanup(ctx)
	default:
		p.logger.Warn().Str("type", task.Type).Str("task_id", task.ID).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleReminders(ctx context.Context, task queue.Task) error {
	at, err := time.Parse(time.RFC3339, task.Fields["at"])
	if err != nil {
		p.logger.Warn().Err(err).Str("task_id", task.ID).Msg("reminder task without valid time")
		return nil
	}

	sent, err := p.reminders.Dispatch(ctx, at)
	if err != nil {
		return fmt.Errorf("dispatch reminders: %w", err)
	}
	p.logger.Info().Time("at", at).Int("sent", sent).Msg("medication reminders dispatched")
	return nil
}

func (p *Processor) handleSessionCleanup(ctx context.Context) error {
	removed, err := p.sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	p.logger.Info().Int("removed", removed).Msg("expired sessions purged")
	return nil
}
