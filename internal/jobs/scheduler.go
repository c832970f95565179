package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/config"
)

const (
	TaskReminders      = "reminders"
	TaskSessionCleanup = "session_cleanup"
)

// Enqueuer hands a task to the worker stream.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, fields map[string]any) error
}

type Scheduler struct {
	cron  *cron.Cron
	queue Enqueuer
	cfg   config.JobsConfig
	log   zerolog.Logger
	now   func() time.Time
}

func NewScheduler(queue Enqueuer, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:  c,
		queue: queue,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Start registers the periodic jobs. Without a queue nothing is scheduled.
func (s *Scheduler) Start() error {
	if s.queue == nil {
		s.log.Info().Msg("scheduler disabled: no task queue")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.ReminderSpec, s.enqueueReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.CleanupSpec, s.enqueueCleanup); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueReminders() {
	at := s.now().UTC().Truncate(time.Minute)
	if err := s.enqueueTask(TaskReminders, map[string]any{
		"at": at.Format(time.RFC3339),
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue reminders failed")
	}
}

func (s *Scheduler) enqueueCleanup() {
	if err := s.enqueueTask(TaskSessionCleanup, nil); err != nil {
		s.log.Error().Err(err).Msg("enqueue session cleanup failed")
	}
}

func (s *Scheduler) enqueueTask(taskType string, fields map[string]any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.queue.Enqueue(ctx, taskType, fields)
}
