package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/internship-platform/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single reminder run
const jobTimeout = 5 * time.Minute

// Reminders is the subset of the reminder service the scheduler drives
type Reminders interface {
	SendEvaluationReminders(ctx context.Context) (int, error)
	SendTermEndingReminders(ctx context.Context) (int, error)
}

// Scheduler runs the reminder jobs on their cron schedules
type Scheduler struct {
	reminders Reminders
	cfg       config.RemindersConfig
	cron      *cron.Cron
	logger    *zap.Logger
}

// New creates a new scheduler
func New(reminders Reminders, cfg config.RemindersConfig, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reminders: reminders,
		cfg:       cfg,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the reminder jobs and starts the cron runner
func (s *Scheduler) Start() error {
	jobs := []struct {
		name string
		spec string
		run  func(context.Context) (int, error)
	}{
		{"evaluation_reminder", s.cfg.EvaluationSpec, s.reminders.SendEvaluationReminders},
		{"term_ending_reminder", s.cfg.TermEndingSpec, s.reminders.SendTermEndingReminders},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() { s.runJob(job.name, job.run) }); err != nil {
			return fmt.Errorf("failed to add cron job %s: %w", job.name, err)
		}
		s.logger.Info("Scheduled reminder job", zap.String("job", job.name), zap.String("spec", job.spec))
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron runner and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runJob(name string, run func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	count, err := run(ctx)
	if err != nil {
		s.logger.Error("Reminder job failed", zap.String("job", name), zap.Error(err))
		return
	}

	s.logger.Info("Reminder job completed",
		zap.String("job", name),
		zap.Int("dispatched", count),
		zap.Duration("took", time.Since(start)))
}
