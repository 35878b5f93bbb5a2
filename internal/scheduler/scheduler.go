// Package scheduler runs periodic chart reloads on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reloader refetches the primary series for the date on display.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Reloader Reloader
	Ctx      context.Context
	Timeout  time.Duration

	logger *slog.Logger
}

// NewScheduler creates a scheduler using six-field specs (with seconds).
// Each reload is bounded by timeout.
func NewScheduler(ctx context.Context, r Reloader, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Reloader: r,
		Ctx:      ctx,
		Timeout:  timeout,
		logger:   logger.With("component", "scheduler"),
	}
}

// Register adds the reload task. An empty spec registers nothing and
// reports false.
func (s *Scheduler) Register(reloadCron string) (bool, error) {
	if reloadCron == "" {
		return false, nil
	}
	if _, err := s.Cron.AddFunc(reloadCron, s.RunReloadNow); err != nil {
		return false, fmt.Errorf("register reload task: %w", err)
	}
	s.logger.Info("reload task registered", "spec", reloadCron)
	return true, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", "tasks", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunReloadNow executes the reload task immediately.
func (s *Scheduler) RunReloadNow() {
	ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
	defer cancel()

	s.logger.Info("running scheduled reload")
	if err := s.Reloader.Reload(ctx); err != nil {
		s.logger.Error("scheduled reload failed", "error", err)
	}
}
