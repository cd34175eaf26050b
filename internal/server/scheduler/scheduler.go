// Package scheduler runs the server's periodic background jobs on cron
// schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/boostmanager/internal/logging"
	"github.com/dmitrijs2005/boostmanager/internal/server/config"
	"github.com/dmitrijs2005/boostmanager/internal/server/metrics"
	"github.com/dmitrijs2005/boostmanager/internal/server/models"
	"github.com/robfig/cron/v3"
)

// Job is a named task and the cron spec it runs on.
type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	RefreshOnlineUsers(ctx context.Context) ([]*models.OnlineUser, error)
}

type RateRefresher interface {
	RefreshDollarRate(ctx context.Context) float64
}

// Jobs returns the standard job set: database health, online users and
// the USD/BRL rate.
func Jobs(cfg *config.Config, bo HealthChecker, rates RateRefresher) []Job {
	return []Job{
		{Name: "health_check", Schedule: cfg.HealthCheckSchedule, Run: bo.HealthCheck},
		{Name: "online_users", Schedule: cfg.OnlineUsersSchedule, Run: func(ctx context.Context) error {
			_, err := bo.RefreshOnlineUsers(ctx)
			return err
		}},
		{Name: "dollar_rate", Schedule: cfg.DollarRateSchedule, Run: func(ctx context.Context) error {
			rates.RefreshDollarRate(ctx)
			return nil
		}},
	}
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
	logger  logging.Logger
}

// New builds a scheduler. Each run gets its own context bounded by
// timeout; overlapping runs of the same job are skipped.
func New(logger logging.Logger, timeout time.Duration, jobs ...Job) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    jobs,
		timeout: timeout,
		logger:  logger.With("module", "scheduler"),
	}
}

func (s *Scheduler) runJob(ctx context.Context, j Job) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if v := recover(); v != nil {
			metrics.RecordJob(j.Name, false)
			s.logger.Error(ctx, "job panicked", "job", j.Name, "panic", v)
		}
	}()

	err := j.Run(ctx)
	metrics.RecordJob(j.Name, err == nil)
	if err != nil {
		s.logger.Warn(ctx, "job failed", "job", j.Name, "error", err)
	}
}

// Run executes every job once, then on its schedule until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, j := range s.jobs {
		j := j
		if _, err := s.cron.AddFunc(j.Schedule, func() { s.runJob(ctx, j) }); err != nil {
			return fmt.Errorf("schedule %s: %w", j.Name, err)
		}
	}

	for _, j := range s.jobs {
		s.runJob(ctx, j)
	}

	s.cron.Start()
	s.logger.Info(ctx, "Scheduler started", "jobs", len(s.jobs))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info(ctx, "Scheduler stopped")
	return nil
}
