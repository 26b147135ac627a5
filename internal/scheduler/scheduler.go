// internal/scheduler/scheduler.go

// Package scheduler runs the platform's background maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// jobTimeout bounds a single job run so a hung store call cannot wedge
// the scheduler.
const jobTimeout = 10 * time.Minute

// Service owns the cron scheduler for background maintenance jobs.
type Service struct {
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	stopErr   error
}

func New() (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					log.Error().
						Str("job_id", jobID.String()).
						Str("job_name", jobName).
						Interface("panic", recoverData).
						Msg("Scheduler job panicked")
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Service{scheduler: sched}, nil
}

// Start begins running registered jobs.
func (s *Service) Start() {
	log.Info().Msg("Scheduler starting")
	s.scheduler.Start()
}

// Stop shuts down the scheduler. Safe to call more than once.
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddCronJob registers task under a cron expression. Each run receives a
// fresh context bounded by jobTimeout, with the job's logger attached.
func (s *Service) AddCronJob(name, cronExpr string, task func(context.Context)) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("job name is required")
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, fmt.Errorf("cron expression is required")
	}
	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(runBounded(jobLogger, task)),
		gocron.WithName(name),
	)
	if err != nil {
		return nil, fmt.Errorf("register job %q: %w", name, err)
	}
	jobLogger.Info().Msg("Scheduler job registered")
	return job, nil
}

// runBounded wraps a job body with its per-run context and run logs.
func runBounded(logger zerolog.Logger, task func(context.Context)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		ctx = logger.WithContext(ctx)

		logger.Debug().Msg("Scheduler job started")
		task(ctx)
		logger.Debug().Msg("Scheduler job completed")
	}
}
