// Package scheduler runs periodic jobs on a robfig/cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. Runs of the same job never overlap.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	name   string
	job    Job
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// New creates a scheduler for job on a cron spec such as "@every 1h" or "0 3 * * *"
func New(name, spec string, job Job, logger zerolog.Logger) *Scheduler {
	l := cronLogger{logger: logger.With().Str("job", name).Logger()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		spec:   spec,
		name:   name,
		job:    job,
		logger: l.logger,
	}
}

// Start registers the job and starts the cron loop. When runNow is set the
// job also runs once immediately instead of waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context, runNow bool) error {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	_, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) })
	if err != nil {
		cancel()
		return fmt.Errorf("schedule %s with spec %q: %w", s.name, s.spec, err)
	}

	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Msg("scheduler started")

	if runNow {
		s.done.Add(1)
		go func() {
			defer s.done.Done()
			s.run(ctx)
		}()
	}
	return nil
}

// Stop halts the schedule, cancels a running job and waits for it to return
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-stopCtx.Done()
	s.done.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Info().Msg("scheduled run started")
	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled run failed")
		return
	}
	s.logger.Info().Msg("scheduled run finished")
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
