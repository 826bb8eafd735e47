// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Func is one unit of maintenance work.
type Func func(ctx context.Context) error

// Scheduler wraps a cron runner. Panicking jobs are recovered and a run is
// skipped while the previous one is still going.
type Scheduler struct {
	c      *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a stopped Scheduler.
func New() *Scheduler {
	l := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		c:      cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add schedules fn under name. spec accepts the standard five fields or
// descriptors such as "@hourly" and "@every 30m".
func (s *Scheduler) Add(spec, name string, fn Func) error {
	_, err := s.c.AddFunc(spec, s.run(name, fn))
	return err
}

func (s *Scheduler) run(name string, fn Func) func() {
	return func() {
		start := time.Now()
		logger := log.With().Str("job", name).Logger()
		if err := fn(logger.WithContext(s.ctx)); err != nil {
			logger.Warn().Err(err).Dur("took", time.Since(start)).Msg("job failed")
			return
		}
		logger.Debug().Dur("took", time.Since(start)).Msg("job done")
	}
}

// Len reports the number of scheduled jobs.
func (s *Scheduler) Len() int { return len(s.c.Entries()) }

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() { s.c.Start() }

// Stop halts scheduling, cancels the context handed to running jobs and
// waits for them until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.c.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	log.Debug().Fields(kv).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	log.Error().Err(err).Fields(kv).Msg("cron: " + msg)
}
