package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SweepFunc is invoked on every scheduled tick with the tick's nominal time.
type SweepFunc func(ctx context.Context, at time.Time) error

// Options tune scheduler behaviour. AlignToClock snaps ticks onto wall-clock
// multiples of the interval (a 24h interval fires at midnight UTC) instead of
// counting from process start.
type Options struct {
	Interval     time.Duration
	AlignToClock bool
	StartupDelay time.Duration
}

// Scheduler drives periodic execution of revaluation sweeps.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the sweep at each interval until ctx is cancelled.
// A failed sweep is logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context, sweep SweepFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	next := s.nextTick(time.Now().UTC())
	for {
		delay := time.Until(next)
		if delay < 0 {
			next = s.nextTick(time.Now().UTC())
			delay = time.Until(next)
		}

		timer := time.NewTimer(delay)
		s.logger.Debug().Time("next_tick", next).Msg("waiting for next sweep")

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			timer.Stop()
		}

		at := s.tickTime(next)
		s.logger.Info().Time("tick", at).Msg("executing scheduled sweep")

		if err := sweep(ctx, at); err != nil {
			s.logger.Error().Err(err).Time("tick", at).Msg("sweep execution failed")
		}

		next = next.Add(s.opts.Interval)
	}
}

func (s *Scheduler) nextTick(now time.Time) time.Time {
	if !s.opts.AlignToClock {
		return now.Add(s.opts.Interval)
	}
	tick := now.Truncate(s.opts.Interval)
	if !tick.After(now) {
		tick = tick.Add(s.opts.Interval)
	}
	return tick
}

func (s *Scheduler) tickTime(t time.Time) time.Time {
	if !s.opts.AlignToClock {
		return t
	}
	return t.Truncate(s.opts.Interval)
}
