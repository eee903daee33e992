package scheduler

import (
	"context"
	"time"
)

// Interval runs a job immediately and then on every tick until ctx is done.
type Interval struct {
	every time.Duration
}

// NewInterval builds a scheduler ticking every d. Non-positive values mean a single run.
func NewInterval(d time.Duration) *Interval {
	return &Interval{every: d}
}

// Run blocks until ctx is cancelled or, for a single-run schedule, until the job returns.
// A job error is passed to onError and does not stop the schedule.
func (s *Interval) Run(ctx context.Context, job func(context.Context, time.Time) error, onError func(error)) error {
	if job == nil {
		return nil
	}

	if err := job(ctx, time.Now()); err != nil {
		if s.every <= 0 {
			return err
		}
		report(onError, err)
	}
	if s.every <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if err := job(ctx, t); err != nil {
				report(onError, err)
			}
		}
	}
}

func report(onError func(error), err error) {
	if onError != nil {
		onError(err)
	}
}
