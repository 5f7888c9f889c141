// Package clock holds the timed-wait seam used by the dispatcher and rate limiter.
package clock

import (
	"context"
	"time"
)

// Timer suspends the caller for a fixed duration.
type Timer interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the wall-clock Timer.
type System struct{}

func (System) Sleep(ctx context.Context, d time.Duration) error {
	return SleepWithContext(ctx, d)
}

// TimerFunc adapts a plain function to Timer.
type TimerFunc func(ctx context.Context, d time.Duration) error

func (f TimerFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// SleepWithContext waits for d or until ctx is done. Non-positive durations return immediately.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
