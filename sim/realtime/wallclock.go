package realtime

import (
	"context"
	"time"
)

// wallClock is the source of real time. Tests replace it with a manual
// clock.
type wallClock interface {
	Now() time.Time

	// Sleep blocks for d, or without limit if d is negative, and returns
	// true if it was woken up through wake.
	Sleep(ctx context.Context, d time.Duration, wake <-chan struct{}) (bool, error)
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Sleep(
	ctx context.Context,
	d time.Duration,
	wake <-chan struct{},
) (bool, error) {
	var timeout <-chan time.Time

	if d >= 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()

		timeout = timer.C
	}

	select {
	case <-timeout:
		return false, nil
	case <-wake:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
