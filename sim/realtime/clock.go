// Package realtime runs simulations paced by the wall clock and lets
// asynchronous sources inject messages into a running simulation.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/sirupsen/logrus"
)

// Errors reported by the real-time clock.
var (
	ErrNegativeTime   = errors.New("time is negative")
	ErrMissedDeadline = errors.New("missed scheduled time advance deadline")
	ErrJitterTooHigh  = errors.New("delay jitter is too high")
)

// DefaultMissedDeadlineTolerance is how late a step may start before the
// clock gives up.
const DefaultMissedDeadlineTolerance = 500 * time.Microsecond

const forever = time.Duration(-1)

// WaitResult describes how a wait ended.
type WaitResult struct {
	// Elapsed is the simulation time that passed since the previous event.
	// It equals the requested delay unless the wait was interrupted.
	Elapsed modeling.VTimeInSec

	Interrupted bool
}

// An Observer is notified when an asynchronous event fires.
type Observer interface {
	Update()
}

// Clock converts simulation time advances into wall-clock waits. It keeps
// track of how long the simulation itself takes between waits and of the
// accumulated lateness, so that short overruns are recovered by the
// following waits.
type Clock struct {
	wall      wallClock
	tolerance time.Duration
	maxJitter time.Duration

	subjects    []*AsyncEvent
	interrupted atomic.Bool
	wake        chan struct{}

	execStart time.Time
	slip      time.Duration

	resumeLock sync.Mutex
	resumedAt  time.Time
}

// Start resets the execution timer and the accumulated slip. Events that
// fired before Start are kept.
func (c *Clock) Start() {
	c.execStart = c.wall.Now()
	c.slip = 0
	c.resetInterrupt()

	for _, s := range c.subjects {
		if s.Interrupted() {
			c.Update()
		}
	}
}

// AsyncSubjects returns the events the clock observes.
func (c *Clock) AsyncSubjects() []*AsyncEvent {
	return c.subjects
}

// SchedulerSlip returns the accumulated lateness, which is zero or negative.
func (c *Clock) SchedulerSlip() time.Duration {
	return c.slip
}

// Update marks the clock as interrupted and wakes up the current wait. It
// is safe to call from any goroutine.
func (c *Clock) Update() {
	c.interrupted.Store(true)

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Clock) resetInterrupt() {
	c.interrupted.Store(false)

	select {
	case <-c.wake:
	default:
	}
}

// Resume tells the clock that the simulation was paused and has just been
// resumed. The time spent paused is not counted as execution time by the
// next wait. It is safe to call from any goroutine.
func (c *Clock) Resume() {
	c.resumeLock.Lock()
	defer c.resumeLock.Unlock()

	c.resumedAt = c.wall.Now()
}

// rebase moves the execution timer to the last resume, if it happened after
// the previous wait returned. The lateness accumulated before the pause is
// dropped.
func (c *Clock) rebase() {
	c.resumeLock.Lock()
	resumedAt := c.resumedAt
	c.resumedAt = time.Time{}
	c.resumeLock.Unlock()

	if resumedAt.After(c.execStart) {
		c.execStart = resumedAt
		c.slip = 0
	}
}

// WaitFor blocks until delay seconds of simulation time have passed since
// the previous wait returned, minus the time the simulation spent in
// between. It returns early if an asynchronous event fires.
func (c *Clock) WaitFor(
	ctx context.Context,
	delay modeling.VTimeInSec,
) (WaitResult, error) {
	if delay < 0 || math.IsNaN(float64(delay)) {
		return WaitResult{}, fmt.Errorf("%w: %v", ErrNegativeTime, delay)
	}

	c.rebase()

	if delay.IsInf() {
		return c.waitForInterrupt(ctx)
	}

	prevStart := c.execStart
	now := c.wall.Now()
	execTime := now.Sub(prevStart)

	actual := toDuration(delay) - execTime + c.slip
	c.slip = min(actual, 0)

	if c.tolerance >= 0 && actual < -c.tolerance {
		logrus.Errorf("real-time clock is %v late, tolerance is %v",
			-actual, c.tolerance)
		return WaitResult{}, fmt.Errorf("%w by %v", ErrMissedDeadline, -actual)
	}

	wait := max(actual, 0)

	interrupted, err := c.sleep(ctx, wait)
	end := c.wall.Now()
	c.execStart = end

	if err != nil {
		return WaitResult{}, err
	}

	if interrupted {
		elapsed := min(toVTime(end.Sub(prevStart)), delay)
		return WaitResult{Elapsed: max(elapsed, 0), Interrupted: true}, nil
	}

	if c.maxJitter > 0 {
		if jitter := end.Sub(now) - wait; jitter > c.maxJitter {
			return WaitResult{}, fmt.Errorf("%w: %v over %v",
				ErrJitterTooHigh, jitter, c.maxJitter)
		}
	}

	return WaitResult{Elapsed: delay}, nil
}

func (c *Clock) waitForInterrupt(ctx context.Context) (WaitResult, error) {
	prevStart := c.execStart

	_, err := c.sleep(ctx, forever)
	end := c.wall.Now()
	c.execStart = end
	c.slip = 0

	if err != nil {
		return WaitResult{}, err
	}

	return WaitResult{
		Elapsed:     toVTime(end.Sub(prevStart)),
		Interrupted: true,
	}, nil
}

// sleep waits for d, or until interrupted if d is forever. Wake-ups that are
// not backed by the interrupt flag are ignored.
func (c *Clock) sleep(ctx context.Context, d time.Duration) (bool, error) {
	if c.interrupted.Load() {
		return true, nil
	}

	if d == 0 {
		return false, nil
	}

	start := c.wall.Now()
	remaining := d

	for {
		woken, err := c.wall.Sleep(ctx, remaining, c.wake)
		if err != nil {
			return false, err
		}

		if !woken {
			return false, nil
		}

		if c.interrupted.Load() {
			return true, nil
		}

		if d != forever {
			remaining = d - c.wall.Now().Sub(start)
			if remaining <= 0 {
				return false, nil
			}
		}
	}
}

// toDuration rounds t to the microsecond. Times beyond the range of
// time.Duration saturate at its maximum, about 292 years.
func toDuration(t modeling.VTimeInSec) time.Duration {
	us := math.Round(float64(t) * 1e6)
	if us >= float64(math.MaxInt64/int64(time.Microsecond)) {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(us) * time.Microsecond
}

func toVTime(d time.Duration) modeling.VTimeInSec {
	return modeling.VTimeInSec(d.Seconds())
}
