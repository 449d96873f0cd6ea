package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/hooking"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/simulation"
	"github.com/sirupsen/logrus"
)

// ErrAsyncPortNotInTop is returned when an asynchronous event targets a
// port that is not an input port of the top model.
var ErrAsyncPortNotInTop = errors.New(
	"async event port is not an input port of the top model")

// RootCoordinator runs a model in real time. Every step waits on the clock
// until its scheduled time, and asynchronous events interrupt the wait.
type RootCoordinator struct {
	*simulation.RootCoordinator

	clock *Clock
}

// NewRootCoordinator pairs a logical root coordinator with a clock. The
// ports of the clock's events must be input ports of the top model. Time
// spent paused through the logical root coordinator is not counted against
// the schedule.
func NewRootCoordinator(
	root *simulation.RootCoordinator,
	clock *Clock,
) (*RootCoordinator, error) {
	top := root.TopCoordinator().Model()

	for _, s := range clock.AsyncSubjects() {
		if !top.ContainsInPort(s.Port()) {
			return nil, fmt.Errorf("%w: %s", ErrAsyncPortNotInTop, s.Port().Name())
		}
	}

	root.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos == simulation.HookPosContinue {
			clock.Resume()
		}
	}))

	return &RootCoordinator{
		RootCoordinator: root,
		clock:           clock,
	}, nil
}

// Clock returns the real-time clock.
func (r *RootCoordinator) Clock() *Clock {
	return r.clock
}

// Start starts the logical root coordinator, then the clock.
func (r *RootCoordinator) Start() error {
	if err := r.RootCoordinator.Start(); err != nil {
		return err
	}

	r.clock.Start()

	return nil
}

// SimulateFor runs the simulation until interval seconds of simulation time
// have passed, the context is done or an error occurs.
func (r *RootCoordinator) SimulateFor(
	ctx context.Context,
	interval modeling.VTimeInSec,
) error {
	timeFinal := r.TopCoordinator().TimeLast() + interval
	return r.run(ctx, timeFinal, -1)
}

// SimulateIterations runs at most n steps, counting the injections of
// asynchronous events as steps. A passive model waits for events.
func (r *RootCoordinator) SimulateIterations(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	return r.run(ctx, modeling.Infinity, n)
}

func (r *RootCoordinator) run(
	ctx context.Context,
	timeFinal modeling.VTimeInSec,
	n int,
) error {
	top := r.TopCoordinator()
	current := top.TimeLast()

	for n != 0 && current < timeFinal {
		target := top.TimeNext()
		bounded := target >= timeFinal
		if bounded {
			target = timeFinal
		}

		res, err := r.clock.WaitFor(ctx, target-current)
		if err != nil {
			return err
		}

		n--

		if res.Interrupted {
			current, err = r.handleInterrupt(current + res.Elapsed)
			if err != nil {
				return err
			}

			continue
		}

		current = target
		if bounded {
			break
		}

		if err := r.Advance(current); err != nil {
			return err
		}
	}

	return nil
}

// handleInterrupt delivers the messages of the fired events at time t. If t
// reaches the next scheduled event, the messages are handled by a regular
// step so that imminent models still produce their outputs.
func (r *RootCoordinator) handleInterrupt(
	t modeling.VTimeInSec,
) (modeling.VTimeInSec, error) {
	r.clock.resetInterrupt()

	for _, s := range r.clock.AsyncSubjects() {
		if s.consume() {
			logrus.Debugf("async event on port %s delivered at %v",
				s.Port().Name(), t)
		}
	}

	timeNext := r.TopCoordinator().TimeNext()
	if t >= timeNext {
		return timeNext, r.Advance(timeNext)
	}

	return t, r.Inject(t)
}
