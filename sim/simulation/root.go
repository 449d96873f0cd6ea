package simulation

import (
	"fmt"
	"sync"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/hooking"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/sirupsen/logrus"
)

// HookPosBeforeStep is invoked before a simulation step. The item is the
// time of the step.
var HookPosBeforeStep = &hooking.HookPos{Name: "BeforeStep"}

// HookPosAfterStep is invoked after a simulation step, once all the ports
// are cleared.
var HookPosAfterStep = &hooking.HookPos{Name: "AfterStep"}

// HookPosInject is invoked after messages injected from outside the
// simulation have been processed.
var HookPosInject = &hooking.HookPos{Name: "Inject"}

// HookPosContinue is invoked when a paused simulation is resumed, just before
// the next step is allowed to run. It may be invoked from any goroutine.
var HookPosContinue = &hooking.HookPos{Name: "Continue"}

// RootCoordinator runs a model in logical time, as fast as possible.
type RootCoordinator struct {
	*hooking.HookableBase

	top    *Coordinator
	logger Logger

	timeLock sync.RWMutex
	now      modeling.VTimeInSec

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
}

// NewRootCoordinator creates a root coordinator with the default settings.
func NewRootCoordinator(top modeling.CoupledModel) (*RootCoordinator, error) {
	return MakeBuilder().Build(top)
}

// TopCoordinator returns the coordinator of the top model.
func (r *RootCoordinator) TopCoordinator() *Coordinator {
	return r.top
}

// Logger returns the logger, or nil.
func (r *RootCoordinator) Logger() Logger {
	return r.logger
}

// CurrentTime returns the time of the last step. It is safe to call from
// any goroutine.
func (r *RootCoordinator) CurrentTime() modeling.VTimeInSec {
	r.timeLock.RLock()
	defer r.timeLock.RUnlock()

	return r.now
}

func (r *RootCoordinator) writeNow(t modeling.VTimeInSec) {
	r.timeLock.Lock()
	r.now = t
	r.timeLock.Unlock()
}

// Start assigns the model IDs, starts the logger and logs the initial state
// of every atomic model.
func (r *RootCoordinator) Start() (err error) {
	defer recoverProtocolError(&err)

	if r.logger != nil {
		r.logger.Start()
	}

	t := r.top.TimeLast()
	r.top.SetModelID(0)
	r.top.Start(t)
	r.writeNow(t)

	logrus.Debugf("root coordinator of %s started at %v",
		r.top.Component().Name(), t)

	return nil
}

// Stop logs the final state of every atomic model and stops the logger.
func (r *RootCoordinator) Stop() {
	t := r.top.TimeLast()
	r.top.Stop(t)

	if r.logger != nil {
		r.logger.Stop()
	}

	logrus.Debugf("root coordinator of %s stopped at %v",
		r.top.Component().Name(), t)
}

// SimulateIterations runs at most n steps. It stops early once the model
// becomes passive.
func (r *RootCoordinator) SimulateIterations(n int) error {
	for ; n > 0; n-- {
		if r.top.TimeNext().IsInf() {
			break
		}

		if err := r.Advance(r.top.TimeNext()); err != nil {
			return err
		}
	}

	return nil
}

// SimulateFor runs all the steps scheduled before the time of the last
// transition plus interval.
func (r *RootCoordinator) SimulateFor(interval modeling.VTimeInSec) error {
	timeFinal := r.top.TimeLast() + interval

	for r.top.TimeNext() < timeFinal {
		if err := r.Advance(r.top.TimeNext()); err != nil {
			return err
		}
	}

	return nil
}

// Advance runs one simulation step at time t. The caller is responsible for
// passing the next time of the top coordinator.
func (r *RootCoordinator) Advance(t modeling.VTimeInSec) (err error) {
	r.pauseLock.Lock()
	defer r.pauseLock.Unlock()
	defer recoverProtocolError(&err)

	r.writeNow(t)
	r.InvokeHook(hooking.HookCtx{Domain: r, Pos: HookPosBeforeStep, Item: t})

	if r.logger != nil {
		r.logger.LogTime(t)
	}

	r.top.Collection(t)
	r.top.Transition(t)
	r.top.Clear()

	r.InvokeHook(hooking.HookCtx{Domain: r, Pos: HookPosAfterStep, Item: t})

	return nil
}

// Inject lets the top model react at time t to the messages that were added
// to its input ports from outside the simulation. The time must not be
// before the last transition of the top model and must be strictly before
// its next one, which has to go through Advance to produce its outputs.
func (r *RootCoordinator) Inject(t modeling.VTimeInSec) (err error) {
	r.pauseLock.Lock()
	defer r.pauseLock.Unlock()
	defer recoverProtocolError(&err)

	if t < r.top.TimeLast() || t >= r.top.TimeNext() {
		panic(&modeling.ProtocolError{
			Model: r.top.Component().Name(),
			Reason: fmt.Sprintf("injection at %v is outside [%v, %v)",
				t, r.top.TimeLast(), r.top.TimeNext()),
		})
	}

	r.writeNow(t)

	if r.logger != nil {
		r.logger.LogTime(t)
	}

	r.top.Inject(t)
	r.top.Clear()

	r.InvokeHook(hooking.HookCtx{Domain: r, Pos: HookPosInject, Item: t})

	return nil
}

// Pause blocks the simulation before its next step.
func (r *RootCoordinator) Pause() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if r.isPaused {
		return
	}

	r.pauseLock.Lock()
	r.isPaused = true
}

// Continue resumes a paused simulation.
func (r *RootCoordinator) Continue() {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if !r.isPaused {
		return
	}

	r.InvokeHook(hooking.HookCtx{Domain: r, Pos: HookPosContinue})

	r.pauseLock.Unlock()
	r.isPaused = false
}

// Examine runs f while no step is in progress, so that f can read the state
// of the models from another goroutine. Steps wait for f to return.
func (r *RootCoordinator) Examine(f func()) {
	r.isPausedLock.Lock()
	defer r.isPausedLock.Unlock()

	if !r.isPaused {
		r.pauseLock.Lock()
		defer r.pauseLock.Unlock()
	}

	f()
}

func recoverProtocolError(err *error) {
	v := recover()
	if v == nil {
		return
	}

	pe, ok := v.(*modeling.ProtocolError)
	if !ok {
		panic(v)
	}

	logrus.Errorf("protocol violation: %v", pe)
	*err = pe
}
