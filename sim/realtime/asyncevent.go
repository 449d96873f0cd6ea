package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

// AsyncEvent is a source of messages that fires outside the simulation, for
// example on a key press or a signal. Firing only sets a flag, so an event
// that fires several times before the simulation gets to it is delivered
// once.
type AsyncEvent struct {
	port    modeling.Port
	deliver func()

	interrupted atomic.Bool

	lock      sync.Mutex
	observers []Observer
}

// NewAsyncEvent creates an event that adds msg to port each time it is
// delivered. The port must be an input port of the top model.
func NewAsyncEvent[T any](port *modeling.TypedPort[T], msg T) *AsyncEvent {
	return &AsyncEvent{
		port:    port,
		deliver: func() { port.AddMessage(msg) },
	}
}

// Port returns the port that receives the messages.
func (a *AsyncEvent) Port() modeling.Port {
	return a.port
}

// Attach registers an observer.
func (a *AsyncEvent) Attach(o Observer) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.observers = append(a.observers, o)
}

// Notify fires the event. It is safe to call from any goroutine.
func (a *AsyncEvent) Notify() {
	a.interrupted.Store(true)

	a.lock.Lock()
	observers := a.observers
	a.lock.Unlock()

	for _, o := range observers {
		o.Update()
	}
}

// Interrupted reports whether the event fired and was not delivered yet.
func (a *AsyncEvent) Interrupted() bool {
	return a.interrupted.Load()
}

// consume clears the flag and delivers the message if the event fired.
func (a *AsyncEvent) consume() bool {
	if !a.interrupted.Swap(false) {
		return false
	}

	a.deliver()

	return true
}
