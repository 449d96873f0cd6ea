package modeling

import "fmt"

// Behavior defines the dynamics of an atomic model over a state of type S.
//
// Output and TimeAdvance receive the state by value and must not have side
// effects other than adding messages to output ports. The time advance of a
// state is its sigma: Infinity makes the model passive, negative values are
// protocol violations.
type Behavior[S any] interface {
	InternalTransition(s *S)
	ExternalTransition(s *S, e VTimeInSec)
	Output(s S)
	TimeAdvance(s S) VTimeInSec
}

// ConfluentBehavior can be implemented by a Behavior that needs a custom
// reaction when an internal and an external event happen at the same time.
type ConfluentBehavior[S any] interface {
	ConfluentTransition(s *S, e VTimeInSec)
}

// AtomicModel is the state-less view of an atomic model that simulators
// drive.
type AtomicModel interface {
	Component

	ApplyInternalTransition()
	ApplyExternalTransition(e VTimeInSec)
	ApplyConfluentTransition(e VTimeInSec)
	CollectOutput()
	CurrentTimeAdvance() VTimeInSec
	LogState() string
}

// Atomic binds a state and a Behavior into an AtomicModel. Concrete models
// usually embed *Atomic[S] and implement Behavior[S] themselves:
//
//	type Counter struct {
//		*modeling.Atomic[int]
//		Out *modeling.TypedPort[int]
//	}
//
//	c := &Counter{}
//	c.Atomic = modeling.NewAtomic[int]("counter", 0, c)
type Atomic[S any] struct {
	*ComponentBase

	state    S
	behavior Behavior[S]
}

// NewAtomic creates an atomic model with the initial state.
func NewAtomic[S any](name string, initial S, behavior Behavior[S]) *Atomic[S] {
	return &Atomic[S]{
		ComponentBase: NewComponentBase(name),
		state:         initial,
		behavior:      behavior,
	}
}

// State returns a copy of the current state.
func (a *Atomic[S]) State() S {
	return a.state
}

// ApplyInternalTransition applies the internal transition to the state.
func (a *Atomic[S]) ApplyInternalTransition() {
	a.behavior.InternalTransition(&a.state)
}

// ApplyExternalTransition applies the external transition to the state, e
// being the time elapsed since the last transition.
func (a *Atomic[S]) ApplyExternalTransition(e VTimeInSec) {
	if len(a.InPorts()) == 0 {
		protocolViolation(a.Name(),
			"external transition on a model without input ports")
	}

	a.behavior.ExternalTransition(&a.state, e)
}

// ApplyConfluentTransition resolves a collision between an internal and an
// external event. Unless the behavior overrides it, the external transition
// is applied first with the full elapsed time, then the internal one.
func (a *Atomic[S]) ApplyConfluentTransition(e VTimeInSec) {
	if c, ok := a.behavior.(ConfluentBehavior[S]); ok {
		c.ConfluentTransition(&a.state, e)
		return
	}

	a.ApplyExternalTransition(e)
	a.ApplyInternalTransition()
}

// CollectOutput lets the behavior write its output messages.
func (a *Atomic[S]) CollectOutput() {
	a.behavior.Output(a.state)
}

// CurrentTimeAdvance returns the sigma of the current state.
func (a *Atomic[S]) CurrentTimeAdvance() VTimeInSec {
	return a.behavior.TimeAdvance(a.state)
}

// LogState formats the current state with fmt.
func (a *Atomic[S]) LogState() string {
	return fmt.Sprint(a.state)
}
