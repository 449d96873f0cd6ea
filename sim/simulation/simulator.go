package simulation

import (
	"math"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

// AbstractSimulator is the common interface of simulators and coordinators.
type AbstractSimulator interface {
	// Component returns the model the simulator drives.
	Component() modeling.Component

	ModelID() int

	// SetModelID assigns IDs depth-first starting at next and returns the
	// next free ID.
	SetModelID(next int) int

	SetLogger(logger Logger)

	TimeLast() modeling.VTimeInSec
	TimeNext() modeling.VTimeInSec

	Start(t modeling.VTimeInSec)
	Stop(t modeling.VTimeInSec)

	// Collection produces the outputs of the imminent models at time t.
	Collection(t modeling.VTimeInSec)

	// Transition applies the transitions due at time t.
	Transition(t modeling.VTimeInSec)

	// Clear empties all the ports touched during the step.
	Clear()
}

// Simulator drives an atomic model.
type Simulator struct {
	model    modeling.AtomicModel
	modelID  int
	timeLast modeling.VTimeInSec
	timeNext modeling.VTimeInSec
	logger   Logger
}

// NewSimulator creates a simulator for model, starting at time t.
func NewSimulator(model modeling.AtomicModel, t modeling.VTimeInSec) *Simulator {
	s := &Simulator{
		model:    model,
		timeLast: t,
	}
	s.timeNext = t + s.timeAdvance()

	return s
}

// Component returns the atomic model.
func (s *Simulator) Component() modeling.Component {
	return s.model
}

// Model returns the atomic model.
func (s *Simulator) Model() modeling.AtomicModel {
	return s.model
}

// ModelID returns the ID assigned to the model.
func (s *Simulator) ModelID() int {
	return s.modelID
}

// SetModelID takes next as the model ID.
func (s *Simulator) SetModelID(next int) int {
	s.modelID = next
	return next + 1
}

// SetLogger sets the logger.
func (s *Simulator) SetLogger(logger Logger) {
	s.logger = logger
}

// TimeLast returns the time of the last transition.
func (s *Simulator) TimeLast() modeling.VTimeInSec {
	return s.timeLast
}

// TimeNext returns the time of the next internal transition.
func (s *Simulator) TimeNext() modeling.VTimeInSec {
	return s.timeNext
}

// Start logs the initial state.
func (s *Simulator) Start(t modeling.VTimeInSec) {
	s.timeLast = t
	s.timeNext = t + s.timeAdvance()

	if s.logger != nil {
		s.logger.LogState(t, s.modelID, s.model.Name(), s.model.LogState())
	}
}

// Stop logs the final state.
func (s *Simulator) Stop(t modeling.VTimeInSec) {
	s.timeLast = t

	if s.logger != nil {
		s.logger.LogState(t, s.modelID, s.model.Name(), s.model.LogState())
	}
}

// Collection triggers the output function if the model is imminent.
func (s *Simulator) Collection(t modeling.VTimeInSec) {
	if t >= s.timeNext {
		s.model.CollectOutput()
	}
}

// Transition applies the internal, external or confluent transition
// depending on whether the model is imminent and has input.
func (s *Simulator) Transition(t modeling.VTimeInSec) {
	inEmpty := s.model.InEmpty()
	imminent := t >= s.timeNext

	if inEmpty && !imminent {
		return
	}

	switch {
	case inEmpty:
		s.model.ApplyInternalTransition()
	case !imminent:
		s.model.ApplyExternalTransition(t - s.timeLast)
	default:
		s.model.ApplyConfluentTransition(t - s.timeLast)
	}

	logModel(s.logger, t, s.modelID, s.model, imminent)

	s.timeLast = t
	s.timeNext = t + s.timeAdvance()
}

// Clear empties the ports of the model.
func (s *Simulator) Clear() {
	s.model.ClearPorts()
}

func (s *Simulator) timeAdvance() modeling.VTimeInSec {
	sigma := s.model.CurrentTimeAdvance()
	if sigma < 0 || math.IsNaN(float64(sigma)) {
		panic(&modeling.ProtocolError{
			Model:  s.model.Name(),
			Reason: "time advance must be a non-negative number",
		})
	}

	return sigma
}
