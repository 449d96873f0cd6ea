package simulation

import (
	"fmt"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

// Coordinator drives a coupled model by driving one simulator per
// component.
type Coordinator struct {
	model    modeling.CoupledModel
	modelID  int
	timeLast modeling.VTimeInSec
	timeNext modeling.VTimeInSec

	simulators []AbstractSimulator
}

// NewCoordinator builds the simulator tree of model, starting at time t.
func NewCoordinator(
	model modeling.CoupledModel,
	t modeling.VTimeInSec,
) (*Coordinator, error) {
	c := &Coordinator{
		model:    model,
		timeLast: t,
		timeNext: modeling.Infinity,
	}

	for _, comp := range model.Components() {
		var sim AbstractSimulator

		switch m := comp.(type) {
		case modeling.CoupledModel:
			child, err := NewCoordinator(m, t)
			if err != nil {
				return nil, err
			}

			sim = child
		case modeling.AtomicModel:
			sim = NewSimulator(m, t)
		default:
			return nil, fmt.Errorf("%w: %s (%T)",
				modeling.ErrUnknownComponentKind, comp.Name(), comp)
		}

		c.simulators = append(c.simulators, sim)
		c.timeNext = modeling.MinTime(c.timeNext, sim.TimeNext())
	}

	return c, nil
}

// Component returns the coupled model.
func (c *Coordinator) Component() modeling.Component {
	return c.model
}

// Model returns the coupled model.
func (c *Coordinator) Model() modeling.CoupledModel {
	return c.model
}

// Subcomponents returns the simulators of the components, in the order the
// components were added.
func (c *Coordinator) Subcomponents() []AbstractSimulator {
	return c.simulators
}

// ModelID returns the ID assigned to the coupled model.
func (c *Coordinator) ModelID() int {
	return c.modelID
}

// SetModelID numbers the coupled model, then its components depth-first.
func (c *Coordinator) SetModelID(next int) int {
	c.modelID = next
	next++

	for _, sim := range c.simulators {
		next = sim.SetModelID(next)
	}

	return next
}

// SetLogger sets the logger of all the simulators.
func (c *Coordinator) SetLogger(logger Logger) {
	for _, sim := range c.simulators {
		sim.SetLogger(logger)
	}
}

// TimeLast returns the time of the last transition.
func (c *Coordinator) TimeLast() modeling.VTimeInSec {
	return c.timeLast
}

// TimeNext returns the earliest next time of the components.
func (c *Coordinator) TimeNext() modeling.VTimeInSec {
	return c.timeNext
}

// Start starts all the simulators.
func (c *Coordinator) Start(t modeling.VTimeInSec) {
	c.timeLast = t

	for _, sim := range c.simulators {
		sim.Start(t)
	}

	c.updateTimeNext()
}

// Stop stops all the simulators.
func (c *Coordinator) Stop(t modeling.VTimeInSec) {
	c.timeLast = t

	for _, sim := range c.simulators {
		sim.Stop(t)
	}
}

// Collection collects the outputs of the imminent components and then
// routes them through the internal and external output couplings. No message
// is routed before every imminent component has produced its output.
func (c *Coordinator) Collection(t modeling.VTimeInSec) {
	if t < c.timeNext {
		return
	}

	for _, sim := range c.simulators {
		if t >= sim.TimeNext() {
			sim.Collection(t)
		}
	}

	for _, coupling := range c.model.ICs() {
		coupling.To.Propagate(coupling.From)
	}

	for _, coupling := range c.model.EOCs() {
		coupling.To.Propagate(coupling.From)
	}
}

// Transition routes the inputs of the coupled model to its components and
// lets every imminent component or component with input transition.
func (c *Coordinator) Transition(t modeling.VTimeInSec) {
	for _, coupling := range c.model.EICs() {
		coupling.To.Propagate(coupling.From)
	}

	for _, sim := range c.simulators {
		if t >= sim.TimeNext() || !sim.Component().InEmpty() {
			sim.Transition(t)
		}
	}

	c.timeLast = t
	c.updateTimeNext()
}

// Inject lets the components react to messages that were placed on the
// input ports of the coupled model from outside the simulation, at a time t
// that is earlier than the next scheduled event.
func (c *Coordinator) Inject(t modeling.VTimeInSec) {
	c.Transition(t)
}

// Clear empties the ports of the components and of the coupled model.
func (c *Coordinator) Clear() {
	for _, sim := range c.simulators {
		sim.Clear()
	}

	c.model.ClearPorts()
}

func (c *Coordinator) updateTimeNext() {
	c.timeNext = modeling.Infinity

	for _, sim := range c.simulators {
		c.timeNext = modeling.MinTime(c.timeNext, sim.TimeNext())
	}
}
