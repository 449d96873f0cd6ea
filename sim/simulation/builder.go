package simulation

import (
	"fmt"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/hooking"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

// Builder can build root coordinators.
type Builder struct {
	startTime modeling.VTimeInSec
	logger    Logger
	hooks     []hooking.Hook
}

// MakeBuilder returns a Builder that starts simulations at time 0 without
// logging.
func MakeBuilder() Builder {
	return Builder{}
}

// WithStartTime sets the initial simulation time.
func (b Builder) WithStartTime(t modeling.VTimeInSec) Builder {
	b.startTime = t
	return b
}

// WithLogger sets the logger that records the simulation trajectory.
func (b Builder) WithLogger(logger Logger) Builder {
	b.logger = logger
	return b
}

// WithHook registers a hook with the root coordinator.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Build creates the simulator tree of top. The top model must not be part
// of another coupled model.
func (b Builder) Build(top modeling.CoupledModel) (r *RootCoordinator, err error) {
	if top.Parent() != nil {
		return nil, fmt.Errorf("%w: top model %s is part of %s",
			modeling.ErrComponentHasParent, top.Name(), top.Parent().Name())
	}

	defer recoverProtocolError(&err)

	coordinator, err := NewCoordinator(top, b.startTime)
	if err != nil {
		return nil, err
	}

	coordinator.SetLogger(b.logger)

	r = &RootCoordinator{
		HookableBase: hooking.NewHookableBase(),
		top:          coordinator,
		logger:       b.logger,
		now:          b.startTime,
	}

	for _, h := range b.hooks {
		r.AcceptHook(h)
	}

	return r, nil
}
