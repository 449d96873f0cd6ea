package simulation

import "github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"

// A Logger records the trajectory of a simulation. All the methods are
// called from the simulation goroutine.
type Logger interface {
	Start()
	Stop()

	// LogTime is called once at the beginning of every simulation step.
	LogTime(t modeling.VTimeInSec)

	LogOutput(
		t modeling.VTimeInSec,
		modelID int,
		modelName, portName, output string,
	)

	LogState(t modeling.VTimeInSec, modelID int, modelName, state string)
}

// logModel writes the outputs of the model if requested, then its state.
func logModel(
	logger Logger,
	t modeling.VTimeInSec,
	modelID int,
	model modeling.AtomicModel,
	withOutputs bool,
) {
	if logger == nil {
		return
	}

	if withOutputs {
		for _, p := range model.OutPorts() {
			for i := 0; i < p.Size(); i++ {
				logger.LogOutput(t, modelID, model.Name(), p.Name(),
					p.LogMessage(i))
			}
		}
	}

	logger.LogState(t, modelID, model.Name(), model.LogState())
}
