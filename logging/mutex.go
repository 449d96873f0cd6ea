package logging

import (
	"sync"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/simulation"
)

// MutexLogger serializes the calls to another logger so that it can be
// shared by several goroutines.
type MutexLogger struct {
	lock   sync.Mutex
	logger simulation.Logger
}

// NewMutexLogger wraps logger.
func NewMutexLogger(logger simulation.Logger) *MutexLogger {
	return &MutexLogger{logger: logger}
}

func (l *MutexLogger) Start() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.logger.Start()
}

func (l *MutexLogger) Stop() {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.logger.Stop()
}

func (l *MutexLogger) LogTime(t modeling.VTimeInSec) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.logger.LogTime(t)
}

func (l *MutexLogger) LogOutput(
	t modeling.VTimeInSec,
	modelID int,
	modelName, portName, output string,
) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.logger.LogOutput(t, modelID, modelName, portName, output)
}

func (l *MutexLogger) LogState(
	t modeling.VTimeInSec,
	modelID int,
	modelName, state string,
) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.logger.LogState(t, modelID, modelName, state)
}
