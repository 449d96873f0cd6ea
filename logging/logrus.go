package logging

import (
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/sirupsen/logrus"
)

// LogrusLogger sends the trajectory to a logrus logger as structured
// entries.
type LogrusLogger struct {
	logger logrus.FieldLogger
	level  logrus.Level
}

// NewLogrusLogger creates a logger that writes entries at the given level.
func NewLogrusLogger(logger logrus.FieldLogger, level logrus.Level) *LogrusLogger {
	return &LogrusLogger{logger: logger, level: level}
}

func (l *LogrusLogger) Start() {
	l.logger.WithField("event", "start").Log(l.level, "simulation started")
}

func (l *LogrusLogger) Stop() {
	l.logger.WithField("event", "stop").Log(l.level, "simulation stopped")
}

func (l *LogrusLogger) LogTime(t modeling.VTimeInSec) {
	l.logger.WithField("time", float64(t)).Log(l.level, "step")
}

func (l *LogrusLogger) LogOutput(
	t modeling.VTimeInSec,
	modelID int,
	modelName, portName, output string,
) {
	l.logger.WithFields(logrus.Fields{
		"time":       float64(t),
		"model_id":   modelID,
		"model_name": modelName,
		"port_name":  portName,
		"data":       output,
	}).Log(l.level, "output")
}

func (l *LogrusLogger) LogState(
	t modeling.VTimeInSec,
	modelID int,
	modelName, state string,
) {
	l.logger.WithFields(logrus.Fields{
		"time":       float64(t),
		"model_id":   modelID,
		"model_name": modelName,
		"data":       state,
	}).Log(l.level, "state")
}
