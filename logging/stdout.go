package logging

import (
	"io"
	"os"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

// StdoutLogger prints the trajectory of a simulation as it happens.
type StdoutLogger struct {
	rows *rowWriter
}

// NewStdoutLogger creates a logger that prints to the standard output.
func NewStdoutLogger() *StdoutLogger {
	return NewWriterLogger(os.Stdout, ';')
}

// NewWriterLogger creates a logger that prints to w, separating fields with
// sep.
func NewWriterLogger(w io.Writer, sep rune) *StdoutLogger {
	return &StdoutLogger{rows: newRowWriter(w, sep)}
}

// Start prints the header.
func (l *StdoutLogger) Start() {
	l.must(l.rows.writeHeader())
	l.must(l.rows.flush())
}

// Stop flushes the output.
func (l *StdoutLogger) Stop() {
	l.must(l.rows.flush())
}

// LogTime flushes the rows of the previous step.
func (l *StdoutLogger) LogTime(t modeling.VTimeInSec) {
	l.must(l.rows.flush())
}

// LogOutput prints a message sent by a model.
func (l *StdoutLogger) LogOutput(
	t modeling.VTimeInSec,
	modelID int,
	modelName, portName, output string,
) {
	r := outputRecord(t, modelID, modelName, portName, output)
	l.must(l.rows.write(r))
}

// LogState prints the state of a model.
func (l *StdoutLogger) LogState(
	t modeling.VTimeInSec,
	modelID int,
	modelName, state string,
) {
	l.must(l.rows.write(stateRecord(t, modelID, modelName, state)))
}

func (l *StdoutLogger) must(err error) {
	if err != nil {
		panic(err)
	}
}
