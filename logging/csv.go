package logging

import (
	"fmt"
	"os"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVLogger writes the trajectory of a simulation into a CSV file.
type CSVLogger struct {
	path string
	sep  rune
	file *os.File
	rows *rowWriter

	records    []record
	bufferSize int
}

// NewCSVLogger creates a CSVLogger. The file is path with a ".csv" suffix.
// If path is empty, a unique name is generated.
func NewCSVLogger(path string) *CSVLogger {
	return &CSVLogger{
		path:       path,
		sep:        ',',
		bufferSize: 1000,
	}
}

// WithSeparator changes the field separator.
func (l *CSVLogger) WithSeparator(sep rune) *CSVLogger {
	l.sep = sep
	return l
}

// Filename returns the name of the file the logger writes to.
func (l *CSVLogger) Filename() string {
	return l.path + ".csv"
}

// Start creates the file. It panics if the file already exists.
func (l *CSVLogger) Start() {
	if l.path == "" {
		l.path = "devsim_log_" + xid.New().String()
	}

	filename := l.Filename()
	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}

	l.file = file
	l.rows = newRowWriter(file, l.sep)
	l.mustSucceed(l.rows.writeHeader())

	atexit.Register(l.close)
}

// Stop writes the buffered records and closes the file.
func (l *CSVLogger) Stop() {
	l.close()
}

func (l *CSVLogger) close() {
	if l.file == nil {
		return
	}

	l.Flush()
	l.mustSucceed(l.file.Close())
	l.file = nil
}

// LogTime does nothing, every record carries its time.
func (l *CSVLogger) LogTime(t modeling.VTimeInSec) {}

// LogOutput records a message sent by a model.
func (l *CSVLogger) LogOutput(
	t modeling.VTimeInSec,
	modelID int,
	modelName, portName, output string,
) {
	l.buffer(outputRecord(t, modelID, modelName, portName, output))
}

// LogState records the state of a model.
func (l *CSVLogger) LogState(
	t modeling.VTimeInSec,
	modelID int,
	modelName, state string,
) {
	l.buffer(stateRecord(t, modelID, modelName, state))
}

func (l *CSVLogger) buffer(r record) {
	l.records = append(l.records, r)
	if len(l.records) >= l.bufferSize {
		l.Flush()
	}
}

// Flush writes the buffered records to the file.
func (l *CSVLogger) Flush() {
	if l.rows == nil {
		return
	}

	for _, r := range l.records {
		l.mustSucceed(l.rows.write(r))
	}

	l.mustSucceed(l.rows.flush())
	l.records = nil
}

func (l *CSVLogger) mustSucceed(err error) {
	if err != nil {
		panic(fmt.Errorf("csv logger %s: %w", l.Filename(), err))
	}
}
