// Package logging provides simulation.Logger back ends that record the
// trajectory of a simulation.
package logging

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

var header = []string{"time", "model_id", "model_name", "port_name", "data"}

// record is one line of a trajectory. State records leave the port name
// empty in text outputs.
type record struct {
	time      modeling.VTimeInSec
	modelID   int
	modelName string
	portName  string
	data      string
	isState   bool
}

func outputRecord(
	t modeling.VTimeInSec,
	modelID int,
	modelName, portName, output string,
) record {
	return record{
		time:      t,
		modelID:   modelID,
		modelName: modelName,
		portName:  portName,
		data:      output,
	}
}

func stateRecord(
	t modeling.VTimeInSec,
	modelID int,
	modelName, state string,
) record {
	return record{
		time:      t,
		modelID:   modelID,
		modelName: modelName,
		data:      state,
		isState:   true,
	}
}

func (r record) fields() []string {
	return []string{
		strconv.FormatFloat(float64(r.time), 'g', -1, 64),
		strconv.Itoa(r.modelID),
		r.modelName,
		r.portName,
		r.data,
	}
}

// rowWriter writes records as delimiter-separated rows, quoting the fields
// that contain the delimiter.
type rowWriter struct {
	w *csv.Writer
}

func newRowWriter(w io.Writer, sep rune) *rowWriter {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	return &rowWriter{w: cw}
}

func (rw *rowWriter) writeHeader() error {
	return rw.w.Write(header)
}

func (rw *rowWriter) write(r record) error {
	return rw.w.Write(r.fields())
}

func (rw *rowWriter) flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
