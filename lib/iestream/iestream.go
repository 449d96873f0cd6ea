// Package iestream provides an atomic model that replays timed events read
// from a text stream.
//
// Each non-empty line of the stream holds an absolute simulation time
// followed by the message to send at that time:
//
//	0.5 12
//	1.25 7
//
// Lines starting with '#' are ignored. Times must not decrease.
package iestream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
)

// A Decoder converts the message part of a line into a message.
type Decoder[T any] func(s string) (T, error)

// String returns the message text as is.
func String(s string) (string, error) {
	return s, nil
}

// Int parses the message as a base-10 integer.
func Int(s string) (int, error) {
	return strconv.Atoi(s)
}

// Float64 parses the message as a floating point number.
func Float64(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Bool parses the message with strconv.ParseBool.
func Bool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

// State is the state of an IEStream model.
type State[T any] struct {
	Clock modeling.VTimeInSec
	Sigma modeling.VTimeInSec

	// Next is the message sent at the next internal event, if HasNext.
	Next    T
	HasNext bool
}

func (s State[T]) String() string {
	if !s.HasNext {
		return fmt.Sprintf("{%v %v none}", s.Clock, s.Sigma)
	}

	return fmt.Sprintf("{%v %v %v}", s.Clock, s.Sigma, s.Next)
}

// IEStream sends the events of a stream through its Out port.
type IEStream[T any] struct {
	*modeling.Atomic[State[T]]

	Out *modeling.TypedPort[T]

	scanner *bufio.Scanner
	decode  Decoder[T]
	closer  io.Closer
	line    int
}

// New creates a model reading events from r.
func New[T any](name string, r io.Reader, decode Decoder[T]) (*IEStream[T], error) {
	m := &IEStream[T]{
		scanner: bufio.NewScanner(r),
		decode:  decode,
	}
	m.Atomic = modeling.NewAtomic(name, State[T]{}, m)

	out, err := modeling.AddOutPort[T](m, "out")
	if err != nil {
		return nil, err
	}

	m.Out = out

	return m, nil
}

// Open creates a model reading events from the file at path. The file is
// closed by Close.
func Open[T any](name, path string, decode Decoder[T]) (*IEStream[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input event file could not be opened: %w", err)
	}

	m, err := New(name, f, decode)
	if err != nil {
		f.Close()
		return nil, err
	}

	m.closer = f

	return m, nil
}

// Close closes the underlying file, if the model owns one.
func (m *IEStream[T]) Close() error {
	if m.closer == nil {
		return nil
	}

	return m.closer.Close()
}

// InternalTransition reads the next event.
func (m *IEStream[T]) InternalTransition(s *State[T]) {
	s.Clock += s.Sigma

	t, msg, ok := m.nextEvent()
	if !ok {
		var zero T
		s.Next, s.HasNext = zero, false
		s.Sigma = modeling.Infinity

		return
	}

	if t < s.Clock {
		panic(&modeling.ProtocolError{
			Model: m.Name(),
			Reason: fmt.Sprintf(
				"events are not properly sorted in input file (line %d)",
				m.line),
		})
	}

	s.Sigma = t - s.Clock
	s.Next, s.HasNext = msg, true
}

// ExternalTransition only keeps the clock up to date; the model has no
// input ports.
func (m *IEStream[T]) ExternalTransition(s *State[T], e modeling.VTimeInSec) {
	s.Clock += e
	s.Sigma -= e
}

// Output sends the pending event.
func (m *IEStream[T]) Output(s State[T]) {
	if s.HasNext {
		m.Out.AddMessage(s.Next)
	}
}

// TimeAdvance returns sigma.
func (m *IEStream[T]) TimeAdvance(s State[T]) modeling.VTimeInSec {
	return s.Sigma
}

func (m *IEStream[T]) nextEvent() (modeling.VTimeInSec, T, bool) {
	var zero T

	for m.scanner.Scan() {
		m.line++

		line := strings.TrimSpace(m.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		timeField := strings.Fields(line)[0]
		rest := line[len(timeField):]

		t, err := strconv.ParseFloat(timeField, 64)
		if err != nil {
			m.malformed("bad time %q", timeField)
		}

		msg, err := m.decode(strings.TrimSpace(rest))
		if err != nil {
			m.malformed("bad message: %v", err)
		}

		return modeling.VTimeInSec(t), msg, true
	}

	if err := m.scanner.Err(); err != nil {
		m.malformed("read error: %v", err)
	}

	return 0, zero, false
}

func (m *IEStream[T]) malformed(format string, args ...interface{}) {
	panic(&modeling.ProtocolError{
		Model: m.Name(),
		Reason: fmt.Sprintf("line %d: ", m.line) +
			fmt.Sprintf(format, args...),
	})
}
