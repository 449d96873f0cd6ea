package realtime

import "time"

// ClockBuilder can build real-time clocks.
type ClockBuilder struct {
	wall      wallClock
	tolerance time.Duration
	maxJitter time.Duration
	subjects  []*AsyncEvent
}

// MakeClockBuilder returns a ClockBuilder with the default deadline
// tolerance and no jitter check.
func MakeClockBuilder() ClockBuilder {
	return ClockBuilder{
		wall:      systemClock{},
		tolerance: DefaultMissedDeadlineTolerance,
	}
}

// WithMissedDeadlineTolerance sets how late a step may start. A negative
// tolerance disables the check.
func (b ClockBuilder) WithMissedDeadlineTolerance(d time.Duration) ClockBuilder {
	b.tolerance = d
	return b
}

// WithMaxJitter makes waits that overshoot by more than d fail. Zero
// disables the check.
func (b ClockBuilder) WithMaxJitter(d time.Duration) ClockBuilder {
	b.maxJitter = d
	return b
}

// WithAsyncEvents sets the events that can interrupt the clock.
func (b ClockBuilder) WithAsyncEvents(events ...*AsyncEvent) ClockBuilder {
	b.subjects = append(b.subjects[:len(b.subjects):len(b.subjects)], events...)
	return b
}

func (b ClockBuilder) withWallClock(w wallClock) ClockBuilder {
	b.wall = w
	return b
}

// Build creates the clock and attaches it to the events.
func (b ClockBuilder) Build() *Clock {
	c := &Clock{
		wall:      b.wall,
		tolerance: b.tolerance,
		maxJitter: b.maxJitter,
		subjects:  b.subjects,
		wake:      make(chan struct{}, 1),
	}

	for _, s := range c.subjects {
		s.Attach(c)
	}

	c.execStart = c.wall.Now()

	return c
}
