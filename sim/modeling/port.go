package modeling

import (
	"fmt"
	"reflect"
)

// A Port is a named, typed message bag owned by a single component.
//
// Bags are filled during the output phase or by coupling propagation and are
// emptied by Clear at the end of every simulation step. Messages are kept in
// insertion order.
type Port interface {
	Named

	// Owner returns the component the port was added to, or nil.
	Owner() Component

	Clear()
	Empty() bool
	Size() int

	// MessageType returns the Go type of the messages the port carries.
	MessageType() reflect.Type

	// Compatible reports whether messages can flow between the two ports.
	Compatible(other Port) bool

	// NewCompatiblePort creates an unowned port carrying the same type.
	NewCompatiblePort(name string) Port

	// Propagate appends all the messages of from to this port. It panics if
	// the ports are not compatible.
	Propagate(from Port)

	// LogMessage returns the string form of the i-th message.
	LogMessage(i int) string

	owner() *ComponentBase
	setOwner(c *ComponentBase)
}

// TypedPort is a port carrying messages of type T. Use a pointer type for T
// to share large messages between receivers instead of copying them.
type TypedPort[T any] struct {
	name      string
	component *ComponentBase
	bag       []T
}

// NewPort creates a port that does not belong to any component yet.
func NewPort[T any](name string) *TypedPort[T] {
	return &TypedPort[T]{name: name}
}

// Name returns the name of the port.
func (p *TypedPort[T]) Name() string {
	return p.name
}

// Owner returns the component that the port belongs to.
func (p *TypedPort[T]) Owner() Component {
	if p.component == nil {
		return nil
	}

	return p.component
}

func (p *TypedPort[T]) owner() *ComponentBase {
	return p.component
}

func (p *TypedPort[T]) setOwner(c *ComponentBase) {
	p.component = c
}

// AddMessage appends a message to the bag.
func (p *TypedPort[T]) AddMessage(msg T) {
	p.bag = append(p.bag, msg)
}

// Bag returns the messages currently in the port. The slice must not be
// modified by the caller.
func (p *TypedPort[T]) Bag() []T {
	return p.bag
}

// Clear removes all the messages.
func (p *TypedPort[T]) Clear() {
	clear(p.bag)
	p.bag = p.bag[:0]
}

// Empty reports whether the bag holds no message.
func (p *TypedPort[T]) Empty() bool {
	return len(p.bag) == 0
}

// Size returns the number of messages in the bag.
func (p *TypedPort[T]) Size() int {
	return len(p.bag)
}

// MessageType returns the type T.
func (p *TypedPort[T]) MessageType() reflect.Type {
	return reflect.TypeFor[T]()
}

// Compatible reports whether other carries messages of type T as well.
func (p *TypedPort[T]) Compatible(other Port) bool {
	_, ok := other.(*TypedPort[T])
	return ok
}

// NewCompatiblePort creates an unowned port of the same message type.
func (p *TypedPort[T]) NewCompatiblePort(name string) Port {
	return NewPort[T](name)
}

// Propagate appends the messages of from to the bag.
func (p *TypedPort[T]) Propagate(from Port) {
	src, ok := from.(*TypedPort[T])
	if !ok {
		panic(fmt.Sprintf("cannot propagate from port %s (%s) to port %s (%s)",
			from.Name(), from.MessageType(), p.name, p.MessageType()))
	}

	p.bag = append(p.bag, src.bag...)
}

// LogMessage formats the i-th message with fmt.
func (p *TypedPort[T]) LogMessage(i int) string {
	return fmt.Sprint(p.bag[i])
}

// AddInPort creates an input port of type T and adds it to c.
func AddInPort[T any](c Component, name string) (*TypedPort[T], error) {
	p := NewPort[T](name)
	if err := c.AddInPort(p); err != nil {
		return nil, err
	}

	return p, nil
}

// AddOutPort creates an output port of type T and adds it to c.
func AddOutPort[T any](c Component, name string) (*TypedPort[T], error) {
	p := NewPort[T](name)
	if err := c.AddOutPort(p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetInPort finds an input port of c by name and checks its message type.
func GetInPort[T any](c Component, name string) (*TypedPort[T], error) {
	p, err := c.GetInPort(name)
	if err != nil {
		return nil, err
	}

	return asTyped[T](c, p)
}

// GetOutPort finds an output port of c by name and checks its message type.
func GetOutPort[T any](c Component, name string) (*TypedPort[T], error) {
	p, err := c.GetOutPort(name)
	if err != nil {
		return nil, err
	}

	return asTyped[T](c, p)
}

func asTyped[T any](c Component, p Port) (*TypedPort[T], error) {
	typed, ok := p.(*TypedPort[T])
	if !ok {
		return nil, fmt.Errorf("%w: port %s.%s carries %s, not %s",
			ErrInvalidPortType, c.Name(), p.Name(),
			p.MessageType(), reflect.TypeFor[T]())
	}

	return typed, nil
}
