package modeling

import "fmt"

// Named describes an object that has a name.
type Named interface {
	Name() string
}

// A Component is a node of the model tree: either an atomic model or a
// coupled model. All components embed a *ComponentBase.
type Component interface {
	Named

	// Parent returns the coupled model that contains the component, or nil.
	Parent() *Coupled

	AddInPort(p Port) error
	AddOutPort(p Port) error
	GetInPort(name string) (Port, error)
	GetOutPort(name string) (Port, error)
	InPorts() []Port
	OutPorts() []Port
	ContainsInPort(p Port) bool
	ContainsOutPort(p Port) bool

	InEmpty() bool
	OutEmpty() bool
	ClearPorts()

	base() *ComponentBase
}

// ComponentBase keeps the name, the ports and the parent of a component.
type ComponentBase struct {
	name   string
	parent *Coupled

	inPorts  []Port
	outPorts []Port
	inIndex  map[string]Port
	outIndex map[string]Port
}

// NewComponentBase creates a ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	return &ComponentBase{
		name:     name,
		inIndex:  make(map[string]Port),
		outIndex: make(map[string]Port),
	}
}

func (c *ComponentBase) base() *ComponentBase {
	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// Parent returns the coupled model that contains the component.
func (c *ComponentBase) Parent() *Coupled {
	return c.parent
}

// AddInPort adds an input port. Ports can only be added before the component
// joins a coupled model.
func (c *ComponentBase) AddInPort(p Port) error {
	if err := c.canAddPort(p); err != nil {
		return err
	}

	if _, found := c.inIndex[p.Name()]; found {
		return fmt.Errorf("%w: %s.%s", ErrDuplicatePort, c.name, p.Name())
	}

	p.setOwner(c)
	c.inPorts = append(c.inPorts, p)
	c.inIndex[p.Name()] = p

	return nil
}

// AddOutPort adds an output port.
func (c *ComponentBase) AddOutPort(p Port) error {
	if err := c.canAddPort(p); err != nil {
		return err
	}

	if _, found := c.outIndex[p.Name()]; found {
		return fmt.Errorf("%w: %s.%s", ErrDuplicatePort, c.name, p.Name())
	}

	p.setOwner(c)
	c.outPorts = append(c.outPorts, p)
	c.outIndex[p.Name()] = p

	return nil
}

func (c *ComponentBase) canAddPort(p Port) error {
	if p.owner() != nil {
		return fmt.Errorf("%w: %s is owned by %s",
			ErrPortAlreadyOwned, p.Name(), p.owner().name)
	}

	if c.parent != nil {
		return fmt.Errorf("%w: cannot add port %s to %s",
			ErrComponentHasParent, p.Name(), c.name)
	}

	return nil
}

// GetInPort returns the input port with the given name.
func (c *ComponentBase) GetInPort(name string) (Port, error) {
	p, found := c.inIndex[name]
	if !found {
		return nil, fmt.Errorf("%w: input port %s.%s",
			ErrPortNotFound, c.name, name)
	}

	return p, nil
}

// GetOutPort returns the output port with the given name.
func (c *ComponentBase) GetOutPort(name string) (Port, error) {
	p, found := c.outIndex[name]
	if !found {
		return nil, fmt.Errorf("%w: output port %s.%s",
			ErrPortNotFound, c.name, name)
	}

	return p, nil
}

// InPorts returns the input ports in the order they were added.
func (c *ComponentBase) InPorts() []Port {
	return c.inPorts
}

// OutPorts returns the output ports in the order they were added.
func (c *ComponentBase) OutPorts() []Port {
	return c.outPorts
}

// ContainsInPort reports whether p is one of the input ports.
func (c *ComponentBase) ContainsInPort(p Port) bool {
	return p != nil && c.inIndex[p.Name()] == p
}

// ContainsOutPort reports whether p is one of the output ports.
func (c *ComponentBase) ContainsOutPort(p Port) bool {
	return p != nil && c.outIndex[p.Name()] == p
}

// InEmpty reports whether all the input ports are empty.
func (c *ComponentBase) InEmpty() bool {
	for _, p := range c.inPorts {
		if !p.Empty() {
			return false
		}
	}

	return true
}

// OutEmpty reports whether all the output ports are empty.
func (c *ComponentBase) OutEmpty() bool {
	for _, p := range c.outPorts {
		if !p.Empty() {
			return false
		}
	}

	return true
}

// ClearPorts empties all the ports of the component.
func (c *ComponentBase) ClearPorts() {
	for _, p := range c.inPorts {
		p.Clear()
	}

	for _, p := range c.outPorts {
		p.Clear()
	}
}

// FullName returns the dot-separated path of c from the top model.
func FullName(c Component) string {
	name := c.Name()
	for p := c.Parent(); p != nil; p = p.Parent() {
		name = p.Name() + "." + name
	}

	return name
}
