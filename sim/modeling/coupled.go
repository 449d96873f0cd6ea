package modeling

import "fmt"

// CouplingKind classifies a coupling by where its ports live.
type CouplingKind int

// The three kinds of couplings of a coupled model.
const (
	// EIC connects an input port of the coupled model to an input port of
	// one of its components.
	EIC CouplingKind = iota
	// IC connects an output port of a component to an input port of a
	// sibling.
	IC
	// EOC connects an output port of a component to an output port of the
	// coupled model.
	EOC
)

func (k CouplingKind) String() string {
	switch k {
	case EIC:
		return "EIC"
	case IC:
		return "IC"
	case EOC:
		return "EOC"
	default:
		return fmt.Sprintf("CouplingKind(%d)", int(k))
	}
}

// A Coupling moves the messages of From into To.
type Coupling struct {
	From Port
	To   Port
}

// CoupledModel is the view of a coupled model that coordinators drive.
type CoupledModel interface {
	Component

	Components() []Component
	EICs() []Coupling
	ICs() []Coupling
	EOCs() []Coupling
}

// Coupled is a network of components and the couplings between their ports.
// Composite models usually embed a *Coupled.
type Coupled struct {
	*ComponentBase

	components     []Component
	componentIndex map[string]Component

	eic []Coupling
	ic  []Coupling
	eoc []Coupling
}

// NewCoupled creates an empty coupled model.
func NewCoupled(name string) *Coupled {
	return &Coupled{
		ComponentBase:  NewComponentBase(name),
		componentIndex: make(map[string]Component),
	}
}

// AddComponent adds a component. A component can only belong to one coupled
// model and its name must be unique in it.
func (c *Coupled) AddComponent(comp Component) error {
	b := comp.base()

	if b == c.ComponentBase {
		return fmt.Errorf("%w: %s cannot contain itself",
			ErrComponentHasParent, c.Name())
	}

	if b.parent != nil {
		return fmt.Errorf("%w: %s is part of %s",
			ErrComponentHasParent, comp.Name(), b.parent.Name())
	}

	if _, found := c.componentIndex[comp.Name()]; found {
		return fmt.Errorf("%w: %s in %s",
			ErrDuplicateComponent, comp.Name(), c.Name())
	}

	b.parent = c
	c.components = append(c.components, comp)
	c.componentIndex[comp.Name()] = comp

	return nil
}

// Component returns the component with the given name.
func (c *Coupled) Component(name string) (Component, error) {
	comp, found := c.componentIndex[name]
	if !found {
		return nil, fmt.Errorf("%w: %s in %s",
			ErrComponentNotFound, name, c.Name())
	}

	return comp, nil
}

// Components returns the components in the order they were added.
func (c *Coupled) Components() []Component {
	return c.components
}

// EICs returns the external input couplings.
func (c *Coupled) EICs() []Coupling {
	return c.eic
}

// ICs returns the internal couplings.
func (c *Coupled) ICs() []Coupling {
	return c.ic
}

// EOCs returns the external output couplings.
func (c *Coupled) EOCs() []Coupling {
	return c.eoc
}

// AddCoupling connects from to to and classifies the coupling as an EIC, an
// IC or an EOC depending on which components own the ports.
func (c *Coupled) AddCoupling(from, to Port) error {
	kind, err := c.classify(from, to)
	if err != nil {
		return err
	}

	list := c.couplingList(kind)
	for _, existing := range *list {
		if existing.From == from && existing.To == to {
			return fmt.Errorf("%w: %s %s -> %s in %s", ErrDuplicateCoupling,
				kind, from.Name(), to.Name(), c.Name())
		}
	}

	*list = append(*list, Coupling{From: from, To: to})

	return nil
}

func (c *Coupled) classify(from, to Port) (CouplingKind, error) {
	if !to.Compatible(from) {
		return 0, fmt.Errorf("%w: %s (%s) -> %s (%s)", ErrInvalidPortType,
			from.Name(), from.MessageType(), to.Name(), to.MessageType())
	}

	fromOwner, toOwner := from.owner(), to.owner()
	if fromOwner == nil || toOwner == nil {
		return 0, fmt.Errorf("%w: %s -> %s",
			ErrPortNotOwned, from.Name(), to.Name())
	}

	switch {
	case fromOwner == c.ComponentBase && c.ContainsInPort(from):
		if c.isChildInPort(to) {
			return EIC, nil
		}
	case fromOwner.parent == c && fromOwner.ContainsOutPort(from):
		if toOwner == c.ComponentBase && c.ContainsOutPort(to) {
			return EOC, nil
		}

		if c.isChildInPort(to) {
			return IC, nil
		}
	default:
		return 0, fmt.Errorf("%w: %s.%s in %s",
			ErrInvalidOriginPort, fromOwner.name, from.Name(), c.Name())
	}

	return 0, fmt.Errorf("%w: %s.%s in %s",
		ErrInvalidDestPort, toOwner.name, to.Name(), c.Name())
}

func (c *Coupled) isChildInPort(p Port) bool {
	owner := p.owner()
	return owner.parent == c && owner.ContainsInPort(p)
}

func (c *Coupled) couplingList(kind CouplingKind) *[]Coupling {
	switch kind {
	case EIC:
		return &c.eic
	case IC:
		return &c.ic
	default:
		return &c.eoc
	}
}

// AddEIC couples the input port portFrom of the coupled model to the input
// port portTo of the component compTo.
func (c *Coupled) AddEIC(portFrom, compTo, portTo string) error {
	from, err := c.GetInPort(portFrom)
	if err != nil {
		return err
	}

	to, err := c.childInPort(compTo, portTo)
	if err != nil {
		return err
	}

	return c.AddCoupling(from, to)
}

// AddIC couples an output port of compFrom to an input port of compTo.
func (c *Coupled) AddIC(compFrom, portFrom, compTo, portTo string) error {
	from, err := c.childOutPort(compFrom, portFrom)
	if err != nil {
		return err
	}

	to, err := c.childInPort(compTo, portTo)
	if err != nil {
		return err
	}

	return c.AddCoupling(from, to)
}

// AddEOC couples an output port of compFrom to the output port portTo of the
// coupled model.
func (c *Coupled) AddEOC(compFrom, portFrom, portTo string) error {
	from, err := c.childOutPort(compFrom, portFrom)
	if err != nil {
		return err
	}

	to, err := c.GetOutPort(portTo)
	if err != nil {
		return err
	}

	return c.AddCoupling(from, to)
}

// AddDynamicEIC couples the input port portFrom of the coupled model to an
// input port of compTo. If the coupled model has no such port yet, one
// carrying the same type as the destination is created.
func (c *Coupled) AddDynamicEIC(portFrom, compTo, portTo string) error {
	to, err := c.childInPort(compTo, portTo)
	if err != nil {
		return err
	}

	from, found := c.inIndex[portFrom]
	if !found {
		from = to.NewCompatiblePort(portFrom)
		if err := c.AddInPort(from); err != nil {
			return err
		}
	}

	return c.AddCoupling(from, to)
}

// AddDynamicEOC couples an output port of compFrom to the output port portTo
// of the coupled model, creating the latter with a compatible type if
// needed.
func (c *Coupled) AddDynamicEOC(compFrom, portFrom, portTo string) error {
	from, err := c.childOutPort(compFrom, portFrom)
	if err != nil {
		return err
	}

	to, found := c.outIndex[portTo]
	if !found {
		to = from.NewCompatiblePort(portTo)
		if err := c.AddOutPort(to); err != nil {
			return err
		}
	}

	return c.AddCoupling(from, to)
}

func (c *Coupled) childInPort(comp, port string) (Port, error) {
	child, err := c.Component(comp)
	if err != nil {
		return nil, err
	}

	return child.GetInPort(port)
}

func (c *Coupled) childOutPort(comp, port string) (Port, error) {
	child, err := c.Component(comp)
	if err != nil {
		return nil, err
	}

	return child.GetOutPort(port)
}
