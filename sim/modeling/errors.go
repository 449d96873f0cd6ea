package modeling

import (
	"errors"
	"fmt"
)

// Configuration errors. They are returned while a model is being assembled
// and are wrapped with the names involved.
var (
	ErrInvalidPortType      = errors.New("invalid port type")
	ErrPortAlreadyOwned     = errors.New("port already belongs to other component")
	ErrDuplicatePort        = errors.New("port ID already defined")
	ErrPortNotFound         = errors.New("port not found")
	ErrPortNotOwned         = errors.New("port does not belong to any model")
	ErrComponentHasParent   = errors.New("component already belongs to a coupled model")
	ErrDuplicateComponent   = errors.New("component ID already defined")
	ErrComponentNotFound    = errors.New("component not found")
	ErrDuplicateCoupling    = errors.New("duplicate coupling")
	ErrInvalidOriginPort    = errors.New("invalid origin port")
	ErrInvalidDestPort      = errors.New("invalid destination port")
	ErrUnknownComponentKind = errors.New("component is neither atomic nor coupled")
)

// ProtocolError reports a violation of the simulation protocol by a model,
// such as a negative time advance. The kernel panics with a *ProtocolError
// and root coordinators turn it back into an error.
type ProtocolError struct {
	Model  string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("model %s: %s", e.Model, e.Reason)
}

func protocolViolation(model, format string, args ...interface{}) {
	panic(&ProtocolError{Model: model, Reason: fmt.Sprintf(format, args...)})
}
