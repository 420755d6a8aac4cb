package dadbs

import (
	"errors"
	"fmt"

	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

// NotSupportedError signals that an optional operation was invoked
// on a validator that does not declare the required capability.
//
// Transport adapters return it without calling the validator, so a
// caller can distinguish "this validator cannot" from transient
// failures.
type NotSupportedError struct {
	Op           string
	Capabilities types.Capabilities
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("operation %s not supported (validator capabilities: %s)", e.Op, e.Capabilities)
}

// NewNotSupportedError creates a new NotSupportedError.
func NewNotSupportedError(op string, caps types.Capabilities) *NotSupportedError {
	return &NotSupportedError{Op: op, Capabilities: caps}
}

// IsNotSupported checks whether an error is a NotSupportedError and
// returns it.
func IsNotSupported(err error) (*NotSupportedError, bool) {
	var n *NotSupportedError
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}
