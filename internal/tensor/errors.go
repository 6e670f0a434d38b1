package tensor

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnsupportedOperation     = errors.New("unsupported operation")
	ErrMetadataChangeNotAllowed = errors.New("metadata change not allowed")
	ErrInvalidShape             = errors.New("invalid shape")
)

// UnsupportedOperationError reports a structural operation invoked on a
// tensor implementation that has no such structure.
//
// It is raised with panic, never returned: calling a stride or storage
// operation on an opaque tensor is a bug in the caller. Generic code must
// check HasStorage() instead of recovering.
type UnsupportedOperationError struct {
	Op  string // Method that was invoked (e.g., "Stride").
	Msg string // Human-readable description.
}

// Error implements the error interface.
func (e *UnsupportedOperationError) Error() string {
	return e.Msg
}

// Unwrap returns ErrUnsupportedOperation.
func (e *UnsupportedOperationError) Unwrap() error {
	return ErrUnsupportedOperation
}

// AsUnsupported reports whether a value obtained from recover() is an
// UnsupportedOperationError.
func AsUnsupported(recovered any) (*UnsupportedOperationError, bool) {
	err, ok := recovered.(error)
	if !ok {
		return nil, false
	}
	var uerr *UnsupportedOperationError
	if errors.As(err, &uerr) {
		return uerr, true
	}
	return nil, false
}

func unsupported(op, msg string) {
	panic(&UnsupportedOperationError{Op: op, Msg: msg})
}

func checkMetadataChange(op string, allowed bool) {
	if !allowed {
		panic(fmt.Errorf("%w: %s is not allowed on a tensor created from Detach()", ErrMetadataChangeNotAllowed, op))
	}
}
