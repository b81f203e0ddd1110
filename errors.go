package layers

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates an operation that is not valid for the
	// layer's current initialized/uninitialized status.
	ErrInvalidState = errors.New("layers: invalid state")
	// ErrInvalidArgument indicates a wrong or unrecognized argument value.
	ErrInvalidArgument = errors.New("layers: invalid argument")
	// ErrNotFound indicates a lookup miss where absence is an error.
	ErrNotFound = errors.New("layers: not found")
	// ErrCycleDetected indicates a hierarchy walk exceeded its bound.
	// Ancestor cycles are never valid; this always signals a consistency
	// bug, not a recoverable condition.
	ErrCycleDetected = errors.New("layers: hierarchy cycle detected")
)

// CycleError reports the walk that exceeded the hierarchy bound.
type CycleError struct {
	Op    string
	Layer string
	Hops  int
}

func (e *CycleError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("layers: %s exceeded %d ancestor hops for layer %q", e.Op, e.Hops, e.Layer)
}

func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

func newCycleError(op, layer string, hops int) error {
	return &CycleError{Op: op, Layer: layer, Hops: hops}
}
