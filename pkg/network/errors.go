package network

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrDuplicateNode = errors.New("duplicate node")
	ErrDuplicateEdge = errors.New("duplicate edge")
	ErrNodeNotFound  = errors.New("node not found")
)

// ConfigError reports an input contradiction discovered during graph
// construction: an unknown hub, technology or sector reference, or a
// malformed price ladder. It is always fatal and is surfaced before any
// solve is attempted.
type ConfigError struct {
	Op    string // build stage (e.g. "producers", "arcs", "prices")
	Hub   string // hub being built, if any
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Hub != "" {
		return fmt.Sprintf("%s at hub %s: %v", e.Op, e.Hub, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func configErr(op, hub string, cause error) error {
	return &ConfigError{Op: op, Hub: hub, Cause: cause}
}

// IsConfigError reports whether err is a graph configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
