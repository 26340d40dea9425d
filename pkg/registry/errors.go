package registry

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrTechnologyNotFound = errors.New("technology not found")
	ErrHubNotFound        = errors.New("hub not found")
	ErrSectorNotFound     = errors.New("demand sector not found")
	ErrDuplicateName      = errors.New("duplicate name")
	ErrInvalidRecord      = errors.New("invalid record")
)

// LoadError provides structured error information for catalog loading.
type LoadError struct {
	Table string // table the record came from (e.g. "production", "hubs")
	Name  string // offending record name, if known
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("load %s %q: %v", e.Table, e.Name, e.Cause)
	}
	return fmt.Sprintf("load %s: %v", e.Table, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

func loadErr(table, name string, cause error) error {
	return &LoadError{Table: table, Name: name, Cause: cause}
}
