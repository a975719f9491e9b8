package bankdb

import (
	"errors"
	"fmt"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a write or configuration that would violate the
// schema or a record invariant. The write it describes was not applied.
type ValidationError struct {
	Path    string // dotted field path, e.g. "accounts.A1.balance"
	Message string
	Err     error // underlying schema or decode error, if any
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("validation failed: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)}
}

// LoadError reports an initial configuration that could not be loaded.
// Load downgrades it to a warning; LoadStrict returns it.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load initial state: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
