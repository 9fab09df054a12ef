package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRegistered is returned when a name or alias is taken.
	ErrAlreadyRegistered = errors.New("command already registered")

	// ErrInvalidNamespace is returned for namespaces without a dot prefix.
	ErrInvalidNamespace = errors.New("invalid namespace")

	// ErrInvalidDefinition is returned for definitions that fail validation.
	ErrInvalidDefinition = errors.New("invalid command definition")

	// ErrNotFound is returned when a command does not exist.
	ErrNotFound = errors.New("command not found")

	// ErrStatic is returned when a static command would be modified.
	ErrStatic = errors.New("static command is immutable")
)

// Error is a registration failure for a named command.
type Error struct {
	Name   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("registration of '%s' failed: %s", e.Name, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}
