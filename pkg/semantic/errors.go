package semantic

import (
	"errors"
	"fmt"

	"github.com/unilang/unilang/pkg/parser"
)

// ErrorKind classifies a semantic Error.
type ErrorKind int

const (
	// ErrCommandNotFound means the command path did not resolve.
	ErrCommandNotFound ErrorKind = iota + 1
	// ErrMissingRequiredArgument means a required argument was not bound.
	ErrMissingRequiredArgument
	// ErrTypeMismatch means a raw value did not coerce to its kind.
	ErrTypeMismatch
	// ErrValidationFailed means a coerced value broke a validation rule.
	ErrValidationFailed
	// ErrInteractiveInputRequired means an interactive argument has no
	// value. Callers prompt for it and analyze again.
	ErrInteractiveInputRequired
	// ErrTooManyArguments means more positional values than parameters.
	ErrTooManyArguments
	// ErrUnknownArgument means a named argument the command does not declare.
	ErrUnknownArgument
	// ErrDuplicateArgument means an argument was named twice through aliases.
	ErrDuplicateArgument
	// ErrHelpRequested means the instruction ended in "?". Help holds the
	// rendered help text.
	ErrHelpRequested
)

var kindNames = map[ErrorKind]string{
	ErrCommandNotFound:          "CommandNotFound",
	ErrMissingRequiredArgument:  "MissingRequiredArgument",
	ErrTypeMismatch:             "TypeMismatch",
	ErrValidationFailed:         "ValidationFailed",
	ErrInteractiveInputRequired: "InteractiveInputRequired",
	ErrTooManyArguments:         "TooManyArguments",
	ErrUnknownArgument:          "UnknownArgument",
	ErrDuplicateArgument:        "DuplicateArgument",
	ErrHelpRequested:            "HelpRequested",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by the analyzer. It identifies the instruction, command
// and argument involved.
type Error struct {
	Kind ErrorKind
	// Instruction is the index of the failing instruction in the batch.
	Instruction int
	Command     string
	Argument    string
	Message     string
	// Span locates the offending text. It is the zero Span when no single
	// token is responsible.
	Span       parser.Span
	Help       string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Span != (parser.Span{}) {
		return fmt.Sprintf("%s error at %s: %s", e.Kind, e.Span, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind, e.g.
// errors.Is(err, &semantic.Error{Kind: semantic.ErrTypeMismatch}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrNotFound    = &Error{Kind: ErrCommandNotFound}
	ErrMissing     = &Error{Kind: ErrMissingRequiredArgument}
	ErrType        = &Error{Kind: ErrTypeMismatch}
	ErrValidation  = &Error{Kind: ErrValidationFailed}
	ErrInteractive = &Error{Kind: ErrInteractiveInputRequired}
	ErrTooMany     = &Error{Kind: ErrTooManyArguments}
	ErrUnknown     = &Error{Kind: ErrUnknownArgument}
	ErrDuplicate   = &Error{Kind: ErrDuplicateArgument}
	ErrHelp        = &Error{Kind: ErrHelpRequested}
)

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a semantic Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsError(err)
	return ok && se.Kind == kind
}
