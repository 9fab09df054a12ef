package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

const (
	// ErrSyntax is a malformed token sequence: bad escape, stray operator,
	// missing value, misplaced help operator or an ordering violation.
	ErrSyntax ErrorKind = iota
	// ErrEmptyInstructionSegment is an empty instruction between separators,
	// or an input made only of separators.
	ErrEmptyInstructionSegment
	// ErrTrailingDelimiter is a separator with nothing after it.
	ErrTrailingDelimiter
)

// String returns the name of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "Syntax"
	case ErrEmptyInstructionSegment:
		return "EmptyInstructionSegment"
	case ErrTrailingDelimiter:
		return "TrailingDelimiter"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is returned by every tokenizer and parser entry point.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Span    Span
	// Input is the full text that was being parsed, used by Pretty.
	Input string
}

func newError(kind ErrorKind, span Span, input, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
		Input:   input,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s error at %s: %s", e.Kind, e.Span, e.Message)
}

// Is matches another *ParseError with the same Kind, so callers can write
// errors.Is(err, &parser.ParseError{Kind: parser.ErrTrailingDelimiter}).
func (e *ParseError) Is(target error) bool {
	var t *ParseError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Pretty renders the error with the offending line and a caret underline.
func (e *ParseError) Pretty() string {
	if e.Input == "" || e.Span.Start < 0 || e.Span.End > len(e.Input) || e.Span.Start > e.Span.End {
		return e.Error()
	}

	lineStart := strings.LastIndexByte(e.Input[:e.Span.Start], '\n') + 1
	lineEnd := strings.IndexByte(e.Input[e.Span.Start:], '\n')
	if lineEnd < 0 {
		lineEnd = len(e.Input)
	} else {
		lineEnd += e.Span.Start
	}
	lineNo := strings.Count(e.Input[:lineStart], "\n") + 1

	width := e.Span.End - e.Span.Start
	if e.Span.End > lineEnd {
		width = lineEnd - e.Span.Start
	}
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s error: %s\n", e.Kind, e.Message)
	fmt.Fprintf(&b, "  --> line %d, bytes %d..%d\n", lineNo, e.Span.Start, e.Span.End)
	fmt.Fprintf(&b, "   | %s\n", e.Input[lineStart:lineEnd])
	fmt.Fprintf(&b, "   | %s%s", strings.Repeat(" ", e.Span.Start-lineStart), strings.Repeat("^", width))
	return b.String()
}

// AsParseError unwraps err into a *ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
