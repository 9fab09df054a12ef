package parser

import "fmt"

// Span is a half-open byte range [Start, End) into the original input.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// String returns the span in "(start,end)" form.
func (s Span) String() string {
	return fmt.Sprintf("(%d,%d)", s.Start, s.End)
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// TokenKind classifies a token produced by the tokenizer.
type TokenKind int

const (
	// Identifier is an unquoted run of letters, digits, '_', '-' and '.'
	// that starts with a letter, '_' or '.'.
	Identifier TokenKind = iota
	// Operator is one of "::", "?" or ";;".
	Operator
	// QuotedString is a double-quoted string; its text is unescaped.
	QuotedString
	// Whitespace is a run of whitespace. Only emitted by TokenizeWithWhitespace.
	Whitespace
	// Unknown is any other unquoted run, e.g. "1,2,3" or "/tmp/x".
	Unknown
)

// String returns the name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case Identifier:
		return "Identifier"
	case Operator:
		return "Operator"
	case QuotedString:
		return "QuotedString"
	case Whitespace:
		return "Whitespace"
	case Unknown:
		return "Unknown"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Operator texts.
const (
	OpNamedArg  = "::"
	OpHelp      = "?"
	OpSeparator = ";;"

	// opNamedArgSpaced is the whitespace-surrounded lexical form of the
	// named-argument operator.
	opNamedArgSpaced = " :: "
)

// Token is a single lexical unit with its location in the input.
type Token struct {
	Kind TokenKind `json:"kind" yaml:"kind"`
	Text string    `json:"text" yaml:"text"`
	Span Span      `json:"span" yaml:"span"`
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Span)
}

// isOperator reports whether t is the operator op.
func (t *Token) isOperator(op string) bool {
	return t != nil && t.Kind == Operator && t.Text == op
}

// isNamedArgOperator reports whether t is the named-argument operator in
// either of its lexical forms.
func (t *Token) isNamedArgOperator() bool {
	if t == nil || t.Kind != Operator {
		return false
	}
	return t.Text == OpNamedArg || t.Text == opNamedArgSpaced
}

// isValue reports whether t can stand as an argument value.
func (t *Token) isValue() bool {
	return t != nil && (t.Kind == Identifier || t.Kind == QuotedString || t.Kind == Unknown)
}
