// Package parser turns unilang command lines into GenericInstructions.
//
// The grammar is
//
//	line        = instruction { ";;" instruction }
//	instruction = [ path ] { positional | name "::" value } [ "?" ]
//	path        = segment { "." segment }
//
// Values are bare runs or double-quoted strings with the escapes \" \\ \n
// \t and \r. An identifier directly followed by "::" is always an argument
// name and never part of the command path.
package parser

import (
	"strings"
)

// Parser parses instruction strings according to its Options. A Parser is
// stateless between calls and safe for concurrent use.
type Parser struct {
	options Options
}

// NewParser creates a parser with the given options.
func NewParser(options Options) *Parser {
	return &Parser{options: options}
}

// Options returns the parser's options.
func (p *Parser) Options() Options {
	return p.options
}

// ParseSingleStr parses input as exactly one instruction using the default
// options.
func ParseSingleStr(input string) (*GenericInstruction, error) {
	return NewParser(DefaultOptions()).ParseSingleInstruction(input)
}

// ParseSingleInstruction parses input as one instruction. It fails when the
// input holds more than one non-empty instruction segment.
func (p *Parser) ParseSingleInstruction(input string) (*GenericInstruction, error) {
	instructions, err := p.ParseMultipleInstructions(input)
	if err != nil {
		return nil, err
	}
	switch len(instructions) {
	case 0:
		return newInstruction(), nil
	case 1:
		return instructions[0], nil
	default:
		second := instructions[1].Span
		return nil, newError(ErrSyntax, second, input,
			"Expected a single instruction but found %d; use ParseMultipleInstructions for sequences",
			len(instructions))
	}
}

// ParseMultipleInstructions splits input on ";;" and parses every segment.
func (p *Parser) ParseMultipleInstructions(input string) ([]*GenericInstruction, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	segments, err := splitSegments(input, tokens)
	if err != nil {
		return nil, err
	}

	instructions := make([]*GenericInstruction, 0, len(segments))
	for _, seg := range segments {
		instr, err := p.parseInstruction(input, seg)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instr)
	}
	return instructions, nil
}

// ParseTokens parses an already tokenized single instruction. Separator
// tokens are rejected.
func (p *Parser) ParseTokens(input string, tokens []Token) (*GenericInstruction, error) {
	for _, tok := range tokens {
		if tok.isOperator(OpSeparator) {
			return nil, newError(ErrSyntax, tok.Span, input, "Unexpected token '%s' in arguments", tok.Text)
		}
	}
	return p.parseInstruction(input, tokens)
}

// splitSegments splits the token stream on separator tokens and enforces the
// separator rules. The leading segment may be empty; empty segments after a
// separator are errors.
func splitSegments(input string, tokens []Token) ([][]Token, error) {
	var (
		segments   [][]Token
		separators []Span
		current    []Token
	)
	for _, tok := range tokens {
		if tok.isOperator(OpSeparator) {
			segments = append(segments, current)
			separators = append(separators, tok.Span)
			current = nil
			continue
		}
		if tok.Kind == Whitespace {
			continue
		}
		current = append(current, tok)
	}
	segments = append(segments, current)

	if len(separators) == 0 {
		if len(segments[0]) == 0 {
			return nil, nil
		}
		return segments, nil
	}

	nonEmpty := 0
	for _, seg := range segments {
		if len(seg) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		span := Span{separators[0].Start, separators[len(separators)-1].End}
		return nil, newError(ErrEmptyInstructionSegment, span, input,
			"Empty instruction segment: input contains only instruction separators")
	}

	last := len(segments) - 1
	lastFull := last
	for len(segments[lastFull]) == 0 {
		lastFull--
	}

	result := make([][]Token, 0, nonEmpty)
	for i, seg := range segments[:lastFull+1] {
		if len(seg) > 0 {
			result = append(result, seg)
			continue
		}
		if i == 0 {
			continue
		}
		span := Span{separators[i-1].Start, separators[i].End}
		return nil, newError(ErrEmptyInstructionSegment, span, input,
			"Empty instruction segment between separators")
	}
	// Separators after the last instruction are a trailing delimiter, however
	// many there are.
	if lastFull < last {
		span := Span{separators[lastFull].Start, separators[last-1].End}
		return nil, newError(ErrTrailingDelimiter, span, input,
			"Trailing instruction separator ';;' with no instruction after it")
	}
	return result, nil
}

// cursor is an index-based reader over a materialized token slice. Peeking
// any distance is a plain index read.
type cursor struct {
	tokens []Token
	pos    int
}

func (c *cursor) peek(n int) *Token {
	if c.pos+n < len(c.tokens) {
		return &c.tokens[c.pos+n]
	}
	return nil
}

func (c *cursor) next() *Token {
	tok := c.peek(0)
	if tok != nil {
		c.pos++
	}
	return tok
}

func (c *cursor) done() bool {
	return c.pos >= len(c.tokens)
}

func (p *Parser) parseInstruction(input string, tokens []Token) (*GenericInstruction, error) {
	instr := newInstruction()
	if len(tokens) > 0 {
		instr.Span = Span{tokens[0].Span.Start, tokens[len(tokens)-1].Span.End}
	}

	c := &cursor{tokens: tokens}
	if err := p.parseCommandPath(input, c, instr); err != nil {
		return nil, err
	}
	if err := p.parseArguments(input, c, instr); err != nil {
		return nil, err
	}
	return instr, nil
}

// parseCommandPath consumes the leading identifier as the command path,
// unless the token after it is "::", in which case the identifier is left
// for the argument parser as a named-argument key.
func (p *Parser) parseCommandPath(input string, c *cursor, instr *GenericInstruction) error {
	tok := c.peek(0)
	if tok == nil || tok.Kind != Identifier {
		return nil
	}
	if c.peek(1).isNamedArgOperator() {
		return nil
	}

	slices, err := splitCommandPath(input, tok)
	if err != nil {
		return err
	}
	c.next()
	instr.CommandPathSlices = slices
	return nil
}

func splitCommandPath(input string, tok *Token) ([]string, error) {
	text := strings.TrimPrefix(tok.Text, ".")
	if text == "" || strings.HasSuffix(text, ".") {
		return nil, newError(ErrSyntax, tok.Span, input, "Command path cannot end with a '.'")
	}

	segments := strings.Split(text, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, newError(ErrSyntax, tok.Span, input, "Consecutive dots in command path '%s'", tok.Text)
		}
		if strings.Contains(seg, "-") {
			return nil, newError(ErrSyntax, tok.Span, input,
				"Invalid character '-' in command path segment '%s'", seg)
		}
	}
	return segments, nil
}

// parseArguments consumes every remaining token as a positional argument,
// a named argument or the trailing help operator.
func (p *Parser) parseArguments(input string, c *cursor, instr *GenericInstruction) error {
	seenNamed := false

	for !c.done() {
		tok := c.next()

		switch {
		case tok.isOperator(OpHelp):
			if !c.done() {
				return newError(ErrSyntax, tok.Span, input, "Help operator '?' must be the last token")
			}
			instr.HelpRequested = true

		case tok.isNamedArgOperator():
			return newError(ErrSyntax, tok.Span, input, "Unexpected token '::' in arguments")

		case tok.Kind == Operator:
			return newError(ErrSyntax, tok.Span, input, "Unexpected token '%s' in arguments", tok.Text)

		case tok.Kind == Identifier && c.peek(0).isNamedArgOperator():
			op := c.next()
			value := c.next()
			if value == nil {
				return newError(ErrSyntax, op.Span, input,
					"Expected value for named argument '%s' but found end of instruction", tok.Text)
			}
			if !value.isValue() {
				return newError(ErrSyntax, value.Span, input,
					"Expected value for named argument '%s' but found '%s'", tok.Text, value.Text)
			}
			if _, exists := instr.NamedArguments[tok.Text]; exists && p.options.ErrorOnDuplicateNamedArguments {
				return newError(ErrSyntax, tok.Span, input, "Duplicate named argument: %s", tok.Text)
			}
			instr.NamedArguments[tok.Text] = Argument{
				Value:  value.Text,
				Span:   value.Span,
				Quoted: value.Kind == QuotedString,
			}
			seenNamed = true

		case tok.isValue():
			if seenNamed && p.options.ErrorOnPositionalAfterNamed {
				return newError(ErrSyntax, tok.Span, input, "Positional argument after named argument")
			}
			instr.PositionalArguments = append(instr.PositionalArguments, Argument{
				Value:  tok.Text,
				Span:   tok.Span,
				Quoted: tok.Kind == QuotedString,
			})

		default:
			return newError(ErrSyntax, tok.Span, input, "Unexpected token '%s' in arguments", tok.Text)
		}
	}
	return nil
}
