package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits input into tokens, dropping whitespace. Spans are byte
// offsets into input. Quoted strings may contain delimiter characters
// verbatim and are returned unescaped.
func Tokenize(input string) ([]Token, error) {
	return tokenize(input, false)
}

// TokenizeWithWhitespace is like Tokenize but also emits one Whitespace
// token per run of whitespace.
func TokenizeWithWhitespace(input string) ([]Token, error) {
	return tokenize(input, true)
}

func tokenize(input string, keepWhitespace bool) ([]Token, error) {
	tokens := make([]Token, 0, len(input)/4+1)
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case unicode.IsSpace(r):
			start := i
			for i < len(input) {
				r, size = utf8.DecodeRuneInString(input[i:])
				if !unicode.IsSpace(r) {
					break
				}
				i += size
			}
			if keepWhitespace {
				tokens = append(tokens, Token{Kind: Whitespace, Text: input[start:i], Span: Span{start, i}})
			}

		case r == '"':
			tok, next, err := scanQuoted(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next

		case strings.HasPrefix(input[i:], OpNamedArg):
			tokens = append(tokens, Token{Kind: Operator, Text: OpNamedArg, Span: Span{i, i + 2}})
			i += 2

		case strings.HasPrefix(input[i:], OpSeparator):
			tokens = append(tokens, Token{Kind: Operator, Text: OpSeparator, Span: Span{i, i + 2}})
			i += 2
			// A lone ';' glued to a separator is a mistyped separator.
			if i < len(input) && input[i] == ';' && !strings.HasPrefix(input[i:], OpSeparator) {
				return nil, newError(ErrSyntax, Span{i, i + 1}, input, "Unexpected token ';'")
			}

		case r == '?':
			tokens = append(tokens, Token{Kind: Operator, Text: OpHelp, Span: Span{i, i + 1}})
			i += size

		default:
			start := i
			for i < len(input) && !atBoundary(input, i) {
				_, size = utf8.DecodeRuneInString(input[i:])
				i += size
			}
			text := input[start:i]
			tokens = append(tokens, Token{Kind: classify(text), Text: text, Span: Span{start, i}})
		}
	}
	return tokens, nil
}

// atBoundary reports whether an unquoted run must end before input[i].
func atBoundary(input string, i int) bool {
	r, _ := utf8.DecodeRuneInString(input[i:])
	if unicode.IsSpace(r) || r == '"' || r == '?' {
		return true
	}
	rest := input[i:]
	return strings.HasPrefix(rest, OpNamedArg) || strings.HasPrefix(rest, OpSeparator)
}

// scanQuoted scans a double-quoted string starting at input[start] == '"'.
// It returns the token and the offset just past the closing quote.
func scanQuoted(input string, start int) (Token, int, error) {
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case '"':
			return Token{Kind: QuotedString, Text: b.String(), Span: Span{start, i + 1}}, i + 1, nil
		case '\\':
			if i+1 >= len(input) {
				return Token{}, 0, newError(ErrSyntax, Span{start, len(input)}, input,
					"Unterminated quoted string")
			}
			r, size := utf8.DecodeRuneInString(input[i+1:])
			switch r {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return Token{}, 0, newError(ErrSyntax, Span{i, i + 1 + size}, input,
					"Invalid escape sequence: \\%c", r)
			}
			i += 1 + size
		default:
			b.WriteByte(c)
			i++
		}
	}
	return Token{}, 0, newError(ErrSyntax, Span{start, len(input)}, input, "Unterminated quoted string")
}

// classify decides whether an unquoted run is an Identifier or Unknown.
func classify(text string) TokenKind {
	for i, r := range text {
		switch {
		case r == '_' || r == '.' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || unicode.IsDigit(r)):
		default:
			return Unknown
		}
	}
	return Identifier
}
