package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "empty input",
			input: "",
			want:  []Token{},
		},
		{
			name:  "dotted command and named argument",
			input: ".math.add a::1",
			want: []Token{
				{Kind: Identifier, Text: ".math.add", Span: Span{0, 9}},
				{Kind: Identifier, Text: "a", Span: Span{10, 11}},
				{Kind: Operator, Text: "::", Span: Span{11, 13}},
				{Kind: Unknown, Text: "1", Span: Span{13, 14}},
			},
		},
		{
			name:  "spaced named operator",
			input: "a :: b",
			want: []Token{
				{Kind: Identifier, Text: "a", Span: Span{0, 1}},
				{Kind: Operator, Text: "::", Span: Span{2, 4}},
				{Kind: Identifier, Text: "b", Span: Span{5, 6}},
			},
		},
		{
			name:  "whitespace runs produce no empty tokens",
			input: "  cmd \t\t arg  ",
			want: []Token{
				{Kind: Identifier, Text: "cmd", Span: Span{2, 5}},
				{Kind: Identifier, Text: "arg", Span: Span{9, 12}},
			},
		},
		{
			name:  "help and separator",
			input: "cmd ?;;b",
			want: []Token{
				{Kind: Identifier, Text: "cmd", Span: Span{0, 3}},
				{Kind: Operator, Text: "?", Span: Span{4, 5}},
				{Kind: Operator, Text: ";;", Span: Span{5, 7}},
				{Kind: Identifier, Text: "b", Span: Span{7, 8}},
			},
		},
		{
			name:  "quoted string keeps delimiters verbatim",
			input: `x::"a ;; b :: c ?"`,
			want: []Token{
				{Kind: Identifier, Text: "x", Span: Span{0, 1}},
				{Kind: Operator, Text: "::", Span: Span{1, 3}},
				{Kind: QuotedString, Text: "a ;; b :: c ?", Span: Span{3, 18}},
			},
		},
		{
			name:  "escapes are processed",
			input: `"q\"b\\s\nn\tt\rr"`,
			want: []Token{
				{Kind: QuotedString, Text: "q\"b\\s\nn\tt\rr", Span: Span{0, 18}},
			},
		},
		{
			name:  "unknown runs",
			input: "1,2,3 /tmp/x a:b",
			want: []Token{
				{Kind: Unknown, Text: "1,2,3", Span: Span{0, 5}},
				{Kind: Unknown, Text: "/tmp/x", Span: Span{6, 12}},
				{Kind: Unknown, Text: "a:b", Span: Span{13, 16}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeWithWhitespace(t *testing.T) {
	got, err := TokenizeWithWhitespace("a  b")
	require.NoError(t, err)
	want := []Token{
		{Kind: Identifier, Text: "a", Span: Span{0, 1}},
		{Kind: Whitespace, Text: "  ", Span: Span{1, 3}},
		{Kind: Identifier, Text: "b", Span: Span{3, 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMsg  string
		wantSpan Span
	}{
		{
			name:     "invalid escape",
			input:    `cmd name::"bad\xval"`,
			wantMsg:  `Invalid escape sequence: \x`,
			wantSpan: Span{14, 16},
		},
		{
			name:     "unterminated quote",
			input:    `cmd "abc`,
			wantMsg:  "Unterminated quoted string",
			wantSpan: Span{4, 8},
		},
		{
			name:     "dangling backslash",
			input:    `"abc\`,
			wantMsg:  "Unterminated quoted string",
			wantSpan: Span{0, 5},
		},
		{
			name:     "stray semicolon after separator",
			input:    "cmd1 ;;; cmd2",
			wantMsg:  "Unexpected token ';'",
			wantSpan: Span{7, 8},
		},
		{
			name:     "five semicolons",
			input:    ";;;;;",
			wantMsg:  "Unexpected token ';'",
			wantSpan: Span{4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			pe, ok := AsParseError(err)
			require.True(t, ok)
			assert.Equal(t, ErrSyntax, pe.Kind)
			assert.Contains(t, pe.Message, tt.wantMsg)
			assert.Equal(t, tt.wantSpan, pe.Span)
		})
	}
}

func TestNamedArgOperatorForms(t *testing.T) {
	for _, text := range []string{"::", " :: "} {
		tok := &Token{Kind: Operator, Text: text}
		assert.True(t, tok.isNamedArgOperator(), "form %q", text)
	}
	assert.False(t, (&Token{Kind: Identifier, Text: "::"}).isNamedArgOperator())
	assert.False(t, (*Token)(nil).isNamedArgOperator())
}

func TestClassify(t *testing.T) {
	tests := map[string]TokenKind{
		"cmd":       Identifier,
		".math.add": Identifier,
		"my-tool":   Identifier,
		"_x1":       Identifier,
		"-v":        Unknown,
		"123":       Unknown,
		"a,b":       Unknown,
		"ünï":       Identifier,
	}
	for text, want := range tests {
		assert.Equal(t, want, classify(text), text)
	}
}
