package parser

import (
	"fmt"
	"strings"
	"testing"
)

func buildSequence(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`.math.add numbers::1,2,%d label::"item %d" extra`, i, i)
	}
	return strings.Join(parts, " ;; ")
}

// BenchmarkParseSingle measures parsing of a typical single instruction.
func BenchmarkParseSingle(b *testing.B) {
	p := NewParser(DefaultOptions())
	input := `.files.copy src.txt "dst dir" mode::fast verbose::true`
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseSingleInstruction(input); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseMultiple checks that cost grows linearly with the number of
// instructions.
func BenchmarkParseMultiple(b *testing.B) {
	for _, n := range []int{1, 10, 50, 200} {
		input := buildSequence(n)
		b.Run(fmt.Sprintf("instructions=%d", n), func(b *testing.B) {
			p := NewParser(DefaultOptions())
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				got, err := p.ParseMultipleInstructions(input)
				if err != nil {
					b.Fatal(err)
				}
				if len(got) != n {
					b.Fatalf("got %d instructions, want %d", len(got), n)
				}
			}
		})
	}
}

func BenchmarkTokenize(b *testing.B) {
	input := buildSequence(20)
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		if _, err := Tokenize(input); err != nil {
			b.Fatal(err)
		}
	}
}
