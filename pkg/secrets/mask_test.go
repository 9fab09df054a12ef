package secrets

import (
	"bytes"
	"strings"
	"testing"
)

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		config *Masking
		want   string
	}{
		{"nil config partial", "supersecret", nil, "supers***"},
		{"nil config short", "abc", nil, "***"},
		{"full default", "supersecret", DefaultMasking(), "***"},
		{"full custom", "supersecret", &Masking{Style: StyleFull, Replacement: "[hidden]"}, "[hidden]"},
		{"partial", "supersecret", &Masking{Style: StylePartial, PartialShowChars: 2}, "su***"},
		{"partial multibyte", "пароль123", &Masking{Style: StylePartial, PartialShowChars: 3, Replacement: "…"}, "пар…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskValue(tt.value, tt.config); got != tt.want {
				t.Errorf("MaskValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHashMaskIsStable(t *testing.T) {
	config := &Masking{Style: StyleHash}
	a := MaskValue("token-1", config)
	b := MaskValue("token-1", config)
	c := MaskValue("token-2", config)

	if a != b {
		t.Errorf("hash mask not stable: %q != %q", a, b)
	}
	if a == c {
		t.Error("different values produced the same hash mask")
	}
	if !strings.HasPrefix(a, "sha256:") || len(a) != len("sha256:")+16 {
		t.Errorf("unexpected hash mask format %q", a)
	}
}

func TestMaskingWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewMaskingWriter(NewDefaultDetector(), &buf)

	input := "Authorization: Bearer abc.def.ghi failed\n"
	n, err := w.Write([]byte(input))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(input) {
		t.Errorf("Write() n = %d, want %d", n, len(input))
	}
	if strings.Contains(buf.String(), "abc.def.ghi") {
		t.Errorf("secret leaked: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("non-secret text lost: %q", buf.String())
	}
}
