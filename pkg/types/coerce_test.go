package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerce(t *testing.T) {
	ts, _ := time.Parse(time.RFC3339, "2024-05-01T10:00:00Z")

	tests := []struct {
		name string
		raw  string
		kind Kind
		want Value
	}{
		{"string", "hello", Simple(KindString), NewString("hello")},
		{"integer", "42", Simple(KindInteger), NewInteger(42)},
		{"negative integer", "-7", Simple(KindInteger), NewInteger(-7)},
		{"float", "3.5", Simple(KindFloat), NewFloat(3.5)},
		{"float from integer text", "2", Simple(KindFloat), NewFloat(2)},
		{"boolean true", "true", Simple(KindBoolean), NewBoolean(true)},
		{"boolean 0", "0", Simple(KindBoolean), NewBoolean(false)},
		{"boolean yes", "Yes", Simple(KindBoolean), NewBoolean(true)},
		{"path", "/tmp/x", Simple(KindPath), Value{Type: KindPath, Str: "/tmp/x"}},
		{"enum", "fast", EnumOf("fast", "slow"), Value{Type: KindEnum, Str: "fast"}},
		{"url", "https://example.com/a", Simple(KindURL), Value{Type: KindURL, Str: "https://example.com/a"}},
		{"datetime", "2024-05-01T10:00:00Z", Simple(KindDateTime), Value{Type: KindDateTime, Time: ts}},
		{"pattern", "^a+$", Simple(KindPattern), Value{Type: KindPattern, Str: "^a+$"}},
		{"json string", `[1,2]`, Simple(KindJSONString), Value{Type: KindJSONString, Str: `[1,2]`}},
		{
			"object", `{"a":1}`, Simple(KindObject),
			Value{Type: KindObject, Object: map[string]any{"a": float64(1)}},
		},
		{
			"list of integers", "1,2,3", ListOf(Simple(KindInteger), 0),
			NewList(NewInteger(1), NewInteger(2), NewInteger(3)),
		},
		{
			"list with custom delimiter", "a;b", ListOf(Simple(KindString), ';'),
			NewList(NewString("a"), NewString("b")),
		},
		{"empty list", "", ListOf(Simple(KindInteger), 0), NewList()},
		{
			"map", "a=1,b=2", MapOf(Simple(KindString), Simple(KindInteger), 0, 0),
			NewMap(
				MapEntry{Key: NewString("a"), Value: NewInteger(1)},
				MapEntry{Key: NewString("b"), Value: NewInteger(2)},
			),
		},
		{
			"map with custom delimiters", "a:x;b:y", MapOf(Simple(KindString), Simple(KindString), ';', ':'),
			NewMap(
				MapEntry{Key: NewString("a"), Value: NewString("x")},
				MapEntry{Key: NewString("b"), Value: NewString("y")},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.raw, tt.kind)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "Coerce(%q, %s) = %s, want %s", tt.raw, tt.kind, got, tt.want)
		})
	}
}

func TestCoerceErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     Kind
		wantKind string
	}{
		{"integer", "abc", Simple(KindInteger), "Integer"},
		{"integer hex is not accepted", "0x10", Simple(KindInteger), "Integer"},
		{"float", "1,5", Simple(KindFloat), "Float"},
		{"boolean", "maybe", Simple(KindBoolean), "Boolean"},
		{"enum is case sensitive", "Fast", EnumOf("fast", "slow"), "Enum(fast,slow)"},
		{"url without scheme", "example.com", Simple(KindURL), "Url"},
		{"datetime", "yesterday", Simple(KindDateTime), "DateTime"},
		{"pattern", "(", Simple(KindPattern), "Pattern"},
		{"json", "{", Simple(KindJSONString), "JsonString"},
		{"object from array", "[1]", Simple(KindObject), "Object"},
		{"list element", "1,x,3", ListOf(Simple(KindInteger), 0), "Integer"},
		{"map entry", "a1", MapOf(Simple(KindString), Simple(KindInteger), 0, 0), "Map(String,Integer)"},
		{"empty path", " ", Simple(KindFile), "File"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.raw, tt.kind)
			require.Error(t, err)
			var ce *CoercionError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantKind, ce.Kind.String())
		})
	}
}

func TestCoerceAll(t *testing.T) {
	got, err := CoerceAll([]string{"1", "2"}, Simple(KindInteger))
	require.NoError(t, err)
	assert.True(t, NewList(NewInteger(1), NewInteger(2)).Equal(got))

	_, err = CoerceAll([]string{"1", "b"}, Simple(KindInteger))
	assert.Error(t, err)
}

func TestValueNative(t *testing.T) {
	v := NewList(NewInteger(1), NewString("a"))
	assert.Equal(t, []any{int64(1), "a"}, v.Native())

	m := NewMap(MapEntry{Key: NewString("k"), Value: NewBoolean(true)})
	assert.Equal(t, map[string]any{"k": true}, m.Native())
	assert.Equal(t, "{k=true}", m.String())
	assert.Equal(t, "[1, a]", v.String())
}
