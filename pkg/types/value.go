package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a typed argument value. Type selects which field holds the data:
// string-like kinds use Str, Integer uses Int, Float uses Float, Boolean uses
// Bool, DateTime uses Time, List uses List, Map uses Entries and Object uses
// Object.
type Value struct {
	Type    KindType
	Str     string
	Int     int64
	Float   float64
	Bool    bool
	Time    time.Time
	List    []Value
	Entries []MapEntry
	Object  map[string]any
}

// MapEntry is one key/value pair of a Map value, in input order.
type MapEntry struct {
	Key   Value
	Value Value
}

// NewString returns a String value.
func NewString(s string) Value { return Value{Type: KindString, Str: s} }

// NewInteger returns an Integer value.
func NewInteger(i int64) Value { return Value{Type: KindInteger, Int: i} }

// NewFloat returns a Float value.
func NewFloat(f float64) Value { return Value{Type: KindFloat, Float: f} }

// NewBoolean returns a Boolean value.
func NewBoolean(b bool) Value { return Value{Type: KindBoolean, Bool: b} }

// NewList returns a List value.
func NewList(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Type: KindList, List: items}
}

// NewMap returns a Map value.
func NewMap(entries ...MapEntry) Value {
	if entries == nil {
		entries = []MapEntry{}
	}
	return Value{Type: KindMap, Entries: entries}
}

// newStringLike returns a value of a string-like kind.
func newStringLike(t KindType, s string) Value {
	return Value{Type: t, Str: s}
}

// Native converts the value into plain Go data: string, int64, float64,
// bool, time.Time, []any or map[string]any.
func (v Value) Native() any {
	switch v.Type {
	case KindInteger:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBoolean:
		return v.Bool
	case KindDateTime:
		return v.Time
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Native()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Entries))
		for _, e := range v.Entries {
			out[e.Key.String()] = e.Value.Native()
		}
		return out
	case KindObject:
		return v.Object
	default:
		return v.Str
	}
}

// String renders the value as text.
func (v Value) String() string {
	switch v.Type {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindDateTime:
		return v.Time.Format(time.RFC3339Nano)
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, len(v.Entries))
		for i, e := range v.Entries {
			parts[i] = e.Key.String() + "=" + e.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindObject:
		data, err := json.Marshal(v.Object)
		if err != nil {
			return fmt.Sprintf("%v", v.Object)
		}
		return string(data)
	default:
		return v.Str
	}
}

// Equal reports whether two values have the same type and data.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case KindInteger:
		return v.Int == o.Int
	case KindFloat:
		return v.Float == o.Float
	case KindBoolean:
		return v.Bool == o.Bool
	case KindDateTime:
		return v.Time.Equal(o.Time)
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Entries) != len(o.Entries) {
			return false
		}
		for i := range v.Entries {
			if !v.Entries[i].Key.Equal(o.Entries[i].Key) || !v.Entries[i].Value.Equal(o.Entries[i].Value) {
				return false
			}
		}
		return true
	case KindObject:
		return v.String() == o.String()
	default:
		return v.Str == o.Str
	}
}

// Len returns the number of items of a List or Map, or the number of
// characters of a string-like value.
func (v Value) Len() int {
	switch v.Type {
	case KindList:
		return len(v.List)
	case KindMap:
		return len(v.Entries)
	case KindObject:
		return len(v.Object)
	default:
		return len([]rune(v.Str))
	}
}

// MarshalJSON encodes the native form of the value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// MarshalYAML encodes the native form of the value.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.Native(), nil
}
