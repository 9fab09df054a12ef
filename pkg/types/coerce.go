package types

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// CoercionError reports a raw string that does not parse as its kind.
type CoercionError struct {
	Kind   Kind
	Raw    string
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("expected %s but got %q: %s", e.Kind, e.Raw, e.Reason)
}

func coercionError(kind Kind, raw, format string, args ...any) *CoercionError {
	return &CoercionError{Kind: kind, Raw: raw, Reason: fmt.Sprintf(format, args...)}
}

// Coerce converts a raw argument string into a Value of the given kind.
// Numeric parsing is locale independent and base 10.
func Coerce(raw string, kind Kind) (Value, error) {
	switch kind.Type {
	case KindString:
		return NewString(raw), nil

	case KindInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, coercionError(kind, raw, "not a valid integer")
		}
		return NewInteger(i), nil

	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, coercionError(kind, raw, "not a valid number")
		}
		return NewFloat(f), nil

	case KindBoolean:
		b, err := parseBool(raw)
		if err != nil {
			return Value{}, coercionError(kind, raw, "not a valid boolean")
		}
		return NewBoolean(b), nil

	case KindPath, KindFile, KindDirectory:
		if strings.TrimSpace(raw) == "" {
			return Value{}, coercionError(kind, raw, "path must not be empty")
		}
		return newStringLike(kind.Type, raw), nil

	case KindEnum:
		for _, choice := range kind.Choices {
			if raw == choice {
				return newStringLike(KindEnum, raw), nil
			}
		}
		return Value{}, coercionError(kind, raw, "must be one of [%s]", strings.Join(kind.Choices, ", "))

	case KindURL:
		u, err := url.Parse(raw)
		if err != nil {
			return Value{}, coercionError(kind, raw, "%v", err)
		}
		if u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
			return Value{}, coercionError(kind, raw, "URL must have a scheme and a host")
		}
		return newStringLike(KindURL, raw), nil

	case KindDateTime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Value{}, coercionError(kind, raw, "expected an RFC 3339 timestamp")
		}
		return Value{Type: KindDateTime, Time: t}, nil

	case KindPattern:
		if _, err := regexp.Compile(raw); err != nil {
			return Value{}, coercionError(kind, raw, "invalid regular expression: %v", err)
		}
		return newStringLike(KindPattern, raw), nil

	case KindJSONString:
		if !json.Valid([]byte(raw)) {
			return Value{}, coercionError(kind, raw, "invalid JSON")
		}
		return newStringLike(KindJSONString, raw), nil

	case KindObject:
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
			return Value{}, coercionError(kind, raw, "expected a JSON object")
		}
		return Value{Type: KindObject, Object: obj}, nil

	case KindList:
		return coerceList(raw, kind)

	case KindMap:
		return coerceMap(raw, kind)

	default:
		return Value{}, coercionError(kind, raw, "unsupported kind")
	}
}

// CoerceAll converts several raw strings into a List value whose items have
// the given kind. It is used for arguments that accept multiple values.
func CoerceAll(raws []string, item Kind) (Value, error) {
	items := make([]Value, 0, len(raws))
	for _, raw := range raws {
		v, err := Coerce(raw, item)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return NewList(items...), nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return cast.ToBoolE(strings.TrimSpace(raw))
}

func coerceList(raw string, kind Kind) (Value, error) {
	item := Simple(KindString)
	if kind.Item != nil {
		item = *kind.Item
	}
	if raw == "" {
		return NewList(), nil
	}

	parts := strings.Split(raw, string(kind.ListDelimiter()))
	items := make([]Value, 0, len(parts))
	for _, part := range parts {
		v, err := Coerce(strings.TrimSpace(part), item)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return NewList(items...), nil
}

func coerceMap(raw string, kind Kind) (Value, error) {
	keyKind, valueKind := Simple(KindString), Simple(KindString)
	if kind.Key != nil {
		keyKind = *kind.Key
	}
	if kind.Value != nil {
		valueKind = *kind.Value
	}
	if raw == "" {
		return NewMap(), nil
	}

	entryDelim, kvDelim := kind.MapDelimiters()
	parts := strings.Split(raw, string(entryDelim))
	entries := make([]MapEntry, 0, len(parts))
	for _, part := range parts {
		k, v, ok := strings.Cut(part, string(kvDelim))
		if !ok {
			return Value{}, coercionError(kind, raw, "entry %q is missing the %q separator", part, kvDelim)
		}
		key, err := Coerce(strings.TrimSpace(k), keyKind)
		if err != nil {
			return Value{}, err
		}
		value, err := Coerce(strings.TrimSpace(v), valueKind)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, MapEntry{Key: key, Value: value})
	}
	return NewMap(entries...), nil
}
