// Package types defines argument kinds, typed values, coercion of raw
// strings into values, and validation rules applied to coerced values.
package types

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// KindType is the variant tag of a Kind.
type KindType int

const (
	KindString KindType = iota
	KindInteger
	KindFloat
	KindBoolean
	KindPath
	KindFile
	KindDirectory
	KindEnum
	KindURL
	KindDateTime
	KindPattern
	KindList
	KindMap
	KindJSONString
	KindObject
)

var kindNames = map[KindType]string{
	KindString:     "String",
	KindInteger:    "Integer",
	KindFloat:      "Float",
	KindBoolean:    "Boolean",
	KindPath:       "Path",
	KindFile:       "File",
	KindDirectory:  "Directory",
	KindEnum:       "Enum",
	KindURL:        "Url",
	KindDateTime:   "DateTime",
	KindPattern:    "Pattern",
	KindList:       "List",
	KindMap:        "Map",
	KindJSONString: "JsonString",
	KindObject:     "Object",
}

// kindsByName is keyed by lowercase name.
var kindsByName = func() map[string]KindType {
	m := make(map[string]KindType, len(kindNames))
	for t, name := range kindNames {
		m[strings.ToLower(name)] = t
	}
	return m
}()

// String returns the canonical variant name.
func (t KindType) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("KindType(%d)", int(t))
}

// Default delimiters for collection kinds.
const (
	DefaultListDelimiter  = ','
	DefaultEntryDelimiter = ','
	DefaultKVDelimiter    = '='
)

// Kind is the declared type of an argument value. Only the fields relevant
// to Type are set.
type Kind struct {
	Type KindType

	// Choices lists the accepted values of an Enum.
	Choices []string
	// Item is the element kind of a List.
	Item *Kind
	// Key and Value are the entry kinds of a Map.
	Key   *Kind
	Value *Kind
	// Delimiter separates List items. Zero means DefaultListDelimiter.
	Delimiter rune
	// EntryDelimiter and KVDelimiter split Map entries and key/value pairs.
	// Both are zero (defaults) or both are set.
	EntryDelimiter rune
	KVDelimiter    rune
}

// Simple returns a Kind without parameters.
func Simple(t KindType) Kind {
	return Kind{Type: t}
}

// EnumOf returns an Enum kind with the given choices.
func EnumOf(choices ...string) Kind {
	return Kind{Type: KindEnum, Choices: choices}
}

// ListOf returns a List kind. A zero delimiter selects the default.
func ListOf(item Kind, delimiter rune) Kind {
	return Kind{Type: KindList, Item: &item, Delimiter: delimiter}
}

// MapOf returns a Map kind. If only one delimiter is given the other takes
// its default so that the encoding stays unambiguous.
func MapOf(key, value Kind, entry, kv rune) Kind {
	if entry != 0 || kv != 0 {
		if entry == 0 {
			entry = DefaultEntryDelimiter
		}
		if kv == 0 {
			kv = DefaultKVDelimiter
		}
	}
	return Kind{Type: KindMap, Key: &key, Value: &value, EntryDelimiter: entry, KVDelimiter: kv}
}

// ListDelimiter returns the effective List delimiter.
func (k Kind) ListDelimiter() rune {
	if k.Delimiter == 0 {
		return DefaultListDelimiter
	}
	return k.Delimiter
}

// MapDelimiters returns the effective Map entry and key/value delimiters.
func (k Kind) MapDelimiters() (entry, kv rune) {
	entry, kv = k.EntryDelimiter, k.KVDelimiter
	if entry == 0 {
		entry = DefaultEntryDelimiter
	}
	if kv == 0 {
		kv = DefaultKVDelimiter
	}
	return entry, kv
}

// IsStringLike reports whether values of k carry their data in Value.Str.
func (k Kind) IsStringLike() bool {
	switch k.Type {
	case KindString, KindPath, KindFile, KindDirectory, KindEnum, KindURL, KindPattern, KindJSONString:
		return true
	}
	return false
}

// String returns the canonical encoding, e.g. "List(Integer,;)" or
// "Map(String,Integer,;,:)". ParseKind(k.String()) reproduces k.
func (k Kind) String() string {
	switch k.Type {
	case KindEnum:
		if len(k.Choices) == 1 && k.Choices[0] == "" {
			// "Enum()" has no choices; a blank body holds one empty choice.
			return "Enum( )"
		}
		quoted := make([]string, len(k.Choices))
		for i, c := range k.Choices {
			quoted[i] = escapeChoice(c)
		}
		return "Enum(" + strings.Join(quoted, ",") + ")"
	case KindList:
		item := "String"
		if k.Item != nil {
			item = k.Item.String()
		}
		if k.Delimiter != 0 {
			return fmt.Sprintf("List(%s,%c)", item, k.Delimiter)
		}
		return fmt.Sprintf("List(%s)", item)
	case KindMap:
		key, value := "String", "String"
		if k.Key != nil {
			key = k.Key.String()
		}
		if k.Value != nil {
			value = k.Value.String()
		}
		if k.EntryDelimiter != 0 || k.KVDelimiter != 0 {
			entry, kv := k.MapDelimiters()
			return fmt.Sprintf("Map(%s,%s,%c,%c)", key, value, entry, kv)
		}
		return fmt.Sprintf("Map(%s,%s)", key, value)
	default:
		return k.Type.String()
	}
}

// Equal reports whether two kinds describe the same type.
func (k Kind) Equal(o Kind) bool {
	if k.Type != o.Type {
		return false
	}
	switch k.Type {
	case KindEnum:
		if len(k.Choices) != len(o.Choices) {
			return false
		}
		for i := range k.Choices {
			if k.Choices[i] != o.Choices[i] {
				return false
			}
		}
		return true
	case KindList:
		return k.Delimiter == o.Delimiter && kindPtrEqual(k.Item, o.Item)
	case KindMap:
		return k.EntryDelimiter == o.EntryDelimiter && k.KVDelimiter == o.KVDelimiter &&
			kindPtrEqual(k.Key, o.Key) && kindPtrEqual(k.Value, o.Value)
	default:
		return true
	}
}

// kindPtrEqual compares element kinds. A nil element means String.
func kindPtrEqual(a, b *Kind) bool {
	return elemKind(a).Equal(elemKind(b))
}

func elemKind(k *Kind) Kind {
	if k == nil {
		return Simple(KindString)
	}
	return *k
}

// escapeChoice backslash-escapes the Enum delimiters and any leading or
// trailing whitespace, which the parser would otherwise trim.
func escapeChoice(c string) string {
	var b strings.Builder
	runes := []rune(c)
	for i, r := range runes {
		switch {
		case r == ',' || r == ')' || r == '\\':
			b.WriteRune('\\')
		case unicode.IsSpace(r) && (i == 0 || i == len(runes)-1):
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses the canonical kind encoding. Variant names are matched
// case-insensitively.
func ParseKind(s string) (Kind, error) {
	p := &kindParser{src: strings.TrimSpace(s)}
	k, err := p.parse()
	if err != nil {
		return Kind{}, fmt.Errorf("invalid kind %q: %w", s, err)
	}
	if p.pos != len(p.src) {
		return Kind{}, fmt.Errorf("invalid kind %q: unexpected %q at offset %d", s, p.src[p.pos:], p.pos)
	}
	return k, nil
}

// MustParseKind is like ParseKind but panics on error.
func MustParseKind(s string) Kind {
	k, err := ParseKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

type kindParser struct {
	src string
	pos int
}

func (p *kindParser) parse() (Kind, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsLetter(r) {
			break
		}
		p.pos += size
	}
	name := p.src[start:p.pos]
	if name == "" {
		return Kind{}, fmt.Errorf("expected kind name at offset %d", start)
	}
	t, ok := kindsByName[strings.ToLower(name)]
	if !ok {
		return Kind{}, fmt.Errorf("unknown kind %q", name)
	}

	switch t {
	case KindEnum:
		if err := p.expect('('); err != nil {
			return Kind{}, err
		}
		choices, err := p.enumChoices()
		if err != nil {
			return Kind{}, err
		}
		return EnumOf(choices...), nil

	case KindList:
		if err := p.expect('('); err != nil {
			return Kind{}, err
		}
		item, err := p.parse()
		if err != nil {
			return Kind{}, err
		}
		var delim rune
		if p.accept(',') {
			if delim, err = p.readRune(); err != nil {
				return Kind{}, err
			}
		}
		if err := p.expect(')'); err != nil {
			return Kind{}, err
		}
		return ListOf(item, delim), nil

	case KindMap:
		if err := p.expect('('); err != nil {
			return Kind{}, err
		}
		key, err := p.parse()
		if err != nil {
			return Kind{}, err
		}
		if err := p.expect(','); err != nil {
			return Kind{}, err
		}
		value, err := p.parse()
		if err != nil {
			return Kind{}, err
		}
		var entry, kv rune
		if p.accept(',') {
			if entry, err = p.readRune(); err != nil {
				return Kind{}, err
			}
			if err := p.expect(','); err != nil {
				return Kind{}, err
			}
			if kv, err = p.readRune(); err != nil {
				return Kind{}, err
			}
		}
		if err := p.expect(')'); err != nil {
			return Kind{}, err
		}
		return MapOf(key, value, entry, kv), nil

	default:
		return Simple(t), nil
	}
}

// enumChoices reads comma-separated choices up to the closing parenthesis.
// A backslash escapes the next rune. Unescaped whitespace around a choice is
// trimmed.
func (p *kindParser) enumChoices() ([]string, error) {
	var (
		choices []string
		cur     []rune
		// keep marks runes that must survive trimming.
		keep    []bool
		started bool
	)
	flush := func() {
		lo, hi := 0, len(cur)
		for lo < hi && !keep[lo] && unicode.IsSpace(cur[lo]) {
			lo++
		}
		for hi > lo && !keep[hi-1] && unicode.IsSpace(cur[hi-1]) {
			hi--
		}
		choices = append(choices, string(cur[lo:hi]))
		cur, keep = cur[:0], keep[:0]
	}
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
		switch r {
		case '\\':
			if p.pos >= len(p.src) {
				return nil, fmt.Errorf("dangling escape in Enum choices")
			}
			esc, n := utf8.DecodeRuneInString(p.src[p.pos:])
			p.pos += n
			cur, keep = append(cur, esc), append(keep, true)
			started = true
		case ',':
			flush()
			started = true
		case ')':
			if started || len(cur) > 0 {
				flush()
			}
			return choices, nil
		default:
			cur, keep = append(cur, r), append(keep, false)
			if !unicode.IsSpace(r) {
				started = true
			}
		}
	}
	return nil, fmt.Errorf("unterminated Enum choices")
}

func (p *kindParser) accept(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *kindParser) expect(c byte) error {
	if !p.accept(c) {
		return fmt.Errorf("expected %q at offset %d", c, p.pos)
	}
	return nil
}

func (p *kindParser) readRune() (rune, error) {
	if p.pos >= len(p.src) {
		return 0, fmt.Errorf("expected delimiter at offset %d", p.pos)
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r, nil
}
