package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RuleType names a validation rule.
type RuleType string

const (
	RuleMin       RuleType = "min"
	RuleMax       RuleType = "max"
	RuleMinLength RuleType = "min_length"
	RuleMaxLength RuleType = "max_length"
	RulePattern   RuleType = "regex"
	RuleMinItems  RuleType = "min_items"
	RuleMaxItems  RuleType = "max_items"
	RuleExpr      RuleType = "expr"
)

// ruleAliases maps accepted spellings onto canonical rule types.
var ruleAliases = map[string]RuleType{
	"min":        RuleMin,
	"max":        RuleMax,
	"min_length": RuleMinLength,
	"minlength":  RuleMinLength,
	"max_length": RuleMaxLength,
	"maxlength":  RuleMaxLength,
	"regex":      RulePattern,
	"pattern":    RulePattern,
	"min_items":  RuleMinItems,
	"minitems":   RuleMinItems,
	"max_items":  RuleMaxItems,
	"maxitems":   RuleMaxItems,
	"expr":       RuleExpr,
}

// ValidationRule is a constraint checked against a coerced value. Build
// rules with the constructors or ParseValidationRule; the zero value is not
// a usable rule.
type ValidationRule struct {
	Type RuleType
	// Bound is the limit of Min and Max.
	Bound float64
	// Count is the limit of the length and item rules.
	Count int
	// Source is the regular expression or expression text.
	Source string

	regex   *regexp.Regexp
	program *vm.Program
}

// Min requires a numeric value >= bound.
func Min(bound float64) ValidationRule { return ValidationRule{Type: RuleMin, Bound: bound} }

// Max requires a numeric value <= bound.
func Max(bound float64) ValidationRule { return ValidationRule{Type: RuleMax, Bound: bound} }

// MinLength requires at least n characters (or items for lists).
func MinLength(n int) ValidationRule { return ValidationRule{Type: RuleMinLength, Count: n} }

// MaxLength requires at most n characters (or items for lists).
func MaxLength(n int) ValidationRule { return ValidationRule{Type: RuleMaxLength, Count: n} }

// MinItems requires a List or Map with at least n items.
func MinItems(n int) ValidationRule { return ValidationRule{Type: RuleMinItems, Count: n} }

// MaxItems requires a List or Map with at most n items.
func MaxItems(n int) ValidationRule { return ValidationRule{Type: RuleMaxItems, Count: n} }

// Pattern requires a string-like value matching the regular expression.
func Pattern(re string) (ValidationRule, error) {
	compiled, err := regexp.Compile(re)
	if err != nil {
		return ValidationRule{}, fmt.Errorf("invalid regex rule %q: %w", re, err)
	}
	return ValidationRule{Type: RulePattern, Source: re, regex: compiled}, nil
}

// Expr requires the boolean expression to evaluate to true with the native
// value bound to the variable "value", e.g. "value % 2 == 0".
func Expr(code string) (ValidationRule, error) {
	program, err := expr.Compile(code, expr.AsBool())
	if err != nil {
		return ValidationRule{}, fmt.Errorf("failed to compile expr rule %q: %w", code, err)
	}
	return ValidationRule{Type: RuleExpr, Source: code, program: program}, nil
}

// ParseValidationRule parses the "name:argument" encoding used in
// manifests, e.g. "min:1", "regex:^[a-z]+$" or "min_items:2".
func ParseValidationRule(s string) (ValidationRule, error) {
	name, arg, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ValidationRule{}, fmt.Errorf("invalid validation rule %q: expected name:argument", s)
	}
	ruleType, known := ruleAliases[strings.ToLower(strings.TrimSpace(name))]
	if !known {
		return ValidationRule{}, fmt.Errorf("unknown validation rule %q", name)
	}

	switch ruleType {
	case RuleMin, RuleMax:
		bound, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return ValidationRule{}, fmt.Errorf("invalid %s bound %q: %w", ruleType, arg, err)
		}
		return ValidationRule{Type: ruleType, Bound: bound}, nil
	case RuleMinLength, RuleMaxLength, RuleMinItems, RuleMaxItems:
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n < 0 {
			return ValidationRule{}, fmt.Errorf("invalid %s count %q", ruleType, arg)
		}
		return ValidationRule{Type: ruleType, Count: n}, nil
	case RulePattern:
		return Pattern(arg)
	default:
		return Expr(arg)
	}
}

// MustParseValidationRule is like ParseValidationRule but panics on error.
func MustParseValidationRule(s string) ValidationRule {
	rule, err := ParseValidationRule(s)
	if err != nil {
		panic(err)
	}
	return rule
}

// String returns the "name:argument" encoding of the rule.
func (r ValidationRule) String() string {
	switch r.Type {
	case RuleMin, RuleMax:
		return string(r.Type) + ":" + strconv.FormatFloat(r.Bound, 'g', -1, 64)
	case RuleMinLength, RuleMaxLength, RuleMinItems, RuleMaxItems:
		return string(r.Type) + ":" + strconv.Itoa(r.Count)
	default:
		return string(r.Type) + ":" + r.Source
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r ValidationRule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ValidationRule) UnmarshalText(text []byte) error {
	parsed, err := ParseValidationRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RuleViolation is returned by Check when a value breaks a rule.
type RuleViolation struct {
	Rule   ValidationRule
	Value  Value
	Reason string
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("rule '%s' failed for value %s: %s", e.Rule, e.Value, e.Reason)
}

func (r ValidationRule) violation(v Value, format string, args ...any) *RuleViolation {
	return &RuleViolation{Rule: r, Value: v, Reason: fmt.Sprintf(format, args...)}
}

// Check applies the rule to v and returns a *RuleViolation on failure.
func (r ValidationRule) Check(v Value) error {
	switch r.Type {
	case RuleMin, RuleMax:
		var n float64
		switch v.Type {
		case KindInteger:
			n = float64(v.Int)
		case KindFloat:
			n = v.Float
		default:
			return r.violation(v, "rule applies only to numeric values, not %s", v.Type)
		}
		if r.Type == RuleMin && n < r.Bound {
			return r.violation(v, "must be at least %g", r.Bound)
		}
		if r.Type == RuleMax && n > r.Bound {
			return r.violation(v, "must be at most %g", r.Bound)
		}
		return nil

	case RuleMinLength, RuleMaxLength:
		if v.Type != KindList && !Simple(v.Type).IsStringLike() {
			return r.violation(v, "rule applies only to strings and lists, not %s", v.Type)
		}
		n := v.Len()
		if r.Type == RuleMinLength && n < r.Count {
			return r.violation(v, "length %d is less than %d", n, r.Count)
		}
		if r.Type == RuleMaxLength && n > r.Count {
			return r.violation(v, "length %d is greater than %d", n, r.Count)
		}
		return nil

	case RuleMinItems, RuleMaxItems:
		if v.Type != KindList && v.Type != KindMap {
			return r.violation(v, "rule applies only to lists and maps, not %s", v.Type)
		}
		n := v.Len()
		if r.Type == RuleMinItems && n < r.Count {
			return r.violation(v, "has %d items, at least %d required", n, r.Count)
		}
		if r.Type == RuleMaxItems && n > r.Count {
			return r.violation(v, "has %d items, at most %d allowed", n, r.Count)
		}
		return nil

	case RulePattern:
		if !Simple(v.Type).IsStringLike() {
			return r.violation(v, "rule applies only to strings, not %s", v.Type)
		}
		if r.regex == nil {
			compiled, err := regexp.Compile(r.Source)
			if err != nil {
				return r.violation(v, "invalid regex: %v", err)
			}
			r.regex = compiled
		}
		if !r.regex.MatchString(v.Str) {
			return r.violation(v, "does not match /%s/", r.Source)
		}
		return nil

	case RuleExpr:
		program := r.program
		if program == nil {
			compiled, err := expr.Compile(r.Source, expr.AsBool())
			if err != nil {
				return r.violation(v, "invalid expression: %v", err)
			}
			program = compiled
		}
		out, err := expr.Run(program, map[string]any{"value": v.Native()})
		if err != nil {
			return r.violation(v, "failed to evaluate expression: %v", err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return r.violation(v, "expression did not evaluate to boolean: %v", out)
		}
		if !ok {
			return r.violation(v, "expression %q is false", r.Source)
		}
		return nil

	default:
		return r.violation(v, "unknown rule type %q", r.Type)
	}
}
