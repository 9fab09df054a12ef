package command

import (
	"fmt"
	"strings"

	"github.com/unilang/unilang/pkg/types"
)

// ValidationError describes one invalid field of a definition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid command definition:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Has reports whether any error concerns field.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate checks the definition and returns ValidationErrors describing
// every problem found, or nil.
func (d *CommandDefinition) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case d.Name == "":
		add("name", "command name cannot be empty")
	case !strings.HasPrefix(d.Name, "."):
		add("name", "command name '%s' must have a dot prefix, e.g. '.%s'", d.Name, d.Name)
	case !validDotted(d.Name):
		add("name", "command name '%s' must be dot-separated identifiers", d.Name)
	}

	if d.Namespace != "" {
		if !strings.HasPrefix(d.Namespace, ".") {
			add("namespace", "namespace '%s' must be empty or have a dot prefix, e.g. '.%s'", d.Namespace, d.Namespace)
		} else if !validDotted(d.Namespace) {
			add("namespace", "namespace '%s' must be dot-separated identifiers", d.Namespace)
		}
	}

	switch d.Status {
	case "", StatusStable, StatusBeta, StatusExperimental, StatusDeprecated:
	default:
		add("status", "unknown status '%s' (must be stable, beta, experimental, or deprecated)", d.Status)
	}

	full := d.FullName()
	seenAliases := make(map[string]bool)
	for i, alias := range d.Aliases {
		field := fmt.Sprintf("aliases[%d]", i)
		qualified := FullName(d.Namespace, alias)
		switch {
		case alias == "":
			add(field, "alias cannot be empty")
		case !validDotted(qualified):
			add(field, "alias '%s' must be dot-separated identifiers", alias)
		case qualified == full:
			add(field, "alias '%s' duplicates the command name", alias)
		case seenAliases[qualified]:
			add(field, "duplicate alias '%s'", alias)
		}
		seenAliases[qualified] = true
	}

	seenArgs := make(map[string]string)
	for i := range d.Arguments {
		arg := &d.Arguments[i]
		field := fmt.Sprintf("arguments[%d]", i)
		if arg.Name == "" {
			add(field+".name", "argument name cannot be empty")
			continue
		}
		names := append([]string{arg.Name}, arg.Aliases...)
		for _, n := range names {
			if strings.ContainsAny(n, " \t\n:?;\"") {
				add(field+".name", "argument name '%s' contains invalid characters", n)
				continue
			}
			if owner, dup := seenArgs[n]; dup {
				add(field+".name", "argument name '%s' is already used by argument '%s'", n, owner)
				continue
			}
			seenArgs[n] = arg.Name
		}

		if arg.Attributes.Default != nil {
			if _, err := arg.DefaultValue(); err != nil {
				add(field+".attributes.default", "default for '%s' is invalid: %v", arg.Name, err)
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DefaultValue coerces the raw default of the argument. Arguments with
// Multiple set and a non-List kind yield a single-item List.
func (a *ArgumentDefinition) DefaultValue() (types.Value, error) {
	if a.Attributes.Default == nil {
		return types.Value{}, fmt.Errorf("argument '%s' has no default", a.Name)
	}
	if a.Attributes.Multiple && a.Kind.Type != types.KindList {
		return types.CoerceAll([]string{*a.Attributes.Default}, a.Kind)
	}
	return types.Coerce(*a.Attributes.Default, a.Kind)
}
