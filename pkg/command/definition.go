// Package command defines command and argument definitions, the builders
// that validate them at construction time, and the VerifiedCommand produced
// by semantic analysis.
//
// A CommandDefinition can only be obtained in a valid state: Build returns
// an error and MustBuild panics for definitions whose name or namespace is
// malformed. Registries re-run the same Validate routine on every insertion
// path so definitions assembled by hand are held to the same rules.
package command

import (
	"github.com/unilang/unilang/pkg/types"
)

// Status describes the lifecycle stage of a command.
type Status string

const (
	// StatusStable is the default status.
	StatusStable Status = "stable"

	// StatusBeta marks commands whose interface may still change.
	StatusBeta Status = "beta"

	// StatusExperimental marks commands that may be removed without notice.
	StatusExperimental Status = "experimental"

	// StatusDeprecated marks commands scheduled for removal.
	StatusDeprecated Status = "deprecated"
)

// CommandDefinition describes a command that can be resolved by the
// semantic analyzer.
type CommandDefinition struct {
	// Name is the command name. It must start with a dot, e.g. ".add".
	Name string `yaml:"name" json:"name"`

	// Namespace groups commands, e.g. ".math". Empty or dot-prefixed.
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`

	// Description is a human-readable description.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Hint is a short usage hint shown in listings.
	Hint string `yaml:"hint,omitempty" json:"hint,omitempty"`

	// Status is the lifecycle stage of the command.
	Status Status `yaml:"status,omitempty" json:"status,omitempty"`

	// Version is the version the command was introduced or last changed in.
	Version string `yaml:"version,omitempty" json:"version,omitempty"`

	// Tags are free-form labels used for grouping.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// Aliases are alternative names that resolve to this command. An alias
	// without a dot prefix is qualified with the namespace.
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// Permissions lists capabilities the routine requires.
	Permissions []string `yaml:"permissions,omitempty" json:"permissions,omitempty"`

	// Idempotent reports whether repeated execution has no further effect.
	Idempotent bool `yaml:"idempotent,omitempty" json:"idempotent,omitempty"`

	// DeprecationMessage is shown when a deprecated command is used.
	DeprecationMessage string `yaml:"deprecation_message,omitempty" json:"deprecation_message,omitempty"`

	// HTTPMethodHint suggests an HTTP verb for web front-ends.
	HTTPMethodHint string `yaml:"http_method_hint,omitempty" json:"http_method_hint,omitempty"`

	// Examples are sample invocations.
	Examples []string `yaml:"examples,omitempty" json:"examples,omitempty"`

	// Arguments are the declared parameters in positional binding order.
	Arguments []ArgumentDefinition `yaml:"arguments,omitempty" json:"arguments,omitempty"`
}

// ArgumentAttributes control how an argument is bound.
type ArgumentAttributes struct {
	// Optional arguments may be omitted.
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`

	// Multiple arguments collect every remaining positional value into a List.
	Multiple bool `yaml:"multiple,omitempty" json:"multiple,omitempty"`

	// Default is the raw value used when the argument is omitted.
	Default *string `yaml:"default,omitempty" json:"default,omitempty"`

	// Sensitive values are masked in output.
	Sensitive bool `yaml:"sensitive,omitempty" json:"sensitive,omitempty"`

	// Interactive arguments are requested from the user when omitted.
	Interactive bool `yaml:"interactive,omitempty" json:"interactive,omitempty"`
}

// ArgumentDefinition describes one parameter of a command.
type ArgumentDefinition struct {
	Name            string                 `yaml:"name" json:"name"`
	Description     string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Kind            types.Kind             `yaml:"kind" json:"kind"`
	Attributes      ArgumentAttributes     `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	ValidationRules []types.ValidationRule `yaml:"validation_rules,omitempty" json:"validation_rules,omitempty"`
	Hint            string                 `yaml:"hint,omitempty" json:"hint,omitempty"`
	Aliases         []string               `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Tags            []string               `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Clone returns a copy that shares no slices or defaults with d.
func (d *CommandDefinition) Clone() *CommandDefinition {
	c := *d
	c.Tags = cloneStrings(d.Tags)
	c.Aliases = cloneStrings(d.Aliases)
	c.Permissions = cloneStrings(d.Permissions)
	c.Examples = cloneStrings(d.Examples)
	if d.Arguments != nil {
		c.Arguments = make([]ArgumentDefinition, len(d.Arguments))
		for i, arg := range d.Arguments {
			c.Arguments[i] = arg.clone()
		}
	}
	return &c
}

func (a ArgumentDefinition) clone() ArgumentDefinition {
	a.Aliases = cloneStrings(a.Aliases)
	a.Tags = cloneStrings(a.Tags)
	if a.ValidationRules != nil {
		a.ValidationRules = append([]types.ValidationRule(nil), a.ValidationRules...)
	}
	if a.Attributes.Default != nil {
		v := *a.Attributes.Default
		a.Attributes.Default = &v
	}
	return a
}

// FullName returns the fully qualified name of the command.
func (d *CommandDefinition) FullName() string {
	return FullName(d.Namespace, d.Name)
}

// AliasNames returns the fully qualified form of every alias.
func (d *CommandDefinition) AliasNames() []string {
	names := make([]string, 0, len(d.Aliases))
	for _, alias := range d.Aliases {
		names = append(names, FullName(d.Namespace, alias))
	}
	return names
}

// Argument returns the argument whose name or alias matches name.
func (d *CommandDefinition) Argument(name string) (*ArgumentDefinition, bool) {
	for i := range d.Arguments {
		if d.Arguments[i].Matches(name) {
			return &d.Arguments[i], true
		}
	}
	return nil, false
}

// IsDeprecated reports whether the command is deprecated.
func (d *CommandDefinition) IsDeprecated() bool {
	return d.Status == StatusDeprecated || d.DeprecationMessage != ""
}

// Matches reports whether name is the argument name or one of its aliases.
func (a *ArgumentDefinition) Matches(name string) bool {
	if a.Name == name {
		return true
	}
	for _, alias := range a.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// Required reports whether the argument must be supplied by the caller.
func (a *ArgumentDefinition) Required() bool {
	return !a.Attributes.Optional && a.Attributes.Default == nil
}
