package command

import (
	"fmt"

	"github.com/unilang/unilang/pkg/types"
)

// CommandBuilder assembles a CommandDefinition.
type CommandBuilder struct {
	def CommandDefinition
}

// NewCommand starts a definition for the command with the given name.
func NewCommand(name string) *CommandBuilder {
	return &CommandBuilder{def: CommandDefinition{Name: name, Status: StatusStable}}
}

// Namespace sets the namespace.
func (b *CommandBuilder) Namespace(ns string) *CommandBuilder {
	b.def.Namespace = ns
	return b
}

// Description sets the description.
func (b *CommandBuilder) Description(s string) *CommandBuilder {
	b.def.Description = s
	return b
}

// Hint sets the usage hint.
func (b *CommandBuilder) Hint(s string) *CommandBuilder {
	b.def.Hint = s
	return b
}

// Status sets the lifecycle status.
func (b *CommandBuilder) Status(s Status) *CommandBuilder {
	b.def.Status = s
	return b
}

// Version sets the version.
func (b *CommandBuilder) Version(v string) *CommandBuilder {
	b.def.Version = v
	return b
}

// Tags appends tags.
func (b *CommandBuilder) Tags(tags ...string) *CommandBuilder {
	b.def.Tags = append(b.def.Tags, tags...)
	return b
}

// Aliases appends aliases.
func (b *CommandBuilder) Aliases(aliases ...string) *CommandBuilder {
	b.def.Aliases = append(b.def.Aliases, aliases...)
	return b
}

// Permissions appends required permissions.
func (b *CommandBuilder) Permissions(perms ...string) *CommandBuilder {
	b.def.Permissions = append(b.def.Permissions, perms...)
	return b
}

// Idempotent marks the command as idempotent.
func (b *CommandBuilder) Idempotent(v bool) *CommandBuilder {
	b.def.Idempotent = v
	return b
}

// Deprecated marks the command as deprecated with the given message.
func (b *CommandBuilder) Deprecated(message string) *CommandBuilder {
	b.def.Status = StatusDeprecated
	b.def.DeprecationMessage = message
	return b
}

// HTTPMethodHint sets the HTTP method hint.
func (b *CommandBuilder) HTTPMethodHint(method string) *CommandBuilder {
	b.def.HTTPMethodHint = method
	return b
}

// Examples appends sample invocations.
func (b *CommandBuilder) Examples(examples ...string) *CommandBuilder {
	b.def.Examples = append(b.def.Examples, examples...)
	return b
}

// Argument appends an argument definition.
func (b *CommandBuilder) Argument(arg ArgumentDefinition) *CommandBuilder {
	b.def.Arguments = append(b.def.Arguments, arg)
	return b
}

// Build validates and returns the definition.
func (b *CommandBuilder) Build() (*CommandDefinition, error) {
	def := b.def.Clone()
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build command '%s': %w", def.Name, err)
	}
	return def, nil
}

// MustBuild is like Build but panics if the definition is invalid.
func (b *CommandBuilder) MustBuild() *CommandDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// ArgumentBuilder assembles an ArgumentDefinition.
type ArgumentBuilder struct {
	arg ArgumentDefinition
}

// NewArgument starts a definition for an argument of the given kind.
func NewArgument(name string, kind types.Kind) *ArgumentBuilder {
	return &ArgumentBuilder{arg: ArgumentDefinition{Name: name, Kind: kind}}
}

// Description sets the description.
func (b *ArgumentBuilder) Description(s string) *ArgumentBuilder {
	b.arg.Description = s
	return b
}

// Hint sets the usage hint.
func (b *ArgumentBuilder) Hint(s string) *ArgumentBuilder {
	b.arg.Hint = s
	return b
}

// Optional marks the argument as optional.
func (b *ArgumentBuilder) Optional() *ArgumentBuilder {
	b.arg.Attributes.Optional = true
	return b
}

// Multiple makes the argument collect every remaining positional value.
func (b *ArgumentBuilder) Multiple() *ArgumentBuilder {
	b.arg.Attributes.Multiple = true
	return b
}

// Default sets the raw default value. It implies Optional.
func (b *ArgumentBuilder) Default(raw string) *ArgumentBuilder {
	b.arg.Attributes.Default = &raw
	b.arg.Attributes.Optional = true
	return b
}

// Sensitive marks the value as sensitive.
func (b *ArgumentBuilder) Sensitive() *ArgumentBuilder {
	b.arg.Attributes.Sensitive = true
	return b
}

// Interactive marks the argument as requested interactively when omitted.
func (b *ArgumentBuilder) Interactive() *ArgumentBuilder {
	b.arg.Attributes.Interactive = true
	return b
}

// Rules appends validation rules.
func (b *ArgumentBuilder) Rules(rules ...types.ValidationRule) *ArgumentBuilder {
	b.arg.ValidationRules = append(b.arg.ValidationRules, rules...)
	return b
}

// Aliases appends alternative names.
func (b *ArgumentBuilder) Aliases(aliases ...string) *ArgumentBuilder {
	b.arg.Aliases = append(b.arg.Aliases, aliases...)
	return b
}

// Tags appends tags.
func (b *ArgumentBuilder) Tags(tags ...string) *ArgumentBuilder {
	b.arg.Tags = append(b.arg.Tags, tags...)
	return b
}

// Build returns the argument definition. Arguments are validated as part of
// their command.
func (b *ArgumentBuilder) Build() ArgumentDefinition {
	return b.arg.clone()
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
