// Package help renders usage text for command definitions.
package help

import (
	"fmt"
	"strings"

	"github.com/unilang/unilang/pkg/command"
)

// Usage returns the one-line synopsis of a command, e.g.
// ".math.add numbers::<List(Integer)> [precision::<Integer>]".
func Usage(def *command.CommandDefinition) string {
	parts := []string{def.FullName()}
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		part := fmt.Sprintf("%s::<%s>", arg.Name, arg.Kind)
		if arg.Attributes.Multiple {
			part += "..."
		}
		if !arg.Required() {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// Command returns the full help text of a command.
func Command(def *command.CommandDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Usage: %s\n", Usage(def))
	if def.Description != "" {
		fmt.Fprintf(&b, "\n  %s\n", def.Description)
	}
	if def.Hint != "" {
		fmt.Fprintf(&b, "  Hint: %s\n", def.Hint)
	}
	if def.IsDeprecated() {
		msg := def.DeprecationMessage
		if msg == "" {
			msg = "this command is deprecated"
		}
		fmt.Fprintf(&b, "\n  DEPRECATED: %s\n", msg)
	}

	var meta []string
	if def.Status != "" {
		meta = append(meta, "Status: "+string(def.Status))
	}
	if def.Version != "" {
		meta = append(meta, "Version: "+def.Version)
	}
	if def.Idempotent {
		meta = append(meta, "Idempotent")
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "\n%s\n", strings.Join(meta, "  "))
	}
	if aliases := def.AliasNames(); len(aliases) > 0 {
		fmt.Fprintf(&b, "Aliases: %s\n", strings.Join(aliases, ", "))
	}
	if len(def.Permissions) > 0 {
		fmt.Fprintf(&b, "Permissions: %s\n", strings.Join(def.Permissions, ", "))
	}

	if len(def.Arguments) > 0 {
		b.WriteString("\nArguments:\n")
		width := 0
		for _, arg := range def.Arguments {
			if len(arg.Name) > width {
				width = len(arg.Name)
			}
		}
		for i := range def.Arguments {
			writeArgument(&b, &def.Arguments[i], width)
		}
	}

	if len(def.Examples) > 0 {
		b.WriteString("\nExamples:\n")
		for _, ex := range def.Examples {
			fmt.Fprintf(&b, "  %s\n", ex)
		}
	}
	return b.String()
}

func writeArgument(b *strings.Builder, arg *command.ArgumentDefinition, width int) {
	var attrs []string
	attrs = append(attrs, arg.Kind.String())
	if arg.Required() {
		attrs = append(attrs, "required")
	} else {
		attrs = append(attrs, "optional")
	}
	if arg.Attributes.Multiple {
		attrs = append(attrs, "multiple")
	}
	if arg.Attributes.Sensitive {
		attrs = append(attrs, "sensitive")
	}
	if arg.Attributes.Interactive {
		attrs = append(attrs, "interactive")
	}
	if arg.Attributes.Default != nil && !arg.Attributes.Sensitive {
		attrs = append(attrs, fmt.Sprintf("default: %s", *arg.Attributes.Default))
	}

	fmt.Fprintf(b, "  %-*s  (%s)", width, arg.Name, strings.Join(attrs, ", "))
	if arg.Description != "" {
		fmt.Fprintf(b, "  %s", arg.Description)
	}
	b.WriteString("\n")

	if len(arg.Aliases) > 0 {
		fmt.Fprintf(b, "  %-*s  aliases: %s\n", width, "", strings.Join(arg.Aliases, ", "))
	}
	if len(arg.ValidationRules) > 0 {
		rules := make([]string, len(arg.ValidationRules))
		for i, r := range arg.ValidationRules {
			rules[i] = r.String()
		}
		fmt.Fprintf(b, "  %-*s  rules: %s\n", width, "", strings.Join(rules, ", "))
	}
	if arg.Hint != "" {
		fmt.Fprintf(b, "  %-*s  hint: %s\n", width, "", arg.Hint)
	}
}

// Summary returns one line per command with its usage hint or description.
func Summary(defs []*command.CommandDefinition) string {
	width := 0
	for _, def := range defs {
		if n := len(def.FullName()); n > width {
			width = n
		}
	}

	var b strings.Builder
	for _, def := range defs {
		text := def.Hint
		if text == "" {
			text = def.Description
		}
		fmt.Fprintf(&b, "  %-*s  %s\n", width, def.FullName(), text)
	}
	return b.String()
}
