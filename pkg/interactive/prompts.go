// Package interactive collects values for interactive arguments from a
// terminal and feeds them back into semantic analysis.
//
// An argument marked Interactive that has no value makes the analyzer fail
// with semantic.ErrInteractiveInputRequired. Resolver catches that error,
// asks an Asker for the value and analyzes the instruction again:
//
//	resolver := interactive.NewResolver(analyzer, registry, interactive.NewPrompter(nil))
//	cmds, err := resolver.Resolve(instructions)
//
// Prompter renders prompts with pterm: Enum arguments become a select list,
// Boolean arguments a confirmation and sensitive arguments a masked input.
package interactive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/types"
)

// ErrDisabled is returned by a Prompter that may not prompt.
var ErrDisabled = errors.New("interactive prompts disabled")

// Asker supplies the raw value of an argument.
type Asker interface {
	Ask(arg *command.ArgumentDefinition) (string, error)
}

// AskerFunc adapts a function to the Asker interface.
type AskerFunc func(arg *command.ArgumentDefinition) (string, error)

// Ask calls f(arg).
func (f AskerFunc) Ask(arg *command.ArgumentDefinition) (string, error) {
	return f(arg)
}

// PrompterConfig configures the Prompter.
type PrompterConfig struct {
	Output             io.Writer
	DisableColor       bool
	DisableInteractive bool
}

// Prompter asks for argument values on the terminal.
type Prompter struct {
	output io.Writer
	// DisableInteractive makes every prompt fail with ErrDisabled unless
	// the argument has a default.
	DisableInteractive bool
}

// NewPrompter creates a new Prompter. A nil config writes to stdout.
func NewPrompter(config *PrompterConfig) *Prompter {
	if config == nil {
		config = &PrompterConfig{}
	}
	out := config.Output
	if out == nil {
		out = os.Stdout
	}
	if config.DisableColor {
		pterm.DisableColor()
	}
	return &Prompter{
		output:             out,
		DisableInteractive: config.DisableInteractive,
	}
}

// Message builds the prompt text for arg.
func Message(arg *command.ArgumentDefinition) string {
	var sb strings.Builder
	sb.WriteString(arg.Name)
	if arg.Description != "" {
		sb.WriteString(" (")
		sb.WriteString(arg.Description)
		sb.WriteString(")")
	} else if arg.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(arg.Hint)
		sb.WriteString(")")
	}
	fmt.Fprintf(&sb, " <%s>", arg.Kind)
	return sb.String()
}

// Ask implements Asker.
func (p *Prompter) Ask(arg *command.ArgumentDefinition) (string, error) {
	if p.DisableInteractive {
		if arg.Attributes.Default != nil {
			return *arg.Attributes.Default, nil
		}
		return "", fmt.Errorf("argument '%s': %w", arg.Name, ErrDisabled)
	}

	message := Message(arg)
	switch {
	case arg.Kind.Type == types.KindEnum && len(arg.Kind.Choices) > 0:
		sel := pterm.DefaultInteractiveSelect.WithOptions(arg.Kind.Choices)
		if arg.Attributes.Default != nil {
			sel = sel.WithDefaultOption(*arg.Attributes.Default)
		}
		result, err := sel.Show(message)
		if err != nil {
			return "", fmt.Errorf("failed to read selection: %w", err)
		}
		return result, nil

	case arg.Kind.Type == types.KindBoolean:
		def := false
		if arg.Attributes.Default != nil {
			def, _ = strconv.ParseBool(*arg.Attributes.Default)
		}
		result, err := pterm.DefaultInteractiveConfirm.
			WithDefaultValue(def).
			Show(message)
		if err != nil {
			return "", fmt.Errorf("failed to read confirmation: %w", err)
		}
		return strconv.FormatBool(result), nil

	default:
		input := pterm.DefaultInteractiveTextInput.WithMultiLine(false)
		if arg.Attributes.Sensitive {
			input = input.WithMask("*")
		}
		result, err := input.Show(message)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(result), nil
	}
}

// Warn prints a retry message after a rejected value.
func (p *Prompter) Warn(err error) {
	fmt.Fprintln(p.output, pterm.Error.Sprint(err.Error()))
}
