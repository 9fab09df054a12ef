package parser

import (
	"sort"
	"strings"
)

// Argument is a raw argument value with its location in the input.
type Argument struct {
	Value  string `json:"value" yaml:"value"`
	Span   Span   `json:"span" yaml:"span"`
	Quoted bool   `json:"quoted,omitempty" yaml:"quoted,omitempty"`
}

// GenericInstruction is one parsed instruction, before any knowledge of the
// command it names. It is not modified after the parser returns it.
type GenericInstruction struct {
	CommandPathSlices   []string            `json:"command_path_slices" yaml:"command_path_slices"`
	PositionalArguments []Argument          `json:"positional_arguments" yaml:"positional_arguments"`
	NamedArguments      map[string]Argument `json:"named_arguments" yaml:"named_arguments"`
	HelpRequested       bool                `json:"help_requested" yaml:"help_requested"`
	// Span covers the tokens of this instruction.
	Span Span `json:"span" yaml:"span"`
}

func newInstruction() *GenericInstruction {
	return &GenericInstruction{
		CommandPathSlices:   []string{},
		PositionalArguments: []Argument{},
		NamedArguments:      make(map[string]Argument),
	}
}

// CommandName returns the dot-prefixed command name, e.g. ".math.add", or
// "" when the instruction has no command path.
func (g *GenericInstruction) CommandName() string {
	if len(g.CommandPathSlices) == 0 {
		return ""
	}
	return "." + strings.Join(g.CommandPathSlices, ".")
}

// NamedArgumentNames returns the named argument keys in sorted order.
func (g *GenericInstruction) NamedArgumentNames() []string {
	names := make([]string, 0, len(g.NamedArguments))
	for name := range g.NamedArguments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithNamedArgument returns a copy of g with name set to value. It is used to
// feed values collected out of band (e.g. interactive prompts) back into the
// pipeline without mutating the original instruction.
func (g *GenericInstruction) WithNamedArgument(name, value string) *GenericInstruction {
	c := &GenericInstruction{
		CommandPathSlices:   append([]string(nil), g.CommandPathSlices...),
		PositionalArguments: append([]Argument(nil), g.PositionalArguments...),
		NamedArguments:      make(map[string]Argument, len(g.NamedArguments)+1),
		HelpRequested:       g.HelpRequested,
		Span:                g.Span,
	}
	for k, v := range g.NamedArguments {
		c.NamedArguments[k] = v
	}
	c.NamedArguments[name] = Argument{Value: value, Span: Span{g.Span.End, g.Span.End}}
	return c
}
