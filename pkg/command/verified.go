package command

import (
	"context"
	"sort"

	"github.com/unilang/unilang/pkg/types"
)

// VerifiedCommand is a resolved, coerced and validated instruction ready for
// execution.
type VerifiedCommand struct {
	// Name is the fully qualified name of the resolved command.
	Name string `yaml:"name" json:"name"`

	// Definition is the definition the instruction resolved to.
	Definition *CommandDefinition `yaml:"-" json:"-"`

	// Arguments maps argument names to coerced values.
	Arguments map[string]types.Value `yaml:"arguments" json:"arguments"`
}

// Argument returns the value bound to name.
func (v *VerifiedCommand) Argument(name string) (types.Value, bool) {
	val, ok := v.Arguments[name]
	return val, ok
}

// ArgumentNames returns the bound argument names in sorted order.
func (v *VerifiedCommand) ArgumentNames() []string {
	names := make([]string, 0, len(v.Arguments))
	for name := range v.Arguments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Routine executes a verified command. The registry stores routines but
// never invokes them.
type Routine interface {
	Run(ctx context.Context, cmd *VerifiedCommand) (any, error)
}

// RoutineFunc adapts a function to the Routine interface.
type RoutineFunc func(ctx context.Context, cmd *VerifiedCommand) (any, error)

// Run calls f(ctx, cmd).
func (f RoutineFunc) Run(ctx context.Context, cmd *VerifiedCommand) (any, error) {
	return f(ctx, cmd)
}
