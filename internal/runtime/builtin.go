package runtime

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/manifest"
	"github.com/unilang/unilang/pkg/registry"
)

//go:embed builtin.yaml
var builtinManifest []byte

var errDivisionByZero = errors.New("division by zero")

// builtinStatic builds the static map over the embedded manifest.
func builtinStatic() (*registry.StaticMap, error) {
	defs, err := manifest.Load(builtinManifest, manifest.FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin commands: %w", err)
	}
	return registry.NewStaticMap(defs)
}

// bindBuiltins attaches routines to the builtin commands.
func (rt *Runtime) bindBuiltins() error {
	routines := map[string]command.RoutineFunc{
		".math.add": func(_ context.Context, cmd *command.VerifiedCommand) (any, error) {
			var sum int64
			for _, v := range cmd.Arguments["numbers"].List {
				sum += v.Int
			}
			return sum, nil
		},
		".math.div": func(_ context.Context, cmd *command.VerifiedCommand) (any, error) {
			divisor := cmd.Arguments["divisor"].Float
			if divisor == 0 {
				return nil, errDivisionByZero
			}
			return cmd.Arguments["dividend"].Float / divisor, nil
		},
		".text.echo": func(_ context.Context, cmd *command.VerifiedCommand) (any, error) {
			words, ok := cmd.Argument("words")
			if !ok {
				return "", nil
			}
			parts := make([]string, len(words.List))
			for i, w := range words.List {
				parts[i] = w.Str
			}
			return strings.Join(parts, " "), nil
		},
		".text.upper": upper,
		".text.shout": upper,
		".session.login": func(_ context.Context, cmd *command.VerifiedCommand) (any, error) {
			return fmt.Sprintf("session opened for %s (%d minutes)",
				cmd.Arguments["user"].Str, cmd.Arguments["ttl"].Int), nil
		},
		".registry.unregister": func(_ context.Context, cmd *command.VerifiedCommand) (any, error) {
			name := cmd.Arguments["name"].Str
			if err := rt.registry.Unregister(name); err != nil {
				return nil, err
			}
			return "unregistered " + name, nil
		},
		".version": func(context.Context, *command.VerifiedCommand) (any, error) {
			return rt.version, nil
		},
	}
	for name, fn := range routines {
		if err := rt.registry.BindRoutine(name, fn); err != nil {
			return fmt.Errorf("failed to bind builtin '%s': %w", name, err)
		}
	}
	return nil
}

func upper(_ context.Context, cmd *command.VerifiedCommand) (any, error) {
	return strings.ToUpper(cmd.Arguments["text"].Str), nil
}
