// Package executor runs the routines bound to verified commands.
//
// The registry stores routines without ever calling them; the executor is the
// single place where they run. Commands run in order and execution stops at
// the first failure.
package executor

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/unilang/unilang/pkg/command"
)

// RoutineSource returns the routine bound to a command.
type RoutineSource interface {
	Routine(name string) (command.Routine, bool)
}

// Result is the outcome of one command.
type Result struct {
	Command string `json:"command" yaml:"command"`
	Value   any    `json:"value" yaml:"value"`
	// Skipped is true when the user declined a confirmation prompt.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// Confirm asks before destructive commands. Nil uses
	// ShowConfirmationPrompt.
	Confirm ConfirmFunc
	// AssumeYes skips every confirmation prompt.
	AssumeYes bool
	Logger    *pterm.Logger
}

// Executor runs verified commands.
type Executor struct {
	routines  RoutineSource
	confirm   ConfirmFunc
	assumeYes bool
	logger    *pterm.Logger
}

// NewExecutor creates an executor over routines.
func NewExecutor(routines RoutineSource, config *ExecutorConfig) *Executor {
	if config == nil {
		config = &ExecutorConfig{}
	}
	e := &Executor{
		routines:  routines,
		confirm:   config.Confirm,
		assumeYes: config.AssumeYes,
		logger:    config.Logger,
	}
	if e.confirm == nil {
		e.confirm = ShowConfirmationPrompt
	}
	if e.logger == nil {
		e.logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return e
}

// Execute runs cmds in order and returns one result per command run.
func (e *Executor) Execute(ctx context.Context, cmds []*command.VerifiedCommand) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		routine, ok := e.routines.Routine(cmd.Name)
		if !ok {
			return results, fmt.Errorf("no routine bound to '%s'", cmd.Name)
		}

		if !e.assumeYes && RequiresConfirmation(cmd.Definition) {
			proceed, err := e.confirm(ConfirmationMessage(cmd))
			if err != nil {
				return results, err
			}
			if !proceed {
				e.logger.Info("command skipped", e.logger.Args("command", cmd.Name))
				results = append(results, Result{Command: cmd.Name, Skipped: true})
				continue
			}
		}

		e.logger.Debug("running command", e.logger.Args("command", cmd.Name, "arguments", len(cmd.Arguments)))
		value, err := routine.Run(ctx, cmd)
		if err != nil {
			return results, fmt.Errorf("failed to execute '%s': %w", cmd.Name, err)
		}
		results = append(results, Result{Command: cmd.Name, Value: value})
	}
	return results, nil
}
