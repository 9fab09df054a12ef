package interactive

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/semantic"
)

// DefaultMaxAttempts bounds how often a rejected prompted value is asked
// again.
const DefaultMaxAttempts = 3

// Analyzer is the part of semantic.Analyzer used by Resolver.
type Analyzer interface {
	AnalyzeInstruction(instr *parser.GenericInstruction) (*command.VerifiedCommand, error)
}

// Lookup finds a command definition by its full name.
type Lookup interface {
	Command(name string) (*command.CommandDefinition, bool)
}

// Resolver analyzes instructions, prompting for interactive arguments.
type Resolver struct {
	analyzer    Analyzer
	lookup      Lookup
	asker       Asker
	maxAttempts int
	onReject    func(error)
	logger      *pterm.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMaxAttempts sets how many times a prompted argument is asked before
// giving up.
func WithMaxAttempts(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithRejectHandler is called with the analysis error each time a prompted
// value is rejected.
func WithRejectHandler(fn func(error)) ResolverOption {
	return func(r *Resolver) {
		r.onReject = fn
	}
}

// WithLogger sets the logger for prompt tracing.
func WithLogger(logger *pterm.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver. When asker is a *Prompter its Warn method
// is the default reject handler.
func NewResolver(analyzer Analyzer, lookup Lookup, asker Asker, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		analyzer:    analyzer,
		lookup:      lookup,
		asker:       asker,
		maxAttempts: DefaultMaxAttempts,
		onReject:    func(error) {},
		logger:      pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled),
	}
	if p, ok := asker.(*Prompter); ok {
		r.onReject = p.Warn
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve verifies every instruction, asking for missing interactive
// values. Like semantic.Analyzer.Analyze it returns all commands or the
// first error, with Instruction set to the failing index.
func (r *Resolver) Resolve(instrs []*parser.GenericInstruction) ([]*command.VerifiedCommand, error) {
	verified := make([]*command.VerifiedCommand, 0, len(instrs))
	for i, instr := range instrs {
		cmd, err := r.ResolveInstruction(instr)
		if err != nil {
			// The analyzer creates a fresh error per call.
			if se, ok := semantic.AsError(err); ok {
				se.Instruction = i
			}
			return nil, err
		}
		verified = append(verified, cmd)
	}
	return verified, nil
}

// ResolveInstruction verifies one instruction, prompting as needed.
func (r *Resolver) ResolveInstruction(instr *parser.GenericInstruction) (*command.VerifiedCommand, error) {
	prompted := make(map[string]*command.ArgumentDefinition)
	attempts := make(map[string]int)

	for {
		cmd, err := r.analyzer.AnalyzeInstruction(instr)
		if err == nil {
			return cmd, nil
		}

		se, ok := semantic.AsError(err)
		if !ok {
			return nil, err
		}

		var arg *command.ArgumentDefinition
		switch se.Kind {
		case semantic.ErrInteractiveInputRequired:
			arg, ok = r.argument(se)
			if !ok {
				return nil, err
			}
		case semantic.ErrTypeMismatch, semantic.ErrValidationFailed:
			// Only values the user typed in are asked again.
			arg, ok = prompted[se.Argument]
			if !ok {
				return nil, err
			}
			r.onReject(err)
		default:
			return nil, err
		}

		if attempts[arg.Name] >= r.maxAttempts {
			return nil, fmt.Errorf("argument '%s': giving up after %d attempts: %w", arg.Name, r.maxAttempts, err)
		}
		attempts[arg.Name]++

		r.logger.Debug("prompting for argument", r.logger.Args("command", se.Command, "argument", arg.Name, "attempt", attempts[arg.Name]))
		value, askErr := r.asker.Ask(arg)
		if askErr != nil {
			return nil, errors.Join(err, askErr)
		}
		prompted[arg.Name] = arg
		instr = instr.WithNamedArgument(arg.Name, value)
	}
}

// argument returns the definition of the argument named by se.
func (r *Resolver) argument(se *semantic.Error) (*command.ArgumentDefinition, bool) {
	def, ok := r.lookup.Command(se.Command)
	if !ok {
		return nil, false
	}
	return def.Argument(se.Argument)
}
