// Package semantic resolves GenericInstructions against a command registry
// and turns them into VerifiedCommands.
//
// Each instruction moves through path resolution, argument binding, type
// coercion and validation. A failure at any step discards the partial result
// and is reported as an *Error; a batch fails as a whole at its first failing
// instruction.
package semantic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/help"
	"github.com/unilang/unilang/pkg/interner"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/types"
)

// Registry is the lookup surface the analyzer needs.
type Registry interface {
	Command(name string) (*command.CommandDefinition, bool)
	Names() []string
}

// Analyzer verifies parsed instructions. It holds no per-call state and is
// safe for concurrent use.
type Analyzer struct {
	registry Registry
	fs       afero.Fs
	suggest  bool
	interner *interner.StringInterner
	logger   *pterm.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFs enables existence checks for File and Directory arguments against
// the given filesystem.
func WithFs(fs afero.Fs) Option {
	return func(a *Analyzer) { a.fs = fs }
}

// WithSuggestions toggles "did you mean" suggestions for unknown commands.
func WithSuggestions(enabled bool) Option {
	return func(a *Analyzer) { a.suggest = enabled }
}

// WithInterner sets the interner used for command and argument names.
func WithInterner(in *interner.StringInterner) Option {
	return func(a *Analyzer) { a.interner = in }
}

// WithLogger sets the logger used for resolution tracing.
func WithLogger(logger *pterm.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAnalyzer creates an analyzer over reg.
func NewAnalyzer(reg Registry, opts ...Option) *Analyzer {
	a := &Analyzer{
		registry: reg,
		suggest:  true,
		logger:   pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze verifies instrs against reg with default options.
func Analyze(instrs []*parser.GenericInstruction, reg Registry) ([]*command.VerifiedCommand, error) {
	return NewAnalyzer(reg).Analyze(instrs)
}

// Analyze verifies every instruction. It returns all VerifiedCommands in
// input order or the error of the first failing instruction.
func (a *Analyzer) Analyze(instrs []*parser.GenericInstruction) ([]*command.VerifiedCommand, error) {
	verified := make([]*command.VerifiedCommand, 0, len(instrs))
	for i, instr := range instrs {
		cmd, err := a.analyze(i, instr)
		if err != nil {
			return nil, err
		}
		verified = append(verified, cmd)
	}
	return verified, nil
}

// AnalyzeInstruction verifies a single instruction.
func (a *Analyzer) AnalyzeInstruction(instr *parser.GenericInstruction) (*command.VerifiedCommand, error) {
	return a.analyze(0, instr)
}

// binding is a raw value bound to an argument.
type binding struct {
	values []parser.Argument
	// via is the name the caller used, for duplicate reporting.
	via string
}

func (a *Analyzer) analyze(index int, instr *parser.GenericInstruction) (*command.VerifiedCommand, error) {
	if instr == nil {
		return nil, &Error{Kind: ErrCommandNotFound, Instruction: index, Message: "Instruction is nil"}
	}

	def, name, err := a.resolve(index, instr)
	if err != nil {
		return nil, err
	}
	a.logger.Trace("resolved command", a.logger.Args("instruction", index, "name", name))

	if instr.HelpRequested {
		return nil, &Error{
			Kind:        ErrHelpRequested,
			Instruction: index,
			Command:     name,
			Message:     fmt.Sprintf("Help requested for '%s'", name),
			Span:        instr.Span,
			Help:        help.Command(def),
		}
	}

	bound, err := a.bind(index, name, def, instr)
	if err != nil {
		return nil, err
	}

	args := make(map[string]types.Value, len(def.Arguments))
	for i := range def.Arguments {
		arg := &def.Arguments[i]
		value, ok, err := a.value(index, name, arg, bound[arg.Name])
		if err != nil {
			return nil, err
		}
		if ok {
			args[a.interner.Intern(arg.Name)] = value
		}
	}

	a.logger.Trace("verified command", a.logger.Args("name", name, "arguments", len(args)))
	return &command.VerifiedCommand{
		Name:       a.interner.Intern(name),
		Definition: def,
		Arguments:  args,
	}, nil
}

// resolve looks up the command named by the instruction path.
func (a *Analyzer) resolve(index int, instr *parser.GenericInstruction) (*command.CommandDefinition, string, error) {
	name := command.JoinPath(instr.CommandPathSlices)
	if name == "" {
		return nil, "", &Error{
			Kind:        ErrCommandNotFound,
			Instruction: index,
			Message:     "No command given",
			Span:        instr.Span,
		}
	}

	def, ok := a.registry.Command(name)
	if !ok {
		e := &Error{
			Kind:        ErrCommandNotFound,
			Instruction: index,
			Command:     name,
			Message:     fmt.Sprintf("Command not found: '%s'", name),
			Span:        instr.Span,
		}
		if a.suggest {
			if s := closest(name, a.registry.Names()); s != "" {
				e.Suggestion = s
				e.Message += fmt.Sprintf(". Did you mean '%s'?", s)
			}
		}
		return nil, "", e
	}
	return def, def.FullName(), nil
}

// closest returns the registered name nearest to name by edit distance, or
// "" when nothing is reasonably close.
func closest(name string, names []string) string {
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}

	best, bestDist := "", limit+1
	for _, candidate := range names {
		d := fuzzy.LevenshteinDistance(name, candidate)
		if d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// bind assigns named and positional raw values to declared arguments.
func (a *Analyzer) bind(index int, name string, def *command.CommandDefinition, instr *parser.GenericInstruction) (map[string]binding, error) {
	bound := make(map[string]binding, len(def.Arguments))

	for _, key := range instr.NamedArgumentNames() {
		raw := instr.NamedArguments[key]
		arg, ok := def.Argument(key)
		if !ok {
			return nil, &Error{
				Kind:        ErrUnknownArgument,
				Instruction: index,
				Command:     name,
				Argument:    key,
				Message:     fmt.Sprintf("Unknown argument '%s' for command '%s'", key, name),
				Span:        raw.Span,
			}
		}
		if prev, dup := bound[arg.Name]; dup {
			return nil, &Error{
				Kind:        ErrDuplicateArgument,
				Instruction: index,
				Command:     name,
				Argument:    arg.Name,
				Message:     fmt.Sprintf("Argument '%s' is given twice, as '%s' and '%s'", arg.Name, prev.via, key),
				Span:        raw.Span,
			}
		}
		bound[arg.Name] = binding{values: []parser.Argument{raw}, via: key}
	}

	positional := instr.PositionalArguments
	next := 0
	for i := range def.Arguments {
		if next >= len(positional) {
			break
		}
		arg := &def.Arguments[i]
		if _, named := bound[arg.Name]; named {
			continue
		}
		if arg.Attributes.Multiple {
			bound[arg.Name] = binding{values: positional[next:], via: arg.Name}
			next = len(positional)
			break
		}
		bound[arg.Name] = binding{values: positional[next : next+1], via: arg.Name}
		next++
	}

	if next < len(positional) {
		extra := positional[next]
		return nil, &Error{
			Kind:        ErrTooManyArguments,
			Instruction: index,
			Command:     name,
			Message: fmt.Sprintf("Too many arguments for '%s': unexpected value '%s' (%d positional given, %d accepted)",
				name, extra.Value, len(positional), next),
			Span: extra.Span,
		}
	}
	return bound, nil
}

// value produces the final value of one argument. ok is false for optional
// arguments that were omitted and have no default.
func (a *Analyzer) value(index int, name string, arg *command.ArgumentDefinition, b binding) (types.Value, bool, error) {
	newErr := func(kind ErrorKind, span parser.Span, err error, format string, args ...any) *Error {
		return &Error{
			Kind:        kind,
			Instruction: index,
			Command:     name,
			Argument:    arg.Name,
			Message:     fmt.Sprintf(format, args...),
			Span:        span,
			Err:         err,
		}
	}

	var (
		value types.Value
		span  parser.Span
		err   error
	)
	switch {
	case len(b.values) > 0:
		span = parser.Span{Start: b.values[0].Span.Start, End: b.values[len(b.values)-1].Span.End}
		value, err = coerce(arg, b.values)
		if err != nil {
			var ce *types.CoercionError
			raw := b.values[0].Value
			if errors.As(err, &ce) {
				raw = ce.Raw
			}
			return types.Value{}, false, newErr(ErrTypeMismatch, span, err,
				"Type mismatch for argument '%s': expected %s but got '%s'", arg.Name, kindOf(err, arg.Kind), raw)
		}

	case arg.Attributes.Default != nil:
		value, err = arg.DefaultValue()
		if err != nil {
			return types.Value{}, false, newErr(ErrTypeMismatch, span, err,
				"Default for argument '%s' does not match kind %s", arg.Name, arg.Kind)
		}

	case arg.Attributes.Optional:
		return types.Value{}, false, nil

	case arg.Attributes.Interactive:
		return types.Value{}, false, newErr(ErrInteractiveInputRequired, span, nil,
			"Argument '%s' of '%s' requires interactive input", arg.Name, name)

	default:
		return types.Value{}, false, newErr(ErrMissingRequiredArgument, span, nil,
			"Missing required argument '%s' for command '%s'", arg.Name, name)
	}

	if err := a.checkPaths(value); err != nil {
		return types.Value{}, false, newErr(ErrValidationFailed, span, err,
			"Validation failed for argument '%s': %v", arg.Name, err)
	}
	for _, rule := range arg.ValidationRules {
		if err := rule.Check(value); err != nil {
			return types.Value{}, false, newErr(ErrValidationFailed, span, err,
				"Validation failed for argument '%s': %v", arg.Name, err)
		}
	}
	return value, true, nil
}

// coerce converts the raw values bound to arg. Arguments with Multiple set
// always produce a List; a List kind collects the items of every value.
func coerce(arg *command.ArgumentDefinition, raws []parser.Argument) (types.Value, error) {
	if !arg.Attributes.Multiple {
		return types.Coerce(raws[0].Value, arg.Kind)
	}
	if arg.Kind.Type != types.KindList {
		values := make([]string, len(raws))
		for i, raw := range raws {
			values[i] = raw.Value
		}
		return types.CoerceAll(values, arg.Kind)
	}

	var items []types.Value
	for _, raw := range raws {
		v, err := types.Coerce(raw.Value, arg.Kind)
		if err != nil {
			return types.Value{}, err
		}
		items = append(items, v.List...)
	}
	return types.NewList(items...), nil
}

// kindOf names the kind that failed coercion, which for collections is the
// element kind.
func kindOf(err error, declared types.Kind) types.Kind {
	var ce *types.CoercionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return declared
}

// checkPaths verifies File and Directory values exist when a filesystem is
// configured.
func (a *Analyzer) checkPaths(v types.Value) error {
	if a.fs == nil {
		return nil
	}
	switch v.Type {
	case types.KindFile:
		exists, err := afero.Exists(a.fs, v.Str)
		if err != nil {
			return fmt.Errorf("failed to check file %q: %w", v.Str, err)
		}
		if !exists {
			return fmt.Errorf("file %q does not exist", v.Str)
		}
		if isDir, _ := afero.IsDir(a.fs, v.Str); isDir {
			return fmt.Errorf("%q is a directory, not a file", v.Str)
		}
	case types.KindDirectory:
		exists, err := afero.DirExists(a.fs, v.Str)
		if err != nil {
			return fmt.Errorf("failed to check directory %q: %w", v.Str, err)
		}
		if !exists {
			return fmt.Errorf("directory %q does not exist", v.Str)
		}
	case types.KindList:
		for _, item := range v.List {
			if err := a.checkPaths(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Suggest returns registered command names that contain query as a fuzzy
// match, best match first. It backs completion in interactive front-ends.
func (a *Analyzer) Suggest(query string) []string {
	names := a.registry.Names()
	ranks := fuzzy.RankFindFold(strings.TrimPrefix(query, "."), names)
	sort.Sort(ranks)
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}
