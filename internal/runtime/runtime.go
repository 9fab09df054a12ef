// Package runtime wires the unilang pipeline together.
//
// A Runtime is built from a Config and owns one instance of every
// subsystem:
//
//  1. Static registry over the embedded builtin manifest, with routines bound
//  2. Manifest commands registered dynamically
//  3. Parser with the configured options
//  4. Semantic analyzer (suggestions, interning, path checks)
//  5. Output manager, secrets detector and deprecation notices
//  6. Executor for the bound routines
//
// The cobra CLI in cmd/unilang is a thin layer over these methods.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"

	"github.com/unilang/unilang/internal/executor"
	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/config"
	"github.com/unilang/unilang/pkg/deprecation"
	"github.com/unilang/unilang/pkg/help"
	"github.com/unilang/unilang/pkg/history"
	"github.com/unilang/unilang/pkg/interactive"
	"github.com/unilang/unilang/pkg/interner"
	"github.com/unilang/unilang/pkg/manifest"
	"github.com/unilang/unilang/pkg/output"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/registry"
	"github.com/unilang/unilang/pkg/secrets"
	"github.com/unilang/unilang/pkg/semantic"
)

// AppName names the configuration and data directories.
const AppName = "unilang"

// Options carries process-level settings that are not part of Config.
type Options struct {
	Version string
	// Verbose forces debug logging regardless of log.level.
	Verbose bool
	// Fs is used for manifests, path checks and notice tracking. Nil uses
	// the OS filesystem.
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
	// Confirm replaces the terminal confirmation prompt.
	Confirm   executor.ConfirmFunc
	AssumeYes bool
	// Warnings replaces the default deprecation notice settings.
	Warnings *deprecation.WarningConfig
	// HistoryPath overrides the history file location.
	HistoryPath string
}

// Runtime is a configured unilang pipeline.
type Runtime struct {
	config  *config.Config
	version string
	fs      afero.Fs
	stdout  io.Writer
	stderr  io.Writer
	logger  *pterm.Logger

	registry *registry.Registry
	parser   *parser.Parser
	analyzer *semantic.Analyzer
	output   *output.Manager
	detector *secrets.Detector
	warnings *deprecation.WarningManager
	executor *executor.Executor
	history  *history.History
}

// New builds a runtime from cfg.
func New(cfg *config.Config, opts Options) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	rt := &Runtime{
		config:  cfg,
		version: opts.Version,
		fs:      opts.Fs,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
	}
	if rt.fs == nil {
		rt.fs = afero.NewOsFs()
	}
	if rt.stdout == nil {
		rt.stdout = os.Stdout
	}
	if rt.stderr == nil {
		rt.stderr = os.Stderr
	}

	level := logLevel(cfg.Log.Level)
	if opts.Verbose && (level == pterm.LogLevelDisabled || level > pterm.LogLevelDebug) {
		level = pterm.LogLevelDebug
	}
	rt.logger = pterm.DefaultLogger.WithWriter(rt.stderr).WithLevel(level)

	applyColor(cfg.Output.Color)

	static, err := builtinStatic()
	if err != nil {
		return nil, err
	}
	rt.registry = registry.New(static, registry.WithLogger(rt.logger))
	if err := rt.bindBuiltins(); err != nil {
		return nil, err
	}
	for _, path := range cfg.Manifests {
		if err := rt.LoadManifest(path); err != nil {
			return nil, err
		}
	}

	rt.parser = parser.NewParser(cfg.Parser)

	analyzerOpts := []semantic.Option{
		semantic.WithSuggestions(cfg.Analyzer.Suggest),
		semantic.WithLogger(rt.logger),
	}
	if cfg.Analyzer.CheckPaths {
		analyzerOpts = append(analyzerOpts, semantic.WithFs(rt.fs))
	}
	if cfg.Analyzer.InternerSize > 0 {
		analyzerOpts = append(analyzerOpts, semantic.WithInterner(interner.New(cfg.Analyzer.InternerSize)))
	}
	rt.analyzer = semantic.NewAnalyzer(rt.registry, analyzerOpts...)

	rt.output = output.NewManager()
	rt.output.SetDefaultFormat(cfg.Output.Format)
	rt.output.Config().WithColors(cfg.Output.Color != "never")

	rt.detector = secrets.NewDefaultDetector()

	rt.warnings, err = deprecation.NewWarningManager(AppName, rt.fs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize deprecation notices: %w", err)
	}
	if opts.Warnings != nil {
		rt.warnings.SetConfig(opts.Warnings)
	}

	rt.executor = executor.NewExecutor(rt.registry, &executor.ExecutorConfig{
		Confirm:   opts.Confirm,
		AssumeYes: opts.AssumeYes,
		Logger:    rt.logger,
	})

	if cfg.History.Enabled {
		path := opts.HistoryPath
		if path == "" {
			path = history.Path(AppName)
		}
		rt.history, err = history.New(rt.fs, path, cfg.History.MaxEntries)
		if err != nil {
			return nil, err
		}
	}

	rt.logger.Debug("runtime initialized", rt.logger.Args(
		"commands", rt.registry.Len(),
		"manifests", len(cfg.Manifests),
		"strict", cfg.Parser.ErrorOnPositionalAfterNamed,
	))
	return rt, nil
}

func logLevel(level string) pterm.LogLevel {
	switch strings.ToLower(level) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "info":
		return pterm.LogLevelInfo
	case "error":
		return pterm.LogLevelError
	case "disabled":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelWarn
	}
}

func applyColor(mode string) {
	switch strings.ToLower(mode) {
	case "never":
		pterm.DisableColor()
	case "always":
		pterm.EnableColor()
	}
}

// Config returns the runtime configuration.
func (rt *Runtime) Config() *config.Config { return rt.config }

// Registry returns the command registry.
func (rt *Runtime) Registry() *registry.Registry { return rt.registry }

// LoadManifest registers every command of the manifest at path.
func (rt *Runtime) LoadManifest(path string) error {
	defs, err := manifest.LoadFile(rt.fs, path)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := rt.registry.Register(def); err != nil {
			return fmt.Errorf("failed to register commands from %s: %w", path, err)
		}
	}
	rt.logger.Debug("manifest loaded", rt.logger.Args("path", path, "commands", len(defs)))
	return nil
}

// Parse splits line into generic instructions.
func (rt *Runtime) Parse(line string) ([]*parser.GenericInstruction, error) {
	return rt.parser.ParseMultipleInstructions(line)
}

// Check parses and analyzes line. With a non-nil asker, interactive
// arguments are prompted for; otherwise they fail analysis. Deprecation
// notices for the resolved commands are written to stderr.
func (rt *Runtime) Check(line string, asker interactive.Asker) ([]*command.VerifiedCommand, error) {
	start := time.Now()
	cmds, err := rt.check(line, asker)
	rt.record("check", line, cmds, err, start)
	return cmds, err
}

func (rt *Runtime) check(line string, asker interactive.Asker) ([]*command.VerifiedCommand, error) {
	instrs, err := rt.Parse(line)
	if err != nil {
		return nil, err
	}

	var cmds []*command.VerifiedCommand
	if asker != nil {
		opts := []interactive.ResolverOption{interactive.WithLogger(rt.logger)}
		if _, ok := asker.(*interactive.Prompter); !ok {
			opts = append(opts, interactive.WithRejectHandler(func(err error) {
				fmt.Fprintln(rt.stderr, pterm.Warning.Sprint(err.Error()))
			}))
		}
		cmds, err = interactive.NewResolver(rt.analyzer, rt.registry, asker, opts...).Resolve(instrs)
	} else {
		cmds, err = rt.analyzer.Analyze(instrs)
	}
	if err != nil {
		return nil, err
	}

	defs := make([]*command.CommandDefinition, len(cmds))
	for i, cmd := range cmds {
		defs[i] = cmd.Definition
	}
	if err := rt.warnings.Notify(rt.stderr, deprecation.DetectAll(defs)...); err != nil {
		rt.logger.Warn("failed to record deprecation notice", rt.logger.Args("error", err))
	}
	return cmds, nil
}

// Run checks line and executes the resulting commands in order.
func (rt *Runtime) Run(ctx context.Context, line string, asker interactive.Asker) ([]executor.Result, error) {
	start := time.Now()
	cmds, err := rt.check(line, asker)
	if err != nil {
		rt.record("run", line, nil, err, start)
		return nil, err
	}
	results, err := rt.executor.Execute(ctx, cmds)
	rt.record("run", line, cmds, err, start)
	return results, err
}

// record appends line to the history. Failures are logged, never returned.
func (rt *Runtime) record(mode, line string, cmds []*command.VerifiedCommand, err error, start time.Time) {
	if rt.history == nil {
		return
	}
	entry := &history.Entry{
		Line:       rt.maskLine(line, cmds),
		Mode:       mode,
		DurationMS: time.Since(start).Milliseconds(),
		Error:      errorKind(err),
	}
	for _, cmd := range cmds {
		entry.Commands = append(entry.Commands, cmd.Name)
	}
	if err := rt.history.Record(entry); err != nil {
		rt.logger.Warn("failed to record history", rt.logger.Args("error", err))
	}
}

// maskLine hides sensitive argument values and secret-looking text.
func (rt *Runtime) maskLine(line string, cmds []*command.VerifiedCommand) string {
	for _, cmd := range cmds {
		for name, value := range cmd.Arguments {
			arg, ok := cmd.Definition.Argument(name)
			if !ok || !rt.detector.IsSensitive(arg) {
				continue
			}
			if raw := value.String(); raw != "" {
				line = strings.ReplaceAll(line, raw, rt.detector.Mask(raw))
			}
		}
	}
	return rt.detector.MaskString(line)
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	if se, ok := semantic.AsError(err); ok {
		return se.Kind.String()
	}
	if pe, ok := parser.AsParseError(err); ok {
		return pe.Kind.String()
	}
	return "ExecutionFailed"
}

// History returns the instruction history, or nil when it is disabled.
func (rt *Runtime) History() *history.History { return rt.history }

// Commands returns every registered definition sorted by name.
func (rt *Runtime) Commands() []*command.CommandDefinition {
	return rt.registry.Commands()
}

// Help returns the help text of a command or alias.
func (rt *Runtime) Help(name string) (string, error) {
	def, ok := rt.registry.Command(name)
	if !ok {
		msg := fmt.Sprintf("command '%s' not found", name)
		if suggestions := rt.analyzer.Suggest(name); len(suggestions) > 0 {
			msg += fmt.Sprintf(". Did you mean '%s'?", suggestions[0])
		}
		return "", errors.New(msg)
	}
	return help.Command(def), nil
}

// Render writes data to stdout in the configured format, or in format when
// it is not empty.
func (rt *Runtime) Render(data any, format string) error {
	return rt.output.Format(rt.stdout, data, format)
}

// RenderError writes err to stderr with secret-looking values masked.
func (rt *Runtime) RenderError(err error, format string) error {
	w := secrets.NewMaskingWriter(rt.detector, rt.stderr)
	return rt.output.FormatError(w, err, format)
}

// Detector returns the secrets detector used for rendering.
func (rt *Runtime) Detector() *secrets.Detector { return rt.detector }

// Results turns executor results into rows for rendering.
func Results(results []executor.Result) *output.Rows {
	rows := &output.Rows{
		Cols:     []string{"command", "result"},
		Template: "{command}: {result}",
	}
	for _, r := range results {
		value := r.Value
		if r.Skipped {
			value = "skipped"
		}
		rows.Data = append(rows.Data, map[string]any{
			"command": r.Command,
			"result":  value,
		})
	}
	return rows
}
