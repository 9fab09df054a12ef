// Package main implements the unilang developer CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unilang/unilang/internal/executor"
	"github.com/unilang/unilang/internal/runtime"
	"github.com/unilang/unilang/pkg/config"
	"github.com/unilang/unilang/pkg/interactive"
	"github.com/unilang/unilang/pkg/parser"
)

var (
	// Version is set at build time
	version = "0.1.0"
	// BuildDate is set at build time
	buildDate = "unknown"
)

func main() {
	a := newApp(afero.NewOsFs())
	if err := a.rootCmd().Execute(); err != nil {
		a.renderError(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the state shared by every subcommand.
type app struct {
	fs afero.Fs
	// asker and confirm replace the terminal prompts when set.
	asker   interactive.Asker
	confirm executor.ConfirmFunc

	configPath string
	rt         *runtime.Runtime
}

func newApp(fs afero.Fs) *app {
	return &app{fs: fs}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unilang",
		Short: "unilang - parse, check and run unilang instructions",
		Long: `unilang parses instruction lines such as

  .math.add numbers::1,2,3 ;; .text.upper hello

checks them against a registry of command definitions and runs the
routines bound to them.

Commands come from the builtin set and from YAML or JSON manifests
listed in the config file or given with --manifest.`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file")
	flags.StringArray("manifest", nil, "Manifest file to load (repeatable)")
	flags.StringP("format", "o", "", "Output format (table, text, json, yaml)")
	flags.Bool("strict", false, "Reject positional arguments after named ones and duplicate named arguments")
	flags.Bool("check-paths", false, "Check that File and Directory arguments exist")
	flags.String("log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(a.newParseCmd())
	cmd.AddCommand(a.newCheckCmd())
	cmd.AddCommand(a.newRunCmd())
	cmd.AddCommand(a.newCommandsCmd())
	cmd.AddCommand(a.newSummaryCmd())
	cmd.AddCommand(a.newKindsCmd())
	cmd.AddCommand(a.newExportCmd())
	cmd.AddCommand(a.newConfigCmd())
	cmd.AddCommand(a.newHistoryCmd())
	cmd.SetHelpCommand(a.newHelpCmd())

	return cmd
}

// overrides collects the flags the user actually set.
func overrides(flags *pflag.FlagSet) (*config.Overrides, error) {
	o := &config.Overrides{}
	var err error
	if flags.Changed("strict") {
		v, _ := flags.GetBool("strict")
		o.Strict = &v
	}
	if flags.Changed("check-paths") {
		v, _ := flags.GetBool("check-paths")
		o.CheckPaths = &v
	}
	if flags.Changed("no-color") {
		v, _ := flags.GetBool("no-color")
		o.NoColor = &v
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		o.Format = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	if o.Manifests, err = flags.GetStringArray("manifest"); err != nil {
		return nil, err
	}
	return o, nil
}

func (a *app) loader() *config.Loader {
	loader := config.NewLoader(runtime.AppName).WithFs(a.fs)
	if a.configPath != "" {
		loader = loader.WithPath(a.configPath)
	}
	return loader
}

// loadConfig loads the config file and environment and applies flags.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := a.loader().Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	o, err := overrides(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := o.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime builds the runtime on first use.
func (a *app) runtime(cmd *cobra.Command, assumeYes bool) (*runtime.Runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	rt, err := runtime.New(cfg, runtime.Options{
		Version:   version,
		Verbose:   verbose,
		Fs:        a.fs,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Confirm:   a.confirm,
		AssumeYes: assumeYes,
	})
	if err != nil {
		return nil, err
	}
	a.rt = rt
	return rt, nil
}

// prompter returns the asker used for interactive arguments.
func (a *app) prompter(cmd *cobra.Command) interactive.Asker {
	if a.asker != nil {
		return a.asker
	}
	noColor := a.rt != nil && a.rt.Config().Output.Color == "never"
	return interactive.NewPrompter(&interactive.PrompterConfig{
		Output:       cmd.ErrOrStderr(),
		DisableColor: noColor,
	})
}

// renderError prints err in the configured format. Parse errors also get
// the caret diagnostic in plain formats.
func (a *app) renderError(w io.Writer, err error) {
	if a.rt == nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	format := a.rt.Config().Output.Format
	if rerr := a.rt.RenderError(err, format); rerr != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	if pe, ok := parser.AsParseError(err); ok && format != "json" && format != "yaml" {
		fmt.Fprintln(w, pe.Pretty())
	}
}
