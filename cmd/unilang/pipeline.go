package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/unilang/unilang/internal/runtime"
	"github.com/unilang/unilang/pkg/interactive"
	"github.com/unilang/unilang/pkg/output"
)

func (a *app) newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <line>",
		Short: "Parse a line into generic instructions",
		Long: `Parse a line and print its instructions without consulting the
registry. Quote the line so the shell keeps it as one argument.`,
		Example: `  unilang parse '.math.add numbers::1,2 ;; .text.echo "a b"'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			instrs, err := rt.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return rt.Render(output.Instructions(instrs), "")
		},
	}
}

func (a *app) newCheckCmd() *cobra.Command {
	var interactiveMode bool

	cmd := &cobra.Command{
		Use:   "check <line>",
		Short: "Parse and verify a line against the registry",
		Long: `Parse a line, resolve every command and bind, coerce and validate its
arguments. Sensitive values are masked in the output.

With --interactive, arguments that require interactive input are
prompted for instead of failing the check.`,
		Example: `  unilang check '.math.add numbers::1,2,3'
  unilang check -i '.session.login alice'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			var asker interactive.Asker
			if interactiveMode {
				asker = a.prompter(cmd)
			}
			cmds, err := rt.Check(strings.Join(args, " "), asker)
			if err != nil {
				return err
			}
			return rt.Render(output.VerifiedCommands(cmds, rt.Detector()), "")
		},
	}

	cmd.Flags().BoolVarP(&interactiveMode, "interactive", "i", false, "Prompt for interactive arguments")
	return cmd
}

func (a *app) newRunCmd() *cobra.Command {
	var (
		interactiveMode bool
		yes             bool
	)

	cmd := &cobra.Command{
		Use:   "run <line>",
		Short: "Verify a line and run its commands",
		Long: `Verify a line like check does, then run the routine bound to each
command in order. Execution stops at the first failing command.

Commands tagged destructive ask for confirmation unless --yes is given.`,
		Example: `  unilang run '.math.add 1,2 ;; .text.upper done'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, yes)
			if err != nil {
				return err
			}
			var asker interactive.Asker
			if interactiveMode {
				asker = a.prompter(cmd)
			}
			results, err := rt.Run(cmd.Context(), strings.Join(args, " "), asker)
			if err != nil {
				return err
			}
			return rt.Render(runtime.Results(results), "")
		},
	}

	cmd.Flags().BoolVarP(&interactiveMode, "interactive", "i", false, "Prompt for interactive arguments")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompts")
	return cmd
}
