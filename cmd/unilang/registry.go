package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unilang/unilang/pkg/help"
	"github.com/unilang/unilang/pkg/manifest"
	"github.com/unilang/unilang/pkg/output"
	"github.com/unilang/unilang/pkg/types"
)

func (a *app) newCommandsCmd() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:     "commands",
		Aliases: []string{"ls"},
		Short:   "List registered commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			defs := rt.Commands()
			if namespace != "" {
				prefix := strings.TrimSuffix(namespace, ".") + "."
				filtered := defs[:0:0]
				for _, def := range defs {
					if strings.HasPrefix(def.FullName(), prefix) {
						filtered = append(filtered, def)
					}
				}
				defs = filtered
			}
			return rt.Render(output.Definitions(defs), "")
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Only list commands under this namespace")
	return cmd
}

// newHelpCmd replaces cobra's help command. Names starting with a dot are
// registry commands; anything else is looked up in the CLI itself.
func (a *app) newHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help [command]",
		Short: "Show help for a unilang command or a CLI subcommand",
		Example: `  unilang help .math.add
  unilang help run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || !strings.HasPrefix(args[0], ".") {
				target, _, err := cmd.Root().Find(args)
				if err != nil || target == nil {
					target = cmd.Root()
				}
				return target.Help()
			}

			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			text, err := rt.Help(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func (a *app) newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print one usage line per registered command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), help.Summary(rt.Commands()))
			return err
		},
	}
}

// kindSamples lists one canonical encoding per kind variant.
var kindSamples = []struct {
	kind        types.Kind
	description string
}{
	{types.Simple(types.KindString), "any text"},
	{types.Simple(types.KindInteger), "64-bit signed integer"},
	{types.Simple(types.KindFloat), "64-bit float"},
	{types.Simple(types.KindBoolean), "true/false, yes/no, on/off, 1/0"},
	{types.Simple(types.KindPath), "non-empty path"},
	{types.Simple(types.KindFile), "path to a file"},
	{types.Simple(types.KindDirectory), "path to a directory"},
	{types.EnumOf("dev", "prod"), "one of the listed choices, case-sensitive"},
	{types.Simple(types.KindURL), "absolute URL"},
	{types.Simple(types.KindDateTime), "RFC 3339 timestamp"},
	{types.Simple(types.KindPattern), "regular expression"},
	{types.ListOf(types.Simple(types.KindInteger), 0), "items split on ','"},
	{types.ListOf(types.Simple(types.KindString), ';'), "items split on ';'"},
	{types.MapOf(types.Simple(types.KindString), types.Simple(types.KindInteger), 0, 0), "entries split on ',' and '='"},
	{types.Simple(types.KindJSONString), "valid JSON text"},
	{types.Simple(types.KindObject), "JSON object"},
}

func (a *app) newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List argument kinds and their canonical encodings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			rows := &output.Rows{
				Cols:     []string{"kind", "accepts"},
				Template: "{kind}\t{accepts}",
			}
			for _, s := range kindSamples {
				rows.Data = append(rows.Data, map[string]any{
					"kind":    s.kind.String(),
					"accepts": s.description,
				})
			}
			return rt.Render(rows, "")
		},
	}
}

func (a *app) newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print every registered command as a manifest",
		Long: `Print the registered commands, builtin ones included, as a manifest
that can be loaded again with --manifest after removing duplicates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd, false)
			if err != nil {
				return err
			}
			data, err := manifest.FromDefinitions(rt.Commands()).Marshal(manifest.Format(strings.ToLower(format)))
			if err != nil {
				return fmt.Errorf("failed to export manifest: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "manifest-format", "yaml", "Manifest format (yaml, json)")
	return cmd
}
