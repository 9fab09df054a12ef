package output

import (
	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/secrets"
)

// Rows is a generic Tabular value.
type Rows struct {
	Cols     []string
	Data     []map[string]any
	Template string
}

// Columns implements Tabular.
func (r *Rows) Columns() []string { return r.Cols }

// Records implements Tabular.
func (r *Rows) Records() []map[string]any { return r.Data }

// RowTemplate implements Tabular.
func (r *Rows) RowTemplate() string { return r.Template }

// VerifiedCommands presents verified commands with sensitive arguments
// masked by detector. A nil detector uses secrets.NewDefaultDetector.
func VerifiedCommands(cmds []*command.VerifiedCommand, detector *secrets.Detector) *Rows {
	if detector == nil {
		detector = secrets.NewDefaultDetector()
	}
	rows := &Rows{
		Cols:     []string{"command", "arguments"},
		Data:     make([]map[string]any, 0, len(cmds)),
		Template: "{command} {arguments}",
	}
	for _, cmd := range cmds {
		rows.Data = append(rows.Data, map[string]any{
			"command":   cmd.Name,
			"arguments": detector.MaskArguments(cmd),
		})
	}
	return rows
}

// Instructions presents parsed instructions before semantic analysis.
func Instructions(instrs []*parser.GenericInstruction) *Rows {
	rows := &Rows{
		Cols:     []string{"command", "positional", "named", "help"},
		Data:     make([]map[string]any, 0, len(instrs)),
		Template: "{command} positional=[{positional}] named=[{named}]{{help ? ' ?' : ''}}",
	}
	for _, instr := range instrs {
		positional := make([]any, len(instr.PositionalArguments))
		for i, arg := range instr.PositionalArguments {
			positional[i] = arg.Value
		}
		named := make(map[string]any, len(instr.NamedArguments))
		for name, arg := range instr.NamedArguments {
			named[name] = arg.Value
		}
		rows.Data = append(rows.Data, map[string]any{
			"command":    instr.CommandName(),
			"positional": positional,
			"named":      named,
			"help":       instr.HelpRequested,
		})
	}
	return rows
}

// Definitions presents a command listing.
func Definitions(defs []*command.CommandDefinition) *Rows {
	rows := &Rows{
		Cols:     []string{"name", "status", "aliases", "arguments", "description"},
		Data:     make([]map[string]any, 0, len(defs)),
		Template: "{name}  {description}",
	}
	for _, def := range defs {
		aliases := make([]any, 0, len(def.Aliases))
		for _, alias := range def.AliasNames() {
			aliases = append(aliases, alias)
		}
		rows.Data = append(rows.Data, map[string]any{
			"name":        def.FullName(),
			"status":      string(def.Status),
			"aliases":     aliases,
			"arguments":   len(def.Arguments),
			"description": def.Description,
		})
	}
	return rows
}
