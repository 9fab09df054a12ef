package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/semantic"
	"github.com/unilang/unilang/pkg/types"
)

func verifiedFixture() []*command.VerifiedCommand {
	def := command.NewCommand(".login").
		Argument(command.NewArgument("user", types.Simple(types.KindString)).Build()).
		Argument(command.NewArgument("token", types.Simple(types.KindString)).Sensitive().Build()).
		Argument(command.NewArgument("ports", types.ListOf(types.Simple(types.KindInteger), 0)).Build()).
		MustBuild()
	return []*command.VerifiedCommand{{
		Name:       ".login",
		Definition: def,
		Arguments: map[string]types.Value{
			"user":  types.NewString("ann"),
			"token": types.NewString("abcdef123"),
			"ports": types.NewList(types.NewInteger(80), types.NewInteger(443)),
		},
	}}
}

func TestJSONFormatterMasksSensitive(t *testing.T) {
	var buf bytes.Buffer
	if err := NewManager().Format(&buf, VerifiedCommands(verifiedFixture(), nil), "json"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got []struct {
		Command   string         `json:"command"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if len(got) != 1 || got[0].Command != ".login" {
		t.Fatalf("unexpected records %+v", got)
	}
	if got[0].Arguments["token"] != "***" {
		t.Errorf("token = %v, want masked", got[0].Arguments["token"])
	}
	if got[0].Arguments["user"] != "ann" {
		t.Errorf("user = %v", got[0].Arguments["user"])
	}
	if strings.Contains(buf.String(), "abcdef123") {
		t.Error("secret leaked into JSON output")
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewManager().Format(&buf, VerifiedCommands(verifiedFixture(), nil), "yaml"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", buf.String(), err)
	}
	args := got[0]["arguments"].(map[string]any)
	ports := args["ports"].([]any)
	if len(ports) != 2 || ports[0] != 80 {
		t.Errorf("ports = %v", ports)
	}
}

func TestTableFormatter(t *testing.T) {
	m := NewManager()
	m.Config().WithColors(false)

	var buf bytes.Buffer
	defs := []*command.CommandDefinition{
		command.NewCommand(".add").Namespace(".math").Aliases("sum").Description("Adds numbers").MustBuild(),
	}
	if err := m.Format(&buf, Definitions(defs), "table"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "STATUS", ".math.add", ".math.sum", "stable", "Adds numbers"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatterRejectsNonTabular(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableFormatter().Format(&buf, 42, nil); err == nil {
		t.Error("expected error for non-tabular data")
	}
	if err := NewTableFormatter().Format(&buf, &Rows{Cols: []string{"a"}}, nil); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No results found") {
		t.Errorf("empty table output = %q", buf.String())
	}
}

func TestTextFormatterInstructions(t *testing.T) {
	instrs, err := parser.NewParser(parser.DefaultOptions()).ParseMultipleInstructions(".greet bob name::x ;; .math.add ?")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewManager().Format(&buf, Instructions(instrs), "text"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	want := ".greet positional=[bob] named=[name=x]\n.math.add positional=[] named=[] ?\n"
	if buf.String() != want {
		t.Errorf("text output = %q, want %q", buf.String(), want)
	}
}

func TestTextFormatterCustomTemplate(t *testing.T) {
	m := NewManager()
	m.Config().WithTemplate("{command} has {{len(arguments)}} arguments, user={arguments.user}")

	var buf bytes.Buffer
	if err := m.Format(&buf, VerifiedCommands(verifiedFixture(), nil), "text"); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := buf.String(); got != ".login has 3 arguments, user=ann\n" {
		t.Errorf("text output = %q", got)
	}
}

func TestTemplateEngineErrors(t *testing.T) {
	e := NewTemplateEngine()
	if _, err := e.Render("{missing}", map[string]any{}); err == nil {
		t.Error("expected error for unknown variable")
	}
	if _, err := e.Render("{{1 +}}", nil); err == nil {
		t.Error("expected error for invalid expression")
	}
	got, err := e.Render("{{a * 2}} {b.c}", map[string]any{"a": 21, "b": map[string]any{"c": "x"}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "42 x" {
		t.Errorf("Render() = %q", got)
	}
}

func TestFormatError(t *testing.T) {
	m := NewManager()
	semErr := &semantic.Error{
		Kind:        semantic.ErrCommandNotFound,
		Instruction: 2,
		Command:     ".math.ad",
		Message:     "Command not found: '.math.ad'",
		Suggestion:  ".math.add",
	}

	var buf bytes.Buffer
	if err := m.FormatError(&buf, semErr, "json"); err != nil {
		t.Fatalf("FormatError() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["kind"] != "CommandNotFound" || got["suggestion"] != ".math.add" || got["instruction"] != float64(2) {
		t.Errorf("FormatError() = %v", got)
	}

	buf.Reset()
	_, perr := parser.ParseSingleStr(".a ;;")
	if err := m.FormatError(&buf, perr, "yaml"); err != nil {
		t.Fatalf("FormatError() error = %v", err)
	}
	if !strings.Contains(buf.String(), "kind: TrailingDelimiter") {
		t.Errorf("FormatError() yaml = %q", buf.String())
	}

	buf.Reset()
	if err := m.FormatError(&buf, semErr, "table"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Error: ") {
		t.Errorf("FormatError() text = %q", buf.String())
	}
}

func TestUnknownFormat(t *testing.T) {
	err := NewManager().Format(&bytes.Buffer{}, nil, "xml")
	if err == nil || !strings.Contains(err.Error(), "json, table, text, yaml") {
		t.Errorf("Format() error = %v", err)
	}
}
