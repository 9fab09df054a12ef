package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/config"
	"github.com/unilang/unilang/pkg/interactive"
	"github.com/unilang/unilang/pkg/manifest"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/semantic"
)

const configPath = "/home/test/.config/unilang/config.yaml"

type result struct {
	app    *app
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, fs afero.Fs, setup func(*app), args ...string) result {
	t.Helper()
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	a := newApp(fs)
	if setup != nil {
		setup(a)
	}

	var stdout, stderr bytes.Buffer
	root := a.rootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", configPath, "--no-color", "--log-level", "disabled"}, args...))

	err := root.Execute()
	return result{app: a, stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestParseCommand(t *testing.T) {
	r := execute(t, nil, nil, "parse", "-o", "json", `.math.add numbers::1,2 ;; .text.echo "a b" ?`)
	require.NoError(t, r.err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, ".math.add", rows[0]["command"])
	assert.Equal(t, ".text.echo", rows[1]["command"])
	assert.Equal(t, true, rows[1]["help"])
}

func TestParseErrorIsRendered(t *testing.T) {
	r := execute(t, nil, nil, "parse", ".math.add 1 ;;")
	require.Error(t, r.err)

	var buf bytes.Buffer
	r.app.renderError(&buf, r.err)
	assert.True(t, errors.Is(r.err, &parser.ParseError{Kind: parser.ErrTrailingDelimiter}))
	assert.Contains(t, buf.String(), "^")
}

func TestCheckCommand(t *testing.T) {
	r := execute(t, nil, nil, "check", "-o", "text", ".math.sum", "numbers::1,2,3")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, ".math.add")

	r = execute(t, nil, nil, "check", ".math.add numbers::1")
	assert.True(t, errors.Is(r.err, semantic.ErrValidation))
}

func TestCheckInteractiveMasksSecrets(t *testing.T) {
	asker := interactive.AskerFunc(func(arg *command.ArgumentDefinition) (string, error) {
		return "hunter2", nil
	})
	r := execute(t, nil, func(a *app) { a.asker = asker },
		"check", "-i", "-o", "json", ".session.login alice")
	require.NoError(t, r.err)
	assert.NotContains(t, r.stdout, "hunter2")
	assert.Contains(t, r.stdout, "alice")

	r = execute(t, nil, nil, "check", ".session.login alice")
	assert.True(t, errors.Is(r.err, semantic.ErrInteractive))
}

func TestRunCommand(t *testing.T) {
	r := execute(t, nil, nil, "run", "-o", "text", ".math.add 1,2 ;; .text.upper done")
	require.NoError(t, r.err)
	assert.Equal(t, ".math.add: 3\n.text.upper: DONE\n", r.stdout)
}

func TestRunManifestCommandWithConfirmation(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/ops.yaml", []byte("commands:\n  - name: .restart\n    namespace: .ops\n"), 0o644))

	var prompts []string
	confirm := func(msg string) (bool, error) {
		prompts = append(prompts, msg)
		return false, nil
	}

	r := execute(t, fs, func(a *app) { a.confirm = confirm },
		"run", "--manifest", "/srv/ops.yaml", "-o", "json", ".registry.unregister .ops.restart")
	require.NoError(t, r.err)
	assert.Len(t, prompts, 1)
	assert.JSONEq(t, `[{"command":".registry.unregister","result":"skipped"}]`, r.stdout)

	prompts = nil
	r = execute(t, fs, func(a *app) { a.confirm = confirm },
		"run", "--yes", "--manifest", "/srv/ops.yaml", "-o", "text", ".registry.unregister .ops.restart")
	require.NoError(t, r.err)
	assert.Empty(t, prompts)
	assert.Equal(t, ".registry.unregister: unregistered .ops.restart\n", r.stdout)
}

func TestCommandsAndExport(t *testing.T) {
	r := execute(t, nil, nil, "commands", "--namespace", ".math", "-o", "json")
	require.NoError(t, r.err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, ".math.add", rows[0]["name"])
	assert.Equal(t, ".math.div", rows[1]["name"])

	r = execute(t, nil, nil, "export", "--manifest-format", "json")
	require.NoError(t, r.err)
	defs, err := manifest.Load([]byte(r.stdout), manifest.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, defs, 8)
}

func TestHelpCommand(t *testing.T) {
	r := execute(t, nil, nil, "help", ".math.add")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Usage: .math.add numbers::<List(Integer)>")

	r = execute(t, nil, nil, "help", "run")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Verify a line like check does")

	r = execute(t, nil, nil, "help", ".nope")
	assert.ErrorContains(t, r.err, "command '.nope' not found")
}

func TestKindsCommand(t *testing.T) {
	r := execute(t, nil, nil, "kinds", "-o", "yaml")
	require.NoError(t, r.err)
	for _, kind := range []string{"Enum(dev,prod)", "List(String,;)", "Map(String,Integer)", "JsonString"} {
		assert.Contains(t, r.stdout, kind)
	}
}

func TestConfigCommands(t *testing.T) {
	fs := afero.NewMemMapFs()

	r := execute(t, fs, nil, "config", "init")
	require.NoError(t, r.err)
	exists, err := afero.Exists(fs, configPath)
	require.NoError(t, err)
	assert.True(t, exists)

	r = execute(t, fs, nil, "config", "init")
	assert.ErrorContains(t, r.err, "already exists")

	loaded, err := config.NewLoader("unilang").WithFs(fs).WithPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default().Output, loaded.Output)
	assert.Equal(t, config.Default().Analyzer, loaded.Analyzer)

	r = execute(t, fs, nil, "config", "show", "--strict", "-o", "yaml")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "error_on_positional_after_named: true")
	assert.Contains(t, r.stdout, "format: yaml")

	r = execute(t, fs, nil, "config", "path")
	require.NoError(t, r.err)
	assert.Equal(t, configPath, strings.TrimSpace(r.stdout))
}

func TestInvalidFormatFlag(t *testing.T) {
	r := execute(t, nil, nil, "commands", "-o", "xml")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "output.format")
}

func TestHistoryCommands(t *testing.T) {
	fs := afero.NewMemMapFs()

	r := execute(t, fs, nil, "run", ".math.add 1,2")
	require.NoError(t, r.err)
	r = execute(t, fs, nil, "check", ".math.nope")
	require.Error(t, r.err)

	r = execute(t, fs, nil, "history", "-o", "text")
	require.NoError(t, r.err)
	assert.Equal(t, "1  .math.add 1,2\n2  .math.nope  (CommandNotFound)\n", r.stdout)

	r = execute(t, fs, nil, "history", "top", "-o", "text")
	require.NoError(t, r.err)
	assert.Equal(t, "1\t.math.add\n", r.stdout)

	r = execute(t, fs, nil, "history", "stats", "-o", "json")
	require.NoError(t, r.err)
	var stats []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, float64(2), stats[0]["total"])
	assert.Equal(t, float64(1), stats[0]["failed"])

	r = execute(t, fs, nil, "history", "clear")
	require.NoError(t, r.err)
	r = execute(t, fs, nil, "history", "-o", "json")
	require.NoError(t, r.err)
	assert.JSONEq(t, "[]", r.stdout)
}
