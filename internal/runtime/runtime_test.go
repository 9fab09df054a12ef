package runtime

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/config"
	"github.com/unilang/unilang/pkg/deprecation"
	"github.com/unilang/unilang/pkg/interactive"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/semantic"
)

const opsManifest = `
commands:
  - name: .restart
    namespace: .ops
    description: Restarts a service
    arguments:
      - name: service
        kind: Enum(api,worker)
`

type harness struct {
	rt      *Runtime
	fs      afero.Fs
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	confirm []string
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	h := &harness{
		fs:     afero.NewMemMapFs(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	require.NoError(t, afero.WriteFile(h.fs, "/etc/unilang/ops.yaml", []byte(opsManifest), 0o644))

	cfg := config.Default()
	cfg.Log.Level = "disabled"
	cfg.Output.Color = "never"
	cfg.Manifests = []string{"/etc/unilang/ops.yaml"}
	if mutate != nil {
		mutate(cfg)
	}

	rt, err := New(cfg, Options{
		Version: "1.2.3",
		Fs:      h.fs,
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		Confirm: func(msg string) (bool, error) {
			h.confirm = append(h.confirm, msg)
			return true, nil
		},
		Warnings:    &deprecation.WarningConfig{Enabled: true, ShowInCI: true},
		HistoryPath: "/state/unilang/history.json",
	})
	require.NoError(t, err)
	h.rt = rt
	return h
}

func TestBuiltinsAreStatic(t *testing.T) {
	h := newHarness(t, nil)
	reg := h.rt.Registry()

	for _, name := range []string{".math.add", ".math.div", ".text.echo", ".text.upper", ".session.login", ".version"} {
		assert.True(t, reg.IsStatic(name), name)
		_, ok := reg.Routine(name)
		assert.True(t, ok, name)
	}
	assert.False(t, reg.IsStatic(".ops.restart"))

	var names []string
	for _, def := range h.rt.Commands() {
		names = append(names, def.FullName())
	}
	assert.Contains(t, names, ".ops.restart")
}

func TestRunBuiltins(t *testing.T) {
	h := newHarness(t, nil)

	tests := []struct {
		line string
		want []any
	}{
		{".math.add 1,2,3", []any{int64(6)}},
		{".math.sum numbers::4,5", []any{int64(9)}},
		{".math.div 10 4", []any{2.5}},
		{".text.echo a b c", []any{"a b c"}},
		{".text.echo", []any{""}},
		{`.text.upper "hello world"`, []any{"HELLO WORLD"}},
		{".version", []any{"1.2.3"}},
		{".text.upper a ;; .math.add 1,1", []any{"A", int64(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			results, err := h.rt.Run(context.Background(), tt.line, nil)
			require.NoError(t, err)
			require.Len(t, results, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, results[i].Value)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.rt.Run(ctx, ".math.div 1 0", nil)
	assert.True(t, errors.Is(err, semantic.ErrValidation), "%v", err)

	_, err = h.rt.Run(ctx, ".math.add 1 ;;", nil)
	_, ok := parser.AsParseError(err)
	assert.True(t, ok, "%v", err)

	_, err = h.rt.Run(ctx, ".ops.restart api", nil)
	assert.EqualError(t, err, "no routine bound to '.ops.restart'")

	_, err = h.rt.Run(ctx, ".ops.restart db", nil)
	assert.True(t, errors.Is(err, semantic.ErrType), "%v", err)
}

func TestCheckPromptsForInteractiveArguments(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.rt.Check(".session.login alice", nil)
	assert.True(t, errors.Is(err, semantic.ErrInteractive))

	var asked []string
	asker := interactive.AskerFunc(func(arg *command.ArgumentDefinition) (string, error) {
		asked = append(asked, arg.Name)
		return "pw", nil
	})
	results, err := h.rt.Run(context.Background(), ".session.login alice", asker)
	require.NoError(t, err)
	assert.Equal(t, []string{"password"}, asked)
	assert.Equal(t, "session opened for alice (60 minutes)", results[0].Value)

	// .session.login is beta.
	assert.Contains(t, h.stderr.String(), "Command '.session.login' is beta")
}

func TestDeprecatedCommandNotice(t *testing.T) {
	h := newHarness(t, nil)
	results, err := h.rt.Run(context.Background(), ".text.shout hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "HI", results[0].Value)
	assert.Contains(t, h.stderr.String(), "Command '.text.shout' is deprecated: use .text.upper")
}

func TestUnregisterAsksForConfirmation(t *testing.T) {
	h := newHarness(t, nil)

	results, err := h.rt.Run(context.Background(), ".registry.unregister .ops.restart", nil)
	require.NoError(t, err)
	assert.Equal(t, "unregistered .ops.restart", results[0].Value)
	assert.Equal(t, []string{"Run '.registry.unregister' with name::.ops.restart?"}, h.confirm)

	_, ok := h.rt.Registry().Command(".ops.restart")
	assert.False(t, ok)

	_, err = h.rt.Run(context.Background(), ".registry.unregister .math.add", nil)
	assert.ErrorContains(t, err, "static commands cannot be unregistered")
}

func TestStrictParser(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.Parser = parser.StrictOptions()
	})
	_, err := h.rt.Parse(".text.echo words::a b")
	require.Error(t, err)

	lenient := newHarness(t, nil)
	instrs, err := lenient.rt.Parse(".text.echo words::a b")
	require.NoError(t, err)
	assert.Len(t, instrs, 1)
}

func TestHelp(t *testing.T) {
	h := newHarness(t, nil)

	text, err := h.rt.Help(".math.sum")
	require.NoError(t, err)
	assert.Contains(t, text, "Usage: .math.add")

	_, err = h.rt.Help(".nope")
	assert.ErrorContains(t, err, "command '.nope' not found")
}

func TestRender(t *testing.T) {
	h := newHarness(t, nil)
	results, err := h.rt.Run(context.Background(), ".math.add 1,2 ;; .version", nil)
	require.NoError(t, err)

	require.NoError(t, h.rt.Render(Results(results), "text"))
	assert.Equal(t, ".math.add: 3\n.version: 1.2.3\n", h.stdout.String())

	h.stdout.Reset()
	require.NoError(t, h.rt.Render(Results(results), "json"))
	assert.JSONEq(t, `[{"command":".math.add","result":3},{"command":".version","result":"1.2.3"}]`, h.stdout.String())

	require.NoError(t, h.rt.RenderError(errors.New("boom"), "table"))
	assert.Equal(t, "Error: boom\n", h.stderr.String())
}

func TestManifestErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "disabled"
	cfg.Manifests = []string{"/missing.yaml"}
	_, err := New(cfg, Options{Fs: afero.NewMemMapFs()})
	assert.ErrorContains(t, err, "failed to read manifest")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/clash.yaml", []byte("commands:\n  - name: .add\n    namespace: .math\n"), 0o644))
	cfg.Manifests = []string{"/clash.yaml"}
	_, err = New(cfg, Options{Fs: fs})
	assert.ErrorContains(t, err, "failed to register commands from /clash.yaml")
}

func TestHistoryRecordsLines(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.rt.Run(ctx, ".math.add 1,2", nil)
	require.NoError(t, err)
	_, err = h.rt.Check(".math.nope", nil)
	require.Error(t, err)
	_, err = h.rt.Run(ctx, ".session.login bob password::hunter2", nil)
	require.NoError(t, err)
	_, err = h.rt.Run(ctx, ".math.add 1 ;;", nil)
	require.Error(t, err)

	entries := h.rt.History().Recent(0)
	require.Len(t, entries, 4)

	assert.Equal(t, "run", entries[0].Mode)
	assert.True(t, entries[0].Success)
	assert.Equal(t, []string{".math.add"}, entries[0].Commands)

	assert.Equal(t, "check", entries[1].Mode)
	assert.Equal(t, "CommandNotFound", entries[1].Error)

	assert.NotContains(t, entries[2].Line, "hunter2")
	assert.Contains(t, entries[2].Line, ".session.login bob password::")

	assert.Equal(t, "TrailingDelimiter", entries[3].Error)

	exists, err := afero.Exists(h.fs, "/state/unilang/history.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestHistoryDisabled(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) { cfg.History.Enabled = false })
	_, err := h.rt.Run(context.Background(), ".version", nil)
	require.NoError(t, err)
	assert.Nil(t, h.rt.History())
}
