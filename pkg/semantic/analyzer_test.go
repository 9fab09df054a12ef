package semantic

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unilang/unilang/pkg/command"
	"github.com/unilang/unilang/pkg/interner"
	"github.com/unilang/unilang/pkg/parser"
	"github.com/unilang/unilang/pkg/registry"
	"github.com/unilang/unilang/pkg/types"
)

func testRegistry(t testing.TB) *registry.Registry {
	t.Helper()
	reg := registry.New(nil)

	defs := []*command.CommandDefinition{
		command.NewCommand(".add").
			Namespace(".math").
			Aliases("sum").
			Argument(command.NewArgument("numbers", types.ListOf(types.Simple(types.KindInteger), 0)).
				Rules(types.MinItems(2)).
				Build()).
			MustBuild(),
		command.NewCommand(".greet").
			Argument(command.NewArgument("name", types.Simple(types.KindString)).Aliases("n").Build()).
			Argument(command.NewArgument("times", types.Simple(types.KindInteger)).
				Default("1").
				Rules(types.Min(1), types.Max(10)).
				Build()).
			Argument(command.NewArgument("loud", types.Simple(types.KindBoolean)).Optional().Build()).
			MustBuild(),
		command.NewCommand(".deploy").
			Argument(command.NewArgument("env", types.EnumOf("dev", "prod")).Build()).
			Argument(command.NewArgument("token", types.Simple(types.KindString)).Sensitive().Interactive().Build()).
			MustBuild(),
		command.NewCommand(".echo").
			Argument(command.NewArgument("prefix", types.Simple(types.KindString)).Build()).
			Argument(command.NewArgument("words", types.Simple(types.KindString)).Multiple().Optional().Build()).
			MustBuild(),
		command.NewCommand(".cat").
			Argument(command.NewArgument("file", types.Simple(types.KindFile)).Build()).
			Argument(command.NewArgument("dir", types.Simple(types.KindDirectory)).Optional().Build()).
			MustBuild(),
		command.NewCommand(".even").
			Argument(command.NewArgument("n", types.Simple(types.KindInteger)).
				Rules(types.MustParseValidationRule("expr:value % 2 == 0")).
				Build()).
			MustBuild(),
	}
	for _, def := range defs {
		require.NoError(t, reg.Register(def))
	}
	return reg
}

func analyzeLine(t *testing.T, a *Analyzer, line string) ([]*command.VerifiedCommand, error) {
	t.Helper()
	instrs, err := parser.NewParser(parser.DefaultOptions()).ParseMultipleInstructions(line)
	require.NoError(t, err)
	return a.Analyze(instrs)
}

func TestMathAddEndToEnd(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))

	cmds, err := analyzeLine(t, a, ".math.add numbers::1,2,3")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, ".math.add", cmds[0].Name)
	want := types.NewList(types.NewInteger(1), types.NewInteger(2), types.NewInteger(3))
	assert.True(t, want.Equal(cmds[0].Arguments["numbers"]), "got %s", cmds[0].Arguments["numbers"])

	_, err = analyzeLine(t, a, ".math.add numbers::1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var violation *types.RuleViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, types.RuleMinItems, violation.Rule.Type)
	assert.Contains(t, err.Error(), "min_items:2")
}

func TestAliasResolution(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))
	cmds, err := analyzeLine(t, a, ".math.sum 4,5")
	require.NoError(t, err)
	assert.Equal(t, ".math.add", cmds[0].Name)
}

func TestBinding(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))

	tests := []struct {
		line string
		want map[string]types.Value
	}{
		{".greet bob", map[string]types.Value{"name": types.NewString("bob"), "times": types.NewInteger(1)}},
		{".greet bob 3", map[string]types.Value{"name": types.NewString("bob"), "times": types.NewInteger(3)}},
		{".greet times::2 bob", map[string]types.Value{"name": types.NewString("bob"), "times": types.NewInteger(2)}},
		{".greet n::ann 1 yes", map[string]types.Value{"name": types.NewString("ann"), "times": types.NewInteger(1), "loud": types.NewBoolean(true)}},
		{`.greet "the dude" loud::false`, map[string]types.Value{"name": types.NewString("the dude"), "times": types.NewInteger(1), "loud": types.NewBoolean(false)}},
		{".echo > a b c", map[string]types.Value{
			"prefix": types.NewString(">"),
			"words":  types.NewList(types.NewString("a"), types.NewString("b"), types.NewString("c")),
		}},
		{".echo >", map[string]types.Value{"prefix": types.NewString(">")}},
		{".even 4", map[string]types.Value{"n": types.NewInteger(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmds, err := analyzeLine(t, a, tt.line)
			require.NoError(t, err)
			got := cmds[0].Arguments
			require.Len(t, got, len(tt.want))
			for name, want := range tt.want {
				assert.True(t, want.Equal(got[name]), "%s: got %s want %s", name, got[name], want)
			}
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))

	tests := []struct {
		line     string
		kind     ErrorKind
		argument string
		message  string
	}{
		{".math.ad 1,2", ErrCommandNotFound, "", "Did you mean '.math.add'?"},
		{".nothing_like_this", ErrCommandNotFound, "", "Command not found: '.nothing_like_this'"},
		{"x::1", ErrCommandNotFound, "", "No command given"},
		{".greet", ErrMissingRequiredArgument, "name", "Missing required argument 'name'"},
		{".greet bob x", ErrTypeMismatch, "times", "expected Integer but got 'x'"},
		{".math.add numbers::1,x", ErrTypeMismatch, "numbers", "expected Integer but got 'x'"},
		{".greet bob 11", ErrValidationFailed, "times", "max:10"},
		{".greet bob 1 yes extra", ErrTooManyArguments, "", "unexpected value 'extra'"},
		{".greet who::bob", ErrUnknownArgument, "who", "Unknown argument 'who'"},
		{".greet name::a n::b", ErrDuplicateArgument, "name", "given twice"},
		{".deploy env::dev", ErrInteractiveInputRequired, "token", "requires interactive input"},
		{".deploy env::Dev token::x", ErrTypeMismatch, "env", "expected Enum(dev,prod)"},
		{".even 3", ErrValidationFailed, "n", "expr:value % 2 == 0"},
		{".math.add ?", ErrHelpRequested, "", "Help requested for '.math.add'"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := analyzeLine(t, a, tt.line)
			require.Error(t, err)
			se, ok := AsError(err)
			require.True(t, ok, "expected *Error, got %T", err)
			assert.Equal(t, tt.kind, se.Kind, se.Error())
			assert.Equal(t, tt.argument, se.Argument)
			assert.Contains(t, se.Message, tt.message)
			assert.True(t, errors.Is(err, &Error{Kind: tt.kind}))
		})
	}
}

func TestInteractiveIsDistinctFromMissing(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))
	instr, err := parser.ParseSingleStr(".deploy env::prod")
	require.NoError(t, err)

	_, err = a.AnalyzeInstruction(instr)
	assert.True(t, errors.Is(err, ErrInteractive))
	assert.False(t, errors.Is(err, ErrMissing))

	cmd, err := a.AnalyzeInstruction(instr.WithNamedArgument("token", "s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cmd.Arguments["token"].Str)
}

func TestHelpRequestedCarriesHelp(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))
	_, err := analyzeLine(t, a, ".greet ?")
	se, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrHelpRequested, se.Kind)
	assert.Contains(t, se.Help, "Usage: .greet name::<String>")
}

func TestSuggestionsDisabled(t *testing.T) {
	a := NewAnalyzer(testRegistry(t), WithSuggestions(false))
	_, err := analyzeLine(t, a, ".math.ad 1,2")
	se, ok := AsError(err)
	require.True(t, ok)
	assert.Empty(t, se.Suggestion)
	assert.NotContains(t, se.Message, "Did you mean")
}

func TestBatchIsAtomic(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))
	cmds, err := analyzeLine(t, a, ".greet bob ;; .greet ;; .greet ann")
	assert.Nil(t, cmds)
	se, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 1, se.Instruction)
}

func TestInstructionCountScalability(t *testing.T) {
	a := NewAnalyzer(testRegistry(t), WithInterner(interner.New(64)))
	for _, n := range []int{1, 4, 8, 15, 20, 50} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			parts := make([]string, n)
			for i := range parts {
				parts[i] = fmt.Sprintf(".math.add numbers::%d,%d", i, i+1)
			}
			cmds, err := analyzeLine(t, a, strings.Join(parts, " ;; "))
			require.NoError(t, err)
			require.Len(t, cmds, n)
			for i, cmd := range cmds {
				assert.Equal(t, int64(i), cmd.Arguments["numbers"].List[0].Int)
			}
		})
	}
}

func TestPathChecks(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/srv/data", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/srv/data/a.txt", []byte("x"), 0o644))

	a := NewAnalyzer(testRegistry(t), WithFs(fs))

	_, err := analyzeLine(t, a, ".cat /srv/data/a.txt /srv/data")
	require.NoError(t, err)

	for _, line := range []string{
		".cat /srv/data/missing.txt",
		".cat /srv/data",
		".cat /srv/data/a.txt /srv/nope",
	} {
		_, err := analyzeLine(t, a, line)
		assert.True(t, errors.Is(err, ErrValidation), line)
	}

	// Without a filesystem paths are only checked for emptiness.
	_, err = analyzeLine(t, NewAnalyzer(testRegistry(t)), ".cat /srv/data/missing.txt")
	assert.NoError(t, err)
}

func TestSuggest(t *testing.T) {
	a := NewAnalyzer(testRegistry(t))
	got := a.Suggest("mad")
	require.NotEmpty(t, got)
	assert.Equal(t, ".math.add", got[0])
}

func TestPackageAnalyze(t *testing.T) {
	instr, err := parser.ParseSingleStr(".greet bob")
	require.NoError(t, err)
	cmds, err := Analyze([]*parser.GenericInstruction{instr}, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, ".greet", cmds[0].Name)
}
