package script

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/tools/txtar"

	"github.com/gnolang/weave/internal/editor"
	"github.com/gnolang/weave/internal/injection"
	"github.com/gnolang/weave/internal/lexer"
	"github.com/gnolang/weave/internal/scope"
	"github.com/gnolang/weave/internal/token"
)

func newEditor(t *testing.T, src string, logger *zap.Logger) *editor.Editor {
	t.Helper()
	an, err := lexer.Lookup("typescript")
	require.NoError(t, err)
	e, err := editor.New(an, src, logger)
	require.NoError(t, err)
	return e
}

func TestInsertTwiceWithoutReparse(t *testing.T) {
	t.Parallel()
	e := newEditor(t, "A B C D", nil)
	require.NoError(t, Execute(`insert "X" after B C; insert "X" after B C;`, e))

	want := []string{"A", "B", "C", "X", "X", "D"}
	if diff := cmp.Diff(want, token.Texts(e.Tokens())); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, e.NeedReparse())
}

func TestInsertSeesReparsedTokens(t *testing.T) {
	t.Parallel()
	e := newEditor(t, "A B C D", nil)
	require.NoError(t, Execute(`insert "X " after B C; reparse; insert "Y " after C X;`, e))

	assert.Equal(t, "A B C X Y D", e.Text())
	assert.Equal(t, []string{"A", "B", "C", "X", "Y ", "D"}, token.Texts(e.Tokens()))
}

func TestReplace(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		src    string
		script string
		want   string
	}{
		{name: "single token", src: "let a = a + 1;", script: `replace a with "z";`, want: "let z = z + 1;"},
		{name: "token run", src: "f(a, b);", script: "replace a , b with \"x\";", want: "f(x);"},
		{name: "overlapping matches", src: "a a a;", script: `replace a a with "b";`, want: "b a;"},
		{name: "whole scope", src: "f(a, b);", script: `in span paren begin replace * with "()"; end`, want: "f();"},
		{name: "keeps outer trivia", src: "x /* c */ y /* d */ z", script: `replace y with "w";`, want: "x /* c */ w /* d */ z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEditor(t, tt.src, nil)
			require.NoError(t, Execute(tt.script, e))
			assert.Equal(t, tt.want, e.Text())
			assert.True(t, e.NeedReparse())
		})
	}
}

func TestScopedInsert(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "deepest spans", script: `in span paren begin insert "!" before *; end`, want: "f!(a); g!(b); f!(c);"},
		{name: "first", script: `in first span paren begin insert "!" before *; end`, want: "f!(a); g(b); f(c);"},
		{name: "last two", script: `in last 2 span paren begin insert "!" before *; end`, want: "f(a); g!(b); f!(c);"},
		{name: "except", script: "in span paren except `(b)` begin insert \"!\" before *; end", want: "f!(a); g(b); f!(c);"},
		{name: "or", script: "in `a` or `c` begin insert \"!\" after *; end", want: "f(a!); g(b); f(c!);"},
		{name: "index", script: `in span paren [1] begin insert "!" before *; end`, want: "f(a); g!(b); f(c);"},
		{name: "where", script: `in span paren where c begin insert "!" before *; end`, want: "f(a); g(b); f!(c);"},
		{name: "nested", script: `in f ( in anchored span paren begin insert "!" after *; end`, want: "f(a)!; g(b); f(c)!;"},
		{name: "before", script: "in before `g` begin insert \"!\" after *; end", want: "f(a); !g(b); f(c);"},
		{name: "after including", script: "in after including `g` begin insert \"!\" before *; end", want: "f(a); !g(b); f(c);"},
		{name: "expect", script: `in span paren expect 3 begin insert "!" before *; end`, want: "f!(a); g!(b); f!(c);"},
		{name: "first per group", script: `in first 2 (each span paren) begin insert "!" before *; end`, want: "f!(a); g!(b); f!(c);"},
		{name: "first across groups", script: `in first 2 across (each span paren) begin insert "!" before *; end`, want: "f!(a); g!(b); f(c);"},
		{name: "last across groups", script: `in last across (each span paren) begin insert "!" before *; end`, want: "f(a); g(b); f!(c);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEditor(t, "f(a); g(b); f(c);", nil)
			require.NoError(t, Execute(tt.script, e))
			assert.Equal(t, tt.want, e.Text())
		})
	}
}

func TestMarkerScope(t *testing.T) {
	t.Parallel()
	e := newEditor(t, "a /* <P/> */ b", nil)
	require.NoError(t, Execute(`in marker <P> begin insert "x" before *; end`, e))
	assert.Equal(t, "a /* <P/> */ xb", e.Text())
}

func TestInjectInto(t *testing.T) {
	t.Parallel()
	e := newEditor(t, "function f() {\n  // <P>\n  // </P>\n}\n", nil)
	require.NoError(t, Execute(`inject "a();\nb();\n" into <P>;`, e))
	assert.Equal(t, "function f() {\n  // <P>\n  a();\n  b();\n  // </P>\n}\n", e.Text())

	require.NoError(t, Execute("reparse;", e))
	err := Execute(`inject "c();" into <P>;`, e)
	require.ErrorIs(t, err, injection.ErrAlreadyClosed)
	var aerr *ApplyError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "P", aerr.Point)
}

func TestUnlessIsIdempotent(t *testing.T) {
	t.Parallel()
	script := "unless <Done> begin\n  insert \"y(); \" before `x();`;\nend\n"

	e := newEditor(t, "x();\n", nil)
	require.NoError(t, Execute(script, e))
	first := e.Text()
	assert.Equal(t, "y(); /* unless <Done/> */ x();\n", first)

	again := newEditor(t, first, nil)
	require.NoError(t, Execute(script, again))
	assert.Equal(t, first, again.Text())
	assert.False(t, again.NeedReparse())
}

func TestUnlessInMarkerScopeIsIdempotent(t *testing.T) {
	t.Parallel()
	script := "in marker <P> begin\n  unless <Done> insert \"x(); \" before *;\nend\n"
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "trailing marker",
			src:  "a; /* <P/> */ b;\n",
			want: "a; /* <P/> */ /* unless <Done/> */ x(); b;\n",
		},
		{
			name: "trailing marker before newline",
			src:  "a; /* <P/> */\nb;\n",
			want: "a; /* <P/> */ /* unless <Done/> */\nx(); b;\n",
		},
		{
			name: "leading marker",
			src:  "a;\n/* <P/> */ b;\n",
			want: "a;\nx(); /* <P/> */ /* unless <Done/> */ b;\n",
		},
		{
			name: "marker at start",
			src:  "/* <P/> */ a;\n",
			want: "x(); /* <P/> */ /* unless <Done/> */ a;\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newEditor(t, tt.src, nil)
			require.NoError(t, Execute(script, e))
			assert.Equal(t, tt.want, e.Text())

			again := newEditor(t, e.Text(), nil)
			require.NoError(t, Execute(script, again))
			assert.Equal(t, tt.want, again.Text())
			assert.False(t, again.NeedReparse())

			// the marks are visible before a reparse too
			require.NoError(t, Execute(script, e))
			assert.Equal(t, tt.want, e.Text())
		})
	}
}

func TestUnlessSkipsMarkedScopes(t *testing.T) {
	t.Parallel()
	script := `in each span brace begin unless <Seen> insert "!" after *; end`

	e := newEditor(t, "{a}\n{b} // <Seen>\n", nil)
	require.NoError(t, Execute(script, e))
	assert.Equal(t, "/* unless <Seen/> */ {a}\n!{b} // <Seen>\n", e.Text())
}

func TestBlockStopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.ErrorLevel)
	e := newEditor(t, "a b", zap.New(core))

	err := Execute("insert \"1\" before a;\nbegin\n  insert \"2\" after missing;\nend\ninsert \"3\" before a;", e)
	require.ErrorIs(t, err, editor.ErrNoMatch)

	var aerr *ApplyError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, `insert "2" after missing;`, aerr.Statement)
	assert.Equal(t, 3, aerr.Pos.Line)
	assert.Equal(t, "1a b", e.Text())

	assert.True(t, e.Monitor().Failed())
	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, `insert "2" after missing;`, fields["statement"])
	assert.Equal(t, int64(3), fields["line"])
}

func TestCountViolation(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.ErrorLevel)
	e := newEditor(t, "f(a); g(b);", zap.New(core))

	err := Execute(`in span paren expect 3 begin insert "!" before *; end`, e)
	require.ErrorIs(t, err, scope.ErrTooFew)
	assert.Equal(t, "f(a); g(b);", e.Text())

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(3), fields["expected"])
	assert.Equal(t, int64(2), fields["actual"])
}

func TestPatternTokenizeError(t *testing.T) {
	t.Parallel()
	e := newEditor(t, "a", nil)
	err := Execute("insert \"x\" after `\"open`;", e)
	require.ErrorIs(t, err, lexer.ErrUnterminatedString)
}

func TestOperatorStackIsRestored(t *testing.T) {
	t.Parallel()
	e := newEditor(t, "f(a);", nil)
	err := Execute(`in span paren in b begin insert "x" after *; end`, e)
	require.ErrorIs(t, err, editor.ErrNoMatch)
	assert.Empty(t, e.Operators())
}

// TestScenarios runs the txtar archives of testdata. Each archive holds an
// input file, a script and the expected output.
func TestScenarios(t *testing.T) {
	t.Parallel()
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ar, err := txtar.ParseFile(file)
			require.NoError(t, err)

			var input, output, src string
			var inputName string
			for _, f := range ar.Files {
				switch {
				case f.Name == "script.weave":
					src = string(f.Data)
				case strings.HasPrefix(f.Name, "input"):
					inputName, input = f.Name, string(f.Data)
				case strings.HasPrefix(f.Name, "output"):
					output = string(f.Data)
				}
			}
			an, err := lexer.ForFile(inputName)
			require.NoError(t, err)
			e, err := editor.New(an, input, nil)
			require.NoError(t, err)

			require.NoError(t, Execute(src, e))
			if diff := cmp.Diff(output, e.Text()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
