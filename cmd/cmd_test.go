package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/weave/internal/lexer"
	"github.com/gnolang/weave/weave"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestApplyResults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	changed := writeTemp(t, dir, "a.ts", "let a = 1;\n")
	failed := writeTemp(t, dir, "b.ts", "let b = 1;\n")

	engine, err := weave.New(weave.Config{Rules: []weave.Rule{{Name: "rename", Source: `replace a with "z";`}}})
	require.NoError(t, err)
	var results []*weave.Result
	for _, p := range []string{changed, failed} {
		res, err := engine.Run(p)
		require.NoError(t, err)
		results = append(results, res)
	}

	t.Run("dry run", func(t *testing.T) {
		var out bytes.Buffer
		s, err := applyResults(&out, results, true)
		require.NoError(t, err)
		assert.Equal(t, summary{files: 2, changed: 1, failed: 1}, s)
		assert.Contains(t, out.String(), "+let z = 1;")
		assert.Contains(t, out.String(), "error: rename")

		data, err := os.ReadFile(changed)
		require.NoError(t, err)
		assert.Equal(t, "let a = 1;\n", string(data))
	})

	t.Run("write", func(t *testing.T) {
		var out bytes.Buffer
		_, err := applyResults(&out, results, false)
		require.NoError(t, err)

		data, err := os.ReadFile(changed)
		require.NoError(t, err)
		assert.Equal(t, "let z = 1;\n", string(data))

		data, err = os.ReadFile(failed)
		require.NoError(t, err)
		assert.Equal(t, "let b = 1;\n", string(data))
	})
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".weave.yaml")

	got, err := initConfigurationFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	config, err := weave.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "weave", config.Name)
	assert.Empty(t, config.Rules)

	_, err = initConfigurationFile(path, false)
	assert.ErrorContains(t, err, "already exists")
	_, err = initConfigurationFile(path, true)
	assert.NoError(t, err)
}

func TestPrintTokens(t *testing.T) {
	t.Parallel()
	an, err := lexer.Lookup("typescript")
	require.NoError(t, err)
	tokens, err := an.Tokenize("a /* c */ b\n")
	require.NoError(t, err)

	var out bytes.Buffer
	printTokens(&out, tokens)
	lines := bytes.Split(bytes.TrimRight(out.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, len(tokens))
	assert.Contains(t, string(lines[0]), `"a"`)
	assert.Contains(t, string(lines[0]), `BlockComment("/* c */")`)
	assert.Contains(t, string(lines[len(lines)-1]), "EOF")
}

func TestAnalyzerFor(t *testing.T) {
	t.Parallel()
	an, err := analyzerFor("x.txt", "go")
	require.NoError(t, err)
	assert.Equal(t, "go", an.Name())

	_, err = analyzerFor("x.txt", "")
	assert.ErrorIs(t, err, lexer.ErrUnknownLanguage)
}

func TestReapply(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	target := writeTemp(t, dir, "a.ts", "let a = 1;\n")
	other := writeTemp(t, dir, "b.css", "a { }\n")

	engine, err := weave.New(weave.Config{Rules: []weave.Rule{{
		Name:    "rename",
		Source:  `replace a with "z";`,
		Include: []string{"**/*.ts"},
	}}})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, reapply(&out, engine, nil, target))
	require.NoError(t, reapply(&out, engine, nil, other))
	assert.Equal(t, "updated "+target+"\n", out.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "let z = 1;\n", string(data))

	// a second pass has nothing left to rename
	out.Reset()
	require.NoError(t, reapply(&out, engine, nil, target))
	assert.Contains(t, out.String(), "no match")
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	target := writeTemp(t, dir, "src/a.ts", "let a = 1;\n")
	script := writeTemp(t, dir, "rename.weave", "replace a with \"z\";\n")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"check", "--script", script, "--no-cache", dir})
	err := rootCmd.Execute()
	require.True(t, errors.Is(err, errSilent), "check must report pending changes: %v", err)
	assert.Contains(t, stdout.String(), "+let z = 1;")

	stdout.Reset()
	rootCmd.SetArgs([]string{"apply", "--quiet", "--script", script, "--no-cache", dir})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "let z = 1;\n", string(data))
}
