package weave

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockTransformer struct {
	mock.Mock
}

func (m *mockTransformer) Run(path string) (*Result, error) {
	args := m.Called(path)
	res, _ := args.Get(0).(*Result)
	return res, args.Error(1)
}

func (m *mockTransformer) RunSource(path string, source []byte) (*Result, error) {
	args := m.Called(path, source)
	res, _ := args.Get(0).(*Result)
	return res, args.Error(1)
}

func (m *mockTransformer) Matches(path string) bool {
	return m.Called(path).Bool(0)
}

func createTempFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("let a = 1;\n"), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	want := &Result{Path: "a.ts", Output: "x"}
	m := new(mockTransformer)
	m.On("Run", "a.ts").Return(want, nil)

	got, err := ProcessFile(m, "a.ts")
	require.NoError(t, err)
	assert.Same(t, want, got)
	m.AssertExpectations(t)
}

func TestProcessSource(t *testing.T) {
	t.Parallel()
	want := &Result{Path: "a.ts"}
	m := new(mockTransformer)
	m.On("RunSource", "a.ts", []byte("a")).Return(want, nil)

	got, err := ProcessSource(m, "a.ts", []byte("a"))
	require.NoError(t, err)
	assert.Same(t, want, got)
	m.AssertExpectations(t)
}

func TestProcessPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, "b.ts", "a.ts", "sub/c.ts", "skip.go", ".hidden/d.ts", "notes.txt")

	m := new(mockTransformer)
	m.On("Matches", mock.MatchedBy(func(p string) bool { return strings.HasSuffix(p, ".ts") })).Return(true)
	m.On("Matches", mock.Anything).Return(false)
	for _, p := range paths[:3] {
		m.On("Run", p).Return(&Result{Path: p}, nil)
	}

	var progress bytes.Buffer
	results, err := ProcessPaths(context.Background(), zap.NewNop(), m, []string{dir}, ProcessFile, &progress)
	require.NoError(t, err)

	got := make([]string, 0, len(results))
	for _, r := range results {
		got = append(got, r.Path)
	}
	assert.Equal(t, []string{paths[1], paths[0], paths[2]}, got)
	assert.NotEmpty(t, progress.String())
	m.AssertExpectations(t)
}

func TestProcessPathsExplicitFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, "a.ts", "b.ts")

	m := new(mockTransformer)
	m.On("Matches", paths[0]).Return(true)
	m.On("Matches", paths[1]).Return(false)
	m.On("Run", paths[0]).Return(&Result{Path: paths[0]}, nil)

	results, err := ProcessPaths(context.Background(), nil, m, []string{paths[0], paths[1], paths[0]}, ProcessFile, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, paths[0], results[0].Path)
	m.AssertNumberOfCalls(t, "Run", 1)
}

func TestProcessPathsError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	paths := createTempFiles(t, dir, "a.ts")

	boom := errors.New("boom")
	m := new(mockTransformer)
	m.On("Matches", mock.Anything).Return(true)
	m.On("Run", paths[0]).Return(nil, boom)

	_, err := ProcessPaths(context.Background(), nil, m, []string{dir}, ProcessFile, nil)
	assert.ErrorIs(t, err, boom)
}

func TestProcessPathsMissing(t *testing.T) {
	t.Parallel()
	m := new(mockTransformer)
	_, err := ProcessPaths(context.Background(), nil, m, []string{filepath.Join(t.TempDir(), "none")}, ProcessFile, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathsCanceled(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createTempFiles(t, dir, "a.ts", "b.ts")

	m := new(mockTransformer)
	m.On("Matches", mock.Anything).Return(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ProcessPaths(ctx, nil, m, []string{dir}, ProcessFile, nil)
	assert.ErrorIs(t, err, context.Canceled)
	m.AssertNotCalled(t, "Run", mock.Anything)
}

func TestProcessPathsWithEngine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createTempFiles(t, dir, "src/a.ts", "src/b.go", "lib/c.ts")

	cfgPath := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, WriteConfig(cfgPath, Config{
		Name:  "e2e",
		Rules: []Rule{{Name: "rename", Source: `replace a with "z";`, Include: []string{"src/**"}}},
	}))
	config, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	e, err := New(config)
	require.NoError(t, err)

	results, err := ProcessPaths(context.Background(), nil, e, []string{dir}, ProcessFile, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "let z = 1;\n", r.Output)
		assert.True(t, r.Changed)
		assert.Contains(t, r.Diff(), "+let z = 1;")
	}
}
