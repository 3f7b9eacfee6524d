package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func paths(root string, files []FileInfo) []string {
	var out []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScan(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"routes.ts":                "const routes = [];",
		"app.tsx":                  "export {}",
		"notes.txt":                "This is a text file",
		"src/index.ts":             "import './routes';",
		".git/hooks/pre-commit.ts": "x",
		"node_modules/lib/a.ts":    "x",
	})

	files, err := New(dir, ".ts", ".tsx").Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"app.tsx", "routes.ts", "src/index.ts"}, paths(dir, files))
	for _, f := range files {
		assert.Greater(t, f.Size, int64(0))
	}
}

func TestScanDefaultExtensions(t *testing.T) {
	t.Parallel()
	dir := writeTree(t, map[string]string{
		"main.go":     "package main",
		"index.html":  "<p></p>",
		"schema.sql":  "select 1;",
		"README.md":   "# readme",
		"style/a.css": "a {}",
	})

	files, err := New(dir).Scan()
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "main.go", "schema.sql", "style/a.css"}, paths(dir, files))
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()
	_, err := New(filepath.Join(t.TempDir(), "missing")).Scan()
	assert.Error(t, err)
}
