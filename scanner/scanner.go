// Package scanner finds the files a transformation can apply to.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnolang/weave/internal/lexer"
)

type FileInfo struct {
	Path string
	Size int64
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

type Scanner struct {
	rootDir    string
	extensions map[string]bool
}

// New scans rootDir for files with one of extensions, or for every file a
// registered analyzer handles when none is given.
func New(rootDir string, extensions ...string) *Scanner {
	if len(extensions) == 0 {
		extensions = lexer.Extensions()
	}
	s := &Scanner{rootDir: rootDir, extensions: map[string]bool{}}
	for _, ext := range extensions {
		s.extensions[ext] = true
	}
	return s
}

// Scan walks the root directory and returns the target files sorted by path.
// Hidden directories are skipped.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.rootDir && (strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.isTargetFile(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func (s *Scanner) isTargetFile(path string) bool {
	return s.extensions[filepath.Ext(path)]
}
