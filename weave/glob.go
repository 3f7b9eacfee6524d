package weave

import (
	"path"
	"path/filepath"
	"strings"
)

// MatchGlob reports whether name matches pattern. Segments are matched with
// path.Match; a "**" segment matches zero or more directories.
func MatchGlob(pattern, name string) bool {
	pattern = normalize(pattern)
	name = normalize(name)
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func normalize(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(p, "./")
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], name[0]); err != nil || !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}

// includes reports whether r applies to name.
func (r Rule) includes(name string) bool {
	if len(r.Include) == 0 {
		return true
	}
	for _, p := range r.Include {
		if MatchGlob(p, name) {
			return true
		}
	}
	return false
}
