// Package filter implements the token-filter pipeline: operators that turn the
// current matches of a document into new matches.
//
// The pipeline state is a list of each-groups. Every group holds zero or more
// matches, each a token span remembering the span of the upstream match it was
// derived from. Producing operators (patterns, span discovery) emit one group
// per upstream match; filtering operators keep the grouping of their input.
package filter

import (
	"errors"
	"strings"

	"github.com/gnolang/weave/internal/span"
	"github.com/gnolang/weave/internal/token"
)

var (
	ErrEmptyPattern = errors.New("empty pattern")
	ErrNoSpan       = errors.New("no enclosing span")
)

// Document is the read-only view of a token sequence the operators work on.
type Document interface {
	Len() int
	Token(i int) token.Token
	Spans() span.Provider
}

// Match is a matched token span together with the upstream span it was found in.
type Match struct {
	Span   token.Span
	Parent token.Span
}

// Group is one each-group of matches.
type Group struct {
	Matches []Match
}

// Operator is one stage of the pipeline.
type Operator interface {
	Apply(doc Document, in []Group) ([]Group, error)
	String() string
}

// Root returns the initial pipeline state: one group matching the whole document.
func Root(doc Document) []Group {
	whole := token.NewSpan(0, doc.Len())
	return []Group{{Matches: []Match{{Span: whole, Parent: whole}}}}
}

// Run applies ops in order, starting from the whole document.
func Run(doc Document, ops []Operator) ([]Group, error) {
	groups := Root(doc)
	for _, op := range ops {
		var err error
		if groups, err = op.Apply(doc, groups); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// Flatten returns the matches of all groups in order.
func Flatten(groups []Group) []Match {
	var out []Match
	for _, g := range groups {
		out = append(out, g.Matches...)
	}
	return out
}

// Describe renders a pipeline for logs.
func Describe(ops []Operator) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " | ")
}

// produce runs fn on every upstream match and returns one group per match.
func produce(in []Group, fn func(m Match) ([]Match, error)) ([]Group, error) {
	var out []Group
	for _, g := range in {
		for _, m := range g.Matches {
			found, err := fn(m)
			if err != nil {
				return nil, err
			}
			out = append(out, Group{Matches: found})
		}
	}
	return out, nil
}

// keep returns the groups of in holding only the matches accepted by fn.
func keep(in []Group, fn func(m Match) bool) []Group {
	out := make([]Group, len(in))
	for i, g := range in {
		var kept []Match
		for _, m := range g.Matches {
			if fn(m) {
				kept = append(kept, m)
			}
		}
		out[i] = Group{Matches: kept}
	}
	return out
}
