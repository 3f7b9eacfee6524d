// Package span models the structural spans of a tokenized document: a tree of
// typed token ranges (bracket pairs, markup elements) that covering and deepest
// span discovery query by position.
package span

import (
	"sort"

	"github.com/gnolang/weave/internal/token"
)

// DocumentType is the type of the root span, which covers every token.
const DocumentType = "document"

// SourceSpan is a node of the structural tree.
// Type is the span category ("paren", "element", ...); Name is an optional
// finer subtype such as a markup tag name. A query type matches either.
type SourceSpan struct {
	Type     string
	Name     string
	Span     token.Span
	Parent   *SourceSpan
	Children []*SourceSpan
}

// Is reports whether s answers to the requested type.
func (s *SourceSpan) Is(typ string) bool {
	return s.Type == typ || (s.Name != "" && s.Name == typ)
}

// Provider answers structural queries for a document.
type Provider interface {
	// TopSpanAt returns the outermost span of type typ containing token index i
	// and lying inside bound, or nil.
	TopSpanAt(i int, typ string, bound token.Span) *SourceSpan
	// DeepestSpanAt returns the innermost span of type typ containing token index i, or nil.
	DeepestSpanAt(i int, typ string) *SourceSpan
}

// Tree is a Provider backed by an explicit span tree.
type Tree struct {
	Root *SourceSpan
}

var _ Provider = (*Tree)(nil)

func (t *Tree) TopSpanAt(i int, typ string, bound token.Span) *SourceSpan {
	if t == nil || t.Root == nil {
		return nil
	}
	node := t.Root
	for node != nil {
		if node != t.Root && node.Is(typ) && bound.ContainsOrEquals(node.Span) {
			return node
		}
		node = childAt(node, i)
	}
	return nil
}

func (t *Tree) DeepestSpanAt(i int, typ string) *SourceSpan {
	if t == nil || t.Root == nil {
		return nil
	}
	var path []*SourceSpan
	for node := t.Root; node != nil; node = childAt(node, i) {
		path = append(path, node)
	}
	for j := len(path) - 1; j > 0; j-- {
		if path[j].Is(typ) {
			return path[j]
		}
	}
	return nil
}

// childAt returns the child of n whose span holds token i.
func childAt(n *SourceSpan, i int) *SourceSpan {
	k := sort.Search(len(n.Children), func(k int) bool {
		return n.Children[k].Span.End > i
	})
	if k < len(n.Children) && n.Children[k].Span.Has(i) {
		return n.Children[k]
	}
	return nil
}

// Walk visits every span of the tree in pre-order.
func (t *Tree) Walk(fn func(s *SourceSpan) bool) {
	if t == nil || t.Root == nil {
		return
	}
	var visit func(s *SourceSpan) bool
	visit = func(s *SourceSpan) bool {
		if !fn(s) {
			return false
		}
		for _, c := range s.Children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(t.Root)
}
