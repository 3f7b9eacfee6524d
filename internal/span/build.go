package span

import (
	"sort"

	"github.com/gnolang/weave/internal/token"
)

// Role classifies a token for tree building.
type Role uint8

const (
	None Role = iota
	Open
	Close
)

// Delimiter describes how a single token takes part in the span tree.
// Opening and closing delimiters pair up when their Keys are equal.
type Delimiter struct {
	Role Role
	Key  string
	Type string
	Name string
}

// Classifier returns the delimiter role of token i.
type Classifier func(i int) Delimiter

// Build constructs the span tree of n tokens. A closing delimiter pairs with
// the nearest pending opening of the same key; openings it skips over are
// discarded and their children promoted. Closings without an opening and
// openings never closed do not produce spans.
func Build(n int, classify Classifier) *Tree {
	root := &SourceSpan{Type: DocumentType, Span: token.NewSpan(0, n)}
	var stack []*SourceSpan

	parentOf := func(depth int) *SourceSpan {
		if depth == 0 {
			return root
		}
		return stack[depth-1]
	}
	discard := func(depth int) {
		node := stack[depth]
		p := parentOf(depth)
		for _, c := range node.Children {
			c.Parent = p
		}
		p.Children = append(p.Children, node.Children...)
	}

	keys := make([]string, 0)
	for i := 0; i < n; i++ {
		d := classify(i)
		switch d.Role {
		case Open:
			stack = append(stack, &SourceSpan{Type: d.Type, Name: d.Name, Span: token.Span{Begin: i}})
			keys = append(keys, d.Key)
		case Close:
			at := -1
			for k := len(keys) - 1; k >= 0; k-- {
				if keys[k] == d.Key {
					at = k
					break
				}
			}
			if at < 0 {
				continue
			}
			for k := len(stack) - 1; k > at; k-- {
				discard(k)
			}
			node := stack[at]
			node.Span.End = i + 1
			p := parentOf(at)
			node.Parent = p
			p.Children = append(p.Children, node)
			stack = stack[:at]
			keys = keys[:at]
		}
	}
	for k := len(stack) - 1; k >= 0; k-- {
		discard(k)
	}

	sortChildren(root)
	return &Tree{Root: root}
}

func sortChildren(s *SourceSpan) {
	sort.SliceStable(s.Children, func(a, b int) bool {
		return s.Children[a].Span.Begin < s.Children[b].Span.Begin
	})
	for _, c := range s.Children {
		sortChildren(c)
	}
}

// BracketType names the span type of the bracket pairs recognised by Brackets.
var BracketType = map[string]string{
	"(": "paren",
	"[": "bracket",
	"{": "brace",
}

var closingBracket = map[string]string{
	")": "(",
	"]": "[",
	"}": "{",
}

// Brackets builds the span tree of matching (), [] and {} pairs of tokens.
func Brackets(tokens []token.Token) *Tree {
	return Build(len(tokens), func(i int) Delimiter {
		t := tokens[i]
		if t.Type != token.Punct {
			return Delimiter{}
		}
		if typ, ok := BracketType[t.Text]; ok {
			return Delimiter{Role: Open, Key: t.Text, Type: typ}
		}
		if open, ok := closingBracket[t.Text]; ok {
			return Delimiter{Role: Close, Key: open}
		}
		return Delimiter{}
	})
}
