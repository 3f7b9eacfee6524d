package span

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/weave/internal/token"
)

func punct(src string) []token.Token {
	var out []token.Token
	for _, f := range strings.Fields(src) {
		kind := token.Ident
		if strings.ContainsAny(f, "()[]{}") {
			kind = token.Punct
		}
		out = append(out, token.Token{Type: kind, Text: f})
	}
	return out
}

func TestBrackets(t *testing.T) {
	t.Parallel()
	// 0 1 2 3 4 5 6 7 8 9
	// f ( a [ b ] ) { c }
	tree := Brackets(punct("f ( a [ b ] ) { c }"))
	require.NotNil(t, tree.Root)
	require.Len(t, tree.Root.Children, 2)

	paren := tree.Root.Children[0]
	assert.Equal(t, "paren", paren.Type)
	assert.Equal(t, token.NewSpan(1, 7), paren.Span)
	require.Len(t, paren.Children, 1)
	assert.Equal(t, token.NewSpan(3, 6), paren.Children[0].Span)
	assert.Same(t, paren, paren.Children[0].Parent)

	assert.Equal(t, token.NewSpan(7, 10), tree.Root.Children[1].Span)
}

func TestBracketsUnbalanced(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		src   string
		spans []token.Span
	}{
		{
			name:  "stray closing",
			src:   ") ( a )",
			spans: []token.Span{token.NewSpan(1, 4)},
		},
		{
			name:  "unclosed opening promotes children",
			src:   "( [ a ]",
			spans: []token.Span{token.NewSpan(1, 4)},
		},
		{
			name:  "closing skips mismatched opening",
			src:   "( [ a ) b",
			spans: []token.Span{token.NewSpan(0, 4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []token.Span
			Brackets(punct(tt.src)).Walk(func(s *SourceSpan) bool {
				if s.Type != DocumentType {
					got = append(got, s.Span)
				}
				return true
			})
			assert.Equal(t, tt.spans, got)
		})
	}
}

func TestProviderQueries(t *testing.T) {
	t.Parallel()
	// 0 1 2 3 4 5 6 7
	// ( ( a ) ( b ) )
	tree := Brackets(punct("( ( a ) ( b ) )"))

	deepest := tree.DeepestSpanAt(2, "paren")
	require.NotNil(t, deepest)
	assert.Equal(t, token.NewSpan(1, 4), deepest.Span)

	top := tree.TopSpanAt(2, "paren", token.NewSpan(0, 8))
	require.NotNil(t, top)
	assert.Equal(t, token.NewSpan(0, 8), top.Span)

	bounded := tree.TopSpanAt(5, "paren", token.NewSpan(1, 8))
	require.NotNil(t, bounded)
	assert.Equal(t, token.NewSpan(4, 7), bounded.Span)

	assert.Nil(t, tree.DeepestSpanAt(2, "brace"))
	assert.Nil(t, tree.TopSpanAt(2, "paren", token.NewSpan(2, 3)))
}

func TestNamedSpans(t *testing.T) {
	t.Parallel()
	tree := Build(4, func(i int) Delimiter {
		switch i {
		case 0:
			return Delimiter{Role: Open, Key: "div", Type: "element", Name: "div"}
		case 3:
			return Delimiter{Role: Close, Key: "div"}
		}
		return Delimiter{}
	})
	s := tree.DeepestSpanAt(1, "div")
	require.NotNil(t, s)
	assert.True(t, s.Is("element"))
	assert.Equal(t, token.NewSpan(0, 4), s.Span)
}
