package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanRelations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		a, b             Span
		contains         bool
		containsOrEquals bool
		overlaps         bool
	}{
		{"equal", NewSpan(1, 4), NewSpan(1, 4), false, true, true},
		{"strictly inside", NewSpan(0, 10), NewSpan(2, 5), true, true, true},
		{"partial overlap", NewSpan(0, 5), NewSpan(3, 8), false, false, true},
		{"adjacent", NewSpan(0, 3), NewSpan(3, 6), false, false, false},
		{"empty at boundary", NewSpan(0, 3), NewSpan(3, 3), true, true, false},
		{"disjoint", NewSpan(0, 2), NewSpan(5, 6), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.contains, tt.a.Contains(tt.b))
			assert.Equal(t, tt.containsOrEquals, tt.a.ContainsOrEquals(tt.b))
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
		})
	}
}

func TestNewSpanPanicsOnInvertedRange(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewSpan(3, 1) })
}

func TestTriviaBody(t *testing.T) {
	t.Parallel()
	c := NewComment(TriviaBlockComment, "/*", " <Imports> ", "*/")
	assert.Equal(t, "/* <Imports> */", c.Content)
	assert.Equal(t, " <Imports> ", c.Body())
	assert.Equal(t, "/*<Other/>*/", c.WithBody("<Other/>").Content)

	ws := Trivia{Kind: TriviaWhitespace, Content: "  "}
	assert.Equal(t, "  ", ws.Body())
	assert.False(t, ws.IsComment())
}

func TestTokenImmutability(t *testing.T) {
	t.Parallel()
	leading := []Trivia{{Kind: TriviaWhitespace, Content: " "}}
	tok := Token{Type: Ident, Text: "a", Leading: leading}

	edited := tok.WithLeading(append([]Trivia{NewComment(TriviaLineComment, "//", " x", "")}, tok.Leading...))
	assert.Len(t, tok.Leading, 1)
	assert.Len(t, edited.Leading, 2)

	edited.Leading[1].Content = "\t"
	assert.Equal(t, " ", tok.Leading[0].Content)
}

func TestRender(t *testing.T) {
	t.Parallel()
	tokens := []Token{
		{Type: Ident, Text: "a", Trailing: []Trivia{{Kind: TriviaWhitespace, Content: " "}}},
		NewVerbatim("X"),
		Token{Type: Ident, Text: "b", Leading: []Trivia{NewComment(TriviaBlockComment, "/*", "c", "*/")}}.Deleted(),
		{Type: EOF},
	}
	assert.Equal(t, "a X/*c*/", Render(tokens))
	assert.Equal(t, []string{"a", "X"}, Texts(tokens))
}
