package lexer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/weave/internal/token"
)

func mustLookup(t *testing.T, name string) Analyzer {
	t.Helper()
	a, err := Lookup(name)
	require.NoError(t, err)
	return a
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeTypeScript(t *testing.T) {
	t.Parallel()
	src := "let a = 1.5e-3; // note\nfoo(a === `x\ny`)\n"
	tokens, err := mustLookup(t, "typescript").Tokenize(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"let", "a", "=", "1.5e-3", ";", "foo", "(", "a", "===", "`x\ny`", ")"}, token.Texts(tokens))
	assert.Equal(t, token.Keyword, tokens[0].Type)
	assert.Equal(t, token.Number, tokens[3].Type)
	assert.Equal(t, token.String, tokens[9].Type)
	assert.Equal(t, token.EOF, tokens[len(tokens)-1].Type)

	semi := tokens[4]
	require.Len(t, semi.Trailing, 3)
	assert.Equal(t, token.TriviaWhitespace, semi.Trailing[0].Kind)
	assert.Equal(t, token.TriviaLineComment, semi.Trailing[1].Kind)
	assert.Equal(t, " note", semi.Trailing[1].Body())
	assert.Equal(t, token.TriviaNewline, semi.Trailing[2].Kind)
	assert.Empty(t, tokens[5].Leading)

	assert.Equal(t, src, token.Render(tokens))
}

func TestTriviaAttachment(t *testing.T) {
	t.Parallel()
	src := "a  /* x */\n\n  // lead\nb\n\n// end\n"
	tokens, err := mustLookup(t, "go").Tokenize(src)
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	a, b, eof := tokens[0], tokens[1], tokens[2]
	require.Len(t, a.Trailing, 3)
	assert.Equal(t, token.TriviaBlockComment, a.Trailing[1].Kind)
	assert.Equal(t, " x ", a.Trailing[1].Body())

	require.Len(t, b.Leading, 4)
	assert.Equal(t, "\n", b.Leading[0].Content)
	assert.Equal(t, "  ", b.Leading[1].Content)
	assert.Equal(t, "// lead", b.Leading[2].Content)

	assert.Equal(t, token.EOF, eof.Type)
	assert.Equal(t, []string{"\n", "// end", "\n"}, []string{eof.Leading[0].Content, eof.Leading[1].Content, eof.Leading[2].Content})
	assert.Equal(t, src, token.Render(tokens))
}

func TestTokenizeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		lang   string
		src    string
		err    error
		offset int
	}{
		{name: "unterminated string", lang: "typescript", src: `x = "abc`, err: ErrUnterminatedString, offset: 4},
		{name: "string broken by newline", lang: "go", src: "'a\n'", err: ErrUnterminatedString, offset: 0},
		{name: "unterminated comment", lang: "css", src: "a { } /* open", err: ErrUnterminatedComment, offset: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := mustLookup(t, tt.lang).Tokenize(tt.src)
			require.ErrorIs(t, err, tt.err)
			var lerr *Error
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, tt.offset, lerr.Offset)
		})
	}
}

func TestSQLDialect(t *testing.T) {
	t.Parallel()
	src := "select a -- pick\nfrom t where x <> 'it''s';"
	tokens, err := mustLookup(t, "sql").Tokenize(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"select", "a", "from", "t", "where", "x", "<>", "'it'", "'s'", ";"}, token.Texts(tokens))
	assert.Equal(t, token.TriviaLineComment, tokens[1].Trailing[1].Kind)
	assert.Equal(t, src, token.Render(tokens))

	c := mustLookup(t, "sql").Comment(" <P/> ")
	assert.Equal(t, "/* <P/> */", c.Content)
}

func TestHTML(t *testing.T) {
	t.Parallel()
	src := "<div>\n  <!-- <P/> -->\n  <p class=\"x\">hi there</p><br>\n</div>\n"
	an := mustLookup(t, "html")
	tokens, err := an.Tokenize(src)
	require.NoError(t, err)
	assert.Equal(t, src, token.Render(tokens))

	// 0 <div> 1 <p> 2 hi 3 there 4 </p> 5 <br> 6 </div> 7 EOF
	require.Len(t, tokens, 8)
	assert.Equal(t,
		[]token.Kind{token.Tag, token.Tag, token.Text, token.Text, token.Tag, token.Tag, token.Tag, token.EOF},
		kinds(tokens))

	var comment token.Trivia
	for _, tr := range tokens[1].Leading {
		if tr.IsComment() {
			comment = tr
		}
	}
	assert.Equal(t, " <P/> ", comment.Body())

	spans := an.Spans(tokens)
	p := spans.DeepestSpanAt(2, "element")
	require.NotNil(t, p)
	assert.Equal(t, token.NewSpan(1, 5), p.Span)
	assert.Equal(t, "p", p.Name)

	div := spans.TopSpanAt(2, "element", token.NewSpan(0, len(tokens)))
	require.NotNil(t, div)
	assert.Equal(t, token.NewSpan(0, 7), div.Span)

	br := spans.DeepestSpanAt(5, "element")
	require.NotNil(t, br)
	assert.Equal(t, "div", br.Name)
	assert.NotNil(t, spans.DeepestSpanAt(3, "p"))

	assert.Equal(t, "<!-- x -->", an.Comment(" x ").Content)
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	a, err := ForFile("src/app/Main.TS")
	require.NoError(t, err)
	assert.Equal(t, "typescript", a.Name())

	_, err = ForFile("README")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
	_, err = Lookup("cobol")
	assert.ErrorIs(t, err, ErrUnknownLanguage)

	assert.Contains(t, Extensions(), ".gno")
	assert.Contains(t, Extensions(), ".html")
}

func registered() []Analyzer {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Analyzer, 0, len(registry))
	for _, a := range registry {
		out = append(out, a)
	}
	return out
}

func TestRenderRoundTrip(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"",
		"\n",
		"a b\n",
		"#1<<a(#/é<",
		"<a{-'aa*- -*",
		"<div class=\"x\">t</div",
		"<p>text <b",
		"<!-- open",
		"f(a) /* c */ // d\n\tg[b];\n",
	}
	for _, a := range registered() {
		t.Run(a.Name(), func(t *testing.T) {
			t.Parallel()
			for _, src := range inputs {
				tokens, err := a.Tokenize(src)
				if err != nil {
					continue
				}
				assert.Equal(t, src, token.Render(tokens), "input %q", src)
			}
		})
	}
}

func TestRenderRoundTripRandom(t *testing.T) {
	t.Parallel()
	const alphabet = "ab1 \t\n<>/!-=\"'`{}()[]*#;.é\\"
	letters := []rune(alphabet)
	for _, a := range registered() {
		t.Run(a.Name(), func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewSource(1))
			for range 2000 {
				buf := make([]rune, rng.Intn(24))
				for i := range buf {
					buf[i] = letters[rng.Intn(len(letters))]
				}
				src := string(buf)
				tokens, err := a.Tokenize(src)
				if err != nil {
					continue
				}
				if !assert.Equal(t, src, token.Render(tokens), "input %q", src) {
					return
				}
			}
		})
	}
}
