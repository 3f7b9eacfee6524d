package lexer

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/gnolang/weave/internal/span"
	"github.com/gnolang/weave/internal/token"
)

const (
	htmlCommentStart = "<!--"
	htmlCommentEnd   = "-->"
	elementType      = "element"
)

// HTML analyzes markup with the golang.org/x/net/html tokenizer. Tags become
// Tag tokens, text is split into Text words, and comments and blanks are trivia.
// Elements form the span tree; a span answers to its tag name as well as to
// the "element" type.
type HTML struct{}

var _ Analyzer = HTML{}

func (HTML) Name() string         { return "html" }
func (HTML) Extensions() []string { return []string{".html", ".htm"} }

func (HTML) Comment(body string) token.Trivia {
	return token.NewComment(token.TriviaBlockComment, htmlCommentStart, body, htmlCommentEnd)
}

func (HTML) Tokenize(src string) ([]token.Token, error) {
	z := html.NewTokenizer(strings.NewReader(src))
	z.SetMaxBuf(0) // unlimited buffer size

	a := &assembler{}
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, &Error{Offset: offset, Err: err}
			}
			break
		}
		raw := string(z.Raw())
		switch tt {
		case html.CommentToken:
			a.addTrivia(htmlComment(raw))
		case html.TextToken:
			if err := splitText(a, raw, offset); err != nil {
				return nil, err
			}
		default:
			if err := a.addToken(token.Tag, raw, offset); err != nil {
				return nil, err
			}
		}
		offset += len(raw)
	}
	// an unfinished tag at the end of the input is dropped by the tokenizer
	if offset < len(src) {
		if err := splitText(a, src[offset:], offset); err != nil {
			return nil, err
		}
		offset = len(src)
	}
	return a.finish(offset)
}

func htmlComment(raw string) token.Trivia {
	tr := token.Trivia{Kind: token.TriviaBlockComment, Content: raw}
	if strings.HasPrefix(raw, htmlCommentStart) {
		tr.CommentStartLen = len(htmlCommentStart)
	}
	if len(raw) >= len(htmlCommentStart)+len(htmlCommentEnd) && strings.HasSuffix(raw, htmlCommentEnd) {
		tr.CommentEndLen = len(htmlCommentEnd)
	}
	return tr
}

// splitText emits the words of a text run as tokens and its blanks as trivia.
func splitText(a *assembler, raw string, offset int) error {
	i := 0
	for i < len(raw) {
		j := i
		if isBlank(raw[i]) {
			for j < len(raw) && isBlank(raw[j]) {
				j++
			}
			whitespace(raw[i:j], a.addTrivia)
		} else {
			for j < len(raw) && !isBlank(raw[j]) {
				j++
			}
			if err := a.addToken(token.Text, raw[i:j], offset+i); err != nil {
				return err
			}
		}
		i = j
	}
	return nil
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

func (HTML) Spans(tokens []token.Token) span.Provider {
	return span.Build(len(tokens), func(i int) span.Delimiter {
		t := tokens[i]
		if t.Type != token.Tag {
			return span.Delimiter{}
		}
		tt, name := tagOf(t.Text)
		switch {
		case tt == html.StartTagToken && !voidElements[name]:
			return span.Delimiter{Role: span.Open, Key: name, Type: elementType, Name: name}
		case tt == html.EndTagToken:
			return span.Delimiter{Role: span.Close, Key: name}
		}
		return span.Delimiter{}
	})
}

// tagOf re-tokenizes a single tag and returns its kind and lower-cased name.
func tagOf(text string) (html.TokenType, string) {
	z := html.NewTokenizer(strings.NewReader(text))
	tt := z.Next()
	name, _ := z.TagName()
	return tt, string(name)
}
