package lexer

import (
	"fortio.org/safecast"

	"github.com/gnolang/weave/internal/token"
)

// assembler attaches trivia to tokens.
// Trivia following a token on the same line, up to and including the first
// newline, is trailing trivia of that token; everything else is leading
// trivia of the next token. Whatever is left at the end of the input becomes
// the leading trivia of the EOF token.
type assembler struct {
	tokens  []token.Token
	pending []token.Trivia
	// trailing is true while trivia still belongs to the previous token.
	trailing bool
}

func (a *assembler) addTrivia(tr token.Trivia) {
	if a.trailing && len(a.tokens) > 0 {
		last := &a.tokens[len(a.tokens)-1]
		last.Trailing = append(last.Trailing, tr)
		if tr.Kind == token.TriviaNewline {
			a.trailing = false
		}
		return
	}
	a.pending = append(a.pending, tr)
}

func (a *assembler) addToken(kind token.Kind, text string, offset int) error {
	off, err := safecast.Conv[uint32](offset)
	if err != nil {
		return &Error{Offset: offset, Err: err}
	}
	a.tokens = append(a.tokens, token.Token{
		Type:    kind,
		Text:    text,
		Leading: a.pending,
		Offset:  off,
	})
	a.pending = nil
	a.trailing = true
	return nil
}

func (a *assembler) finish(end int) ([]token.Token, error) {
	a.trailing = false
	if err := a.addToken(token.EOF, "", end); err != nil {
		return nil, err
	}
	return a.tokens, nil
}

// whitespace splits s, which holds only blanks and line breaks, into
// whitespace and newline trivia.
func whitespace(s string, add func(token.Trivia)) {
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			if start < i {
				add(token.Trivia{Kind: token.TriviaWhitespace, Content: s[start:i]})
			}
			add(token.Trivia{Kind: token.TriviaNewline, Content: "\n"})
			start = i + 1
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				if start < i {
					add(token.Trivia{Kind: token.TriviaWhitespace, Content: s[start:i]})
				}
				add(token.Trivia{Kind: token.TriviaNewline, Content: "\r\n"})
				i++
				start = i + 1
			}
		}
	}
	if start < len(s) {
		add(token.Trivia{Kind: token.TriviaWhitespace, Content: s[start:]})
	}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
