// Package editor owns the token sequence of a document while statements edit
// it.
//
// Edits are copy-on-write: the editor keeps the tokens of the last
// tokenization as a snapshot, with replaced tokens and inserted tokens kept
// aside. Matching always runs over snapshot positions with replacements
// visible; inserted tokens only become matchable once the document is
// reparsed.
package editor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/weave/internal/filter"
	"github.com/gnolang/weave/internal/lexer"
	"github.com/gnolang/weave/internal/span"
	"github.com/gnolang/weave/internal/token"
)

var ErrNoMatch = errors.New("no match")

// Editor is a mutable view over a tokenized document.
type Editor struct {
	analyzer lexer.Analyzer
	tokens   []token.Token
	replaced map[int]token.Token
	inserted map[int][]token.Token
	spans    span.Provider

	ops         []filter.Operator
	needReparse bool
	monitor     *Monitor
}

var _ filter.Document = (*Editor)(nil)

// New tokenizes src with an and returns an editor over the result.
func New(an lexer.Analyzer, src string, logger *zap.Logger) (*Editor, error) {
	tokens, err := an.Tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("tokenize with %s: %w", an.Name(), err)
	}
	return FromTokens(an, tokens, logger), nil
}

// FromTokens returns an editor over already tokenized input.
func FromTokens(an lexer.Analyzer, tokens []token.Token, logger *zap.Logger) *Editor {
	e := &Editor{
		analyzer: an,
		monitor:  NewMonitor(logger),
	}
	e.reset(tokens)
	return e
}

func (e *Editor) reset(tokens []token.Token) {
	e.tokens = tokens
	e.replaced = map[int]token.Token{}
	e.inserted = map[int][]token.Token{}
	e.spans = nil
}

func (e *Editor) Analyzer() lexer.Analyzer { return e.analyzer }
func (e *Editor) Monitor() *Monitor        { return e.monitor }

// Len returns the number of snapshot tokens, the EOF token included.
func (e *Editor) Len() int { return len(e.tokens) }

// Token returns token i of the snapshot, or its replacement.
func (e *Editor) Token(i int) token.Token {
	if t, ok := e.replaced[i]; ok {
		return t
	}
	return e.tokens[i]
}

// Spans returns the structural spans of the current view.
func (e *Editor) Spans() span.Provider {
	if e.spans == nil {
		view := make([]token.Token, len(e.tokens))
		for i := range view {
			view[i] = e.Token(i)
		}
		e.spans = e.analyzer.Spans(view)
	}
	return e.spans
}

// Replace installs tok in place of token i.
func (e *Editor) Replace(i int, tok token.Token) {
	e.checkIndex(i, e.Len()-1)
	e.replaced[i] = tok
	e.spans = nil
}

// Delete keeps the trivia of token i but drops its text.
func (e *Editor) Delete(i int) {
	e.Replace(i, e.Token(i).Deleted())
}

// InsertAt inserts tok in the gap before snapshot token i; i == Len()
// appends at the end of the document. Tokens inserted in the same gap keep
// their insertion order.
func (e *Editor) InsertAt(i int, tok token.Token) {
	e.checkIndex(i, e.Len())
	e.inserted[i] = append(e.inserted[i], tok)
}

func (e *Editor) InsertBefore(i int, tok token.Token) { e.InsertAt(i, tok) }
func (e *Editor) InsertAfter(i int, tok token.Token)  { e.InsertAt(i+1, tok) }

func (e *Editor) checkIndex(i, limit int) {
	if i < 0 || i > limit {
		panic(fmt.Sprintf("editor: token index %d out of range [0, %d]", i, limit))
	}
}

// PushOperator activates op on top of the operator stack.
func (e *Editor) PushOperator(op filter.Operator) {
	e.ops = append(e.ops, op)
}

// PopOperator removes the most recently pushed operator.
func (e *Editor) PopOperator() {
	if len(e.ops) == 0 {
		panic("editor: pop of an empty operator stack")
	}
	e.ops = e.ops[:len(e.ops)-1]
}

// Operators returns a copy of the operator stack, bottom first.
func (e *Editor) Operators() []filter.Operator {
	return append([]filter.Operator(nil), e.ops...)
}

// Matches runs the operator stack over the document.
func (e *Editor) Matches() ([]filter.Group, error) {
	return filter.Run(e, e.ops)
}

// Cursor runs the operator stack and returns a cursor over the matches.
func (e *Editor) Cursor() (*Cursor, error) {
	groups, err := e.Matches()
	if err != nil {
		return nil, err
	}
	return newCursor(e, groups), nil
}

func (e *Editor) SetNeedReparse()   { e.needReparse = true }
func (e *Editor) NeedReparse() bool { return e.needReparse }

// Tokens returns the current token sequence, inserted tokens included.
func (e *Editor) Tokens() []token.Token {
	out := make([]token.Token, 0, len(e.tokens))
	for i := range e.tokens {
		out = append(out, e.inserted[i]...)
		out = append(out, e.Token(i))
	}
	return append(out, e.inserted[len(e.tokens)]...)
}

// Text renders the current document.
func (e *Editor) Text() string {
	return token.Render(e.Tokens())
}

// Reparse re-tokenizes the current text when an edit asked for it. On
// failure the editor keeps its current state.
func (e *Editor) Reparse() error {
	if !e.needReparse {
		return nil
	}
	tokens, err := e.analyzer.Tokenize(e.Text())
	if err != nil {
		return fmt.Errorf("reparse: %w", err)
	}
	e.reset(tokens)
	e.needReparse = false
	return nil
}
