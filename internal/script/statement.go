package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/weave/internal/editor"
	"github.com/gnolang/weave/internal/filter"
	"github.com/gnolang/weave/internal/injection"
	"github.com/gnolang/weave/internal/token"
)

// Statement is an executable script statement.
type Statement interface {
	// Apply runs the statement against e.
	Apply(e *editor.Editor) error
	// Source returns the script text the statement was parsed from.
	Source() string
	// Start returns the position of the statement in the script.
	Start() Pos
}

// node carries the script location shared by every statement.
type node struct {
	src string
	pos Pos
}

func (n node) Source() string { return n.src }
func (n node) Start() Pos     { return n.pos }

// ApplyError reports the innermost statement that failed.
type ApplyError struct {
	Statement string
	Pos       Pos
	Point     string
	Err       error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Pos, e.Statement, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// fail wraps err with the context of s unless an inner statement already did.
func fail(s Statement, point string, err error) error {
	var aerr *ApplyError
	if errors.As(err, &aerr) {
		return err
	}
	return &ApplyError{Statement: s.Source(), Pos: s.Start(), Point: point, Err: err}
}

// Block applies its statements in order and stops at the first failure.
type Block struct {
	node
	Statements []Statement
}

func (b *Block) Apply(e *editor.Editor) error {
	for _, s := range b.Statements {
		if err := s.Apply(e); err != nil {
			return fail(s, "", err)
		}
	}
	return nil
}

// PatternSource is a token pattern as written in a script. It is tokenized
// with the analyzer of the document it is applied to.
type PatternSource struct {
	Text  string
	Where bool
}

func (p PatternSource) compile(e *editor.Editor) (*filter.Pattern, error) {
	tokens, err := e.Analyzer().Tokenize(p.Text)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", p.Text, err)
	}
	return filter.NewPattern(token.Texts(tokens), p.Where)
}

// withPattern pushes the operator for p, a nil p meaning every scope, and
// calls fn with the operator active.
func withPattern(e *editor.Editor, p *PatternSource, fn func() error) error {
	if p == nil {
		return fn()
	}
	op, err := p.compile(e)
	if err != nil {
		return err
	}
	e.PushOperator(op)
	defer e.PopOperator()
	return fn()
}

// Insert adds Text before the first or after the last token of every match.
type Insert struct {
	node
	Text    string
	After   bool
	Pattern *PatternSource
}

func (s *Insert) Apply(e *editor.Editor) error {
	return withPattern(e, s.Pattern, func() error {
		c, err := e.Cursor()
		if err != nil {
			return err
		}
		n := 0
		for c.NextEach() {
			for c.NextMatch() {
				at := c.Match().Span.Begin
				if s.After {
					at = c.Match().Span.End
				}
				e.InsertAt(at, token.NewVerbatim(s.Text))
				n++
			}
		}
		if n == 0 {
			return editor.ErrNoMatch
		}
		e.SetNeedReparse()
		return nil
	})
}

// Replace substitutes Text for every match. The first token of a match keeps
// the leading trivia of the match and takes its trailing trivia; the other
// tokens are dropped.
type Replace struct {
	node
	Text    string
	Pattern *PatternSource
}

func (s *Replace) Apply(e *editor.Editor) error {
	return withPattern(e, s.Pattern, func() error {
		groups, err := e.Matches()
		if err != nil {
			return err
		}
		n := 0
		done := -1
		for _, m := range filter.Flatten(groups) {
			sp := m.Span
			if !sp.Empty() && e.Token(sp.End-1).Type == token.EOF {
				sp.End--
			}
			if sp.Begin < done {
				continue
			}
			n++
			if sp.Empty() {
				e.InsertAt(sp.Begin, token.NewVerbatim(s.Text))
				continue
			}
			done = sp.End
			first, last := e.Token(sp.Begin), e.Token(sp.End-1)
			repl := token.NewVerbatim(s.Text).WithLeading(first.Leading).WithTrailing(last.Trailing)
			e.Replace(sp.Begin, repl)
			for i := sp.Begin + 1; i < sp.End; i++ {
				e.Replace(i, token.Token{Type: token.Deleted})
			}
		}
		if n == 0 {
			return editor.ErrNoMatch
		}
		e.SetNeedReparse()
		return nil
	})
}

// InjectInto runs the injection-point state machine over the trivia of the
// whole document.
type InjectInto struct {
	node
	Text  string
	Point injection.Point
}

func (s *InjectInto) Apply(e *editor.Editor) error {
	tokens := make([]token.Token, e.Len())
	for i := range tokens {
		tokens[i] = e.Token(i)
	}
	res, err := injection.Inject(tokens, s.Point.Name, s.Text)
	if err != nil {
		return fail(s, s.Point.Name, err)
	}
	tok := e.Token(res.Token)
	if res.Trailing {
		tok = tok.WithTrailing(res.Trivia)
	} else {
		tok = tok.WithLeading(res.Trivia)
	}
	e.Replace(res.Token, tok)
	e.SetNeedReparse()
	return nil
}

// Unless applies Body to the matches that do not mention Point yet, then
// marks their first token so that the next run skips them. An insertion point
// following a commented token is marked in the trailing trivia of that token,
// so the mark stays ahead of whatever Body inserted there.
type Unless struct {
	node
	Point injection.Point
	Body  Statement
}

func (s *Unless) Apply(e *editor.Editor) error {
	e.PushOperator(filter.InjectionFilter{Name: s.Point.Name})
	defer e.PopOperator()

	groups, err := e.Matches()
	if err != nil {
		return err
	}
	matches := filter.Flatten(groups)
	if len(matches) == 0 {
		return nil
	}
	if err := s.Body.Apply(e); err != nil {
		return fail(s.Body, s.Point.Name, err)
	}

	marker := e.Analyzer().Comment(" unless " + injection.Point{Name: s.Point.Name, IsAutoClosing: true}.String() + " ")
	sep := token.Trivia{Kind: token.TriviaWhitespace, Content: " "}
	if marker.Kind == token.TriviaLineComment {
		sep = token.Trivia{Kind: token.TriviaNewline, Content: "\n"}
	}
	marked := map[int]bool{}
	for _, m := range matches {
		i := m.Span.Begin
		if i >= e.Len() || marked[i] {
			continue
		}
		marked[i] = true
		if m.Span.Empty() && i > 0 && hasComment(e.Token(i-1).Trailing) {
			prev := e.Token(i - 1)
			e.Replace(i-1, prev.WithTrailing(appendTrailingMark(prev.Trailing, marker, sep)))
			continue
		}
		tok := e.Token(i)
		leading := append(append([]token.Trivia(nil), tok.Leading...), marker, sep)
		e.Replace(i, tok.WithLeading(leading))
	}
	e.SetNeedReparse()
	return nil
}

func hasComment(list []token.Trivia) bool {
	for _, tr := range list {
		if tr.IsComment() {
			return true
		}
	}
	return false
}

var space = token.Trivia{Kind: token.TriviaWhitespace, Content: " "}

// appendTrailingMark adds marker to trailing trivia, keeping a final newline last.
func appendTrailingMark(trailing []token.Trivia, marker, sep token.Trivia) []token.Trivia {
	body, newline := trailing, []token.Trivia(nil)
	if n := len(trailing); n > 0 && trailing[n-1].Kind == token.TriviaNewline {
		body, newline = trailing[:n-1], trailing[n-1:]
	}
	out := append([]token.Trivia(nil), body...)
	if n := len(out); n == 0 || out[n-1].Kind != token.TriviaWhitespace {
		out = append(out, space)
	}
	out = append(out, marker)
	if newline == nil {
		return append(out, sep)
	}
	return append(out, newline...)
}

// InScope applies Body within the ranges selected by Scopes, each scope
// narrowing the previous one.
type InScope struct {
	node
	Scopes []*ScopeExpr
	Body   *Block
}

func (s *InScope) Apply(e *editor.Editor) error {
	for _, sc := range s.Scopes {
		ops, err := sc.Compile(e)
		if err != nil {
			return err
		}
		for _, op := range ops {
			e.PushOperator(op)
			defer e.PopOperator()
		}
	}
	return s.Body.Apply(e)
}

// Reparse re-tokenizes the document if an earlier statement edited it.
type Reparse struct {
	node
}

func (s *Reparse) Apply(e *editor.Editor) error {
	return e.Reparse()
}

// Describe renders the statements of b, one per line, for diagnostics.
func Describe(b *Block) string {
	var sb strings.Builder
	for _, s := range b.Statements {
		sb.WriteString(s.Source())
		sb.WriteByte('\n')
	}
	return sb.String()
}
