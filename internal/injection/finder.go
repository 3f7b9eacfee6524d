package injection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/gnolang/weave/internal/token"
)

var (
	ErrNotFound          = errors.New("injection point not found")
	ErrNotClosed         = errors.New("injection point is never closed")
	ErrDuplicateOpening  = errors.New("duplicate opening")
	ErrUnexpectedClosing = errors.New("closing without opening")
	ErrAlreadyClosed     = errors.New("already closed")
	ErrAutoClosedClosing = errors.New("auto-closed point cannot have a closing tag")
)

// Result is the splice computed by a Finder: the trivia list that replaces the
// leading (or trailing) trivia of token Token.
type Result struct {
	Token    int
	Trailing bool
	Trivia   []token.Trivia
	Opening  Point
}

type phase uint8

const (
	seekOpening phase = iota
	opened
	found
)

// location identifies one trivia list of the document.
type location struct {
	token    int
	trailing bool
}

// Finder scans the trivia of a whole document for one injection point.
// A Finder is single use.
type Finder struct {
	name string
	text string

	phase      phase
	revert     bool
	autoClosed bool
	closed     bool
	open       location
	indent     string
	result     Result

	// prefix is the rendered text of the current line so far.
	prefix string
}

// NewFinder returns a finder injecting text into the point called name.
func NewFinder(name, text string) *Finder {
	return &Finder{name: name, text: text}
}

// Inject scans every token's leading then trailing trivia exactly once and
// returns the splice that injects f's text into the point.
func (f *Finder) Inject(tokens []token.Token) (Result, error) {
	for i, t := range tokens {
		if err := f.scanList(location{token: i}, t.Leading); err != nil {
			return Result{}, f.wrap(err, i)
		}
		f.advance(t.Text)
		if err := f.scanList(location{token: i, trailing: true}, t.Trailing); err != nil {
			return Result{}, f.wrap(err, i)
		}
	}
	switch f.phase {
	case seekOpening:
		return Result{}, f.wrap(ErrNotFound, -1)
	case opened:
		return Result{}, f.wrap(ErrNotClosed, f.open.token)
	}
	return f.result, nil
}

func (f *Finder) wrap(err error, at int) error {
	if at < 0 {
		return fmt.Errorf("<%s>: %w", f.name, err)
	}
	return fmt.Errorf("<%s> at token %d: %w", f.name, at, err)
}

func (f *Finder) scanList(loc location, list []token.Trivia) error {
	for k, tr := range list {
		if err := f.step(loc, list, k); err != nil {
			return err
		}
		f.advance(tr.Content)
	}
	return nil
}

// step runs the state machine on trivia k of list.
func (f *Finder) step(loc location, list []token.Trivia, k int) error {
	tr := list[k]
	tag, ok := ParseTrivia(tr)
	if !ok || tag.Name != f.name {
		return nil
	}

	if !tag.IsClosing {
		if f.phase != seekOpening {
			return ErrDuplicateOpening
		}
		f.open = loc
		f.indent = f.column()
		f.result = Result{Token: loc.token, Trailing: loc.trailing, Opening: tag.Point}
		switch {
		case tag.IsAutoClosing:
			f.phase, f.autoClosed = found, true
			f.result.Trivia = f.autoClose(list, k, tag)
		case tag.IsRevert:
			f.phase, f.revert = found, true
			f.result.Trivia = f.afterOpening(list, k)
		default:
			f.phase = opened
		}
		return nil
	}

	switch f.phase {
	case seekOpening:
		return ErrUnexpectedClosing
	case opened:
		if loc != f.open {
			return ErrAlreadyClosed
		}
		f.phase = found
		f.result.Trivia = f.beforeClosing(list, k)
		return nil
	}
	switch {
	case f.autoClosed:
		return ErrAutoClosedClosing
	case f.revert && !f.closed:
		f.closed = true
		return nil
	}
	return ErrAlreadyClosed
}

// advance moves the line prefix past rendered text s.
func (f *Finder) advance(s string) {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		f.prefix = s[i+1:]
		return
	}
	f.prefix += s
}

// column returns the indentation matching the current column: the line
// prefix itself when it is blank, spaces of the same display width otherwise.
func (f *Finder) column() string {
	if strings.TrimLeft(f.prefix, " \t") == "" {
		return f.prefix
	}
	return strings.Repeat(" ", runewidth.StringWidth(f.prefix))
}

// indentText drops trailing line breaks from the injected text and indents
// every line but the first.
func (f *Finder) indentText() string {
	lines := strings.Split(strings.TrimRight(f.text, "\r\n"), "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			lines[i] = f.indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func (f *Finder) beforeClosing(list []token.Trivia, k int) []token.Trivia {
	v := token.NewVerbatimTrivia(f.indentText() + "\n" + f.indent)
	return splice(list, k, k, v)
}

func (f *Finder) afterOpening(list []token.Trivia, k int) []token.Trivia {
	text := "\n" + f.indent + f.indentText()
	next := k + 1
	if list[k].Kind == token.TriviaBlockComment && (next >= len(list) || list[next].Kind != token.TriviaNewline) {
		text += "\n" + f.indent
	}
	return splice(list, next, next, token.NewVerbatimTrivia(text))
}

func (f *Finder) autoClose(list []token.Trivia, k int, tag Tag) []token.Trivia {
	tr := list[k]
	body := tr.Body()
	rewrite := func(p Point) token.Trivia {
		return tr.WithBody(body[:tag.Begin] + p.String() + body[tag.End:])
	}
	text := token.NewVerbatimTrivia("\n" + f.indent + f.indentText() + "\n" + f.indent)
	return splice(list, k, k+1, rewrite(tag.Opening()), text, rewrite(tag.Closing()))
}

// splice returns a copy of list with list[from:to] replaced by items.
func splice(list []token.Trivia, from, to int, items ...token.Trivia) []token.Trivia {
	out := make([]token.Trivia, 0, len(list)-(to-from)+len(items))
	out = append(out, list[:from]...)
	out = append(out, items...)
	return append(out, list[to:]...)
}

// Inject is a shorthand for NewFinder(name, text).Inject(tokens).
func Inject(tokens []token.Token, name, text string) (Result, error) {
	return NewFinder(name, text).Inject(tokens)
}
