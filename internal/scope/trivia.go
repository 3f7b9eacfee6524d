package scope

import "github.com/gnolang/weave/internal/token"

// TriviaMatcher yields an insertion point before every token whose leading
// trivia satisfies Match and after every token whose trailing trivia does.
// Every insertion point gets an each-group of its own.
type TriviaMatcher struct {
	Match func(tr token.Trivia) bool
	Desc  string

	last  Location
	any   bool
	count int
}

var _ Builder = (*TriviaMatcher)(nil)

func (m *TriviaMatcher) Enter(n Node) ([]Range, error) {
	return m.emitIf(n.Token.Leading, Location(n.Index)), nil
}

func (m *TriviaMatcher) Leave(n Node) ([]Range, error) {
	return m.emitIf(n.Token.Trailing, Location(n.Index).Next()), nil
}

func (m *TriviaMatcher) Conclude() ([]Range, error) { return nil, nil }

func (m *TriviaMatcher) emitIf(list []token.Trivia, at Location) []Range {
	// the trailing trivia of a token and the leading trivia of the next one
	// share the same gap
	if m.any && m.last == at {
		return nil
	}
	for _, tr := range list {
		if m.Match(tr) {
			m.last, m.any = at, true
			r := Range{Beg: at, End: at, Each: m.count}
			m.count++
			return []Range{r}
		}
	}
	return nil
}

func (m *TriviaMatcher) Reset() {
	m.last, m.any, m.count = 0, false, 0
}

func (m *TriviaMatcher) Describe() string { return m.Desc }

func (m *TriviaMatcher) Clone() Builder {
	return &TriviaMatcher{Match: m.Match, Desc: m.Desc}
}
