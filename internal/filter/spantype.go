package filter

import (
	"fmt"
	"sort"

	"github.com/gnolang/weave/internal/span"
	"github.com/gnolang/weave/internal/token"
)

// Mode selects how SpanType discovers spans.
type Mode uint8

const (
	// Deepest keeps the innermost spans lying inside the upstream match.
	Deepest Mode = iota
	// Covering keeps the outermost spans lying inside the upstream match.
	Covering
	// StrictCovering is Covering, failing when a match yields no span.
	StrictCovering
	// Anchored is Deepest bounded by the parent of the upstream match, failing
	// when a match yields no span.
	Anchored
)

func (m Mode) String() string {
	switch m {
	case Covering:
		return "covering"
	case StrictCovering:
		return "strict"
	case Anchored:
		return "anchored"
	default:
		return "deepest"
	}
}

// SpanType discovers the structural spans of a type declared by the analyzer.
type SpanType struct {
	Type string
	Mode Mode
}

var _ Operator = SpanType{}

func (o SpanType) Apply(doc Document, in []Group) ([]Group, error) {
	provider := doc.Spans()
	return produce(in, func(m Match) ([]Match, error) {
		c := collector{maximal: o.Mode == Covering || o.Mode == StrictCovering}
		for i := m.Span.Begin; i < m.Span.End; i++ {
			var s *span.SourceSpan
			switch o.Mode {
			case Covering, StrictCovering:
				s = provider.TopSpanAt(i, o.Type, m.Span)
			case Anchored:
				if s = provider.DeepestSpanAt(i, o.Type); s != nil && !m.Parent.ContainsOrEquals(s.Span) {
					s = nil
				}
			default:
				if s = provider.DeepestSpanAt(i, o.Type); s != nil && !m.Span.ContainsOrEquals(s.Span) {
					s = nil
				}
			}
			if s != nil {
				c.add(s.Span)
				i = o.skip(i, s.Span)
			}
		}
		if len(c.spans) == 0 && (o.Mode == StrictCovering || o.Mode == Anchored) {
			return nil, fmt.Errorf("%s in %v: %w", o, m.Span, ErrNoSpan)
		}
		return c.matches(m.Span), nil
	})
}

// skip returns the loop position to continue from once s has been collected.
// A covering span hides every position inside it.
func (o SpanType) skip(i int, s token.Span) int {
	if (o.Mode == Covering || o.Mode == StrictCovering) && s.End > i+1 {
		return s.End - 1
	}
	return i
}

func (o SpanType) String() string {
	return fmt.Sprintf("%s span %s", o.Mode, o.Type)
}

// collector keeps distinct spans, retaining only the maximal ones or only the
// minimal ones.
type collector struct {
	maximal bool
	spans   []token.Span
}

func (c *collector) add(s token.Span) {
	// outranks reports whether a beats b.
	outranks := func(a, b token.Span) bool {
		if c.maximal {
			return a.ContainsOrEquals(b)
		}
		return b.ContainsOrEquals(a)
	}
	for _, k := range c.spans {
		if outranks(k, s) {
			return
		}
	}
	kept := c.spans[:0]
	for _, k := range c.spans {
		if !outranks(s, k) {
			kept = append(kept, k)
		}
	}
	c.spans = append(kept, s)
}

func (c *collector) matches(parent token.Span) []Match {
	sort.Slice(c.spans, func(a, b int) bool {
		return c.spans[a].Begin < c.spans[b].Begin
	})
	out := make([]Match, len(c.spans))
	for i, s := range c.spans {
		out[i] = Match{Span: s, Parent: parent}
	}
	return out
}
