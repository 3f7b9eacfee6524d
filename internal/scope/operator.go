package scope

import (
	"fmt"

	"github.com/gnolang/weave/internal/filter"
	"github.com/gnolang/weave/internal/token"
)

// Operator runs a builder as a filter stage. The Source leaves evaluate their
// pipelines against the incoming groups, the builder walks the document, and
// the resulting ranges become matches grouped by each-group in order of first
// appearance. A range outside every incoming match is clipped to the first
// match it overlaps, or dropped.
type Operator struct {
	Builder Builder
}

var _ filter.Operator = Operator{}

func (o Operator) Apply(doc filter.Document, in []filter.Group) ([]filter.Group, error) {
	for _, leaf := range Leaves(o.Builder) {
		groups := in
		for _, op := range leaf.Ops {
			var err error
			if groups, err = op.Apply(doc, groups); err != nil {
				return nil, err
			}
		}
		leaf.BindGroups(groups)
	}

	o.Builder.Reset()
	ranges, err := Walk(o.Builder, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.Builder.Describe(), err)
	}

	parents := filter.Flatten(in)
	var out []filter.Group
	index := map[int]int{} // each-group -> index in out
	for _, r := range ranges {
		m, ok := clip(r.Span(), parents)
		if !ok {
			continue
		}
		k, seen := index[r.Each]
		if !seen {
			k = len(out)
			index[r.Each] = k
			out = append(out, filter.Group{})
		}
		out[k].Matches = append(out[k].Matches, m)
	}
	return out, nil
}

// clip places s inside the first parent match containing it, or clips it to
// the first parent it overlaps.
func clip(s token.Span, parents []filter.Match) (filter.Match, bool) {
	for _, p := range parents {
		if p.Span.ContainsOrEquals(s) {
			return filter.Match{Span: s, Parent: p.Span}, true
		}
	}
	for _, p := range parents {
		if s.Overlaps(p.Span) {
			b, e := max(s.Begin, p.Span.Begin), min(s.End, p.Span.End)
			return filter.Match{Span: token.NewSpan(b, e), Parent: p.Span}, true
		}
	}
	return filter.Match{}, false
}

func (o Operator) String() string {
	return "in " + o.Builder.Describe()
}

// Leaves returns the Source leaves of b in walk order.
func Leaves(b Builder) []*Source {
	switch v := b.(type) {
	case *Source:
		return []*Source{v}
	case *Except:
		return append(Leaves(v.Left), Leaves(v.Right)...)
	case *Union:
		return append(Leaves(v.Left), Leaves(v.Right)...)
	case *Extrema:
		return Leaves(v.Inner)
	case *Cardinality:
		return Leaves(v.Inner)
	case *Index:
		return Leaves(v.Inner)
	}
	return nil
}
