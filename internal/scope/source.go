package scope

import (
	"sort"

	"github.com/gnolang/weave/internal/filter"
)

// Source is a leaf builder fed by a filter pipeline. The pipeline is evaluated
// ahead of the walk (see Operator); Source then releases every range when the
// walk enters its first token.
type Source struct {
	Ops []filter.Operator

	ranges []Range
	next   int
}

var _ Builder = (*Source)(nil)

// Bind sets the ranges produced by the pipeline and resets the builder.
func (s *Source) Bind(ranges []Range) {
	s.ranges = append([]Range(nil), ranges...)
	sort.SliceStable(s.ranges, func(a, b int) bool {
		return s.ranges[a].Beg < s.ranges[b].Beg
	})
	s.next = 0
}

// BindGroups binds the matches of groups, numbering each-groups in order.
func (s *Source) BindGroups(groups []filter.Group) {
	var ranges []Range
	for each, g := range groups {
		for _, m := range g.Matches {
			ranges = append(ranges, NewRange(m.Span, each))
		}
	}
	s.Bind(ranges)
}

func (s *Source) Enter(n Node) ([]Range, error) {
	return s.release(Location(n.Index)), nil
}

func (s *Source) Leave(Node) ([]Range, error) { return nil, nil }

func (s *Source) Conclude() ([]Range, error) {
	out := s.ranges[s.next:len(s.ranges):len(s.ranges)]
	s.next = len(s.ranges)
	return out, nil
}

// release returns the pending ranges beginning at or before at.
func (s *Source) release(at Location) []Range {
	start := s.next
	for s.next < len(s.ranges) && s.ranges[s.next].Beg <= at {
		s.next++
	}
	return s.ranges[start:s.next:s.next]
}

func (s *Source) Reset() { s.next = 0 }

func (s *Source) Describe() string { return filter.Describe(s.Ops) }

func (s *Source) Clone() Builder {
	c := &Source{Ops: append([]filter.Operator(nil), s.Ops...)}
	c.Bind(s.ranges)
	return c
}
