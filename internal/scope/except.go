package scope

import (
	"fmt"
	"sort"
)

// Relation classifies a left range against a non-empty right range.
type Relation uint8

const (
	Equal Relation = iota
	Contained
	Containing
	SameStart
	SameStartSwapped
	SameEnd
	SameEndSwapped
	Overlapped
	OverlappedSwapped
	Congruent
	CongruentSwapped
	Independent
	IndependentSwapped
)

var relationNames = [...]string{
	Equal:              "equal",
	Contained:          "contained",
	Containing:         "containing",
	SameStart:          "same start",
	SameStartSwapped:   "same start (swapped)",
	SameEnd:            "same end",
	SameEndSwapped:     "same end (swapped)",
	Overlapped:         "overlapped",
	OverlappedSwapped:  "overlapped (swapped)",
	Congruent:          "congruent",
	CongruentSwapped:   "congruent (swapped)",
	Independent:        "independent",
	IndependentSwapped: "independent (swapped)",
}

func (r Relation) String() string {
	if int(r) < len(relationNames) {
		return relationNames[r]
	}
	return fmt.Sprintf("Relation(%d)", r)
}

// Classify returns the relation of l to r. r must not be empty.
//
//	Independent         l before r, with a gap
//	Congruent           l ends where r begins
//	SameStart           r is a strict prefix of l
//	SameEnd             r is a strict suffix of l
//	Containing          r lies strictly inside l
//	Overlapped          l begins first and ends inside r
//
// The swapped variants exchange the roles of l and r. An empty l is
// Contained when it lies strictly inside r and otherwise before or after r.
func Classify(l, r Range) Relation {
	a, b, c, d := l.Beg, l.End, r.Beg, r.End
	switch {
	case b < c:
		return Independent
	case d < a:
		return IndependentSwapped
	case l.Empty() && b == c:
		return Congruent
	case l.Empty() && a == d:
		return CongruentSwapped
	case l.Empty():
		return Contained
	case b == c:
		return Congruent
	case d == a:
		return CongruentSwapped
	case a == c && b == d:
		return Equal
	case a == c && b > d:
		return SameStart
	case a == c:
		return SameStartSwapped
	case b == d && a < c:
		return SameEnd
	case b == d:
		return SameEndSwapped
	case a < c && d < b:
		return Containing
	case c < a && b < d:
		return Contained
	case a < c:
		return Overlapped
	default:
		return OverlappedSwapped
	}
}

// Except yields the parts of the Left ranges not covered by any Right range.
// Right each-groups are ignored; results keep the each-group of their left range.
type Except struct {
	Left, Right Builder

	lefts  []Range
	rights []Range
}

var _ Builder = (*Except)(nil)

func (e *Except) Enter(n Node) ([]Range, error) {
	return e.step(func(b Builder) ([]Range, error) { return b.Enter(n) })
}

func (e *Except) Leave(n Node) ([]Range, error) {
	return e.step(func(b Builder) ([]Range, error) { return b.Leave(n) })
}

func (e *Except) Conclude() ([]Range, error) {
	out, err := e.step(func(b Builder) ([]Range, error) { return b.Conclude() })
	if err != nil {
		return nil, err
	}
	return append(out, e.drain(true)...), nil
}

func (e *Except) step(call func(Builder) ([]Range, error)) ([]Range, error) {
	left, right, err := pair(e.Left, e.Right, call)
	if err != nil {
		return nil, err
	}
	for _, r := range right {
		e.addRight(r)
	}
	e.lefts = append(e.lefts, left...)
	return e.drain(false), nil
}

// addRight appends r to the right ranges, coalescing it with the last one.
func (e *Except) addRight(r Range) {
	if r.Empty() {
		return
	}
	if n := len(e.rights); n > 0 && r.Beg <= e.rights[n-1].End {
		if r.End > e.rights[n-1].End {
			e.rights[n-1].End = r.End
		}
		return
	}
	e.rights = append(e.rights, r)
}

// drain resolves the pending left ranges. Unless final, a left range is only
// resolved once a right range beginning at or after its end is known.
func (e *Except) drain(final bool) []Range {
	var out []Range
	for len(e.lefts) > 0 {
		l := e.lefts[0]
		if !final && (len(e.rights) == 0 || e.rights[len(e.rights)-1].Beg < l.End) {
			break
		}
		out = e.subtract(out, l)
		e.lefts = e.lefts[1:]
	}
	return out
}

func (e *Except) subtract(out []Range, l Range) []Range {
	cur := l
	// right ranges ending before l cannot touch it
	first := sort.Search(len(e.rights), func(k int) bool {
		return e.rights[k].End >= l.Beg
	})
	for _, r := range e.rights[first:] {
		switch rel := Classify(cur, r); rel {
		case Independent, Congruent:
			return append(out, cur)
		case IndependentSwapped, CongruentSwapped:
			continue
		case Equal, Contained, SameStartSwapped, SameEndSwapped:
			return out
		case SameStart, OverlappedSwapped:
			cur.Beg = r.End
		case SameEnd, Overlapped:
			return append(out, Range{Beg: cur.Beg, End: r.Beg, Each: cur.Each})
		case Containing:
			out = append(out, Range{Beg: cur.Beg, End: r.Beg, Each: cur.Each})
			cur.Beg = r.End
		default:
			panic(fmt.Sprintf("scope: unhandled interval relation %v between %v and %v", rel, cur, r))
		}
	}
	return append(out, cur)
}

func (e *Except) Reset() {
	e.Left.Reset()
	e.Right.Reset()
	e.lefts, e.rights = nil, nil
}

func (e *Except) Describe() string {
	return fmt.Sprintf("(%s except %s)", e.Left.Describe(), e.Right.Describe())
}

func (e *Except) Clone() Builder {
	return &Except{Left: e.Left.Clone(), Right: e.Right.Clone()}
}
