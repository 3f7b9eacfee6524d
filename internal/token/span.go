package token

import "fmt"

// Span is a half-open [Begin, End) range of token indices.
type Span struct {
	Begin int
	End   int
}

// NewSpan returns the span [begin, end). It panics if begin > end.
func NewSpan(begin, end int) Span {
	if begin > end {
		panic(fmt.Sprintf("token: invalid span [%d, %d)", begin, end))
	}
	return Span{Begin: begin, End: end}
}

func (s Span) Len() int    { return s.End - s.Begin }
func (s Span) Empty() bool { return s.Begin == s.End }

// Has reports whether token index i lies inside s.
func (s Span) Has(i int) bool {
	return s.Begin <= i && i < s.End
}

// Contains reports whether s strictly contains o (contains it and is not equal to it).
func (s Span) Contains(o Span) bool {
	return s.ContainsOrEquals(o) && s != o
}

// ContainsOrEquals reports whether o lies entirely inside s.
// An empty span is contained in s when its position is within [Begin, End].
func (s Span) ContainsOrEquals(o Span) bool {
	return s.Begin <= o.Begin && o.End <= s.End
}

// Overlaps reports whether s and o share at least one token.
func (s Span) Overlaps(o Span) bool {
	return s.Begin < o.End && o.Begin < s.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d, %d)", s.Begin, s.End)
}
