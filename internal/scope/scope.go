// Package scope implements the location range algebra used to carve scopes out
// of a document.
//
// A Builder is driven by a walk over the document: Enter and Leave are called
// for every token in order and Conclude once at the end. Each call returns the
// ranges the builder can already commit to. Builders compose: Except, Union,
// Extrema, Cardinality and Index wrap other builders, and Source and
// TriviaMatcher sit at the leaves.
//
// Ranges a builder returns are sorted by position and never overlap within
// one each-group.
package scope

import (
	"errors"
	"fmt"

	"github.com/gnolang/weave/internal/token"
)

var (
	ErrTooMany = errors.New("too many matches")
	ErrTooFew  = errors.New("too few matches")
)

// CountError reports a cardinality violation.
type CountError struct {
	Err      error
	Expected int
	Actual   int
}

func (e *CountError) Error() string {
	return fmt.Sprintf("%v: expected %d, got %d", e.Err, e.Expected, e.Actual)
}

func (e *CountError) Unwrap() error { return e.Err }

// Location is a token boundary: location k is the gap right before token k.
type Location int

// BegMarker is the location before the first token.
const BegMarker Location = 0

// EndMarker returns the location after the last of n tokens.
func EndMarker(n int) Location { return Location(n) }

func (l Location) Next() Location { return l + 1 }
func (l Location) Prev() Location { return l - 1 }

// Range is a half-open range of locations tagged with its each-group.
// An empty range designates a single insertion point.
type Range struct {
	Beg, End Location
	Each     int
}

// NewRange returns the range covering span s.
func NewRange(s token.Span, each int) Range {
	return Range{Beg: Location(s.Begin), End: Location(s.End), Each: each}
}

func (r Range) Empty() bool { return r.Beg >= r.End }

func (r Range) Span() token.Span {
	return token.NewSpan(int(r.Beg), int(r.End))
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)#%d", r.Beg, r.End, r.Each)
}

// Node is the walk position handed to builders.
type Node struct {
	Index int
	Token token.Token
}

// Builder is a streaming range producer.
type Builder interface {
	Enter(n Node) ([]Range, error)
	Leave(n Node) ([]Range, error)
	Conclude() ([]Range, error)
	// Reset clears the streaming state so the builder can run another pass.
	Reset()
	Describe() string
	// Clone returns an independent copy in its initial state.
	Clone() Builder
}

// Tokens is the token sequence a builder walks over.
type Tokens interface {
	Len() int
	Token(i int) token.Token
}

// Walk drives b over every token of doc and returns all the ranges it produced.
func Walk(b Builder, doc Tokens) ([]Range, error) {
	var out []Range
	for i := 0; i < doc.Len(); i++ {
		n := Node{Index: i, Token: doc.Token(i)}
		got, err := b.Enter(n)
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
		if got, err = b.Leave(n); err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	got, err := b.Conclude()
	if err != nil {
		return nil, err
	}
	return append(out, got...), nil
}

// pair forwards a walk event to two builders.
func pair(a, b Builder, call func(Builder) ([]Range, error)) ([]Range, []Range, error) {
	left, err := call(a)
	if err != nil {
		return nil, nil, err
	}
	right, err := call(b)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}
