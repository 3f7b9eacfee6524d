package scope

import (
	"fmt"
	"strings"
)

// Select chooses which ranges Cardinality lets through.
type Select uint8

const (
	All Select = iota
	First
	Last
)

// NoExpect disables the count check of Cardinality.
const NoExpect = -1

// Cardinality checks and selects the inner ranges by position.
//
// Counting runs over the whole stream, or over every each-group on its own
// when PerEach is set. Expect requires an exact count: exceeding it fails as
// soon as it happens, falling short fails when the group or the walk ends.
// First and Last keep Count ranges after skipping Offset ranges from the
// respective end. Each moves every output range into an each-group of its own.
type Cardinality struct {
	Inner   Builder
	Expect  int
	Select  Select
	Count   int
	Offset  int
	PerEach bool
	Each    bool

	started bool
	group   int
	seen    int
	ring    []Range
	nextID  int
}

var _ Builder = (*Cardinality)(nil)

func (c *Cardinality) Enter(n Node) ([]Range, error) {
	got, err := c.Inner.Enter(n)
	if err != nil {
		return nil, err
	}
	return c.process(got)
}

func (c *Cardinality) Leave(n Node) ([]Range, error) {
	got, err := c.Inner.Leave(n)
	if err != nil {
		return nil, err
	}
	return c.process(got)
}

func (c *Cardinality) Conclude() ([]Range, error) {
	got, err := c.Inner.Conclude()
	if err != nil {
		return nil, err
	}
	out, err := c.process(got)
	if err != nil {
		return nil, err
	}
	flushed, err := c.endSegment()
	if err != nil {
		return nil, err
	}
	return append(out, flushed...), nil
}

func (c *Cardinality) process(ranges []Range) ([]Range, error) {
	var out []Range
	for _, r := range ranges {
		if c.PerEach && c.started && r.Each != c.group {
			flushed, err := c.endSegment()
			if err != nil {
				return nil, err
			}
			out = append(out, flushed...)
		}
		c.started = true
		c.group = r.Each
		c.seen++
		if c.Expect != NoExpect && c.seen > c.Expect {
			return nil, &CountError{Err: ErrTooMany, Expected: c.Expect, Actual: c.seen}
		}

		switch c.Select {
		case First:
			if k := c.seen - 1; k >= c.Offset && k < c.Offset+c.Count {
				out = append(out, c.emit(r))
			}
		case Last:
			c.push(r)
		default:
			out = append(out, c.emit(r))
		}
	}
	return out, nil
}

// push keeps the last Offset+Count ranges of the segment.
func (c *Cardinality) push(r Range) {
	size := c.Offset + c.Count
	if size <= 0 {
		return
	}
	if len(c.ring) == size {
		copy(c.ring, c.ring[1:])
		c.ring = c.ring[:size-1]
	}
	c.ring = append(c.ring, r)
}

// endSegment closes the current counting segment.
func (c *Cardinality) endSegment() ([]Range, error) {
	defer func() {
		c.seen = 0
		c.ring = c.ring[:0]
	}()
	if c.Expect != NoExpect && c.seen < c.Expect {
		return nil, &CountError{Err: ErrTooFew, Expected: c.Expect, Actual: c.seen}
	}
	if c.Select != Last || len(c.ring) <= c.Offset {
		return nil, nil
	}
	keep := c.ring[:len(c.ring)-c.Offset]
	out := make([]Range, len(keep))
	for i, r := range keep {
		out[i] = c.emit(r)
	}
	return out, nil
}

func (c *Cardinality) emit(r Range) Range {
	if c.Each {
		r.Each = c.nextID
		c.nextID++
	}
	return r
}

func (c *Cardinality) Reset() {
	c.Inner.Reset()
	c.started, c.group, c.seen, c.ring, c.nextID = false, 0, 0, nil, 0
}

func (c *Cardinality) Describe() string {
	var parts []string
	if c.Each {
		parts = append(parts, "each")
	}
	switch c.Select {
	case First:
		parts = append(parts, fmt.Sprintf("first %d", c.Count))
	case Last:
		parts = append(parts, fmt.Sprintf("last %d", c.Count))
	}
	if c.Offset > 0 {
		parts = append(parts, fmt.Sprintf("skip %d", c.Offset))
	}
	parts = append(parts, c.Inner.Describe())
	if c.Expect != NoExpect {
		parts = append(parts, fmt.Sprintf("expect %d", c.Expect))
	}
	return strings.Join(parts, " ")
}

func (c *Cardinality) Clone() Builder {
	return &Cardinality{
		Inner:   c.Inner.Clone(),
		Expect:  c.Expect,
		Select:  c.Select,
		Count:   c.Count,
		Offset:  c.Offset,
		PerEach: c.PerEach,
		Each:    c.Each,
	}
}
