package scope

import "fmt"

// Option selects which side of the reduced range Extrema keeps.
type Option uint8

const (
	// None keeps [min, max).
	None Option = iota
	// Before keeps everything before the region: [start, min).
	Before
	// BeforeIncluded keeps everything up to the end of the region: [start, max).
	BeforeIncluded
	// After keeps everything after the region: [max, end).
	After
	// AfterIncluded keeps everything from the start of the region: [min, end).
	AfterIncluded
)

func (o Option) String() string {
	switch o {
	case Before:
		return "before"
	case BeforeIncluded:
		return "before including"
	case After:
		return "after"
	case AfterIncluded:
		return "after including"
	default:
		return ""
	}
}

// Extrema reduces the inner ranges to the single range from the smallest
// beginning to the largest end. It yields nothing when that range is empty.
type Extrema struct {
	Inner  Builder
	Option Option

	min, max Location
	any      bool
	end      Location
}

var _ Builder = (*Extrema)(nil)

func (x *Extrema) Enter(n Node) ([]Range, error) {
	got, err := x.Inner.Enter(n)
	x.observe(got)
	return nil, err
}

func (x *Extrema) Leave(n Node) ([]Range, error) {
	x.end = Location(n.Index).Next()
	got, err := x.Inner.Leave(n)
	x.observe(got)
	return nil, err
}

func (x *Extrema) Conclude() ([]Range, error) {
	got, err := x.Inner.Conclude()
	if err != nil {
		return nil, err
	}
	x.observe(got)
	if !x.any || x.min >= x.max {
		return nil, nil
	}

	r := Range{Beg: x.min, End: x.max}
	switch x.Option {
	case Before:
		r = Range{Beg: BegMarker, End: x.min}
	case BeforeIncluded:
		r = Range{Beg: BegMarker, End: x.max}
	case After:
		r = Range{Beg: x.max, End: x.end}
	case AfterIncluded:
		r = Range{Beg: x.min, End: x.end}
	}
	return []Range{r}, nil
}

func (x *Extrema) observe(ranges []Range) {
	for _, r := range ranges {
		if !x.any || r.Beg < x.min {
			x.min = r.Beg
		}
		if !x.any || r.End > x.max {
			x.max = r.End
		}
		x.any = true
	}
}

func (x *Extrema) Reset() {
	x.Inner.Reset()
	x.min, x.max, x.any, x.end = 0, 0, false, 0
}

func (x *Extrema) Describe() string {
	if x.Option == None {
		return fmt.Sprintf("extent %s", x.Inner.Describe())
	}
	return fmt.Sprintf("%s %s", x.Option, x.Inner.Describe())
}

func (x *Extrema) Clone() Builder {
	return &Extrema{Inner: x.Inner.Clone(), Option: x.Option}
}
