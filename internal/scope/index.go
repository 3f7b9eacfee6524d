package scope

import "fmt"

// Index slices the flattened inner ranges by position, ignoring each-groups.
// A negative Count keeps every range from Start on.
type Index struct {
	Inner Builder
	Start int
	Count int

	seen int
}

var _ Builder = (*Index)(nil)

func (x *Index) Enter(n Node) ([]Range, error) {
	got, err := x.Inner.Enter(n)
	return x.slice(got), err
}

func (x *Index) Leave(n Node) ([]Range, error) {
	got, err := x.Inner.Leave(n)
	return x.slice(got), err
}

func (x *Index) Conclude() ([]Range, error) {
	got, err := x.Inner.Conclude()
	return x.slice(got), err
}

func (x *Index) slice(ranges []Range) []Range {
	var out []Range
	for _, r := range ranges {
		k := x.seen
		x.seen++
		if k >= x.Start && (x.Count < 0 || k < x.Start+x.Count) {
			out = append(out, r)
		}
	}
	return out
}

func (x *Index) Reset() {
	x.Inner.Reset()
	x.seen = 0
}

func (x *Index) Describe() string {
	if x.Count < 0 {
		return fmt.Sprintf("%s[%d]", x.Inner.Describe(), x.Start)
	}
	return fmt.Sprintf("%s[%d,%d]", x.Inner.Describe(), x.Start, x.Count)
}

func (x *Index) Clone() Builder {
	return &Index{Inner: x.Inner.Clone(), Start: x.Start, Count: x.Count}
}
