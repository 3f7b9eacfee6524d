package scope

import (
	"fmt"
	"sort"
)

// Union combines the ranges of both sides. Overlapping or adjacent ranges of
// the same each-group are merged.
type Union struct {
	Left, Right Builder

	buf []Range
}

var _ Builder = (*Union)(nil)

func (u *Union) Enter(n Node) ([]Range, error) {
	return nil, u.collect(func(b Builder) ([]Range, error) { return b.Enter(n) })
}

func (u *Union) Leave(n Node) ([]Range, error) {
	return nil, u.collect(func(b Builder) ([]Range, error) { return b.Leave(n) })
}

func (u *Union) Conclude() ([]Range, error) {
	if err := u.collect(func(b Builder) ([]Range, error) { return b.Conclude() }); err != nil {
		return nil, err
	}
	sort.SliceStable(u.buf, func(a, b int) bool {
		if u.buf[a].Beg != u.buf[b].Beg {
			return u.buf[a].Beg < u.buf[b].Beg
		}
		return u.buf[a].End < u.buf[b].End
	})

	var out []Range
	last := map[int]int{} // each-group -> index in out
	for _, r := range u.buf {
		if k, ok := last[r.Each]; ok && r.Beg <= out[k].End {
			if r.End > out[k].End {
				out[k].End = r.End
			}
			continue
		}
		last[r.Each] = len(out)
		out = append(out, r)
	}
	u.buf = nil
	return out, nil
}

func (u *Union) collect(call func(Builder) ([]Range, error)) error {
	left, right, err := pair(u.Left, u.Right, call)
	if err != nil {
		return err
	}
	u.buf = append(u.buf, left...)
	u.buf = append(u.buf, right...)
	return nil
}

func (u *Union) Reset() {
	u.Left.Reset()
	u.Right.Reset()
	u.buf = nil
}

func (u *Union) Describe() string {
	return fmt.Sprintf("(%s or %s)", u.Left.Describe(), u.Right.Describe())
}

func (u *Union) Clone() Builder {
	return &Union{Left: u.Left.Clone(), Right: u.Right.Clone()}
}
