package script

import (
	"fmt"
	"strings"

	"github.com/gnolang/weave/internal/editor"
	"github.com/gnolang/weave/internal/filter"
	"github.com/gnolang/weave/internal/injection"
	"github.com/gnolang/weave/internal/scope"
	"github.com/gnolang/weave/internal/token"
)

// ScopeExpr is a scope expression: terms combined left to right with
// "except" and "or".
type ScopeExpr struct {
	Terms []*Term
	Ops   []string // Ops[i] joins Terms[i] and Terms[i+1]
}

// Term is one operand of a scope expression.
type Term struct {
	Each    bool
	Select  scope.Select
	Count   int
	Skip    int
	Across  bool // count over the whole stream instead of per each-group
	Extrema scope.Option
	Primary Primary
	Filters []Filter
	Index   *IndexSpec
	Expect  int
}

type PrimaryKind uint8

const (
	PrimaryPattern PrimaryKind = iota
	PrimaryGroup
	PrimarySpan
	PrimaryEnclosed
	PrimaryMarker
)

// Primary is the matcher at the heart of a term.
type Primary struct {
	Kind     PrimaryKind
	Group    *ScopeExpr
	Pattern  *PatternSource
	SpanType string
	Mode     filter.Mode
	Open     string
	Close    string
	Covering bool
	Point    injection.Point
}

// Filter narrows the matches of a primary.
type Filter struct {
	Pattern *PatternSource // where
	Point   string         // with / without
	Include bool
}

// IndexSpec keeps Count ranges from position Start.
type IndexSpec struct {
	Start int
	Count int
}

// Compile turns the expression into the operators to push on e. A plain
// pipeline compiles to its stages; anything else runs as one range builder.
func (x *ScopeExpr) Compile(e *editor.Editor) ([]filter.Operator, error) {
	if len(x.Terms) == 1 && x.Terms[0].plain() {
		return x.Terms[0].ops(e)
	}
	b, err := x.build(e)
	if err != nil {
		return nil, err
	}
	return []filter.Operator{scope.Operator{Builder: b}}, nil
}

func (x *ScopeExpr) build(e *editor.Editor) (scope.Builder, error) {
	b, err := x.Terms[0].build(e)
	if err != nil {
		return nil, err
	}
	for i, op := range x.Ops {
		right, err := x.Terms[i+1].build(e)
		if err != nil {
			return nil, err
		}
		switch op {
		case "except":
			b = &scope.Except{Left: b, Right: right}
		case "or":
			b = &scope.Union{Left: b, Right: right}
		default:
			panic(fmt.Sprintf("script: unknown scope operator %q", op))
		}
	}
	return b, nil
}

func (t *Term) plain() bool {
	return !t.Each && t.Select == scope.All && t.Extrema == scope.None &&
		t.Index == nil && t.Expect == scope.NoExpect &&
		t.Primary.Kind != PrimaryGroup && t.Primary.Kind != PrimaryMarker
}

func (t *Term) build(e *editor.Editor) (scope.Builder, error) {
	var b scope.Builder
	switch t.Primary.Kind {
	case PrimaryGroup:
		inner, err := t.Primary.Group.build(e)
		if err != nil {
			return nil, err
		}
		b = inner
	case PrimaryMarker:
		name := t.Primary.Point.Name
		b = &scope.TriviaMatcher{
			Match: func(tr token.Trivia) bool {
				return tr.IsComment() && injection.Mentions(tr.Content, name)
			},
			Desc: "marker " + t.Primary.Point.String(),
		}
	default:
		ops, err := t.ops(e)
		if err != nil {
			return nil, err
		}
		b = &scope.Source{Ops: ops}
	}

	if t.Index != nil {
		b = &scope.Index{Inner: b, Start: t.Index.Start, Count: t.Index.Count}
	}
	if t.Each || t.Select != scope.All || t.Expect != scope.NoExpect {
		b = &scope.Cardinality{
			Inner:   b,
			Expect:  t.Expect,
			Select:  t.Select,
			Count:   t.Count,
			Offset:  t.Skip,
			PerEach: !t.Across,
			Each:    t.Each,
		}
	}
	if t.Extrema != scope.None {
		b = &scope.Extrema{Inner: b, Option: t.Extrema}
	}
	return b, nil
}

// ops returns the filter stages of a pattern, span or enclosed primary
// followed by its filters.
func (t *Term) ops(e *editor.Editor) ([]filter.Operator, error) {
	var ops []filter.Operator
	p := t.Primary
	switch p.Kind {
	case PrimaryPattern:
		op, err := p.Pattern.compile(e)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	case PrimarySpan:
		ops = append(ops, filter.SpanType{Type: p.SpanType, Mode: p.Mode})
	case PrimaryEnclosed:
		ops = append(ops, filter.Enclosed{
			Classify: filter.TextClassifier(p.Open, p.Close),
			Covering: p.Covering,
			Desc:     fmt.Sprintf("%q %q", p.Open, p.Close),
		})
	default:
		panic(fmt.Sprintf("script: primary kind %d has no filter stages", p.Kind))
	}
	for _, f := range t.Filters {
		if f.Pattern != nil {
			op, err := f.Pattern.compile(e)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
			continue
		}
		ops = append(ops, filter.InjectionFilter{Name: f.Point, Include: f.Include})
	}
	return ops, nil
}

func (x *ScopeExpr) String() string {
	var sb strings.Builder
	for i, t := range x.Terms {
		if i > 0 {
			fmt.Fprintf(&sb, " %s ", x.Ops[i-1])
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

func (t *Term) String() string {
	var parts []string
	if t.Each {
		parts = append(parts, "each")
	}
	switch t.Select {
	case scope.First:
		parts = append(parts, fmt.Sprintf("first %d", t.Count))
	case scope.Last:
		parts = append(parts, fmt.Sprintf("last %d", t.Count))
	}
	if t.Skip > 0 {
		parts = append(parts, fmt.Sprintf("skip %d", t.Skip))
	}
	if t.Across {
		parts = append(parts, "across")
	}
	if t.Extrema != scope.None {
		parts = append(parts, t.Extrema.String())
	}
	parts = append(parts, t.Primary.String())
	for _, f := range t.Filters {
		parts = append(parts, f.String())
	}
	if t.Index != nil {
		parts = append(parts, fmt.Sprintf("[%d, %d]", t.Index.Start, t.Index.Count))
	}
	if t.Expect != scope.NoExpect {
		parts = append(parts, fmt.Sprintf("expect %d", t.Expect))
	}
	return strings.Join(parts, " ")
}

func (p Primary) String() string {
	switch p.Kind {
	case PrimaryGroup:
		return "(" + p.Group.String() + ")"
	case PrimarySpan:
		return filter.SpanType{Type: p.SpanType, Mode: p.Mode}.String()
	case PrimaryEnclosed:
		s := fmt.Sprintf("enclosed %q %q", p.Open, p.Close)
		if p.Covering {
			s = "covering " + s
		}
		return s
	case PrimaryMarker:
		return "marker " + p.Point.String()
	default:
		return "`" + p.Pattern.Text + "`"
	}
}

func (f Filter) String() string {
	switch {
	case f.Pattern != nil:
		return "where `" + f.Pattern.Text + "`"
	case f.Include:
		return "with <" + f.Point + ">"
	default:
		return "without <" + f.Point + ">"
	}
}
