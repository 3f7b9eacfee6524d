package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/gnolang/weave/internal/token"
)

// Pattern finds a token sequence with Knuth-Morris-Pratt, comparing token
// texts case-insensitively.
//
// Without Where, every non-overlapping occurrence inside an upstream match
// becomes a match. With Where, the upstream match itself is kept when at least
// one occurrence lies inside it.
type Pattern struct {
	texts  []string
	folded []string
	table  []int
	where  bool
}

var _ Operator = (*Pattern)(nil)

// NewPattern compiles the token texts of a pattern.
func NewPattern(texts []string, where bool) (*Pattern, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyPattern
	}
	fold := cases.Fold()
	p := &Pattern{
		texts:  texts,
		folded: make([]string, len(texts)),
		where:  where,
	}
	for i, t := range texts {
		p.folded[i] = fold.String(t)
	}
	p.table = prefixTable(p.folded)
	return p, nil
}

// prefixTable returns the KMP failure function of pattern: table[i] is the
// length of the longest proper border of pattern[:i], and table[0] is -1.
func prefixTable(pattern []string) []int {
	table := make([]int, len(pattern)+1)
	table[0] = -1
	k := -1
	for i := range pattern {
		for k >= 0 && pattern[k] != pattern[i] {
			k = table[k]
		}
		k++
		table[i+1] = k
	}
	return table
}

// Find calls fn for every non-overlapping occurrence inside s, leftmost first,
// until fn returns false.
func (p *Pattern) Find(doc Document, s token.Span, fn func(found token.Span) bool) {
	fold := cases.Fold()
	m := len(p.folded)
	k := 0
	for i := s.Begin; i < s.End; i++ {
		t := fold.String(doc.Token(i).Text)
		for k >= 0 && p.folded[k] != t {
			k = p.table[k]
		}
		k++
		if k == m {
			if !fn(token.NewSpan(i-m+1, i+1)) {
				return
			}
			k = 0
		}
	}
}

func (p *Pattern) Apply(doc Document, in []Group) ([]Group, error) {
	if p.where {
		return keep(in, func(m Match) bool {
			hit := false
			p.Find(doc, m.Span, func(token.Span) bool {
				hit = true
				return false
			})
			return hit
		}), nil
	}
	return produce(in, func(m Match) ([]Match, error) {
		var found []Match
		p.Find(doc, m.Span, func(s token.Span) bool {
			found = append(found, Match{Span: s, Parent: m.Span})
			return true
		})
		return found, nil
	})
}

func (p *Pattern) String() string {
	s := "`" + strings.Join(p.texts, " ") + "`"
	if p.where {
		return fmt.Sprintf("where %s", s)
	}
	return s
}
