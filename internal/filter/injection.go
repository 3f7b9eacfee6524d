package filter

import (
	"fmt"

	"github.com/gnolang/weave/internal/injection"
	"github.com/gnolang/weave/internal/token"
)

// InjectionFilter keeps the matches whose trivia mention the injection point
// Name (Include) or the matches that do not (exclude).
type InjectionFilter struct {
	Name    string
	Include bool
}

var _ Operator = InjectionFilter{}

func (o InjectionFilter) Apply(doc Document, in []Group) ([]Group, error) {
	return keep(in, func(m Match) bool {
		return o.mentioned(doc, m.Span) == o.Include
	}), nil
}

func (o InjectionFilter) mentioned(doc Document, s token.Span) bool {
	if s.Begin == s.End {
		// an insertion point sits between the trailing trivia of the
		// previous token and the leading trivia of the next one
		if s.Begin > 0 && s.Begin <= doc.Len() && o.mentionedIn(doc.Token(s.Begin-1).Trailing) {
			return true
		}
		return s.Begin < doc.Len() && o.mentionedIn(doc.Token(s.Begin).Leading)
	}
	for i := s.Begin; i < s.End; i++ {
		hit := !doc.Token(i).EachTrivia(func(tr token.Trivia, _ bool) bool {
			return !injection.Mentions(tr.Content, o.Name)
		})
		if hit {
			return true
		}
	}
	return false
}

func (o InjectionFilter) mentionedIn(list []token.Trivia) bool {
	for _, tr := range list {
		if injection.Mentions(tr.Content, o.Name) {
			return true
		}
	}
	return false
}

func (o InjectionFilter) String() string {
	if o.Include {
		return fmt.Sprintf("with <%s>", o.Name)
	}
	return fmt.Sprintf("without <%s>", o.Name)
}
