package filter

import (
	"fmt"

	"github.com/gnolang/weave/internal/token"
)

// Class is the role of a token in an enclosure.
type Class uint8

const (
	None Class = iota
	Open
	Close
)

// Classifier tells whether token i of doc opens or closes an enclosure.
type Classifier func(doc Document, i int) Class

// TextClassifier classifies tokens by exact text.
func TextClassifier(open, close string) Classifier {
	return func(doc Document, i int) Class {
		switch doc.Token(i).Text {
		case open:
			return Open
		case close:
			return Close
		}
		return None
	}
}

// Enclosed discovers open/close pairs without relying on the span tree.
// The deepest flavor yields innermost pairs; the covering flavor yields only
// top-level pairs.
type Enclosed struct {
	Classify Classifier
	Covering bool
	// Desc names the delimiters in String.
	Desc string
}

var _ Operator = Enclosed{}

func (o Enclosed) Apply(doc Document, in []Group) ([]Group, error) {
	return produce(in, func(m Match) ([]Match, error) {
		var found []Match
		emit := func(open, close int) {
			found = append(found, Match{Span: token.NewSpan(open, close+1), Parent: m.Span})
		}
		if o.Covering {
			o.covering(doc, m.Span, emit)
		} else {
			o.deepest(doc, m.Span, emit)
		}
		return found, nil
	})
}

func (o Enclosed) deepest(doc Document, s token.Span, emit func(open, close int)) {
	last := -1
	for i := s.Begin; i < s.End; i++ {
		switch o.Classify(doc, i) {
		case Open:
			last = i
		case Close:
			if last >= 0 {
				emit(last, i)
				last = -1
			}
		}
	}
}

func (o Enclosed) covering(doc Document, s token.Span, emit func(open, close int)) {
	depth, start := 0, -1
	for i := s.Begin; i < s.End; i++ {
		switch o.Classify(doc, i) {
		case Open:
			if depth == 0 {
				start = i
			}
			depth++
		case Close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				emit(start, i)
			}
		}
	}
}

func (o Enclosed) String() string {
	if o.Covering {
		return fmt.Sprintf("covering enclosed %s", o.Desc)
	}
	return fmt.Sprintf("enclosed %s", o.Desc)
}
