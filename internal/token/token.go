package token

import "strings"

// Kind tags the category of a token. The core never interprets kinds beyond
// Verbatim, Deleted and EOF; analyzers are free to use the rest as they see fit.
type Kind uint8

const (
	Invalid Kind = iota
	EOF
	Ident
	Keyword
	Number
	String
	Punct
	Tag  // markup tag, e.g. `<div class="x">`
	Text // markup text word
	Verbatim
	Deleted
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Keyword:
		return "Keyword"
	case Number:
		return "Number"
	case String:
		return "String"
	case Punct:
		return "Punct"
	case Tag:
		return "Tag"
	case Text:
		return "Text"
	case Verbatim:
		return "Verbatim"
	case Deleted:
		return "Deleted"
	default:
		return "Invalid"
	}
}

// Token is an immutable lexical token with its attached trivia.
// Editing a token always produces a new value; the trivia slices of
// a token must never be modified in place.
type Token struct {
	Type     Kind
	Text     string
	Leading  []Trivia
	Trailing []Trivia
	Offset   uint32 // byte offset of Text in the tokenized source
}

// NewVerbatim returns a token rendering text as-is, without trivia.
func NewVerbatim(text string) Token {
	return Token{Type: Verbatim, Text: text}
}

// WithLeading returns a copy of t whose leading trivia is a copy of trivia.
func (t Token) WithLeading(trivia []Trivia) Token {
	t.Leading = cloneTrivia(trivia)
	return t
}

// WithTrailing returns a copy of t whose trailing trivia is a copy of trivia.
func (t Token) WithTrailing(trivia []Trivia) Token {
	t.Trailing = cloneTrivia(trivia)
	return t
}

// WithText returns a copy of t with a different text and kind.
func (t Token) WithText(kind Kind, text string) Token {
	t.Type = kind
	t.Text = text
	return t
}

// Deleted returns a copy of t that keeps its trivia but no longer renders its text.
func (t Token) Deleted() Token {
	t.Type = Deleted
	t.Text = ""
	return t
}

// EachTrivia calls fn for the leading then the trailing trivia of t,
// stopping as soon as fn returns false. It reports whether the walk completed.
func (t Token) EachTrivia(fn func(tr Trivia, trailing bool) bool) bool {
	for _, tr := range t.Leading {
		if !fn(tr, false) {
			return false
		}
	}
	for _, tr := range t.Trailing {
		if !fn(tr, true) {
			return false
		}
	}
	return true
}

// Full returns the source text of the token including its trivia.
func (t Token) Full() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

func (t Token) writeTo(sb *strings.Builder) {
	for _, tr := range t.Leading {
		sb.WriteString(tr.Content)
	}
	sb.WriteString(t.Text)
	for _, tr := range t.Trailing {
		sb.WriteString(tr.Content)
	}
}

// Render concatenates the full text of tokens.
func Render(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		t.writeTo(&sb)
	}
	return sb.String()
}

// Texts returns the texts of tokens, skipping deleted and end-of-file tokens.
func Texts(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == Deleted || t.Type == EOF {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}

func cloneTrivia(trivia []Trivia) []Trivia {
	if len(trivia) == 0 {
		return nil
	}
	out := make([]Trivia, len(trivia))
	copy(out, trivia)
	return out
}
