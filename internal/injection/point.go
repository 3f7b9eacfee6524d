// Package injection locates named injection points in comment trivia and
// computes the trivia splice that places generated text inside them.
//
// An injection point is a comment holding an XML-like tag:
//
//	// <Routes>
//	// </Routes>
//
// Text is injected right before the closing tag. A self-closing tag
// (<Routes/>) is expanded into an opening and a closing tag around the text,
// and a revert tag (<Routes revert>) receives the text right after itself.
package injection

import (
	"strings"

	"github.com/gnolang/weave/internal/token"
)

// Point is a parsed injection point tag.
type Point struct {
	Name          string
	IsRevert      bool
	IsAutoClosing bool
	IsClosing     bool
}

func (p Point) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	if p.IsClosing {
		sb.WriteByte('/')
	}
	sb.WriteString(p.Name)
	if p.IsRevert {
		sb.WriteString(" revert")
	}
	if p.IsAutoClosing {
		sb.WriteByte('/')
	}
	sb.WriteByte('>')
	return sb.String()
}

// Opening returns the plain opening tag of p.
func (p Point) Opening() Point {
	return Point{Name: p.Name, IsRevert: p.IsRevert}
}

// Closing returns the closing tag of p.
func (p Point) Closing() Point {
	return Point{Name: p.Name, IsClosing: true}
}

// Tag is an injection point found in a comment body, with the byte range of
// the tag text inside that body.
type Tag struct {
	Point
	Begin, End int
}

// ParseTrivia parses the injection point tag a comment trivia begins with.
// Non-comment trivia never hold a tag.
func ParseTrivia(tr token.Trivia) (Tag, bool) {
	if !tr.IsComment() {
		return Tag{}, false
	}
	return ParseTag(tr.Body())
}

// ParseTag parses an injection point tag at the start of body, after blanks:
// "<" ["/"] name [blanks "revert"] [blanks] ["/"] ">".
func ParseTag(body string) (Tag, bool) {
	i := skipBlanks(body, 0)
	begin := i
	if i >= len(body) || body[i] != '<' {
		return Tag{}, false
	}
	i++

	var p Point
	if i < len(body) && body[i] == '/' {
		p.IsClosing = true
		i++
	}

	start := i
	for i < len(body) && isNameChar(body[i], i == start) {
		i++
	}
	if i == start {
		return Tag{}, false
	}
	p.Name = body[start:i]

	if j := skipBlanks(body, i); j > i && strings.HasPrefix(body[j:], "revert") {
		k := j + len("revert")
		if k >= len(body) || !isNameChar(body[k], false) {
			p.IsRevert = true
			i = k
		}
	}
	i = skipBlanks(body, i)
	if i < len(body) && body[i] == '/' {
		p.IsAutoClosing = true
		i++
	}
	if i >= len(body) || body[i] != '>' {
		return Tag{}, false
	}
	if p.IsClosing && (p.IsRevert || p.IsAutoClosing) {
		return Tag{}, false
	}
	return Tag{Point: p, Begin: begin, End: i + 1}, true
}

// Mentions reports whether content names the injection point anywhere, as an
// opening tag "<name" followed by a blank, "/" or ">", or as "</name>".
func Mentions(content, name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(content, "</"+name+">") {
		return true
	}
	open := "<" + name
	for rest := content; ; {
		i := strings.Index(rest, open)
		if i < 0 {
			return false
		}
		rest = rest[i+len(open):]
		if rest == "" {
			return false
		}
		switch rest[0] {
		case ' ', '\t', '\r', '\n', '/', '>':
			return true
		}
	}
}

func skipBlanks(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
		i++
	}
	return i
}

func isNameChar(c byte, first bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_':
		return true
	case '0' <= c && c <= '9', c == '-', c == '.', c == ':':
		return !first
	}
	return false
}
