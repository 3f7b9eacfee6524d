package editor

import (
	"github.com/gnolang/weave/internal/filter"
	"github.com/gnolang/weave/internal/token"
)

// Cursor iterates the matches of the editor each-group by each-group, then
// match by match, then token by token. Every level starts before its first
// element.
type Cursor struct {
	doc    filter.Document
	groups []filter.Group
	g      int
	m      int
	t      int
}

func newCursor(doc filter.Document, groups []filter.Group) *Cursor {
	return &Cursor{doc: doc, groups: groups, g: -1, m: -1, t: -1}
}

// Count returns the number of matches across all groups.
func (c *Cursor) Count() int {
	n := 0
	for _, g := range c.groups {
		n += len(g.Matches)
	}
	return n
}

func (c *Cursor) NextEach() bool {
	if c.g < len(c.groups) {
		c.g++
	}
	c.m, c.t = -1, -1
	return c.g < len(c.groups)
}

func (c *Cursor) NextMatch() bool {
	if c.g < 0 || c.g >= len(c.groups) {
		return false
	}
	matches := c.groups[c.g].Matches
	if c.m < len(matches) {
		c.m++
	}
	c.t = -1
	return c.m < len(matches)
}

func (c *Cursor) NextToken() bool {
	if c.g < 0 || c.g >= len(c.groups) || c.m < 0 || c.m >= len(c.groups[c.g].Matches) {
		return false
	}
	s := c.Match().Span
	if c.t < s.Len() {
		c.t++
	}
	return c.t < s.Len()
}

// Each returns the position of the current each-group.
func (c *Cursor) Each() int { return c.g }

func (c *Cursor) Match() filter.Match {
	return c.groups[c.g].Matches[c.m]
}

// Index returns the document index of the current token.
func (c *Cursor) Index() int {
	return c.Match().Span.Begin + c.t
}

func (c *Cursor) Token() token.Token {
	return c.doc.Token(c.Index())
}
