package script

import (
	"fmt"
	"strconv"

	"github.com/gnolang/weave/internal/filter"
	"github.com/gnolang/weave/internal/injection"
	"github.com/gnolang/weave/internal/scope"
)

// Parser builds statements from script tokens.
type Parser struct {
	src    string
	tokens []Token
	pos    int
}

// Parse parses a whole script into its top-level block.
func Parse(src string) (*Block, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{src: src, tokens: tokens}
	return p.parseScript()
}

func (p *Parser) parseScript() (*Block, error) {
	b := &Block{node: node{src: p.src, pos: Pos{Line: 1, Col: 1}}}
	for p.current().Type != TokenEOF {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		b.Statements = append(b.Statements, s)
	}
	return b, nil
}

func (p *Parser) current() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	t := p.tokens[p.pos]
	if t.Type != TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) isKeyword(word string) bool {
	t := p.current()
	return t.Type == TokenIdent && t.Value == word
}

func (p *Parser) isPunct(c string) bool {
	t := p.current()
	return t.Type == TokenPunct && t.Value == c
}

func (p *Parser) errorf(t Token, format string, args ...any) error {
	return &ParseError{Pos: t.Pos, Msg: fmt.Sprintf(format, args...)}
}

func describe(t Token) string {
	if t.Type == TokenEOF {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

func (p *Parser) expectKeyword(word string) (Token, error) {
	if !p.isKeyword(word) {
		return Token{}, p.errorf(p.current(), "expected %q, found %s", word, describe(p.current()))
	}
	return p.advance(), nil
}

func (p *Parser) expectPunct(c string) (Token, error) {
	if !p.isPunct(c) {
		return Token{}, p.errorf(p.current(), "expected %q, found %s", c, describe(p.current()))
	}
	return p.advance(), nil
}

func (p *Parser) expectString() (string, error) {
	t := p.current()
	if t.Type != TokenString {
		return "", p.errorf(t, "expected string, found %s", describe(t))
	}
	p.advance()
	return t.Value, nil
}

func (p *Parser) expectInt() (int, error) {
	t := p.current()
	if t.Type != TokenInt {
		return 0, p.errorf(t, "expected integer, found %s", describe(t))
	}
	p.advance()
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, p.errorf(t, "invalid integer %q", t.Value)
	}
	return n, nil
}

// nodeFrom returns the location of a statement that started at start and ends
// with the last consumed token.
func (p *Parser) nodeFrom(start Token) node {
	end := start.End
	if p.pos > 0 {
		end = p.tokens[p.pos-1].End
	}
	return node{src: p.src[start.Pos.Offset:end], pos: start.Pos}
}

func (p *Parser) parseStatement() (Statement, error) {
	t := p.current()
	if t.Type != TokenIdent {
		return nil, p.errorf(t, "expected statement, found %s", describe(t))
	}
	switch t.Value {
	case "begin":
		return p.parseBlock()
	case "insert":
		return p.parseInsert()
	case "replace":
		return p.parseReplace()
	case "inject":
		return p.parseInject()
	case "unless":
		return p.parseUnless()
	case "in":
		return p.parseInScope()
	case "reparse":
		p.advance()
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &Reparse{node: p.nodeFrom(t)}, nil
	}
	return nil, p.errorf(t, "unknown statement %q", t.Value)
}

func (p *Parser) parseBlock() (*Block, error) {
	start, err := p.expectKeyword("begin")
	if err != nil {
		return nil, err
	}
	var stmts []Statement
	for !p.isKeyword("end") {
		if p.current().Type == TokenEOF {
			return nil, p.errorf(start, "block is never closed")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance()
	if p.isPunct(";") {
		p.advance()
	}
	return &Block{node: p.nodeFrom(start), Statements: stmts}, nil
}

func (p *Parser) parseInsert() (*Insert, error) {
	start := p.advance()
	s := &Insert{}
	hasText := false
	if p.current().Type == TokenString {
		s.Text, hasText = p.advance().Value, true
	}
	switch {
	case p.isKeyword("before"):
	case p.isKeyword("after"):
		s.After = true
	default:
		return nil, p.errorf(p.current(), "expected \"before\" or \"after\", found %s", describe(p.current()))
	}
	p.advance()

	pat, err := p.parsePatternOrAll()
	if err != nil {
		return nil, err
	}
	s.Pattern = pat

	if t := p.current(); t.Type == TokenString {
		if hasText {
			return nil, p.errorf(t, "insert text is given twice")
		}
		s.Text, hasText = p.advance().Value, true
	}
	if !hasText {
		return nil, p.errorf(start, "insert needs a text")
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	s.node = p.nodeFrom(start)
	return s, nil
}

func (p *Parser) parseReplace() (*Replace, error) {
	start := p.advance()
	pat, err := p.parsePatternOrAll()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("with"); err != nil {
		return nil, err
	}
	text, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Replace{node: p.nodeFrom(start), Text: text, Pattern: pat}, nil
}

func (p *Parser) parseInject() (*InjectInto, error) {
	start := p.advance()
	text, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("into"); err != nil {
		return nil, err
	}
	pt, err := p.parsePoint()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &InjectInto{node: p.nodeFrom(start), Text: text, Point: pt}, nil
}

func (p *Parser) parseUnless() (*Unless, error) {
	start := p.advance()
	pt, err := p.parsePoint()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &Unless{node: p.nodeFrom(start), Point: pt, Body: body}, nil
}

func (p *Parser) parseInScope() (*InScope, error) {
	start := p.current()
	s := &InScope{}
	for p.isKeyword("in") {
		p.advance()
		x, err := p.parseScope()
		if err != nil {
			return nil, err
		}
		s.Scopes = append(s.Scopes, x)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s.Body = body
	s.node = p.nodeFrom(start)
	return s, nil
}

// parsePoint parses `<name [revert] [/]>`.
func (p *Parser) parsePoint() (injection.Point, error) {
	var pt injection.Point
	if _, err := p.expectPunct("<"); err != nil {
		return pt, err
	}
	t := p.current()
	if t.Type != TokenIdent {
		return pt, p.errorf(t, "expected injection point name, found %s", describe(t))
	}
	pt.Name = p.advance().Value
	if p.isKeyword("revert") {
		p.advance()
		pt.IsRevert = true
	}
	if p.isPunct("/") {
		p.advance()
		pt.IsAutoClosing = true
	}
	if _, err := p.expectPunct(">"); err != nil {
		return pt, err
	}
	return pt, nil
}

func (p *Parser) parsePatternOrAll() (*PatternSource, error) {
	if p.isPunct("*") {
		p.advance()
		return nil, nil
	}
	return p.parsePattern(false)
}

// parsePattern reads a raw pattern or a run of bare tokens. A bare pattern
// ends at a keyword, a string, ";", "[" or a ")" it did not open.
func (p *Parser) parsePattern(where bool) (*PatternSource, error) {
	if t := p.current(); t.Type == TokenRaw {
		p.advance()
		return &PatternSource{Text: t.Value, Where: where}, nil
	}
	first := p.current()
	depth := 0
	n := 0
loop:
	for {
		t := p.current()
		switch t.Type {
		case TokenEOF, TokenString, TokenRaw:
			break loop
		case TokenIdent:
			if IsKeyword(t.Value) {
				break loop
			}
		case TokenPunct:
			switch t.Value {
			case ";", "[":
				break loop
			case "(":
				depth++
			case ")":
				if depth == 0 {
					break loop
				}
				depth--
			}
		}
		p.advance()
		n++
	}
	if n == 0 {
		return nil, p.errorf(first, "expected pattern, found %s", describe(first))
	}
	last := p.tokens[p.pos-1]
	return &PatternSource{Text: p.src[first.Pos.Offset:last.End], Where: where}, nil
}

func (p *Parser) parseScope() (*ScopeExpr, error) {
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	x := &ScopeExpr{Terms: []*Term{t}}
	for p.isKeyword("except") || p.isKeyword("or") {
		op := p.advance().Value
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x.Terms = append(x.Terms, t)
		x.Ops = append(x.Ops, op)
	}
	return x, nil
}

func (p *Parser) parseTerm() (*Term, error) {
	t := &Term{Expect: scope.NoExpect}
	if p.isKeyword("each") {
		p.advance()
		t.Each = true
	}
	if p.isKeyword("first") || p.isKeyword("last") {
		if p.advance().Value == "first" {
			t.Select = scope.First
		} else {
			t.Select = scope.Last
		}
		t.Count = 1
		if p.current().Type == TokenInt {
			n, _ := p.expectInt()
			t.Count = n
		}
		if p.isKeyword("skip") {
			p.advance()
			n, err := p.expectInt()
			if err != nil {
				return nil, err
			}
			t.Skip = n
		}
	}
	if p.isKeyword("across") {
		p.advance()
		t.Across = true
	}
	if p.isKeyword("before") || p.isKeyword("after") {
		after := p.advance().Value == "after"
		including := false
		if p.isKeyword("including") {
			p.advance()
			including = true
		}
		switch {
		case after && including:
			t.Extrema = scope.AfterIncluded
		case after:
			t.Extrema = scope.After
		case including:
			t.Extrema = scope.BeforeIncluded
		default:
			t.Extrema = scope.Before
		}
	}

	start := p.current()
	if err := p.parsePrimary(&t.Primary); err != nil {
		return nil, err
	}
	for p.isKeyword("where") || p.isKeyword("with") || p.isKeyword("without") {
		kw := p.current()
		if t.Primary.Kind == PrimaryGroup || t.Primary.Kind == PrimaryMarker {
			return nil, p.errorf(kw, "%q cannot filter %s", kw.Value, describe(start))
		}
		p.advance()
		if kw.Value == "where" {
			pat, err := p.parsePattern(true)
			if err != nil {
				return nil, err
			}
			t.Filters = append(t.Filters, Filter{Pattern: pat})
			continue
		}
		pt, err := p.parsePoint()
		if err != nil {
			return nil, err
		}
		t.Filters = append(t.Filters, Filter{Point: pt.Name, Include: kw.Value == "with"})
	}
	if p.isPunct("[") {
		p.advance()
		k, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		t.Index = &IndexSpec{Start: k, Count: 1}
		if p.isPunct(",") {
			p.advance()
			if t.Index.Count, err = p.expectInt(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expectPunct("]"); err != nil {
			return nil, err
		}
	}
	if p.isKeyword("expect") {
		p.advance()
		n, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		t.Expect = n
	}
	return t, nil
}

func (p *Parser) parsePrimary(pr *Primary) error {
	switch {
	case p.isPunct("("):
		p.advance()
		x, err := p.parseScope()
		if err != nil {
			return err
		}
		if _, err := p.expectPunct(")"); err != nil {
			return err
		}
		pr.Kind, pr.Group = PrimaryGroup, x
		return nil
	case p.isKeyword("marker"):
		p.advance()
		pt, err := p.parsePoint()
		if err != nil {
			return err
		}
		pr.Kind, pr.Point = PrimaryMarker, pt
		return nil
	case p.isKeyword("covering") && p.peek(1).Type == TokenIdent && p.peek(1).Value == "enclosed":
		p.advance()
		pr.Covering = true
		return p.parseEnclosed(pr)
	case p.isKeyword("enclosed"):
		return p.parseEnclosed(pr)
	case p.isKeyword("covering"), p.isKeyword("strict"), p.isKeyword("anchored"):
		switch p.advance().Value {
		case "covering":
			pr.Mode = filter.Covering
		case "strict":
			pr.Mode = filter.StrictCovering
		default:
			pr.Mode = filter.Anchored
		}
		return p.parseSpan(pr)
	case p.isKeyword("span"):
		pr.Mode = filter.Deepest
		return p.parseSpan(pr)
	}
	pat, err := p.parsePattern(false)
	if err != nil {
		return err
	}
	pr.Kind, pr.Pattern = PrimaryPattern, pat
	return nil
}

func (p *Parser) parseSpan(pr *Primary) error {
	if _, err := p.expectKeyword("span"); err != nil {
		return err
	}
	t := p.current()
	if t.Type != TokenIdent || IsKeyword(t.Value) {
		return p.errorf(t, "expected span type, found %s", describe(t))
	}
	p.advance()
	pr.Kind, pr.SpanType = PrimarySpan, t.Value
	return nil
}

func (p *Parser) parseEnclosed(pr *Primary) error {
	if _, err := p.expectKeyword("enclosed"); err != nil {
		return err
	}
	open, err := p.expectString()
	if err != nil {
		return err
	}
	closing, err := p.expectString()
	if err != nil {
		return err
	}
	pr.Kind, pr.Open, pr.Close = PrimaryEnclosed, open, closing
	return nil
}
