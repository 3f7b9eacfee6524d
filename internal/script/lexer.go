package script

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType classifies script tokens.
type TokenType int

const (
	TokenIdent  TokenType = iota // identifiers and keywords
	TokenString                  // "double quoted", Go escapes
	TokenRaw                     // `raw pattern`
	TokenInt                     // decimal integer
	TokenPunct                   // any other single character
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenIdent:
		return "identifier"
	case TokenString:
		return "string"
	case TokenRaw:
		return "raw pattern"
	case TokenInt:
		return "integer"
	case TokenPunct:
		return "punctuation"
	default:
		return "end of script"
	}
}

// Token is a lexical token of a script.
type Token struct {
	Type  TokenType
	Value string // unquoted value for strings and raw patterns
	Pos   Pos
	End   int // byte offset after the token
}

// Pos is a location in a script.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// ParseError is a syntax error in a script.
type ParseError struct {
	Pos
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

var keywords = map[string]bool{
	"insert": true, "replace": true, "with": true, "inject": true, "into": true,
	"unless": true, "in": true, "begin": true, "end": true, "before": true,
	"after": true, "reparse": true, "revert": true, "each": true, "first": true,
	"last": true, "skip": true, "including": true, "except": true, "or": true,
	"where": true, "without": true, "span": true, "covering": true, "strict": true,
	"anchored": true, "enclosed": true, "marker": true, "expect": true, "across": true,
}

// IsKeyword reports whether word is reserved by the script language.
func IsKeyword(word string) bool { return keywords[word] }

// Lexer splits a script into tokens.
type Lexer struct {
	input    string
	position int
	line     int
	lineAt   int // offset of the current line start
	tokens   []Token
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Tokenize scans the whole input. The last token is always TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		c := l.input[l.position]
		switch {
		case c == '\n':
			l.position++
			l.line++
			l.lineAt = l.position
		case c == ' ' || c == '\t' || c == '\r':
			l.position++
		case c == '#':
			for l.position < len(l.input) && l.input[l.position] != '\n' {
				l.position++
			}
		case c == '"':
			if err := l.lexString(); err != nil {
				return nil, err
			}
		case c == '`':
			if err := l.lexRaw(); err != nil {
				return nil, err
			}
		case '0' <= c && c <= '9':
			l.lexWhile(TokenInt, func(r rune) bool { return '0' <= r && r <= '9' })
		default:
			r, size := utf8.DecodeRuneInString(l.input[l.position:])
			if isIdentStart(r) {
				l.lexWhile(TokenIdent, isIdentPart)
				continue
			}
			l.addToken(TokenPunct, l.input[l.position:l.position+size], l.position+size)
		}
	}
	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

func (l *Lexer) pos(offset int) Pos {
	return Pos{Offset: offset, Line: l.line, Col: offset - l.lineAt + 1}
}

func (l *Lexer) addToken(typ TokenType, value string, end int) {
	l.tokens = append(l.tokens, Token{Type: typ, Value: value, Pos: l.pos(l.position), End: end})
	l.position = end
}

func (l *Lexer) lexWhile(typ TokenType, ok func(r rune) bool) {
	end := l.position
	for end < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[end:])
		if !ok(r) {
			break
		}
		end += size
	}
	l.addToken(typ, l.input[l.position:end], end)
}

func (l *Lexer) lexString() error {
	end := l.position + 1
	for end < len(l.input) {
		switch l.input[end] {
		case '\\':
			end += 2
			continue
		case '\n':
			return &ParseError{Pos: l.pos(l.position), Msg: "unterminated string"}
		case '"':
			value, err := strconv.Unquote(l.input[l.position : end+1])
			if err != nil {
				return &ParseError{Pos: l.pos(l.position), Msg: fmt.Sprintf("invalid string: %v", err)}
			}
			l.addToken(TokenString, value, end+1)
			return nil
		}
		end++
	}
	return &ParseError{Pos: l.pos(l.position), Msg: "unterminated string"}
}

func (l *Lexer) lexRaw() error {
	i := strings.IndexByte(l.input[l.position+1:], '`')
	if i < 0 {
		return &ParseError{Pos: l.pos(l.position), Msg: "unterminated raw pattern"}
	}
	start := l.position + 1
	end := start + i + 1
	value := l.input[start : end-1]
	l.addToken(TokenRaw, value, end)
	// raw patterns may span lines
	for k, c := range value {
		if c == '\n' {
			l.line++
			l.lineAt = start + k + 1
		}
	}
	return nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || r == '-' || r == '.' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
