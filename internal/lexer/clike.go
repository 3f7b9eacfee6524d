package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gnolang/weave/internal/span"
	"github.com/gnolang/weave/internal/token"
)

// Dialect is a table-driven analyzer for languages with C-like lexical
// structure: identifiers, numbers, quoted strings, punctuation, and line or
// block comments.
type Dialect struct {
	Lang         string
	Exts         []string
	LineComments []string
	BlockComment [2]string
	Quotes       string
	// MultilineQuotes lists the quote characters whose strings may span lines.
	MultilineQuotes string
	Keywords        map[string]bool
	Operators       []string // multi-character punctuation, longest first
}

var _ Analyzer = (*Dialect)(nil)

func (d *Dialect) Name() string         { return d.Lang }
func (d *Dialect) Extensions() []string { return d.Exts }

func (d *Dialect) Spans(tokens []token.Token) span.Provider {
	return span.Brackets(tokens)
}

func (d *Dialect) Comment(body string) token.Trivia {
	if d.BlockComment[0] != "" {
		return token.NewComment(token.TriviaBlockComment, d.BlockComment[0], body, d.BlockComment[1])
	}
	return token.NewComment(token.TriviaLineComment, d.LineComments[0], body, "")
}

func (d *Dialect) Tokenize(src string) ([]token.Token, error) {
	a := &assembler{}
	i := 0
	for i < len(src) {
		c := src[i]

		if isBlank(c) {
			j := i
			for j < len(src) && isBlank(src[j]) {
				j++
			}
			whitespace(src[i:j], a.addTrivia)
			i = j
			continue
		}

		if prefix, ok := d.lineComment(src[i:]); ok {
			j := strings.IndexByte(src[i:], '\n')
			if j < 0 {
				j = len(src)
			} else {
				j += i
				if j > i && src[j-1] == '\r' {
					j--
				}
			}
			a.addTrivia(token.Trivia{
				Kind:            token.TriviaLineComment,
				Content:         src[i:j],
				CommentStartLen: len(prefix),
			})
			i = j
			continue
		}

		if open := d.BlockComment[0]; open != "" && strings.HasPrefix(src[i:], open) {
			close := d.BlockComment[1]
			j := strings.Index(src[i+len(open):], close)
			if j < 0 {
				return nil, &Error{Offset: i, Err: ErrUnterminatedComment}
			}
			end := i + len(open) + j + len(close)
			a.addTrivia(token.Trivia{
				Kind:            token.TriviaBlockComment,
				Content:         src[i:end],
				CommentStartLen: len(open),
				CommentEndLen:   len(close),
			})
			i = end
			continue
		}

		var (
			kind token.Kind
			end  int
		)
		switch {
		case strings.IndexByte(d.Quotes, c) >= 0:
			j, err := d.scanString(src, i)
			if err != nil {
				return nil, err
			}
			kind, end = token.String, j
		case isIdentStart(src[i:]):
			end = scanIdent(src, i)
			kind = token.Ident
			if d.Keywords[src[i:end]] {
				kind = token.Keyword
			}
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			kind, end = token.Number, scanNumber(src, i)
		default:
			kind, end = token.Punct, d.scanPunct(src, i)
		}
		if err := a.addToken(kind, src[i:end], i); err != nil {
			return nil, err
		}
		i = end
	}
	return a.finish(len(src))
}

func (d *Dialect) lineComment(s string) (string, bool) {
	for _, p := range d.LineComments {
		if strings.HasPrefix(s, p) {
			return p, true
		}
	}
	return "", false
}

func (d *Dialect) scanString(src string, i int) (int, error) {
	quote := src[i]
	multiline := strings.IndexByte(d.MultilineQuotes, quote) >= 0
	j := i + 1
	for j < len(src) {
		switch src[j] {
		case '\\':
			j += 2
			continue
		case quote:
			return j + 1, nil
		case '\n':
			if !multiline {
				return 0, &Error{Offset: i, Err: ErrUnterminatedString}
			}
		}
		j++
	}
	return 0, &Error{Offset: i, Err: ErrUnterminatedString}
}

func (d *Dialect) scanPunct(src string, i int) int {
	for _, op := range d.Operators {
		if strings.HasPrefix(src[i:], op) {
			return i + len(op)
		}
	}
	_, size := utf8.DecodeRuneInString(src[i:])
	return i + size
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func scanIdent(src string, i int) int {
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	return i
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func scanNumber(src string, i int) int {
	hex := strings.HasPrefix(src[i:], "0x") || strings.HasPrefix(src[i:], "0X")
	j := i
	for j < len(src) {
		c := src[j]
		switch {
		case isDigit(c), c == '.', c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
			j++
		case (c == '+' || c == '-') && !hex && j > i && (src[j-1] == 'e' || src[j-1] == 'E'):
			j++
		default:
			return j
		}
	}
	return j
}

func keywords(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var cOperators = []string{
	">>>=", "===", "!==", "**=", "...", "<<=", ">>=", ">>>",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**", "::", ":=", "<-",
}

// Dialects are the built-in C-like analyzers.
var Dialects = []*Dialect{
	{
		Lang:            "typescript",
		Exts:            []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		LineComments:    []string{"//"},
		BlockComment:    [2]string{"/*", "*/"},
		Quotes:          "\"'`",
		MultilineQuotes: "`",
		Keywords: keywords(
			"abstract", "as", "async", "await", "break", "case", "catch", "class", "const",
			"continue", "default", "delete", "do", "else", "enum", "export", "extends",
			"false", "finally", "for", "from", "function", "if", "implements", "import",
			"in", "instanceof", "interface", "let", "new", "null", "of", "private",
			"protected", "public", "readonly", "return", "static", "super", "switch",
			"this", "throw", "true", "try", "type", "typeof", "var", "void", "while", "yield",
		),
		Operators: cOperators,
	},
	{
		Lang:            "go",
		Exts:            []string{".go", ".gno"},
		LineComments:    []string{"//"},
		BlockComment:    [2]string{"/*", "*/"},
		Quotes:          "\"'`",
		MultilineQuotes: "`",
		Keywords: keywords(
			"break", "case", "chan", "const", "continue", "default", "defer", "else",
			"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
			"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
		),
		Operators: cOperators,
	},
	{
		Lang:         "css",
		Exts:         []string{".css", ".scss", ".less"},
		LineComments: nil,
		BlockComment: [2]string{"/*", "*/"},
		Quotes:       "\"'",
		Operators:    []string{"::", "~=", "|=", "^=", "$=", "*="},
	},
	{
		Lang:         "sql",
		Exts:         []string{".sql"},
		LineComments: []string{"--"},
		BlockComment: [2]string{"/*", "*/"},
		Quotes:       "'\"",
		// SQL strings may contain line breaks.
		MultilineQuotes: "'\"",
		Keywords: keywords(
			"select", "from", "where", "insert", "into", "values", "update", "set",
			"delete", "create", "table", "alter", "drop", "index", "view", "and", "or",
			"not", "null", "join", "left", "right", "inner", "outer", "on", "group",
			"by", "order", "having", "limit", "as", "primary", "key", "references",
		),
		Operators: []string{"<>", "<=", ">=", "!=", "||", "::"},
	},
}
