// Package lexer provides the language analyzers the transformation core
// consumes: each turns raw text into tokens with attached trivia and exposes
// the structural spans of the result.
package lexer

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gnolang/weave/internal/span"
	"github.com/gnolang/weave/internal/token"
)

var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrUnknownLanguage     = errors.New("unknown language")
)

// Analyzer tokenizes a language and answers structural queries about the result.
type Analyzer interface {
	Name() string
	Extensions() []string
	// Tokenize splits src into tokens. The last token is always an EOF token
	// holding the trailing trivia of the document.
	Tokenize(src string) ([]token.Token, error)
	// Spans returns the structural span provider of tokens.
	Spans(tokens []token.Token) span.Provider
	// Comment wraps body in the block comment syntax of the language.
	Comment(body string) token.Trivia
}

// Error is a tokenization failure at a byte offset.
type Error struct {
	Offset int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	registryMu sync.RWMutex
	registry   = map[string]Analyzer{}
	byExt      = map[string]Analyzer{}
)

// Register makes an analyzer available by name and by file extension.
func Register(a Analyzer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[a.Name()] = a
	for _, ext := range a.Extensions() {
		byExt[ext] = a
	}
}

// Lookup returns the analyzer registered under name.
func Lookup(name string) (Analyzer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return a, nil
}

// ForFile returns the analyzer handling the extension of path.
func ForFile(path string) (Analyzer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no analyzer for %q", ErrUnknownLanguage, ext)
	}
	return a, nil
}

// Extensions lists every registered file extension in sorted order.
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(byExt))
	for ext := range byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func init() {
	for _, d := range Dialects {
		Register(d)
	}
	Register(HTML{})
}
