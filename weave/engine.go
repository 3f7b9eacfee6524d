// Package weave applies transformation scripts to source files.
package weave

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/weave/internal/cache"
	"github.com/gnolang/weave/internal/editor"
	"github.com/gnolang/weave/internal/lexer"
	"github.com/gnolang/weave/internal/script"
)

// Transformer is the contract the processing helpers and the CLI work
// against.
type Transformer interface {
	Run(path string) (*Result, error)
	RunSource(path string, source []byte) (*Result, error)
	Matches(path string) bool
}

// Result is the outcome of applying every matching rule to one file.
type Result struct {
	Path     string
	Original string
	Output   string
	Changed  bool
	// Rules lists the rules that applied to the file, in order.
	Rules []string
	// Cached counts the rules whose output came from the cache.
	Cached int
	Errors []*RuleError
}

// Failed reports whether a rule failed on the file.
func (r *Result) Failed() bool { return len(r.Errors) > 0 }

// RuleError is a failure of one rule, while parsing its script or while
// applying it to a file.
type RuleError struct {
	Rule   string
	Script string // path of the script, empty for inline sources
	Source string // script text
	Path   string // target file, empty for parse errors
	Err    error
}

func (e *RuleError) Error() string {
	where := e.Script
	if where == "" {
		where = "rule " + e.Rule
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Path, where, e.Err)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

type compiledRule struct {
	Rule
	script string
	source string
	block  *script.Block
}

// Engine applies the rules of a configuration. It is safe for concurrent use
// across files.
type Engine struct {
	name   string
	root   string
	rules  []compiledRule
	cache  *cache.Cache
	logger *zap.Logger
}

var _ Transformer = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine) error

// WithCache stores results under dir. An empty dir turns caching off.
func WithCache(dir string) Option {
	return func(e *Engine) error {
		if dir == "" {
			e.cache = nil
			return nil
		}
		c, err := cache.New(dir)
		if err != nil {
			return err
		}
		e.cache = c
		return nil
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// New compiles the rules of config. Every rule script is parsed up front; a
// syntax error is returned as a *RuleError.
func New(config Config, opts ...Option) (*Engine, error) {
	e := &Engine{name: config.Name, root: config.dir, logger: zap.NewNop()}
	if err := WithCache(config.CacheDir())(e); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	for _, r := range config.Rules {
		cr := compiledRule{Rule: r, source: r.Source}
		if cr.source == "" {
			cr.script = config.resolve(r.Script)
			data, err := os.ReadFile(cr.script)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
			cr.source = string(data)
		}
		if r.Language != "" {
			if _, err := lexer.Lookup(r.Language); err != nil {
				return nil, fmt.Errorf("rule %s: %w", r.Name, err)
			}
		}
		block, err := script.Parse(cr.source)
		if err != nil {
			return nil, &RuleError{Rule: r.Name, Script: cr.script, Source: cr.source, Err: err}
		}
		cr.block = block
		e.rules = append(e.rules, cr)
	}
	return e, nil
}

func (e *Engine) Name() string { return e.name }

// Matches reports whether a rule applies to path.
func (e *Engine) Matches(path string) bool {
	rel := e.relative(path)
	for _, r := range e.rules {
		if r.includes(rel) {
			return true
		}
	}
	return false
}

// relative returns path relative to the configuration directory, which is
// what include globs are written against.
func (e *Engine) relative(path string) string {
	root := e.root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// Run applies the matching rules to the file at path. The file is not
// written.
func (e *Engine) Run(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.RunSource(path, data)
}

// RunSource applies the rules matching path to source. Each rule sees the
// output of the previous one. A rule that fails keeps the edits made before
// the failure and processing goes on with the next rule.
func (e *Engine) RunSource(path string, source []byte) (*Result, error) {
	res := &Result{Path: path, Original: string(source), Output: string(source)}
	rel := e.relative(path)
	for i := range e.rules {
		r := &e.rules[i]
		if !r.includes(rel) {
			continue
		}
		an, err := e.analyzerFor(r, path)
		if err != nil {
			return nil, err
		}
		res.Rules = append(res.Rules, r.Name)

		out, cached, err := e.apply(r, an, path, res.Output)
		if err != nil {
			res.Errors = append(res.Errors, &RuleError{
				Rule:   r.Name,
				Script: r.script,
				Source: r.source,
				Path:   path,
				Err:    err,
			})
		}
		if cached {
			res.Cached++
		}
		res.Output = out
	}
	res.Changed = res.Output != res.Original
	return res, nil
}

func (e *Engine) analyzerFor(r *compiledRule, path string) (lexer.Analyzer, error) {
	if r.Language != "" {
		return lexer.Lookup(r.Language)
	}
	return lexer.ForFile(path)
}

// apply runs one rule over content. A statement failure comes back as a
// *script.ApplyError together with the partially edited output.
func (e *Engine) apply(r *compiledRule, an lexer.Analyzer, path, content string) (string, bool, error) {
	key := cache.NewKey([]byte(content), []byte(r.source), an.Name())
	entry, found, err := e.cache.Get(key)
	if err != nil {
		e.logger.Warn("Ignoring unreadable cache entry", zap.String("file", path), zap.Error(err))
	}
	if found && !entry.Failed {
		e.logger.Debug("Cache hit", zap.String("file", path), zap.String("rule", r.Name))
		return entry.Output, true, nil
	}

	logger := e.logger.With(zap.String("file", path), zap.String("rule", r.Name))
	ed, err := editor.New(an, content, logger)
	if err != nil {
		return content, false, err
	}
	runErr := script.Run(r.block, ed)
	out := ed.Text()

	if err := e.cache.Put(key, &cache.Entry{
		Path:    path,
		Output:  out,
		Changed: out != content,
		Failed:  runErr != nil,
	}); err != nil {
		e.logger.Warn("Failed to cache result", zap.String("file", path), zap.Error(err))
	}
	return out, false, runErr
}

// InvalidateCache drops every cached result.
func (e *Engine) InvalidateCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.InvalidateAll()
}
