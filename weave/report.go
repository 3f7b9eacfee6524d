package weave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/weave/formatter"
	"github.com/gnolang/weave/internal/script"
)

// Diagnostic locates e in its script when possible, and in the target file
// otherwise.
func (e *RuleError) Diagnostic() formatter.Diagnostic {
	d := formatter.Diagnostic{
		Rule:     e.Rule,
		Filename: e.scriptName(),
		Message:  e.Err.Error(),
	}

	var perr *script.ParseError
	var aerr *script.ApplyError
	switch {
	case errors.As(e.Err, &perr):
		d.Line, d.Column, d.EndColumn = perr.Line, perr.Col, perr.Col
		d.Message = perr.Msg
	case errors.As(e.Err, &aerr):
		first, _, _ := strings.Cut(aerr.Statement, "\n")
		d.Line, d.Column = aerr.Pos.Line, aerr.Pos.Col
		d.EndColumn = aerr.Pos.Col + max(len(first)-1, 0)
		d.Message = aerr.Err.Error()
		d.Note = "while editing " + e.Path
		if aerr.Point != "" {
			d.Note += fmt.Sprintf(" at point <%s>", aerr.Point)
		}
	default:
		d.Filename = e.Path
		if d.Filename == "" {
			d.Filename = e.scriptName()
		}
	}
	return d
}

func (e *RuleError) scriptName() string {
	if e.Script != "" {
		return e.Script
	}
	return "<" + e.Rule + ">"
}

// FormatErrors renders errs against the scripts they come from.
func FormatErrors(errs []*RuleError) string {
	var sb strings.Builder
	for _, e := range errs {
		lines := strings.Split(e.Source, "\n")
		sb.WriteString(formatter.FormatDiagnostics([]formatter.Diagnostic{e.Diagnostic()}, lines))
	}
	return sb.String()
}

// Diff renders the pending change of r as a unified diff.
func (r *Result) Diff() string {
	return formatter.UnifiedDiff(r.Path, r.Original, r.Output, formatter.DefaultContext)
}
