package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

var (
	hunkStyle    = color.New(color.FgCyan)
	removedStyle = color.New(color.FgRed)
	addedStyle   = color.New(color.FgGreen)
)

type lineOp struct {
	kind byte // ' ', '-' or '+'
	text string
}

// UnifiedDiff renders the line changes from before to after as a unified
// diff of path. It returns "" when both are equal.
func UnifiedDiff(path, before, after string, context int) string {
	if before == after {
		return ""
	}
	ops := lineOps(before, after)

	var sb strings.Builder
	sb.WriteString(fileStyle.Sprintf("--- a/%s\n", path))
	sb.WriteString(fileStyle.Sprintf("+++ b/%s\n", path))
	for _, h := range hunks(ops, context) {
		writeHunk(&sb, ops, h)
	}
	return sb.String()
}

func lineOps(before, after string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		kind := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			kind = '-'
		case diffmatchpatch.DiffInsert:
			kind = '+'
		}
		for _, line := range splitLines(d.Text) {
			ops = append(ops, lineOp{kind: kind, text: line})
		}
	}
	return ops
}

func splitLines(s string) []string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// hunk is a half-open range of ops.
type hunk struct{ from, to int }

func hunks(ops []lineOp, context int) []hunk {
	var out []hunk
	for i := 0; i < len(ops); i++ {
		if ops[i].kind == ' ' {
			continue
		}
		from := max(i-context, 0)
		to := min(i+1+context, len(ops))
		if n := len(out); n > 0 && from <= out[n-1].to {
			out[n-1].to = to
		} else {
			out = append(out, hunk{from, to})
		}
	}
	return out
}

func writeHunk(sb *strings.Builder, ops []lineOp, h hunk) {
	oldStart, newStart := 1, 1
	for _, op := range ops[:h.from] {
		if op.kind != '+' {
			oldStart++
		}
		if op.kind != '-' {
			newStart++
		}
	}
	oldLen, newLen := 0, 0
	for _, op := range ops[h.from:h.to] {
		if op.kind != '+' {
			oldLen++
		}
		if op.kind != '-' {
			newLen++
		}
	}
	sb.WriteString(hunkStyle.Sprintf("@@ -%s +%s @@\n", hunkRange(oldStart, oldLen), hunkRange(newStart, newLen)))

	for _, op := range ops[h.from:h.to] {
		text := op.text
		noEOL := !strings.HasSuffix(text, "\n")
		text = strings.TrimSuffix(text, "\n")
		line := string(op.kind) + text
		switch op.kind {
		case '-':
			line = removedStyle.Sprint(line)
		case '+':
			line = addedStyle.Sprint(line)
		}
		sb.WriteString(line + "\n")
		if noEOL {
			sb.WriteString("\\ No newline at end of file\n")
		}
	}
}

func hunkRange(start, n int) string {
	if n == 0 {
		start--
	}
	if n == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, n)
}
