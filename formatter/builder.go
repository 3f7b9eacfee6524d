package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a problem located in a script or a target file. Lines and
// columns are 1-based; EndColumn is inclusive.
type Diagnostic struct {
	Severity  Severity
	Rule      string
	Filename  string
	Line      int
	Column    int
	EndColumn int
	Message   string
	Note      string
}

const diagnosticTemplate = `{{header .Rule .Severity .MaxLineNumWidth .Filename .Line .Column}}
{{- snippet .SnippetLines .Line .MaxLineNumWidth .CommonIndent .Padding}}
{{- underlineAndMessage .Message .Padding .Line .Column .EndColumn .SnippetLines .CommonIndent}}
{{- if .Note}}{{note .Note}}{{end}}
`

var tmpl = template.Must(template.New("diagnostic").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}).Parse(diagnosticTemplate))

type diagnosticData struct {
	Diagnostic
	Padding         string
	MaxLineNumWidth int
	SnippetLines    []string
	CommonIndent    string
}

// FormatDiagnostics renders ds against the source lines they point into.
func FormatDiagnostics(ds []Diagnostic, lines []string) string {
	var sb strings.Builder
	for _, d := range ds {
		sb.WriteString(buildDiagnostic(d, lines))
	}
	return sb.String()
}

func buildDiagnostic(d Diagnostic, lines []string) string {
	width := len(fmt.Sprintf("%d", d.Line))
	data := diagnosticData{
		Diagnostic:      d,
		Padding:         strings.Repeat(" ", width+1),
		MaxLineNumWidth: width,
		SnippetLines:    lines,
	}
	if d.Line >= 1 && d.Line <= len(lines) {
		data.CommonIndent = leadingBlank(lines[d.Line-1])
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting diagnostic: %v", err)
	}
	return buf.String()
}

func header(rule string, severity Severity, width int, filename string, line, column int) string {
	var out string
	if severity == SeverityWarning {
		out = warningStyle.Sprint("warning: ")
	} else {
		out = errorStyle.Sprint("error: ")
	}
	out += ruleStyle.Sprintf("%s\n", rule)
	out += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", width))
	if line > 0 {
		return out + fileStyle.Sprintf("%s:%d:%d", filename, line, column) + "\n"
	}
	return out + fileStyle.Sprint(filename) + "\n"
}

func codeSnippet(lines []string, line, width int, indent, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)
	if line < 1 || line > len(lines) {
		return out
	}
	text := strings.TrimPrefix(lines[line-1], indent)
	return out + lineStyle.Sprintf("%*d | ", width, line) + text + "\n"
}

func underlineAndMessage(message, padding string, line, column, endColumn int, lines []string, indent string) string {
	out := lineStyle.Sprintf("%s| ", padding)
	if line < 1 || line > len(lines) || column < 1 {
		return out + messageStyle.Sprintf("%s\n", message)
	}
	if endColumn < column {
		endColumn = column
	}

	src := lines[line-1]
	shift := visualColumn(indent, len(indent)+1)
	start := max(visualColumn(src, column)-shift, 0)
	end := visualColumn(src, endColumn) - shift

	out += strings.Repeat(" ", start)
	out += messageStyle.Sprintf("%s\n", strings.Repeat("~", end-start+1))
	out += lineStyle.Sprintf("%s= ", padding)
	return out + messageStyle.Sprintf("%s\n", message)
}

func note(text string) string {
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", text)
}

// visualColumn returns the display column of byte column col (1-based) in
// line, expanding tabs.
func visualColumn(line string, col int) int {
	v := 0
	for i, ch := range line {
		if i+1 >= col {
			break
		}
		if ch == '\t' {
			v += tabWidth - v%tabWidth
		} else {
			v++
		}
	}
	return v
}

func leadingBlank(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}
