package diag

import (
	"fmt"
	"strings"

	"github.com/eaburns/borf/loc"
	"golang.org/x/text/width"
)

// Report returns a multi-line report of the error
// with a caret-annotated excerpt of the source.
func (e *Error) Report() string {
	var s strings.Builder
	e.report(&s)
	return s.String()
}

func (e *Error) report(s *strings.Builder) {
	fmt.Fprintf(s, "error[%s]: %s\n", e.Kind.Code(), e.Msg)
	if e.Kind == MultipleErrors {
		for _, err := range e.Errors {
			s.WriteString("\n")
			err.report(s)
		}
		return
	}
	if e.Kind != Io {
		fmt.Fprintf(s, "  --> %s\n", e.Loc())
	}
	if e.Text != "" || e.Kind != Io {
		excerpt(s, loc.NewFile(e.Path, e.Text), e.Line, e.Col, e.Span)
	}
	if e.Help != "" {
		fmt.Fprintf(s, "  help: %s\n", e.Help)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(s, "  suggestion: %s\n", e.Suggestion)
	}
}

// excerpt writes the line before, the line of, and the line after the span,
// with carets under the span.
func excerpt(s *strings.Builder, f *loc.File, line, col int, span loc.Range) {
	n := f.NumLines()
	if line < 1 {
		line = 1
	}
	if line > n {
		line = n
	}
	text := f.Line(line)
	if line > 1 {
		fmt.Fprintf(s, "%4d | %s\n", line-1, f.Line(line-1))
	}
	fmt.Fprintf(s, "%4d | %s\n", line, text)
	fmt.Fprintf(s, "     | %s%s\n", pad(prefixRunes(text, col-1)), carets(f.Text, span))
	if line < n {
		fmt.Fprintf(s, "%4d | %s\n", line+1, f.Line(line+1))
	}
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// carets returns a run of carets as wide as the first line of the span.
func carets(text string, span loc.Range) string {
	if span[1] > len(text) {
		span[1] = len(text)
	}
	t := text[span[0]:span[1]]
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[:i]
	}
	w := columns(t)
	if w < 1 {
		w = 1
	}
	return strings.Repeat("^", w)
}

// pad returns blank space as wide as s,
// keeping tabs so that the result aligns under s.
func pad(s string) string {
	var p strings.Builder
	for _, r := range s {
		switch {
		case r == '\t':
			p.WriteRune('\t')
		case wide(r):
			p.WriteString("  ")
		default:
			p.WriteRune(' ')
		}
	}
	return p.String()
}

// columns returns the display width of s in a terminal.
func columns(s string) int {
	var n int
	for _, r := range s {
		if wide(r) {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func wide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}
