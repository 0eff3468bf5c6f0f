package diag

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/eaburns/borf/grammar"
	"github.com/eaburns/borf/loc"
)

func mismatch(t *testing.T, start, src string) *Error {
	t.Helper()
	_, err := grammar.Borf.Parse(src, start, grammar.Options{})
	m, ok := err.(*grammar.Mismatch)
	if !ok {
		t.Fatalf("Parse(%q)=%v, want a *grammar.Mismatch", src, err)
	}
	return FromMismatch(loc.NewFile("", src), m)
}

func TestReport(t *testing.T) {
	e := mismatch(t, grammar.ExprInput, "let x = ")
	want := "error[borf::parser::missing_token]: missing token: expected an expression\n" +
		"  --> 1.9\n" +
		"   1 | let x = \n" +
		"     |         ^\n" +
		"  help: Expected an expression before the end of the input.\n"
	if got := e.Report(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestReportExcerpt(t *testing.T) {
	src := "@M: {\n\tfun: { f }\n}"
	e := mismatch(t, grammar.File, src)
	r := e.Report()
	for _, want := range []string{
		"error[borf::parser::unexpected_token]",
		"  --> 2.2\n",
		"   1 | @M: {\n",
		"   2 | \tfun: { f }\n",
		"     | \t^^^\n",
		"   3 | }\n",
		"  suggestion: Did you mean 'fn'?\n",
	} {
		if !strings.Contains(r, want) {
			t.Errorf("report does not contain %q:\n%s", want, r)
		}
	}
}

func TestSuggestions(t *testing.T) {
	tests := []struct {
		start string
		src   string
		want  string
	}{
		{grammar.DeclInput, "fun: {a b c}", "Did you mean 'fn'?"},
		{grammar.DeclInput, "def: {a}", "Did you mean 'fn'?"},
		{grammar.DeclInput, "Type: {A}", "Did you mean 'type'?"},
		{grammar.DeclInput, "ops: {a}", "Did you mean 'op'?"},
		{grammar.File, "Module: { }", "Module names must start with '@', like '@Module'?"},
		{grammar.File, "fun: {a b c}", "Did you mean 'fn'?"},
		{grammar.File, "types: {A}", "Did you mean 'type'?"},
		{grammar.ExprInput, "f(1, 2", "Missing closing ')'?"},
		{grammar.ExprInput, "{a: 1", "Missing closing '}'?"},
		{grammar.ExprInput, "[1, 2", "Missing closing ']'?"},
		{grammar.ExprInput, "1 2", ""},
	}
	for _, test := range tests {
		e := mismatch(t, test.start, test.src)
		if e.Suggestion != test.want {
			t.Errorf("%q: got suggestion %q, want %q", test.src, e.Suggestion, test.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		descs []string
		want  string
	}{
		{nil, "something else"},
		{[]string{"expr"}, "an expression"},
		{[]string{"expr", "op_expr"}, "an expression"},
		{[]string{"'}'", "EOI"}, "'}' or the end of the input"},
		{[]string{"integer", "float", "no_such_rule"}, "an integer, a float, or a `no_such_rule`"},
	}
	for _, test := range tests {
		if got := describe(test.descs); got != test.want {
			t.Errorf("describe(%v)=%q, want %q", test.descs, got, test.want)
		}
	}
}

func TestJoin(t *testing.T) {
	if Join(nil) != nil {
		t.Errorf("Join(nil) != nil")
	}
	f := loc.NewFile("a.borf", "one\ntwo\n")
	e0 := New(SyntaxError, f, loc.Range{4, 7}, "second")
	e1 := New(SyntaxError, f, loc.Range{0, 3}, "first")
	if got := Join([]*Error{e0}); got != e0 {
		t.Errorf("Join(e0)=%v, want e0", got)
	}
	j := Join([]*Error{e0, e1})
	if j.Kind != MultipleErrors {
		t.Fatalf("Join().Kind=%s, want MultipleErrors", j.Kind)
	}
	want := "2 errors\n\ta.borf:1.1: first\n\ta.borf:2.1: second"
	if got := j.Error(); got != want {
		t.Errorf("Join().Error()=%q, want %q", got, want)
	}
	if !strings.Contains(j.Report(), "error[borf::parser::syntax_error]: first") {
		t.Errorf("Join().Report() is missing the first error:\n%s", j.Report())
	}
}

func TestIoError(t *testing.T) {
	e := IoError("x.borf", os.ErrNotExist)
	if !errors.Is(e, os.ErrNotExist) {
		t.Errorf("errors.Is(%v, os.ErrNotExist)=false", e)
	}
	if got, want := e.Error(), "x.borf: file does not exist"; got != want {
		t.Errorf("Error()=%q, want %q", got, want)
	}
	if e.Recoverable() {
		t.Errorf("Io error is recoverable")
	}
}

func TestKindCode(t *testing.T) {
	if got, want := InvalidMapPatternKey.Code(), "borf::parser::invalid_map_pattern_key"; got != want {
		t.Errorf("Code()=%q, want %q", got, want)
	}
	if got, want := LegacyComma.String(), "LegacyComma"; got != want {
		t.Errorf("String()=%q, want %q", got, want)
	}
}

func TestPad(t *testing.T) {
	if got, want := pad("a\t世"), " \t  "; got != want {
		t.Errorf("pad=%q, want %q", got, want)
	}
	if got, want := carets("世界 x", loc.Range{0, 6}), "^^^^"; got != want {
		t.Errorf("carets=%q, want %q", got, want)
	}
}
