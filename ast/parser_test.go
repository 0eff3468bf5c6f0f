package ast

import (
	"strings"
	"testing"

	"github.com/eaburns/borf/diag"
	"github.com/eaburns/borf/loc"
	"github.com/google/go-cmp/cmp"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1", "1"},
		{"-5", "-5"},
		{"- 5", "- 5"},
		{"9223372036854775807", "9223372036854775807"},
		{"-9223372036854775808", "-9223372036854775808"},
		{"1.5", "1.5"},
		{"1.5e3", "1500.0"},
		{"2e2", "200.0"},
		{`"a\tb"`, `"a\tb"`},
		{`"it\'s"`, `"it's"`},
		{"true", "true"},
		{"x", "x"},
		{"x'", "x'"},
		{"empty?", "empty?"},
		{"a.b.c", "a.b.c"},

		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 * 2 + 3", "((1 * 2) + 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"1 / 2 / 3", "((1 / 2) / 3)"},
		{"a |> b |> c", "(a |> (b |> c))"},
		{"a or b and c", "(a or (b and c))"},
		{"a and b or c", "((a and b) or c)"},
		{"a == b + 1", "(a == (b + 1))"},
		{"a < b and b <= c", "((a < b) and (b <= c))"},
		{"x : Int", "(x : Int)"},
		{"x : a or b", "(x : (a or b))"},
		{"-x |> f", "-(x |> f)"},
		{"-x * y", "(-x * y)"},
		{"not a and b", "(!a and b)"},
		{"!a", "!a"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},

		{"f(1, 2)", "f(1, 2)"},
		{"f()", "f()"},
		{"f(1)(2)", "f(1)(2)"},
		{"(f 1 2)", "f(1, 2)"},
		{"(+ 1 2)", "(+ 1 2)"},
		{"(- 1 2)", "(- 1 2)"},
		{"(f -1)", "(f - 1)"},
		{"(not true)", "!true"},
		{"(not true false)", "(not true false)"},
		{"x |> f(1)", "(x |> f(1))"},

		{"[x y -> x + y]", "[x y -> (x + y)]"},
		{"[-> 1]", "[-> 1]"},
		{"[_ -> 1]", "[_ -> 1]"},
		{"[[a, b] -> a]", "[[a, b] -> a]"},
		{"[{k: v} -> v]", "[{k: v} -> v]"},
		{"[x: Int -> x]", "[x: Int -> x]"},
		{"let x = 1 in x", "let x = 1 in x"},
		{"let x = 1", "let x = 1"},
		{"let [a, _] = xs in a", "let [a, _] = xs in a"},
		{"if a then b else c", "if a then b else c"},
		{"b iff a or_else c", "if a then b else c"},

		{"[]", "[]"},
		{"[1, 2,]", "[1, 2]"},
		{"{}", "{}"},
		{`{a: 1, "b c": 2}`, `{a: 1, "b c": 2}`},
		{"{1, 2}", "{1, 2}"},
		{"{a}", "{a}"},

		{"'x", "'x"},
		{"'(1 + 2)", "'(1 + 2)"},
		{"`(1 + ~(2 + 3))", "`(1 + ~(2 + 3))"},
		{"`[1, ~@xs]", "`[1, ~@xs]"},
	}
	for _, test := range tests {
		p := NewParser(Config{})
		x, err := p.ParseExpr("", test.src)
		if err != nil {
			t.Errorf("ParseExpr(%q) failed: %s", test.src, err)
			continue
		}
		if got := Format(x); got != test.want {
			t.Errorf("ParseExpr(%q)=%s, want %s", test.src, got, test.want)
		}
	}
}

func TestFormatReparses(t *testing.T) {
	srcs := []string{
		"1 + 2 * 3 |> f",
		"-x |> f",
		"- 5",
		"(- 1 2)",
		"(not true)",
		"[x {a: y} -> x + y](1, {a: 2})",
		"let {k: v, \"x y\": w} = m in v * w",
		"`(+ ~a ~@bs)",
		"'(let x = 1 in x)(2)",
		"{1, 2.5, \"three\"}",
		"if a < b then -a else b iff c or_else d",
	}
	for _, src := range srcs {
		p := NewParser(Config{})
		x, err := p.ParseExpr("", src)
		if err != nil {
			t.Errorf("ParseExpr(%q) failed: %s", src, err)
			continue
		}
		str := Format(x)
		y, err := p.ParseExpr("", str)
		if err != nil {
			t.Errorf("ParseExpr(%q) failed: %s", str, err)
			continue
		}
		if !Equal(x, y) {
			t.Errorf("%q formatted as %q, which parses differently:\n%s",
				src, str, cmp.Diff(x, y, IgnoreLocs))
		}
	}
}

func TestParseModule(t *testing.T) {
	src := `@M: {
		type: { A B }
		op: { o }
		fn: { f }
		fn g: Int -> Int = [x -> x]
		type A = Int * Int
		op o: A -o A;
		dep @N -> @M
		dep "x.borf" => M
		entity e: ?[Int]
		entity n: {String: Int} = {a: 1}
	}`
	p := NewParser(Config{})
	m, err := p.ParseString("m.borf", src)
	if err != nil {
		t.Fatalf("ParseString failed: %s", err)
	}
	if m.Name != "M" {
		t.Errorf("m.Name=%q, want M", m.Name)
	}
	if diff := cmp.Diff([]string{"A", "B"}, m.Types); diff != "" {
		t.Errorf("m.Types: %s", diff)
	}
	if diff := cmp.Diff([]string{"o"}, m.Ops); diff != "" {
		t.Errorf("m.Ops: %s", diff)
	}
	if diff := cmp.Diff([]string{"f", "g"}, m.Funs); diff != "" {
		t.Errorf("m.Funs: %s", diff)
	}
	var got []string
	for _, d := range m.Decls {
		got = append(got, Format(d))
	}
	want := []string{
		"fn g: (Int -> Int) = [x -> x]",
		"type A = (Int * Int)",
		"op o: (A -o A)",
		"dep N -> M",
		"dep x.borf => M",
		"entity e: ?[Int]",
		"entity n: {String: Int} = {a: 1}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, wanted %s\n%s", got, want, diff)
	}
	dep := m.Decls[4].(*DepDecl)
	if dep.Import != "x.borf" || !dep.Direct {
		t.Errorf("dep=%+v, want Import x.borf, Direct", dep)
	}
}

func TestTypeExprFoldsLeft(t *testing.T) {
	p := NewParser(Config{})
	d, err := p.ParseDecl("", "op f: A -> B * C + D...")
	if err != nil {
		t.Fatalf("ParseDecl failed: %s", err)
	}
	if got, want := Format(d), "op f: (((A -> B) * C) + D...)"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestParseRepl(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"@M: { }", "*ast.Module"},
		{"fn: { f }", "*ast.Module"},
		{"fn f: Int = 1", "*ast.FnDecl"},
		{"type T = Int", "*ast.TypeDecl"},
		{"1 + 2", "*ast.Binary"},
		{"x", "*ast.Var"},
		{"let x = 5", "*ast.Let"},
	}
	for _, test := range tests {
		p := NewParser(Config{})
		n, err := p.ParseRepl("", test.src)
		if err != nil {
			t.Errorf("ParseRepl(%q) failed: %s", test.src, err)
			continue
		}
		if got := typeName(n); got != test.want {
			t.Errorf("ParseRepl(%q)=%s, want %s", test.src, got, test.want)
		}
	}
}

func typeName(n Node) string {
	switch n.(type) {
	case *Module:
		return "*ast.Module"
	case *FnDecl:
		return "*ast.FnDecl"
	case *TypeDecl:
		return "*ast.TypeDecl"
	case *Binary:
		return "*ast.Binary"
	case *Var:
		return "*ast.Var"
	case *Let:
		return "*ast.Let"
	}
	return "other"
}

func TestLocs(t *testing.T) {
	p := NewParser(Config{})
	x, err := p.ParseExpr("x.borf", "a +\n  b")
	if err != nil {
		t.Fatalf("ParseExpr failed: %s", err)
	}
	bin := x.(*Binary)
	if got, want := bin.Loc().String(), "x.borf:1.1"; got != want {
		t.Errorf("bin.Loc()=%s, want %s", got, want)
	}
	if got, want := bin.Right.Loc().String(), "x.borf:2.3"; got != want {
		t.Errorf("bin.Right.Loc()=%s, want %s", got, want)
	}
	if got, want := bin.Loc().Range, (loc.Range{0, 7}); got != want {
		t.Errorf("bin.Loc().Range=%v, want %v", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		parse func(*Parser, string) error
		src   string
		kind  diag.Kind
		// msg, suggestion, and help are substrings of the error's fields.
		msg        string
		suggestion string
		help       string
	}{
		{name: "empty", parse: module, src: "", kind: diag.EmptyInput},
		{name: "blank", parse: module, src: "  // nothing\n/* here */", kind: diag.EmptyInput},
		{name: "empty expr", parse: expr, src: " ", kind: diag.EmptyInput},
		{
			name:       "fun",
			parse:      decl,
			src:        "fun: {a b c}",
			kind:       diag.UnexpectedToken,
			msg:        "found 'fun'",
			suggestion: "Did you mean 'fn'?",
		},
		{
			name:       "fun in module",
			parse:      module,
			src:        "@M: { fun: {a b c} }",
			kind:       diag.UnexpectedToken,
			suggestion: "Did you mean 'fn'?",
		},
		{
			name:  "let at EOF",
			parse: expr,
			src:   "let x = ",
			kind:  diag.MissingToken,
			msg:   "expected an expression",
			help:  "before the end of the input",
		},
		{
			name:       "module without @",
			parse:      module,
			src:        "Module: { }",
			kind:       diag.UnexpectedToken,
			suggestion: "'@Module'",
		},
		{
			name:       "unclosed list",
			parse:      expr,
			src:        "[1, 2",
			kind:       diag.MissingToken,
			suggestion: "Missing closing ']'?",
		},
		{name: "loose", parse: module, src: "fn f: Int = 1", kind: diag.MissingNode},
		{name: "big int", parse: expr, src: "99999999999999999999", kind: diag.InvalidLiteral},
		{name: "big float", parse: expr, src: "1e999", kind: diag.ValueError},
		{name: "bad escape", parse: expr, src: `"\q"`, kind: diag.InvalidLiteral},
		{name: "int map key", parse: expr, src: "{1: 2}", kind: diag.InvalidMapKey},
		{name: "int map pattern key", parse: expr, src: "let {1: x} = m in x", kind: diag.InvalidMapPatternKey},
		{
			name:       "lowercase type",
			parse:      module,
			src:        "@M: { type: { t } }",
			kind:       diag.InvalidTypePattern,
			suggestion: "'T'",
		},
		{name: "lowercase type decl", parse: module, src: "@M: { type t = Int }", kind: diag.InvalidTypePattern},
		{name: "comma", parse: module, src: "@M: { fn: { a, b } }", kind: diag.LegacyComma},
		{
			name:  "missing operand",
			parse: expr,
			src:   "1 +",
			kind:  diag.SyntaxError,
			msg:   `after '+' in "1 + …"`,
		},
		{name: "bad token", parse: expr, src: "1 + $", kind: diag.UnexpectedToken, msg: "found '$'"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.parse(NewParser(Config{}), test.src)
			e, ok := err.(*diag.Error)
			if !ok {
				t.Fatalf("got %v (%T), want a *diag.Error", err, err)
			}
			if e.Kind != test.kind {
				t.Errorf("got kind %s, want %s: %s", e.Kind, test.kind, e)
			}
			if !strings.Contains(e.Msg, test.msg) {
				t.Errorf("got message %q, want it to contain %q", e.Msg, test.msg)
			}
			if !strings.Contains(e.Suggestion, test.suggestion) {
				t.Errorf("got suggestion %q, want it to contain %q", e.Suggestion, test.suggestion)
			}
			if !strings.Contains(e.Help, test.help) {
				t.Errorf("got help %q, want it to contain %q", e.Help, test.help)
			}
		})
	}
}

func module(p *Parser, src string) error {
	_, err := p.ParseString("", src)
	return err
}

func expr(p *Parser, src string) error {
	_, err := p.ParseExpr("", src)
	return err
}

func decl(p *Parser, src string) error {
	_, err := p.ParseDecl("", src)
	return err
}

func TestLetAtEOFSpan(t *testing.T) {
	_, err := NewParser(Config{}).ParseExpr("", "let x = ")
	e := err.(*diag.Error)
	if e.Span != (loc.Range{8, 8}) || !e.AtEOF {
		t.Errorf("got span %v, AtEOF=%v, want [8 8], true", e.Span, e.AtEOF)
	}
}

func TestRecover(t *testing.T) {
	src := `@M: {
	fn f: Int = 1 + ;
	fn g: Int = $;
	fn h: Int = 3
}`
	p := NewParser(Config{Recover: true})
	m, err := p.ParseString("", src)
	e, ok := err.(*diag.Error)
	if !ok || e.Kind != diag.MultipleErrors {
		t.Fatalf("got %v, want MultipleErrors", err)
	}
	if len(e.Errors) != 2 {
		t.Errorf("got %d errors, want 2:\n%s", len(e.Errors), e)
	}
	if m == nil {
		t.Fatalf("got nil module")
	}
	var got []string
	for _, d := range m.Decls {
		got = append(got, Format(d))
	}
	want := []string{
		"fn f: Int = (1 + _error_)",
		"fn g: Int = _error_",
		"fn h: Int = 3",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("got %s, wanted %s\n%s", got, want, diff)
	}
}

func TestRecoverSkipsDecl(t *testing.T) {
	src := `@M: {
	fn f: Int = (1
	fn h: Int = 3
}`
	p := NewParser(Config{Recover: true})
	m, err := p.ParseString("", src)
	e, ok := err.(*diag.Error)
	if !ok || !e.Recoverable() {
		t.Fatalf("got %v, want a recoverable error", err)
	}
	if m == nil || len(m.Decls) != 1 || m.Decls[0].DeclName() != "h" {
		t.Errorf("got %v, want a module with only h", m)
	}
}

func TestRecoverSingleLine(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{
			src:  "@M: { fn f: Int = (1 fn g: Int = 2 }",
			want: []string{"g"},
		},
		{
			src:  `@M: { fn f: Int = ("fn }" fn g: Int = 2 }`,
			want: []string{"g"},
		},
		{
			src:  "@M: { fn f: Int = ({a: 1} }",
			want: nil,
		},
		{
			src:  "@M: { fn f: Int = (1 entity e: Int = 2 fn fn2: Int = 3 }",
			want: []string{"e", "fn2"},
		},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			m, err := NewParser(Config{Recover: true}).ParseString("", test.src)
			e, ok := err.(*diag.Error)
			if !ok || e.Kind == diag.MultipleErrors || e.Kind == diag.MissingToken {
				t.Fatalf("got %v, want a single error for the bad declaration", err)
			}
			if m == nil {
				t.Fatalf("got nil module")
			}
			var got []string
			for _, d := range m.Decls {
				got = append(got, d.DeclName())
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("got %v, want %v\n%s", got, test.want, diff)
			}
		})
	}
}

func TestRecoverMaxErrors(t *testing.T) {
	src := "@M: {" + strings.Repeat("\n\tfn a: Int = $;", 5) + "\n}"
	p := NewParser(Config{Recover: true, MaxErrors: 2})
	_, err := p.ParseString("", src)
	e, ok := err.(*diag.Error)
	if !ok || e.Kind != diag.MultipleErrors {
		t.Fatalf("got %v, want MultipleErrors", err)
	}
	if len(e.Errors) != 2 {
		t.Errorf("got %d errors, want 2", len(e.Errors))
	}
}

func TestNoRecover(t *testing.T) {
	src := `@M: {
	fn f: Int = 1 + ;
	fn g: Int = $;
}`
	_, err := NewParser(Config{}).ParseString("", src)
	e, ok := err.(*diag.Error)
	if !ok || e.Kind == diag.MultipleErrors {
		t.Fatalf("got %v, want a single error", err)
	}
}

func TestParseFileIoError(t *testing.T) {
	err := NewParser(Config{}).ParseFile("/does/not/exist.borf")
	e, ok := err.(*diag.Error)
	if !ok || e.Kind != diag.Io {
		t.Fatalf("got %v, want an Io error", err)
	}
}
