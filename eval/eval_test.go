package eval

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/eaburns/borf/ast"
	"github.com/eaburns/pretty"
)

func TestEvalString(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1+2", "3"},
		{"1+2*3", "7"},
		{"(1+2)*3", "9"},
		{"7/2", "3.5"},
		{"6/2", "3.0"},
		{"1.5 + 1", "2.5"},
		{"10 - 4 - 3", "3"},
		{"mod(7, 3)", "1"},
		{"neg(5)", "-5"},
		{"-(5)", "-5"},
		{"(- 5 2)", "3"},
		{`"a" + "b"`, `"ab"`},
		{"[1, 2] + [3]", "[1, 2, 3]"},
		{"{a: 1} + {b: 2}", `{"a": 1, "b": 2}`},
		{"{1, 2, 1}", "#{1, 2}"},
		{"{}", "{}"},
		{"1 < 2.5", "true"},
		{`"a" < "b"`, "true"},
		{"2 >= 3", "false"},
		{"1 == 1.0", "true"},
		{"[1, 2] == [1, 2]", "true"},
		{"{1, 2} == {2, 1}", "true"},
		{"1 == 1.5", "false"},
		{"[1] == [1.0]", "true"},
		{"{1, 1.0}", "#{1}"},
		{"len({1, 1.0, 2.5})", "2"},
		{"{1} == {1.0}", "true"},
		{"{[1]} == {[1.0]}", "true"},
		{"1 != 2", "true"},
		{"true and false", "false"},
		{"true or false", "true"},
		{"not true", "false"},
		{"cons(0, [1])", "[0, 1]"},
		{"car([1, 2])", "1"},
		{"cdr([1, 2, 3])", "[2, 3]"},
		{"list(1, \"x\")", `[1, "x"]`},
		{"typeof(1.5)", "Float"},
		{"typeof([x -> x])", "Function"},
		{"null?([])", "true"},
		{"null?(null)", "true"},
		{"null?(0)", "false"},
		{`len("héllo")`, "5"},
		{"len({a: 1})", "1"},
		{"integer?(1)", "true"},
		{"float?(1)", "false"},
		{"function?(car)", "true"},
		{"primitive?(car)", "true"},
		{"primitive?([x -> x])", "false"},
		{"quote?('x)", "true"},
		{"car", "<native car>"},
		{"[x -> x]", "<function>"},
		{"void", "void"},
		{"5 : Int", "5"},
		{"let x = 5 in x * 2", "10"},
		{"let [a, b] = [1, 2] in a + b", "3"},
		{"let {a: x} = {a: 1} in x", "1"},
		{"let {x, 2} = {2, 5} in x", "5"},
		{"let _ = 1 in 2", "2"},
		{"if 1 < 2 then 10 else 1/0", "10"},
		{"if 1 > 2 then 1/0 else 20", "20"},
		{"1 iff true or_else 2", "1"},
		{"[x -> x + 1](41)", "42"},
		{"let f = [x y -> x * y] in f(6, 7)", "42"},
		{"let add = [x -> [y -> x + y]] in add(1)(2)", "3"},
		{"3 |> [x -> x * 2]", "6"},
		{"let neg = [x -> 42] in -(1)", "42"},
		{"let m = {a: {b: 7}} in m.a.b", "7"},
		{"'(1 + 2)", "'(1 + 2)"},
		{"eval('(1 + 2))", "3"},
		{"`x", "x"},
		{"`(1 + ~(2 + 3))", "[+, 1, 5]"},
		{"`f(x, ~(1 + 1))", "[f, x, 2]"},
		{"`[1, ~@[2, 3], 4]", "[1, 2, 3, 4]"},
		{"`{~@[1, 2], 3}", "#{1, 2, 3}"},
		{"`{a: ~(1 + 1)}", "{a: 2}"},
		{"`if a then b else c", "[if, a, b, c]"},
		{"eval(`(1 + ~(2 + 3)))", "6"},
		{"eval(`[x -> x * 2](~(10 + 11)))", "42"},
		{"type T = Int", "type T"},
		{"op o: A -> B", "op o"},
		{"entity e: Int", "null"},
		{"entity e: Int = 1 + 1", "2"},
		{"fn f: Int = 1", "<function>"},
		{"@M: { fn f: Int -> Int = [x -> x] }", "<module:M>"},
		{"fn: { f g }", "void"},
		{"dep A -> B", "void"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			v, err := EvalString(test.src)
			if err != nil {
				t.Fatalf("EvalString(%q) failed: %s", test.src, err)
			}
			if got := v.String(); got != test.want {
				t.Errorf("EvalString(%q)=%s, want %s", test.src, got, test.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind ErrorKind
	}{
		{"5 / 0", DivisionByZero},
		{"5.0 / 0.0", DivisionByZero},
		{"mod(5, 0)", DivisionByZero},
		{"x", UnboundVariable},
		{"a.b", UnboundVariable},
		{"let m = {a: 1} in m.b", UnboundVariable},
		{"1(2)", NotAFunction},
		{"[x -> x](1, 2)", ArityMismatch},
		{"car(1, 2)", ArityMismatch},
		{"neg()", ArityMismatch},
		{"car(1)", TypeError},
		{"car([])", InvalidArguments},
		{"cdr([])", InvalidArguments},
		{"if 1 then 2 else 3", TypeError},
		{"true and 1", TypeError},
		{"not 1", TypeError},
		{"1 < \"a\"", TypeError},
		{"len(1)", TypeError},
		{"9223372036854775807 + 1", InvalidOperation},
		{"-9223372036854775807 - 2", InvalidOperation},
		{"9223372036854775807 * 2", InvalidOperation},
		{`"a" + 1`, ComplexTypeMismatch},
		{"[1] + {a: 1}", ComplexTypeMismatch},
		{"[1] - 1", ComplexTypeMismatch},
		{"{[x -> x]}", HashingError},
		{"{1, [2, [x -> x]]}", HashingError},
		{"let [a, b] = [1] in a", PatternMatchFailed},
		{"[[a, b] -> a]([1])", PatternMatchFailed},
		{"let {a: x} = {b: 1} in x", PatternMatchFailed},
		{"~x", QuasiquoteError},
		{"`[~@{1}]", QuasiquoteError},
		{"`[~@1]", QuasiquoteError},
		{"`~@[1]", QuasiquoteError},
		{"`{a: ~@[1]}", QuasiquoteError},
		{"`{~@[[x -> x]]}", QuasiquoteError},
		{`set("zz", 1)`, CannotSetUndefined},
		{"eval([x -> x])", InvalidArguments},
		{"fn f: Int = [x -> 1/0]; f(1)", DivisionByZero},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			in := New(Config{})
			var v Value
			var err error
			for _, src := range strings.Split(test.src, "; ") {
				if v, err = in.EvalString(src); err != nil {
					break
				}
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("EvalString(%q)=%v, %v, want an *Error", test.src, v, err)
			}
			if e.Kind != test.kind {
				t.Errorf("EvalString(%q) error kind=%s, want %s (%s)", test.src, e.Kind, test.kind, e)
			}
		})
	}
}

func TestErrorLoc(t *testing.T) {
	_, err := EvalString("1 + x")
	if err == nil || err.Error() != "1.5: unbound variable x" {
		t.Errorf("got %v, want 1.5: unbound variable x", err)
	}
	in := New(Config{})
	if _, err := in.EvalString("fn f: Int = [x -> car(x)]"); err != nil {
		t.Fatalf("failed to define f: %s", err)
	}
	_, err = in.EvalString("f([])")
	if err == nil || !strings.Contains(err.Error(), "in function f") {
		t.Errorf("got %v, want a note about function f", err)
	}
}

func TestQuasiquoteRoundTrip(t *testing.T) {
	want := &List{Elems: []Value{Symbol("+"), Int(1), Int(5)}}
	for _, src := range []string{"`(1 + ~(2 + 3))", "`(+ 1 5)", "let x = 5 in `(+ 1 ~x)"} {
		got, err := EvalString(src)
		if err != nil {
			t.Fatalf("EvalString(%q) failed: %s", src, err)
		}
		if !Equal(got, want) {
			t.Errorf("EvalString(%q)=%s, want %s", src, got, want)
		}
	}
}

func TestSession(t *testing.T) {
	var stdout bytes.Buffer
	in := New(Config{Stdout: &stdout})
	steps := []struct {
		src  string
		want string
	}{
		{"let x = 5", "5"},
		{"x * 2", "10"},
		{`set("x", 6)`, "6"},
		{"x * 2", "12"},
		{"fn answer: Int = 42", "<function>"},
		{"answer()", "42"},
		{"fn fact: Int -> Int = [n -> if n <= 1 then 1 else n * fact(n - 1)]", "<function>"},
		{"fact(10)", "3628800"},
		{`set("+", [a b -> a * b])`, "<function>"},
		{"2 + 5", "10"},
		{`print("hi", 1, [2], "x")`, "void"},
	}
	for _, step := range steps {
		v, err := in.EvalString(step.src)
		if err != nil {
			t.Fatalf("EvalString(%q) failed: %s", step.src, err)
		}
		if got := v.String(); got != step.want {
			t.Errorf("EvalString(%q)=%s, want %s", step.src, got, step.want)
		}
	}
	if got, want := stdout.String(), "hi 1 [2] x\n"; got != want {
		t.Errorf("stdout=%q, want %q", got, want)
	}
}

func TestEvalModule(t *testing.T) {
	var logs bytes.Buffer
	in := New(Config{Log: log.New(&logs, "", 0)})
	m, err := ast.NewParser(ast.Config{}).ParseString("m.borf", `@M: {
		dep @N -> @M
		fn inc: Int -> Int = [x -> x + 1]
		entity e: Int = inc(1)
		type T = Int
	}`)
	if err != nil {
		t.Fatalf("ParseString failed: %s", err)
	}
	v, err := in.EvalModule(m)
	if err != nil {
		t.Fatalf("EvalModule failed: %s", err)
	}
	if v != Module("M") {
		t.Errorf("EvalModule()=%s, want <module:M>", v)
	}
	if _, ok := in.Global().Lookup("inc"); ok {
		t.Errorf("inc is bound in the global frame")
	}
	for _, want := range []string{"dependency N -> M is not resolved", "defined function inc", "declared entity e", "declared type T"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("log does not contain %q:\n%s", want, logs.String())
		}
	}
}

func TestEvalDecl(t *testing.T) {
	in := New(Config{})
	d, err := ast.NewParser(ast.Config{}).ParseDecl("", "entity e: Int = 1 + 2")
	if err != nil {
		t.Fatalf("ParseDecl failed: %s", err)
	}
	env := in.Global().Child()
	if _, err := in.EvalDecl(d.(ast.Decl), env); err != nil {
		t.Fatalf("EvalDecl failed: %s", err)
	}
	if v, ok := env.Lookup("e"); !ok || !Equal(v, Int(3)) {
		t.Errorf("e=%v, want 3", v)
	}
	if _, ok := in.Global().Lookup("e"); ok {
		t.Errorf("e is bound in the global frame")
	}
}

func TestBind(t *testing.T) {
	a := &ast.VarPat{Name: "a"}
	b := &ast.VarPat{Name: "b"}
	tests := []struct {
		name  string
		pat   ast.Pattern
		val   Value
		ok    bool
		binds map[string]Value
	}{
		{
			name:  "list too long",
			pat:   &ast.ListPat{Elems: []ast.Pattern{a}},
			val:   &List{Elems: []Value{Int(1), Int(2)}},
			binds: map[string]Value{},
		},
		{
			name:  "list too short",
			pat:   &ast.ListPat{Elems: []ast.Pattern{a, b}},
			val:   &List{Elems: []Value{Int(1)}},
			binds: map[string]Value{},
		},
		{
			name:  "list",
			pat:   &ast.ListPat{Elems: []ast.Pattern{a, b}},
			val:   &List{Elems: []Value{Int(1), Int(2)}},
			ok:    true,
			binds: map[string]Value{"a": Int(1), "b": Int(2)},
		},
		{
			name:  "literal type must match",
			pat:   &ast.LitPat{Lit: &ast.Int{Val: 1}},
			val:   Float(1),
			binds: map[string]Value{},
		},
		{
			name:  "not a list",
			pat:   &ast.ListPat{},
			val:   NewSet(),
			binds: map[string]Value{},
		},
		{
			name: "partial match binds nothing",
			pat: &ast.ListPat{Elems: []ast.Pattern{
				a, &ast.LitPat{Lit: &ast.String{Data: "x"}},
			}},
			val:   &List{Elems: []Value{Int(1), String("y")}},
			binds: map[string]Value{},
		},
		{
			name:  "annotated",
			pat:   &ast.AnnotPat{Pattern: a, Type: &ast.TypeName{Name: "Int"}},
			val:   Int(1),
			ok:    true,
			binds: map[string]Value{"a": Int(1)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			binds := make(map[string]Value)
			if ok := Bind(test.pat, test.val, binds); ok != test.ok {
				t.Errorf("Bind(%s, %s)=%v, want %v", ast.Format(test.pat), test.val, ok, test.ok)
			}
			if len(binds) != len(test.binds) {
				t.Fatalf("got binds %s, want %s", pretty.String(binds), pretty.String(test.binds))
			}
			for n, v := range test.binds {
				if !Equal(binds[n], v) {
					t.Errorf("%s=%v, want %v", n, binds[n], v)
				}
			}
		})
	}
}

func TestHashable(t *testing.T) {
	s0, s1 := NewSet(), NewSet()
	s0.Add(Int(1))
	s0.Add(String("a"))
	s1.Add(String("a"))
	s1.Add(Int(1))
	m := NewMap()
	if err := m.Put(s0, Int(1)); err != nil {
		t.Fatalf("Put failed: %s", err)
	}
	if v, ok := m.Get(s1); !ok || v != Int(1) {
		t.Errorf("Get(%s)=%v,%v, want 1,true", s1, v, ok)
	}
	if Hashable(&List{Elems: []Value{&Closure{}}}) {
		t.Errorf("a list of closures is hashable")
	}
	if err := m.Put(&Quote{}, Int(1)); err == nil {
		t.Errorf("Put(quote) succeeded")
	}
	if Hashable(Module("M")) {
		t.Errorf("a module is hashable")
	}
}

func TestEnv(t *testing.T) {
	var a Arena
	root := a.NewRoot()
	root.Define("x", Int(1))
	child := root.Child()
	child.Define("y", Int(2))
	if err := child.Set("x", Int(3)); err != nil {
		t.Fatalf("Set failed: %s", err)
	}
	if v, _ := root.Lookup("x"); v != Int(3) {
		t.Errorf("x=%v, want 3", v)
	}
	if _, ok := root.Lookup("y"); ok {
		t.Errorf("y is visible in the parent")
	}
	if p, ok := child.Parent(); !ok || p != root {
		t.Errorf("Parent()=%v,%v, want root", p, ok)
	}
	if _, ok := root.Parent(); ok {
		t.Errorf("root has a parent")
	}
	if err := child.Set("z", Int(0)); err == nil {
		t.Errorf("Set(z) succeeded")
	}
	if a.Len() != 2 {
		t.Errorf("a.Len()=%d, want 2", a.Len())
	}
}
