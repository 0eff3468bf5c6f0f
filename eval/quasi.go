package eval

import (
	"strings"

	"github.com/eaburns/borf/ast"
)

// quasi reifies a quasiquoted expression as data,
// evaluating the Unquotes and UnquoteSplices within it.
//
// Names become Symbols.
// Operators, applications, and special forms become Lists
// headed by a Symbol: (+ a b), (f x), (if c t e),
// (let p v [b]), (lambda [p...] b), (quote x), and (quasiquote x).
func (in *Interp) quasi(x ast.Expr, env Env) (Value, error) {
	switch x := x.(type) {
	case *ast.Int, *ast.Float, *ast.String, *ast.Bool:
		return litValue(x.(ast.Lit)), nil
	case *ast.Var:
		return Symbol(x.Name), nil
	case *ast.QualName:
		return Symbol(strings.Join(x.Parts, ".")), nil
	case *ast.Unquote:
		return in.eval(x.Expr, env)
	case *ast.UnquoteSplice:
		return nil, errorf(QuasiquoteError, "~@ is only valid in a list or set")
	case *ast.List:
		return in.quasiList(x.Elems, env)
	case *ast.Set:
		return in.quasiSet(x.Elems, env)
	case *ast.Map:
		m := NewMap()
		for _, e := range x.Entries {
			if _, ok := e.Val.(*ast.UnquoteSplice); ok {
				return nil, errorf(QuasiquoteError, "~@ cannot be a map value")
			}
			v, err := in.quasi(e.Val, env)
			if err != nil {
				return nil, err
			}
			if err := m.Put(Symbol(e.Key), v); err != nil {
				return nil, err
			}
		}
		return m, nil
	case *ast.Binary:
		return in.quasiForm(Symbol(x.Op.Name()), env, x.Left, x.Right)
	case *ast.Unary:
		return in.quasiForm(Symbol(x.Op.Name()), env, x.Operand)
	case *ast.If:
		return in.quasiForm(Symbol("if"), env, x.Cond, x.Then, x.Else)
	case *ast.Apply:
		f, err := in.quasi(x.Fun, env)
		if err != nil {
			return nil, err
		}
		return in.quasiForm(f, env, x.Args...)
	case *ast.Quote:
		return in.quasiForm(Symbol("quote"), env, x.Expr)
	case *ast.Quasiquote:
		return in.quasiForm(Symbol("quasiquote"), env, x.Expr)
	case *ast.Let:
		p, err := patternValue(x.Pattern)
		if err != nil {
			return nil, err
		}
		v, err := in.quasi(x.Val, env)
		if err != nil {
			return nil, err
		}
		l := &List{Elems: []Value{Symbol("let"), p, v}}
		if x.Body != nil {
			b, err := in.quasi(x.Body, env)
			if err != nil {
				return nil, err
			}
			l.Elems = append(l.Elems, b)
		}
		return l, nil
	case *ast.Lambda:
		ps := &List{}
		for _, p := range x.Parms {
			v, err := patternValue(p)
			if err != nil {
				return nil, err
			}
			ps.Elems = append(ps.Elems, v)
		}
		b, err := in.quasi(x.Body, env)
		if err != nil {
			return nil, err
		}
		return &List{Elems: []Value{Symbol("lambda"), ps, b}}, nil
	}
	return nil, errorf(InvalidOperation, "cannot quasiquote %s", ast.Format(x))
}

func (in *Interp) quasiForm(head Value, env Env, xs ...ast.Expr) (Value, error) {
	l := &List{Elems: []Value{head}}
	for _, x := range xs {
		v, err := in.quasi(x, env)
		if err != nil {
			return nil, err
		}
		l.Elems = append(l.Elems, v)
	}
	return l, nil
}

func (in *Interp) quasiList(xs []ast.Expr, env Env) (Value, error) {
	l := &List{}
	for _, x := range xs {
		s, ok := x.(*ast.UnquoteSplice)
		if !ok {
			v, err := in.quasi(x, env)
			if err != nil {
				return nil, err
			}
			l.Elems = append(l.Elems, v)
			continue
		}
		v, err := in.eval(s.Expr, env)
		if err != nil {
			return nil, err
		}
		switch v := v.(type) {
		case *List:
			l.Elems = append(l.Elems, v.Elems...)
		case *Set:
			return nil, errorf(QuasiquoteError, "cannot splice a Set into a List")
		default:
			return nil, errorf(QuasiquoteError, "cannot splice %s into a List", TypeName(v))
		}
	}
	return l, nil
}

func (in *Interp) quasiSet(xs []ast.Expr, env Env) (Value, error) {
	set := NewSet()
	for _, x := range xs {
		s, ok := x.(*ast.UnquoteSplice)
		if !ok {
			v, err := in.quasi(x, env)
			if err != nil {
				return nil, err
			}
			if err := set.Add(v); err != nil {
				return nil, err
			}
			continue
		}
		v, err := in.eval(s.Expr, env)
		if err != nil {
			return nil, err
		}
		var elems []Value
		switch v := v.(type) {
		case *List:
			elems = v.Elems
		case *Set:
			elems = v.Elems()
		default:
			return nil, errorf(QuasiquoteError, "cannot splice %s into a Set", TypeName(v))
		}
		for _, e := range elems {
			if !Hashable(e) {
				return nil, errorf(QuasiquoteError, "cannot splice unhashable %s into a Set", e)
			}
			set.Add(e)
		}
	}
	return set, nil
}

func litValue(lit ast.Lit) Value {
	switch lit := lit.(type) {
	case *ast.Int:
		return Int(lit.Val)
	case *ast.Float:
		return Float(lit.Val)
	case *ast.String:
		return String(lit.Data)
	case *ast.Bool:
		return Bool(lit.Val)
	}
	panic("impossible")
}

func patternValue(p ast.Pattern) (Value, error) {
	switch p := p.(type) {
	case *ast.VarPat:
		return Symbol(p.Name), nil
	case *ast.WildPat:
		return Symbol("_"), nil
	case *ast.LitPat:
		return litValue(p.Lit), nil
	case *ast.AnnotPat:
		return patternValue(p.Pattern)
	case *ast.ListPat:
		l := &List{}
		for _, e := range p.Elems {
			v, err := patternValue(e)
			if err != nil {
				return nil, err
			}
			l.Elems = append(l.Elems, v)
		}
		return l, nil
	case *ast.SetPat:
		s := NewSet()
		for _, e := range p.Elems {
			v, err := patternValue(e)
			if err != nil {
				return nil, err
			}
			if err := s.Add(v); err != nil {
				return nil, err
			}
		}
		return s, nil
	case *ast.MapPat:
		m := NewMap()
		for _, e := range p.Entries {
			v, err := patternValue(e.Pattern)
			if err != nil {
				return nil, err
			}
			if err := m.Put(Symbol(e.Key), v); err != nil {
				return nil, err
			}
		}
		return m, nil
	}
	return nil, errorf(InvalidOperation, "cannot quasiquote pattern %s", ast.Format(p))
}

// code converts data back to an expression.
// It is the partial inverse of quasi.
func code(v Value) (ast.Expr, error) {
	switch v := v.(type) {
	case Int:
		return &ast.Int{Val: int64(v)}, nil
	case Float:
		return &ast.Float{Val: float64(v)}, nil
	case String:
		return &ast.String{Data: string(v)}, nil
	case Bool:
		return &ast.Bool{Val: bool(v)}, nil
	case Symbol:
		if parts := strings.Split(string(v), "."); len(parts) > 1 {
			return &ast.QualName{Parts: parts}, nil
		}
		return &ast.Var{Name: string(v)}, nil
	case Null:
		return &ast.Var{Name: "null"}, nil
	case Void:
		return &ast.Var{Name: "void"}, nil
	case *Quote:
		return v.Expr, nil
	case *Set:
		xs, err := codes(v.Elems())
		if err != nil {
			return nil, err
		}
		return &ast.Set{Elems: xs}, nil
	case *Map:
		m := &ast.Map{}
		for _, e := range v.Entries() {
			k, ok := keyName(e.Key)
			if !ok {
				return nil, errorf(InvalidArguments, "eval: map key %s is not a name or string", e.Key)
			}
			x, err := code(e.Val)
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, ast.MapEntry{Key: k, Val: x})
		}
		return m, nil
	case *List:
		return listCode(v)
	}
	return nil, errorf(InvalidArguments, "eval: %s is not code", TypeName(v))
}

func listCode(l *List) (ast.Expr, error) {
	if len(l.Elems) == 0 {
		return &ast.List{}, nil
	}
	head, ok := l.Elems[0].(Symbol)
	if !ok {
		if isForm(l.Elems[0]) {
			return apply(l)
		}
		xs, err := codes(l.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.List{Elems: xs}, nil
	}
	args, err := codes(l.Elems[1:])
	if err != nil {
		return nil, err
	}
	switch n := len(args); {
	case head == "quote" && n == 1:
		return &ast.Quote{Expr: args[0]}, nil
	case head == "quasiquote" && n == 1:
		return &ast.Quasiquote{Expr: args[0]}, nil
	case head == "if" && n == 3:
		return &ast.If{Cond: args[0], Then: args[1], Else: args[2]}, nil
	case head == "neg" && n == 1:
		return &ast.Unary{Op: ast.OpNeg, Operand: args[0]}, nil
	case head == "not" && n == 1:
		return &ast.Unary{Op: ast.OpNot, Operand: args[0]}, nil
	case ast.Infix(string(head)) != ast.OpNone && n == 2:
		return &ast.Binary{Op: ast.Infix(string(head)), Left: args[0], Right: args[1]}, nil
	case head == "let" && (n == 2 || n == 3):
		p, err := patternCode(l.Elems[1])
		if err != nil {
			return nil, err
		}
		let := &ast.Let{Pattern: p, Val: args[1]}
		if n == 3 {
			let.Body = args[2]
		}
		return let, nil
	case head == "lambda" && n == 2:
		ps, ok := l.Elems[1].(*List)
		if !ok {
			return nil, errorf(InvalidArguments, "eval: lambda parameters must be a list, found %s", l.Elems[1])
		}
		lam := &ast.Lambda{Body: args[1]}
		for _, e := range ps.Elems {
			p, err := patternCode(e)
			if err != nil {
				return nil, err
			}
			lam.Parms = append(lam.Parms, p)
		}
		return lam, nil
	}
	return apply(l)
}

// isForm returns whether the value is a List headed by a Symbol.
func isForm(v Value) bool {
	l, ok := v.(*List)
	if !ok || len(l.Elems) == 0 {
		return false
	}
	_, ok = l.Elems[0].(Symbol)
	return ok
}

func apply(l *List) (ast.Expr, error) {
	xs, err := codes(l.Elems)
	if err != nil {
		return nil, err
	}
	return &ast.Apply{Fun: xs[0], Args: xs[1:]}, nil
}

func codes(vs []Value) ([]ast.Expr, error) {
	var xs []ast.Expr
	for _, v := range vs {
		x, err := code(v)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func patternCode(v Value) (ast.Pattern, error) {
	switch v := v.(type) {
	case Symbol:
		if v == "_" {
			return &ast.WildPat{}, nil
		}
		return &ast.VarPat{Name: string(v)}, nil
	case Int:
		return &ast.LitPat{Lit: &ast.Int{Val: int64(v)}}, nil
	case Float:
		return &ast.LitPat{Lit: &ast.Float{Val: float64(v)}}, nil
	case String:
		return &ast.LitPat{Lit: &ast.String{Data: string(v)}}, nil
	case Bool:
		return &ast.LitPat{Lit: &ast.Bool{Val: bool(v)}}, nil
	case *List:
		p := &ast.ListPat{}
		for _, e := range v.Elems {
			q, err := patternCode(e)
			if err != nil {
				return nil, err
			}
			p.Elems = append(p.Elems, q)
		}
		return p, nil
	case *Set:
		p := &ast.SetPat{}
		for _, e := range v.Elems() {
			q, err := patternCode(e)
			if err != nil {
				return nil, err
			}
			p.Elems = append(p.Elems, q)
		}
		return p, nil
	case *Map:
		p := &ast.MapPat{}
		for _, e := range v.Entries() {
			k, ok := keyName(e.Key)
			if !ok {
				return nil, errorf(InvalidArguments, "eval: map pattern key %s is not a name or string", e.Key)
			}
			q, err := patternCode(e.Val)
			if err != nil {
				return nil, err
			}
			p.Entries = append(p.Entries, ast.MapPatEntry{Key: k, Pattern: q})
		}
		return p, nil
	}
	return nil, errorf(InvalidArguments, "eval: %s is not a pattern", v)
}

func keyName(v Value) (string, bool) {
	switch v := v.(type) {
	case Symbol:
		return string(v), true
	case String:
		return string(v), true
	}
	return "", false
}
