// Package eval evaluates Borf.
//
// Evaluation is single threaded.
// An Interp must not be used concurrently.
package eval

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/eaburns/borf/ast"
)

// Config configures an Interp.
type Config struct {
	// Stdout is where print writes.
	// If nil, os.Stdout is used.
	Stdout io.Writer

	// Log receives notices about evaluated declarations.
	// If nil, notices are discarded.
	Log *log.Logger
}

// An Interp is a Borf interpreter.
type Interp struct {
	cfg    Config
	log    *log.Logger
	arena  Arena
	global Env
	// ops are the natives of the operators,
	// used when an operator's name is not bound.
	ops    [ast.NumOps]*Native
	parser *ast.Parser
}

// New returns a new Interp with the native functions,
// null, and void bound in the global frame.
func New(cfg Config) *Interp {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	in := &Interp{cfg: cfg, log: cfg.Log, parser: ast.NewParser(ast.Config{})}
	if in.log == nil {
		in.log = log.New(io.Discard, "", 0)
	}
	in.global = in.arena.NewRoot()
	byName := make(map[string]*Native)
	for _, n := range natives() {
		byName[n.Name] = n
		in.global.Define(n.Name, n)
	}
	for op := ast.OpNone + 1; op < ast.NumOps; op++ {
		in.ops[op] = byName[op.Name()]
	}
	in.global.Define("null", Null{})
	in.global.Define("void", Void{})
	return in
}

// Global returns the global frame.
func (in *Interp) Global() Env { return in.global }

// EvalString parses and evaluates a line of input
// in the global frame of a new Interp.
func EvalString(src string) (Value, error) {
	return New(Config{}).EvalString(src)
}

// EvalString parses and evaluates a line of input in the global frame.
// The input is a module, a declaration, or an expression.
// Parse errors are *diag.Error; evaluation errors are *Error.
func (in *Interp) EvalString(src string) (Value, error) {
	n, err := in.parser.ParseRepl("", src)
	if err != nil {
		return nil, err
	}
	return in.EvalRepl(n)
}

// EvalRepl evaluates a module, a declaration,
// or an expression in the global frame.
func (in *Interp) EvalRepl(n ast.Node) (Value, error) {
	switch n := n.(type) {
	case *ast.Module:
		if n.Name == "" {
			// A name block declares names but binds nothing.
			return Void{}, nil
		}
		return in.EvalModule(n)
	case ast.Decl:
		return in.EvalDecl(n, in.global)
	case ast.Expr:
		return in.Eval(n, in.global)
	}
	return nil, errorf(InvalidOperation, "cannot evaluate %T", n)
}

// EvalModule evaluates the declarations of a module
// in a new child of the global frame.
func (in *Interp) EvalModule(m *ast.Module) (Value, error) {
	env := in.global.Child()
	for _, d := range m.Decls {
		if _, err := in.EvalDecl(d, env); err != nil {
			if e, ok := err.(*Error); ok {
				note(e, "in module @%s", m.Name)
			}
			return nil, err
		}
	}
	return Module(m.Name), nil
}

// EvalDecl evaluates a declaration, binding its name in env.
// It returns the bound value.
func (in *Interp) EvalDecl(d ast.Decl, env Env) (Value, error) {
	var v Value
	switch d := d.(type) {
	case *ast.FnDecl:
		c := &Closure{Body: d.Body, Env: env, Name: d.Name}
		if lam, ok := d.Body.(*ast.Lambda); ok {
			c.Parms = lam.Parms
			c.Body = lam.Body
		}
		v = c
		in.log.Printf("defined function %s", d.Name)
	case *ast.TypeDecl:
		v = Symbol("type " + d.Name)
		in.log.Printf("declared type %s", d.Name)
	case *ast.OpDecl:
		v = Symbol("op " + d.Name)
		in.log.Printf("declared operation %s", d.Name)
	case *ast.EntityDecl:
		v = Null{}
		if d.Init != nil {
			var err error
			if v, err = in.eval(d.Init, env); err != nil {
				return nil, err
			}
		}
		in.log.Printf("declared entity %s", d.Name)
	case *ast.DepDecl:
		in.log.Printf("dependency %s -> %s is not resolved", d.Import, d.Export)
		return Void{}, nil
	default:
		return nil, errorf(InvalidOperation, "cannot evaluate declaration %T", d)
	}
	env.Define(d.DeclName(), v)
	return v, nil
}

// Eval evaluates an expression in env.
func (in *Interp) Eval(x ast.Expr, env Env) (Value, error) {
	return in.eval(x, env)
}

func (in *Interp) eval(x ast.Expr, env Env) (Value, error) {
	v, err := in.eval1(x, env)
	if e, ok := err.(*Error); ok && e.Loc == nil {
		e.Loc = x.Loc()
	}
	return v, err
}

func (in *Interp) eval1(x ast.Expr, env Env) (Value, error) {
	switch x := x.(type) {
	case *ast.Int, *ast.Float, *ast.String, *ast.Bool:
		return litValue(x.(ast.Lit)), nil
	case *ast.Var:
		v, ok := env.Lookup(x.Name)
		if !ok {
			return nil, errorf(UnboundVariable, "unbound variable %s", x.Name)
		}
		return v, nil
	case *ast.QualName:
		return in.qualName(x, env)
	case *ast.Lambda:
		return &Closure{Parms: x.Parms, Body: x.Body, Env: env}, nil
	case *ast.Apply:
		f, err := in.eval(x.Fun, env)
		if err != nil {
			return nil, err
		}
		args := make([]Value, 0, len(x.Args))
		for _, a := range x.Args {
			v, err := in.eval(a, env)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return in.apply(f, args, env)
	case *ast.Let:
		return in.let(x, env)
	case *ast.If:
		c, err := in.eval(x.Cond, env)
		if err != nil {
			return nil, err
		}
		b, ok := c.(Bool)
		if !ok {
			return nil, typeError("Boolean", c)
		}
		if b {
			return in.eval(x.Then, env)
		}
		return in.eval(x.Else, env)
	case *ast.Binary:
		return in.binary(x, env)
	case *ast.Unary:
		v, err := in.eval(x.Operand, env)
		if err != nil {
			return nil, err
		}
		return in.applyOp(x.Op, []Value{v}, env)
	case *ast.List:
		l := &List{Elems: make([]Value, 0, len(x.Elems))}
		for _, e := range x.Elems {
			v, err := in.eval(e, env)
			if err != nil {
				return nil, err
			}
			l.Elems = append(l.Elems, v)
		}
		return l, nil
	case *ast.Set:
		s := NewSet()
		for _, e := range x.Elems {
			v, err := in.eval(e, env)
			if err != nil {
				return nil, err
			}
			if err := s.Add(v); err != nil {
				return nil, err
			}
		}
		return s, nil
	case *ast.Map:
		m := NewMap()
		for _, e := range x.Entries {
			v, err := in.eval(e.Val, env)
			if err != nil {
				return nil, err
			}
			if err := m.Put(String(e.Key), v); err != nil {
				return nil, err
			}
		}
		return m, nil
	case *ast.Quote:
		return &Quote{Expr: x.Expr}, nil
	case *ast.Quasiquote:
		return in.quasi(x.Expr, env)
	case *ast.Unquote:
		return nil, errorf(QuasiquoteError, "~ is only valid inside a quasiquote")
	case *ast.UnquoteSplice:
		return nil, errorf(QuasiquoteError, "~@ is only valid inside a quasiquote")
	case *ast.Placeholder:
		return nil, errorf(InvalidOperation, "cannot evaluate a malformed expression")
	}
	return nil, errorf(InvalidOperation, "cannot evaluate %T", x)
}

// qualName looks up a dotted name.
// If the full name is not bound,
// the head is looked up and the remaining parts index Maps.
func (in *Interp) qualName(x *ast.QualName, env Env) (Value, error) {
	name := strings.Join(x.Parts, ".")
	if v, ok := env.Lookup(name); ok {
		return v, nil
	}
	v, ok := env.Lookup(x.Parts[0])
	if !ok {
		return nil, errorf(UnboundVariable, "unbound variable %s", name)
	}
	for _, p := range x.Parts[1:] {
		m, ok := v.(*Map)
		if !ok {
			return nil, errorf(UnboundVariable, "unbound variable %s: %s is not a Map", name, TypeName(v))
		}
		if v, ok = m.Get(String(p)); !ok {
			if v, ok = m.Get(Symbol(p)); !ok {
				return nil, errorf(UnboundVariable, "unbound variable %s: no key %s", name, p)
			}
		}
	}
	return v, nil
}

func (in *Interp) let(x *ast.Let, env Env) (Value, error) {
	v, err := in.eval(x.Val, env)
	if err != nil {
		return nil, err
	}
	binds := make(map[string]Value)
	if !Bind(x.Pattern, v, binds) {
		return nil, errorf(PatternMatchFailed, "value %s does not match pattern %s", v, ast.Format(x.Pattern))
	}
	if x.Body == nil {
		for n, b := range binds {
			env.Define(n, b)
		}
		return v, nil
	}
	child := env.Child()
	for n, b := range binds {
		child.Define(n, b)
	}
	return in.eval(x.Body, child)
}

func (in *Interp) binary(x *ast.Binary, env Env) (Value, error) {
	l, err := in.eval(x.Left, env)
	if err != nil {
		return nil, err
	}
	if x.Op == ast.OpColon {
		// Annotations are descriptive.
		return l, nil
	}
	r, err := in.eval(x.Right, env)
	if err != nil {
		return nil, err
	}
	if x.Op == ast.OpPipe {
		return in.apply(r, []Value{l}, env)
	}
	return in.applyOp(x.Op, []Value{l, r}, env)
}

// applyOp applies the function bound to the operator's name,
// or the operator's native if the name is unbound.
func (in *Interp) applyOp(op ast.Op, args []Value, env Env) (Value, error) {
	if f, ok := env.Lookup(op.Name()); ok {
		return in.apply(f, args, env)
	}
	if n := in.ops[op]; n != nil {
		return in.apply(n, args, env)
	}
	return nil, errorf(InvalidOperation, "no function for operator %s", op)
}

// apply calls a function.
// env is the frame of the call site; only natives use it.
func (in *Interp) apply(f Value, args []Value, env Env) (Value, error) {
	switch f := f.(type) {
	case *Closure:
		if len(args) != len(f.Parms) {
			return nil, errorf(ArityMismatch, "%s expects %d arguments, found %d", fnName(f), len(f.Parms), len(args))
		}
		call := f.Env.Child()
		binds := make(map[string]Value)
		for i, p := range f.Parms {
			if !Bind(p, args[i], binds) {
				return nil, errorf(PatternMatchFailed, "value %s does not match parameter pattern %s", args[i], ast.Format(p))
			}
		}
		for n, v := range binds {
			call.Define(n, v)
		}
		v, err := in.eval(f.Body, call)
		if e, ok := err.(*Error); ok && f.Name != "" {
			note(e, "in function %s", f.Name)
		}
		return v, err
	case *Native:
		if f.Arity >= 0 && len(args) != f.Arity {
			return nil, errorf(ArityMismatch, "%s expects %d arguments, found %d", f.Name, f.Arity, len(args))
		}
		return f.fn(in, env, args)
	}
	return nil, errorf(NotAFunction, "%s is not a function", f)
}

func fnName(c *Closure) string {
	if c.Name == "" {
		return "function"
	}
	return c.Name
}
