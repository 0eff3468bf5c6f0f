package ast

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eaburns/borf/diag"
	"github.com/eaburns/borf/grammar"
	"github.com/eaburns/borf/loc"
)

// A builder converts grammar parse trees into AST nodes.
type builder struct {
	file *loc.File
	cfg  Config
	// diags are errors recorded while recovering.
	diags []*diag.Error
}

func (b *builder) loc(r loc.Range) location { return location{b.file.Loc(r)} }

func (b *builder) errorf(kind diag.Kind, n *grammar.Node, format string, args ...interface{}) *diag.Error {
	return diag.Newf(kind, b.file, n.Range, format, args...)
}

// recover records an error if recovering and returns nil.
// It returns the error itself if not recovering,
// and the joined errors once there are too many.
func (b *builder) recover(err error) error {
	if !b.cfg.Recover {
		return err
	}
	e, ok := err.(*diag.Error)
	if !ok {
		return err
	}
	if e.Kind == diag.MultipleErrors {
		// Already too many.
		return err
	}
	b.diags = append(b.diags, e)
	if len(b.diags) >= b.cfg.maxErrors() {
		return diag.Join(b.diags)
	}
	return nil
}

func (b *builder) unexpected(n *grammar.Node) error {
	return b.errorf(diag.UnexpectedRule, n, "unexpected rule %s", n.Rule)
}

func (b *builder) fileNode(n *grammar.Node) (*Module, error) {
	for _, k := range n.Kids {
		switch k.Rule {
		case "module_decl":
			return b.module(k)
		case "loose_decls":
			e := b.errorf(diag.MissingNode, k, "missing module declaration")
			e.Expected = "a module declaration (e.g., `@Name: { ... }`)"
			e.Found = "declarations outside of a module"
			e.Help = "Wrap the declarations in a module: `@Name: { ... }`."
			return nil, e
		}
	}
	return nil, b.errorf(diag.MissingNode, n, "missing module declaration")
}

func (b *builder) module(n *grammar.Node) (*Module, error) {
	m := &Module{location: b.loc(n.Range)}
	for _, k := range n.Kids {
		switch k.Rule {
		case "module_name":
			m.Name = strings.TrimPrefix(k.Text, "@")
		case "module_body":
			for _, d := range k.Kids {
				if err := b.addDecl(m, d); err != nil {
					return nil, err
				}
			}
		default:
			return nil, b.unexpected(k)
		}
	}
	return m, nil
}

// addDecl adds the declaration to the module.
// An error is returned only if the declaration is malformed
// and the builder is not recovering.
func (b *builder) addDecl(m *Module, n *grammar.Node) error {
	if nb := n.Kid("name_block"); nb != nil {
		names, err := b.nameBlock(nb)
		if err != nil {
			return b.recover(err)
		}
		for _, name := range names {
			switch n.Rule {
			case "fn_decl":
				m.Funs = addName(m.Funs, name)
			case "type_decl":
				if err := b.checkTypeName(nb, name); err != nil {
					if err := b.recover(err); err != nil {
						return err
					}
					continue
				}
				m.Types = addName(m.Types, name)
			case "op_decl":
				m.Ops = addName(m.Ops, name)
			}
		}
		return nil
	}
	d, err := b.decl(n)
	if err != nil {
		return b.recover(err)
	}
	m.Decls = append(m.Decls, d)
	switch d := d.(type) {
	case *FnDecl:
		m.Funs = addName(m.Funs, d.Name)
	case *TypeDecl:
		m.Types = addName(m.Types, d.Name)
	case *OpDecl:
		m.Ops = addName(m.Ops, d.Name)
	}
	return nil
}

func addName(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func (b *builder) nameBlock(n *grammar.Node) ([]string, error) {
	var names []string
	for _, k := range n.Kids {
		switch k.Rule {
		case "identifier":
			names = append(names, k.Text)
		case "comma":
			e := b.errorf(diag.LegacyComma, k, "commas are not used to separate names")
			e.Help = "Separate the names with spaces: `{ a b c }`."
			e.Suggestion = "Remove the comma."
			return nil, e
		default:
			return nil, b.unexpected(k)
		}
	}
	return names, nil
}

func (b *builder) checkTypeName(n *grammar.Node, name string) error {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return nil
	}
	e := b.errorf(diag.InvalidTypePattern, n, "type name %s must begin with an uppercase letter", name)
	e.Suggestion = "Did you mean '" + strings.ToUpper(string(r)) + name[utf8.RuneLen(r):] + "'?"
	return e
}

// decl builds a declaration that is not a name block.
func (b *builder) decl(n *grammar.Node) (Decl, error) {
	l := b.loc(n.Range)
	switch n.Rule {
	case "fn_decl":
		sig, err := b.typeExpr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		body, err := b.expr(n.Kids[2])
		if err != nil {
			return nil, err
		}
		return &FnDecl{location: l, Name: n.Kids[0].Text, Sig: sig, Body: body}, nil
	case "type_decl":
		if err := b.checkTypeName(n.Kids[0], n.Kids[0].Text); err != nil {
			return nil, err
		}
		t, err := b.typeExpr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		return &TypeDecl{location: l, Name: n.Kids[0].Text, Type: t}, nil
	case "op_decl":
		t, err := b.typeExpr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		return &OpDecl{location: l, Name: n.Kids[0].Text, Type: t}, nil
	case "dep_decl":
		imp, err := b.depPath(n.Kids[0])
		if err != nil {
			return nil, err
		}
		exp, err := b.depPath(n.Kids[2])
		if err != nil {
			return nil, err
		}
		return &DepDecl{location: l, Import: imp, Export: exp, Direct: n.Kids[1].Text == "=>"}, nil
	case "entity_decl":
		t, err := b.typeExpr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		d := &EntityDecl{location: l, Name: n.Kids[0].Text, Type: t}
		if len(n.Kids) > 2 {
			if d.Init, err = b.expr(n.Kids[2]); err != nil {
				return nil, err
			}
		}
		return d, nil
	}
	return nil, b.unexpected(n)
}

func (b *builder) depPath(n *grammar.Node) (string, error) {
	if strings.HasPrefix(n.Text, `"`) {
		return b.unquote(n)
	}
	return strings.TrimPrefix(n.Text, "@"), nil
}

func (b *builder) expr(n *grammar.Node) (Expr, error) {
	switch n.Rule {
	case "expr":
		if len(n.Kids) == 1 {
			return b.expr(n.Kids[0])
		}
		then, err := b.expr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		cond, err := b.expr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		els, err := b.expr(n.Kids[2])
		if err != nil {
			return nil, err
		}
		return &If{location: b.loc(n.Range), Cond: cond, Then: then, Else: els}, nil
	case "op_expr", "unary":
		return b.opExpr(n)
	}
	return b.primary(n)
}

func (b *builder) opExpr(n *grammar.Node) (Expr, error) {
	if len(n.Kids) == 1 && n.Kids[0].Rule != "bad_token" {
		return b.primary(n.Kids[0])
	}
	var items []item
	for _, k := range n.Kids {
		it := item{span: k.Range, text: k.Text}
		switch k.Rule {
		case "prefix_op":
			it.prefix = true
			switch k.Text {
			case "~":
				it.unquote = true
			case "-":
				it.op = OpNeg
			default:
				it.op = OpNot
			}
		case "infix_op":
			it.op = Infix(k.Text)
		default:
			it.expr, it.err = b.primary(k)
		}
		items = append(items, it)
	}
	return b.climb(items, n.Range)
}

func (b *builder) exprs(ns []*grammar.Node) ([]Expr, error) {
	var xs []Expr
	for _, n := range ns {
		x, err := b.expr(n)
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
	return xs, nil
}

func (b *builder) primary(n *grammar.Node) (Expr, error) {
	l := b.loc(n.Range)
	switch n.Rule {
	case "integer", "float", "string", "boolean":
		return b.lit(n)
	case "variable":
		return &Var{location: l, Name: n.Kids[0].Text}, nil
	case "qualified_name":
		return &QualName{location: l, Parts: strings.Split(n.Text, ".")}, nil
	case "let_expr":
		p, err := b.pattern(n.Kids[0])
		if err != nil {
			return nil, err
		}
		val, err := b.expr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		let := &Let{location: l, Pattern: p, Val: val}
		if len(n.Kids) > 2 {
			if let.Body, err = b.expr(n.Kids[2]); err != nil {
				return nil, err
			}
		}
		return let, nil
	case "if_expr":
		xs, err := b.exprs(n.Kids)
		if err != nil {
			return nil, err
		}
		return &If{location: l, Cond: xs[0], Then: xs[1], Else: xs[2]}, nil
	case "lambda":
		last := len(n.Kids) - 1
		ps, err := b.patterns(n.Kids[:last])
		if err != nil {
			return nil, err
		}
		body, err := b.expr(n.Kids[last])
		if err != nil {
			return nil, err
		}
		return &Lambda{location: l, Parms: ps, Body: body}, nil
	case "list_literal":
		xs, err := b.exprs(n.Kids)
		if err != nil {
			return nil, err
		}
		return &List{location: l, Elems: xs}, nil
	case "set_literal":
		xs, err := b.exprs(n.Kids)
		if err != nil {
			return nil, err
		}
		return &Set{location: l, Elems: xs}, nil
	case "map_literal":
		m := &Map{location: l}
		for _, e := range n.Kids {
			key, err := b.mapKey(e.Kids[0], diag.InvalidMapKey)
			if err != nil {
				return nil, err
			}
			val, err := b.expr(e.Kids[1])
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, MapEntry{Key: key, Val: val})
		}
		return m, nil
	case "parenthesized_expr":
		return b.expr(n.Kids[0])
	case "application":
		var fun Expr
		if k := n.Kids[0]; k.Rule == "op_symbol" {
			fun = &Var{location: b.loc(k.Range), Name: opSymbolName(k.Text)}
		} else {
			var err error
			if fun, err = b.expr(k); err != nil {
				return nil, err
			}
		}
		args, err := b.exprs(n.Kids[1:])
		if err != nil {
			return nil, err
		}
		return &Apply{location: l, Fun: fun, Args: args}, nil
	case "call":
		fun, err := b.primary(n.Kids[0])
		if err != nil {
			return nil, err
		}
		for _, k := range n.Kids[1:] {
			args, err := b.exprs(k.Kids)
			if err != nil {
				return nil, err
			}
			r := loc.Range{n.Range[0], k.Range[1]}
			fun = &Apply{location: b.loc(r), Fun: fun, Args: args}
		}
		return fun, nil
	case "bad_token":
		e := b.errorf(diag.UnexpectedToken, n, "unexpected token: expected an expression, found '%s'", n.Text)
		e.Expected = "an expression"
		e.Found = "'" + n.Text + "'"
		e.Help = "Expected an expression. Check the syntax near this location."
		return nil, e
	case "quote_expr", "quasiquote_expr", "unquote_splice_expr":
		x, err := b.expr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		switch n.Rule {
		case "quote_expr":
			return &Quote{location: l, Expr: x}, nil
		case "quasiquote_expr":
			return &Quasiquote{location: l, Expr: x}, nil
		default:
			return &UnquoteSplice{location: l, Expr: x}, nil
		}
	}
	return nil, b.unexpected(n)
}

// opSymbolName returns the variable name
// of an operator in function position.
func opSymbolName(sym string) string {
	if sym == "!" {
		return "not"
	}
	return sym
}

func (b *builder) lit(n *grammar.Node) (Lit, error) {
	l := b.loc(n.Range)
	switch n.Rule {
	case "integer":
		i, err := strconv.ParseInt(n.Text, 10, 64)
		if err != nil {
			e := b.errorf(diag.InvalidLiteral, n, "integer literal %s is out of range", n.Text)
			e.Help = "Integers must fit in 64 bits."
			return nil, e
		}
		return &Int{location: l, Val: i}, nil
	case "float":
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil || math.IsInf(f, 0) {
			return nil, b.errorf(diag.ValueError, n, "float literal %s is out of range", n.Text)
		}
		return &Float{location: l, Val: f}, nil
	case "string":
		s, err := b.unquote(n)
		if err != nil {
			return nil, err
		}
		return &String{location: l, Data: s}, nil
	case "boolean":
		return &Bool{location: l, Val: n.Text == "true"}, nil
	}
	return nil, b.unexpected(n)
}

// unquote returns the string literal with quotes removed and escapes interpreted.
func (b *builder) unquote(n *grammar.Node) (string, error) {
	text := n.Text
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", b.errorf(diag.InvalidLiteral, n, "malformed string literal")
	}
	var s strings.Builder
	rest := text[1 : len(text)-1]
	for len(rest) > 0 {
		if strings.HasPrefix(rest, `\'`) {
			s.WriteByte('\'')
			rest = rest[2:]
			continue
		}
		r, mb, tail, err := strconv.UnquoteChar(rest, '"')
		if err != nil {
			e := b.errorf(diag.InvalidLiteral, n, "invalid escape in string literal %s", text)
			e.Help = `Valid escapes include \n, \t, \" and \\.`
			return "", e
		}
		if mb || r >= utf8.RuneSelf {
			s.WriteRune(r)
		} else {
			s.WriteByte(byte(r))
		}
		rest = tail
	}
	return s.String(), nil
}

func (b *builder) mapKey(n *grammar.Node, kind diag.Kind) (string, error) {
	switch n.Rule {
	case "identifier":
		return n.Text, nil
	case "string":
		return b.unquote(n)
	}
	e := b.errorf(kind, n, "map key %s must be an identifier or a string", n.Text)
	e.Suggestion = "Did you mean '\"" + n.Text + "\"'?"
	return "", e
}

func (b *builder) patterns(ns []*grammar.Node) ([]Pattern, error) {
	var ps []Pattern
	for _, n := range ns {
		p, err := b.pattern(n)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func (b *builder) pattern(n *grammar.Node) (Pattern, error) {
	l := b.loc(n.Range)
	switch n.Rule {
	case "pattern":
		p, err := b.pattern(n.Kids[0])
		if err != nil || len(n.Kids) == 1 {
			return p, err
		}
		t, err := b.typeExpr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		return &AnnotPat{location: l, Pattern: p, Type: t}, nil
	case "wildcard":
		return &WildPat{location: l}, nil
	case "variable":
		return &VarPat{location: l, Name: n.Kids[0].Text}, nil
	case "integer", "float", "string", "boolean":
		lit, err := b.lit(n)
		if err != nil {
			return nil, err
		}
		return &LitPat{location: l, Lit: lit}, nil
	case "list_pattern":
		ps, err := b.patterns(n.Kids)
		if err != nil {
			return nil, err
		}
		return &ListPat{location: l, Elems: ps}, nil
	case "set_pattern":
		ps, err := b.patterns(n.Kids)
		if err != nil {
			return nil, err
		}
		return &SetPat{location: l, Elems: ps}, nil
	case "map_pattern":
		m := &MapPat{location: l}
		for _, e := range n.Kids {
			key, err := b.mapKey(e.Kids[0], diag.InvalidMapPatternKey)
			if err != nil {
				return nil, err
			}
			p, err := b.pattern(e.Kids[1])
			if err != nil {
				return nil, err
			}
			m.Entries = append(m.Entries, MapPatEntry{Key: key, Pattern: p})
		}
		return m, nil
	}
	return nil, b.unexpected(n)
}

func (b *builder) typeExpr(n *grammar.Node) (TypeExpr, error) {
	l := b.loc(n.Range)
	switch n.Rule {
	case "type_expr":
		t, err := b.typeExpr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		for i := 1; i+1 < len(n.Kids); i += 2 {
			u, err := b.typeExpr(n.Kids[i+1])
			if err != nil {
				return nil, err
			}
			r := loc.Range{n.Range[0], n.Kids[i+1].Range[1]}
			switch op := n.Kids[i].Text; op {
			case "->":
				t = &FuncType{location: b.loc(r), From: t, To: u}
			case "-o":
				t = &LinearFuncType{location: b.loc(r), From: t, To: u}
			case "*":
				t = &ProductType{location: b.loc(r), L: t, R: u}
			case "+":
				t = &SumType{location: b.loc(r), L: t, R: u}
			default:
				return nil, b.unexpected(n.Kids[i])
			}
		}
		return t, nil
	case "any_type":
		return &AnyType{location: l}, nil
	case "void_type":
		return &VoidType{location: l}, nil
	case "type_name":
		return &TypeName{location: l, Name: n.Text}, nil
	case "type_var":
		return &TypeVar{location: l, Name: n.Text}, nil
	case "paren_type":
		return b.typeExpr(n.Kids[0])
	case "map_type":
		k, err := b.typeExpr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		v, err := b.typeExpr(n.Kids[1])
		if err != nil {
			return nil, err
		}
		return &MapType{location: l, Key: k, Val: v}, nil
	case "option_type", "linear_type", "seq_type", "list_type", "set_type":
		elem, err := b.typeExpr(n.Kids[0])
		if err != nil {
			return nil, err
		}
		switch n.Rule {
		case "option_type":
			return &OptionType{location: l, Elem: elem}, nil
		case "linear_type":
			return &LinearType{location: l, Elem: elem}, nil
		case "seq_type":
			return &SeqType{location: l, Elem: elem}, nil
		case "list_type":
			return &ListType{location: l, Elem: elem}, nil
		default:
			return &SetType{location: l, Elem: elem}, nil
		}
	}
	return nil, b.unexpected(n)
}
