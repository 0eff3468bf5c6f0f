package ast

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eaburns/borf/grammar"
)

// Format returns Borf source for the Node.
// The source parses to a Node that is Equal to n,
// with every Binary in parentheses.
func Format(n Node) string {
	var s strings.Builder
	buildString(n, &s)
	return s.String()
}

func (m *Module) String() string { return Format(m) }

func buildString(n Node, s *strings.Builder) {
	switch n := n.(type) {
	case nil:
		s.WriteString("<nil>")
	case *Module:
		buildModuleString(n, s)
	case Decl:
		buildDeclString(n, s)
	case TypeExpr:
		buildTypeString(n, s)
	case Pattern:
		buildPatternString(n, s)
	case Expr:
		buildExprString(n, s)
	}
}

func buildModuleString(m *Module, s *strings.Builder) {
	if m.Name != "" {
		s.WriteString("@" + m.Name + ": {")
	}
	defined := make(map[string]bool)
	for _, d := range m.Decls {
		switch d.(type) {
		case *FnDecl, *TypeDecl, *OpDecl:
			defined[d.DeclName()] = true
		}
	}
	block := func(kw string, names []string) {
		var undef []string
		for _, n := range names {
			if !defined[n] {
				undef = append(undef, n)
			}
		}
		if len(undef) > 0 {
			s.WriteString("\n\t" + kw + ": { " + strings.Join(undef, " ") + " }")
		}
	}
	block("type", m.Types)
	block("op", m.Ops)
	block("fn", m.Funs)
	for _, d := range m.Decls {
		s.WriteString("\n\t")
		buildDeclString(d, s)
	}
	if m.Name != "" {
		s.WriteString("\n}")
	}
}

func buildDeclString(d Decl, s *strings.Builder) {
	switch d := d.(type) {
	case *FnDecl:
		s.WriteString("fn " + d.Name + ": ")
		buildTypeString(d.Sig, s)
		s.WriteString(" = ")
		buildExprString(d.Body, s)
	case *TypeDecl:
		s.WriteString("type " + d.Name + " = ")
		buildTypeString(d.Type, s)
	case *OpDecl:
		s.WriteString("op " + d.Name + ": ")
		buildTypeString(d.Type, s)
	case *DepDecl:
		arrow := " -> "
		if d.Direct {
			arrow = " => "
		}
		s.WriteString("dep " + depPathString(d.Import) + arrow + depPathString(d.Export))
	case *EntityDecl:
		s.WriteString("entity " + d.Name + ": ")
		buildTypeString(d.Type, s)
		if d.Init != nil {
			s.WriteString(" = ")
			buildExprString(d.Init, s)
		}
	}
}

func depPathString(p string) string {
	for _, part := range strings.Split(p, ".") {
		if !isIdent(part) {
			return strconv.Quote(p)
		}
	}
	return p
}

func buildTypeString(t TypeExpr, s *strings.Builder) {
	bin := func(l TypeExpr, op string, r TypeExpr) {
		s.WriteRune('(')
		buildTypeString(l, s)
		s.WriteString(" " + op + " ")
		buildTypeString(r, s)
		s.WriteRune(')')
	}
	switch t := t.(type) {
	case *TypeName:
		s.WriteString(t.Name)
	case *TypeVar:
		s.WriteString(t.Name)
	case *AnyType:
		s.WriteString("Any")
	case *VoidType:
		s.WriteString("Void")
	case *FuncType:
		bin(t.From, "->", t.To)
	case *LinearFuncType:
		bin(t.From, "-o", t.To)
	case *ProductType:
		bin(t.L, "*", t.R)
	case *SumType:
		bin(t.L, "+", t.R)
	case *MapType:
		s.WriteRune('{')
		buildTypeString(t.Key, s)
		s.WriteString(": ")
		buildTypeString(t.Val, s)
		s.WriteRune('}')
	case *ListType:
		s.WriteRune('[')
		buildTypeString(t.Elem, s)
		s.WriteRune(']')
	case *SetType:
		s.WriteRune('{')
		buildTypeString(t.Elem, s)
		s.WriteRune('}')
	case *OptionType:
		s.WriteRune('?')
		buildTypeString(t.Elem, s)
	case *LinearType:
		s.WriteRune('!')
		buildTypeString(t.Elem, s)
	case *SeqType:
		switch t.Elem.(type) {
		case *OptionType, *LinearType, *SeqType:
			s.WriteRune('(')
			buildTypeString(t.Elem, s)
			s.WriteRune(')')
		default:
			buildTypeString(t.Elem, s)
		}
		s.WriteString("...")
	}
}

func buildPatternString(p Pattern, s *strings.Builder) {
	switch p := p.(type) {
	case *VarPat:
		s.WriteString(p.Name)
	case *WildPat:
		s.WriteRune('_')
	case *LitPat:
		buildExprString(p.Lit, s)
	case *ListPat:
		s.WriteRune('[')
		for i, e := range p.Elems {
			if i > 0 {
				s.WriteString(", ")
			}
			buildPatternString(e, s)
		}
		s.WriteRune(']')
	case *SetPat:
		s.WriteRune('{')
		for i, e := range p.Elems {
			if i > 0 {
				s.WriteString(", ")
			}
			buildPatternString(e, s)
		}
		s.WriteRune('}')
	case *MapPat:
		s.WriteRune('{')
		for i, e := range p.Entries {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(keyString(e.Key) + ": ")
			buildPatternString(e.Pattern, s)
		}
		s.WriteRune('}')
	case *AnnotPat:
		buildPatternString(p.Pattern, s)
		s.WriteString(": ")
		buildTypeString(p.Type, s)
	}
}

func buildExprString(x Expr, s *strings.Builder) {
	switch x := x.(type) {
	case *Int:
		s.WriteString(strconv.FormatInt(x.Val, 10))
	case *Float:
		s.WriteString(FloatString(x.Val))
	case *String:
		s.WriteString(strconv.Quote(x.Data))
	case *Bool:
		s.WriteString(strconv.FormatBool(x.Val))
	case *Var:
		s.WriteString(x.Name)
	case *QualName:
		s.WriteString(strings.Join(x.Parts, "."))
	case *Placeholder:
		s.WriteString(PlaceholderName)
	case *Lambda:
		s.WriteRune('[')
		for _, p := range x.Parms {
			buildPatternString(p, s)
			s.WriteRune(' ')
		}
		s.WriteString("-> ")
		buildExprString(x.Body, s)
		s.WriteRune(']')
	case *Apply:
		buildApplyString(x, s)
	case *Let:
		s.WriteString("let ")
		buildPatternString(x.Pattern, s)
		s.WriteString(" = ")
		buildExprString(x.Val, s)
		if x.Body != nil {
			s.WriteString(" in ")
			buildExprString(x.Body, s)
		}
	case *If:
		s.WriteString("if ")
		buildExprString(x.Cond, s)
		s.WriteString(" then ")
		buildExprString(x.Then, s)
		s.WriteString(" else ")
		buildExprString(x.Else, s)
	case *Binary:
		s.WriteRune('(')
		buildBinaryOperandString(x.Op, x.Left, s)
		s.WriteString(" " + x.Op.String() + " ")
		buildBinaryOperandString(x.Op, x.Right, s)
		s.WriteRune(')')
	case *Unary:
		s.WriteString(x.Op.String())
		if x.Op == OpNeg {
			switch x.Operand.(type) {
			case *Int, *Float:
				s.WriteRune(' ')
			}
		}
		buildOperandString(x.Operand, s)
	case *List:
		s.WriteRune('[')
		buildExprsString(x.Elems, s)
		s.WriteRune(']')
	case *Set:
		s.WriteRune('{')
		buildExprsString(x.Elems, s)
		s.WriteRune('}')
	case *Map:
		s.WriteRune('{')
		for i, e := range x.Entries {
			if i > 0 {
				s.WriteString(", ")
			}
			s.WriteString(keyString(e.Key) + ": ")
			buildExprString(e.Val, s)
		}
		s.WriteRune('}')
	case *Quote:
		s.WriteRune('\'')
		buildOperandString(x.Expr, s)
	case *Quasiquote:
		s.WriteRune('`')
		buildOperandString(x.Expr, s)
	case *Unquote:
		s.WriteRune('~')
		buildOperandString(x.Expr, s)
	case *UnquoteSplice:
		s.WriteString("~@")
		buildOperandString(x.Expr, s)
	}
}

func buildApplyString(x *Apply, s *strings.Builder) {
	if v, ok := x.Fun.(*Var); ok && (!isIdent(v.Name) || isKeyword(v.Name)) {
		s.WriteString("(" + v.Name)
		for _, a := range x.Args {
			s.WriteRune(' ')
			buildOperandString(a, s)
		}
		s.WriteRune(')')
		return
	}
	switch x.Fun.(type) {
	case *Quote, *Quasiquote, *UnquoteSplice:
		s.WriteRune('(')
		buildExprString(x.Fun, s)
		s.WriteRune(')')
	default:
		buildOperandString(x.Fun, s)
	}
	s.WriteRune('(')
	buildExprsString(x.Args, s)
	s.WriteRune(')')
}

// buildOperandString writes an expression
// in a position that requires an operand.
func buildOperandString(x Expr, s *strings.Builder) {
	switch x.(type) {
	case *Unary, *Let, *If, *Unquote:
		s.WriteRune('(')
		buildExprString(x, s)
		s.WriteRune(')')
	default:
		buildExprString(x, s)
	}
}

func buildBinaryOperandString(op Op, x Expr, s *strings.Builder) {
	switch x.(type) {
	case *Let, *If:
	case *Unary:
		if op != OpPipe {
			buildExprString(x, s)
			return
		}
	default:
		buildExprString(x, s)
		return
	}
	s.WriteRune('(')
	buildExprString(x, s)
	s.WriteRune(')')
}

func buildExprsString(xs []Expr, s *strings.Builder) {
	for i, x := range xs {
		if i > 0 {
			s.WriteString(", ")
		}
		buildExprString(x, s)
	}
}

// FloatString returns a float formatted so that it reads back as a float.
func FloatString(f float64) string {
	str := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(str, ".eIN") {
		str += ".0"
	}
	return str
}

func keyString(k string) string {
	if isIdent(k) {
		return k
	}
	return strconv.Quote(k)
}

func isKeyword(s string) bool {
	for _, kw := range grammar.Keywords {
		if s == kw {
			return true
		}
	}
	return false
}

func isIdent(s string) bool {
	r, w := utf8.DecodeRuneInString(s)
	if s == "" || r != '_' && !unicode.IsLetter(r) {
		return false
	}
	for _, r := range s[w:] {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '?' {
			return false
		}
	}
	return true
}
