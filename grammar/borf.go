package grammar

import (
	"strings"
	"unicode"
)

// Start rules of the Borf grammar.
const (
	// File is a module file: a single module declaration.
	File = "file"
	// Repl is a module, a declaration, or an expression.
	Repl = "repl_input"
	// ExprInput is a single expression.
	ExprInput = "expr_input"
	// DeclInput is a single declaration.
	DeclInput = "decl_input"
	// Declaration is a declaration with no end-of-input requirement.
	Declaration = "declaration"
)

// Keywords are the reserved words of expressions.
var Keywords = []string{
	"let", "in", "if", "then", "else", "iff", "or_else",
	"true", "false", "and", "or", "not",
}

// DeclKeywords are the words that begin a declaration.
var DeclKeywords = []string{"fn", "type", "typ", "op", "dep", "entity"}

// Borf is the grammar of the Borf language.
var Borf = New(skip, borfRules()...)

var skip = Choice(
	Class("whitespace", unicode.IsSpace),
	Seq(Lit("//"), Star(Seq(Not(Lit("\n")), Any))),
	Seq(Lit("/*"), Star(Seq(Not(Lit("*/")), Any)), Lit("*/")),
)

func rule(name string, e Expr) *Rule   { return &Rule{Name: name, Kind: Structural, Expr: e} }
func token(name string, e Expr) *Rule  { return &Rule{Name: name, Kind: Token, Expr: e} }
func silent(name string, e Expr) *Rule { return &Rule{Name: name, Kind: Silent, Expr: e} }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

var (
	digits     = Plus(Class("a digit", isDigit))
	identChars = Seq(Class("a letter", isIdentStart), Star(Class("a letter or digit", IsIdentRune)))
	notIdent   = Not(Class("a letter or digit", IsIdentRune))
)

// commaList matches one or more e separated by commas,
// with an optional trailing comma.
func commaList(e Expr) Expr {
	return Seq(e, Star(Seq(Lit(","), e)), Opt(Lit(",")))
}

func borfRules() []*Rule {
	return []*Rule{
		rule(File, Seq(SOI, Choice(Ref("module_decl"), Ref("loose_decls")), EOI)),
		rule(Repl, Seq(SOI, Choice(Ref("module_decl"), Ref("declaration"), Ref("expr")), EOI)),
		rule(ExprInput, Seq(SOI, Ref("expr"), EOI)),
		rule(DeclInput, Seq(SOI, Ref("declaration"), EOI)),

		// Modules and declarations.
		rule("module_decl", Seq(Ref("module_name"), Lit(":"), Ref("module_body"))),
		token("module_name", Seq(Lit("@"), identChars)),
		rule("module_body", Seq(Lit("{"), Star(Ref("declaration")), Lit("}"))),
		rule("loose_decls", Plus(Ref("declaration"))),
		silent(Declaration, Seq(
			Choice(
				Ref("fn_decl"),
				Ref("type_decl"),
				Ref("op_decl"),
				Ref("dep_decl"),
				Ref("entity_decl"),
			),
			Opt(Lit(";")),
		)),
		rule("fn_decl", Seq(Kw("fn"), Choice(
			Seq(Lit(":"), Ref("name_block")),
			Seq(Ref("name"), Lit(":"), Ref("type_expr"), Lit("="), Ref("expr")),
		))),
		rule("type_decl", Seq(Choice(Kw("type"), Kw("typ")), Choice(
			Seq(Lit(":"), Ref("name_block")),
			Seq(Ref("identifier"), Lit("="), Ref("type_expr")),
		))),
		rule("op_decl", Seq(Kw("op"), Choice(
			Seq(Lit(":"), Ref("name_block")),
			Seq(Ref("name"), Lit(":"), Ref("type_expr")),
		))),
		rule("dep_decl", Seq(Kw("dep"), Ref("dep_path"), Ref("dep_arrow"), Ref("dep_path"))),
		token("dep_path", Choice(
			Ref("string"),
			Seq(Opt(Lit("@")), identChars, Star(Seq(Lit("."), identChars))),
		)),
		token("dep_arrow", Choice(Lit("->"), Lit("=>"))),
		rule("entity_decl", Seq(
			Kw("entity"), Ref("name"), Lit(":"), Ref("type_expr"),
			Opt(Seq(Lit("="), Ref("expr"))),
		)),
		rule("name_block", Seq(Lit("{"), Star(Seq(Ref("identifier"), Opt(Ref("comma")))), Lit("}"))),
		token("comma", Lit(",")),

		// Names.
		silent("name", Seq(Not(Ref("keyword")), Ref("identifier"))),
		token("identifier", Seq(identChars, Star(Class("' or ?", func(r rune) bool { return r == '\'' || r == '?' })))),
		token("qualified_name", Seq(Ref("identifier"), Plus(Seq(Lit("."), Ref("identifier"))))),
		token("keyword", Choice(kws(Keywords)...)),

		// Expressions.
		rule("expr", Seq(
			Ref("op_expr"),
			Opt(Seq(Kw("iff"), Ref("op_expr"), Kw("or_else"), Ref("expr"))),
		)),
		rule("op_expr", Seq(
			Star(Ref("prefix_op")),
			Ref("operand"),
			Star(Seq(Ref("infix_op"), Star(Ref("prefix_op")), Opt(Ref("operand")))),
		)),
		token("prefix_op", Choice(
			Kw("not"),
			Seq(Lit("!"), Not(Lit("="))),
			Seq(Lit("-"), Not(Class("a digit", isDigit)), Not(Lit(">"))),
			Seq(Lit("~"), Not(Lit("@"))),
		)),
		token("infix_op", Choice(
			Lit("|>"),
			Lit("=="),
			Lit("!="),
			Lit("<="),
			Lit(">="),
			Lit("<"),
			Lit(">"),
			Lit("+"),
			Seq(Lit("-"), Not(Lit(">"))),
			Lit("*"),
			Lit("/"),
			Kw("and"),
			Kw("or"),
			Seq(Lit(":"), Not(Lit(":"))),
		)),
		rule("unary", Seq(Star(Ref("prefix_op")), Ref("operand"))),
		silent("operand", Choice(Ref("call"), Ref("primary"), Ref("bad_token"))),
		token("bad_token", Class("an expression", func(r rune) bool {
			return strings.ContainsRune(`$%^&;?#@\=.`, r)
		})),
		rule("call", Seq(Ref("primary"), Plus(Seq(Adjacent, Ref("call_args"))))),
		rule("call_args", Seq(Lit("("), Opt(Seq(Ref("expr"), Star(Seq(Lit(","), Ref("expr"))))), Lit(")"))),
		silent("primary", Choice(
			Ref("float"),
			Ref("integer"),
			Ref("string"),
			Ref("boolean"),
			Ref("let_expr"),
			Ref("if_expr"),
			Ref("lambda"),
			Ref("list_literal"),
			Ref("map_literal"),
			Ref("set_literal"),
			Ref("parenthesized_expr"),
			Ref("application"),
			Ref("quote_expr"),
			Ref("quasiquote_expr"),
			Ref("unquote_splice_expr"),
			Ref("qualified_name"),
			Ref("variable"),
		)),
		rule("variable", Ref("name")),
		rule("let_expr", Seq(
			Kw("let"), Ref("pattern"), Lit("="), Ref("expr"),
			Opt(Seq(Kw("in"), Ref("expr"))),
		)),
		rule("if_expr", Seq(Kw("if"), Ref("expr"), Kw("then"), Ref("expr"), Kw("else"), Ref("expr"))),
		rule("lambda", Seq(Lit("["), Star(Ref("pattern")), Lit("->"), Ref("expr"), Lit("]"))),
		rule("list_literal", Seq(Lit("["), Opt(commaList(Ref("expr"))), Lit("]"))),
		rule("map_literal", Seq(Lit("{"), Opt(commaList(Ref("map_entry"))), Lit("}"))),
		rule("map_entry", Seq(Ref("map_key"), Lit(":"), Ref("expr"))),
		silent("map_key", Choice(Ref("string"), Ref("float"), Ref("integer"), Ref("boolean"), Ref("identifier"))),
		rule("set_literal", Seq(Lit("{"), commaList(Ref("expr")), Lit("}"))),
		// parenthesized_expr is tried first,
		// so (f -1) is the subtraction (f - 1); write (f (-1)) to apply f.
		rule("parenthesized_expr", Seq(Lit("("), Ref("expr"), Lit(")"))),
		rule("application", Seq(
			Lit("("),
			Choice(Ref("op_symbol"), Ref("unary")),
			Plus(Ref("unary")),
			Lit(")"),
		)),
		token("op_symbol", Choice(
			Lit("|>"), Lit("=="), Lit("!="), Lit("<="), Lit(">="), Lit("<"), Lit(">"),
			Lit("+"), Lit("-"), Lit("*"), Lit("/"),
			Kw("and"), Kw("or"), Kw("not"), Lit("!"),
		)),
		rule("quote_expr", Seq(Lit("'"), Ref("operand"))),
		rule("quasiquote_expr", Seq(Lit("`"), Ref("operand"))),
		rule("unquote_splice_expr", Seq(Lit("~@"), Ref("operand"))),

		// Literals.
		token("float", Seq(Opt(Lit("-")), digits, Choice(
			Seq(Lit("."), digits, Opt(Ref("exponent"))),
			Ref("exponent"),
		))),
		token("exponent", Seq(Class("e", func(r rune) bool { return r == 'e' || r == 'E' }), Opt(Class("a sign", func(r rune) bool { return r == '+' || r == '-' })), digits)),
		token("integer", Seq(Opt(Lit("-")), digits, notIdent)),
		token("string", Seq(Lit(`"`), Star(Choice(
			Seq(Lit(`\`), Any),
			Seq(Not(Lit(`"`)), Not(Lit("\n")), Any),
		)), Lit(`"`))),
		token("boolean", Choice(Kw("true"), Kw("false"))),

		// Patterns.
		rule("pattern", Seq(Ref("pattern_atom"), Opt(Seq(Lit(":"), Ref("type_term"))))),
		silent("pattern_atom", Choice(
			Ref("wildcard"),
			Ref("float"),
			Ref("integer"),
			Ref("string"),
			Ref("boolean"),
			Ref("list_pattern"),
			Ref("map_pattern"),
			Ref("set_pattern"),
			Ref("variable"),
		)),
		token("wildcard", Seq(Lit("_"), notIdent)),
		rule("list_pattern", Seq(Lit("["), Opt(commaList(Ref("pattern"))), Lit("]"))),
		rule("map_pattern", Seq(Lit("{"), Opt(commaList(Ref("map_pattern_entry"))), Lit("}"))),
		rule("map_pattern_entry", Seq(Ref("map_key"), Lit(":"), Ref("pattern"))),
		rule("set_pattern", Seq(Lit("{"), commaList(Ref("pattern")), Lit("}"))),

		// Type expressions.
		rule("type_expr", Seq(Ref("type_term"), Star(Seq(Ref("type_op"), Ref("type_term"))))),
		token("type_op", Choice(Lit("->"), Seq(Lit("-o"), notIdent), Lit("*"), Lit("+"))),
		silent("type_term", Choice(
			Ref("option_type"),
			Ref("linear_type"),
			Ref("seq_type"),
			Ref("type_primary"),
		)),
		rule("option_type", Seq(Lit("?"), Ref("type_term"))),
		rule("linear_type", Seq(Lit("!"), Ref("type_term"))),
		rule("seq_type", Seq(Ref("type_primary"), Lit("..."))),
		silent("type_primary", Choice(
			Ref("any_type"),
			Ref("void_type"),
			Ref("type_name"),
			Ref("type_var"),
			Ref("list_type"),
			Ref("map_type"),
			Ref("set_type"),
			Ref("paren_type"),
		)),
		token("any_type", Kw("Any")),
		token("void_type", Kw("Void")),
		token("type_name", Seq(Class("an uppercase letter", unicode.IsUpper), Star(Class("a letter or digit", IsIdentRune)))),
		token("type_var", Seq(Class("a lowercase letter", func(r rune) bool { return r == '_' || unicode.IsLower(r) }), Star(Class("a letter or digit", IsIdentRune)))),
		rule("list_type", Seq(Lit("["), Ref("type_expr"), Lit("]"))),
		rule("map_type", Seq(Lit("{"), Ref("type_expr"), Lit(":"), Ref("type_expr"), Lit("}"))),
		rule("set_type", Seq(Lit("{"), Ref("type_expr"), Lit("}"))),
		rule("paren_type", Seq(Lit("("), Ref("type_expr"), Lit(")"))),
	}
}

func kws(words []string) []Expr {
	var es []Expr
	for _, w := range words {
		es = append(es, Kw(w))
	}
	return es
}

// Blank returns whether text is empty or only whitespace and comments.
func Blank(text string) bool {
	p := &parser{g: Borf, text: text, farthest: -1}
	return p.skip(0) == len(text)
}

// Skip returns the offset of the first byte at or after pos
// that is not whitespace or part of a comment.
func Skip(text string, pos int) int {
	p := &parser{g: Borf, text: text, farthest: -1}
	return p.skip(pos)
}
