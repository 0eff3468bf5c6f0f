package diag

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/eaburns/borf/grammar"
	"github.com/eaburns/borf/loc"
	"github.com/eaburns/peggy/peg"
)

// ruleNames are human phrases for grammar rules.
var ruleNames = map[string]string{
	"file":                "a module file",
	"repl_input":          "a declaration or expression",
	"expr_input":          "an expression",
	"decl_input":          "a declaration",
	"module_decl":         "a module declaration (e.g., `@Name: { ... }`)",
	"module_name":         "a module name (e.g., `@Name`)",
	"module_body":         "a module body (e.g., `{ fn: { f } }`)",
	"loose_decls":         "a declaration",
	"fn_decl":             "a function declaration (e.g., `fn: { g }`)",
	"type_decl":           "a type declaration (e.g., `type: { T }`)",
	"op_decl":             "an operation declaration (e.g., `op: { f }`)",
	"dep_decl":            "a dependency declaration (e.g., `dep A -> B`)",
	"entity_decl":         "an entity declaration (e.g., `entity x: Int = 1`)",
	"name_block":          "a list of names (e.g., `{ a b }`)",
	"dep_path":            "a module path",
	"dep_arrow":           "`->` or `=>`",
	"comma":               "a comma",
	"identifier":          "an identifier",
	"qualified_name":      "a qualified name (e.g., `a.b`)",
	"keyword":             "a keyword",
	"expr":                "an expression",
	"op_expr":             "an expression",
	"unary":               "an expression",
	"prefix_op":           "a prefix operator",
	"infix_op":            "an operator",
	"bad_token":           "an expression",
	"call":                "a function call (e.g., `f(x)`)",
	"call_args":           "call arguments (e.g., `(x, y)`)",
	"variable":            "a variable",
	"let_expr":            "a let binding (e.g., `let x = 1 in x`)",
	"if_expr":             "a conditional (e.g., `if c then a else b`)",
	"lambda":              "a lambda function (e.g., `[x -> x + 1]`)",
	"list_literal":        "a list (e.g., `[1, 2]`)",
	"map_literal":         "a map (e.g., `{a: 1}`)",
	"map_entry":           "a map entry (e.g., `key: value`)",
	"set_literal":         "a set (e.g., `{1, 2}`)",
	"parenthesized_expr":  "a parenthesized expression",
	"application":         "a function application (e.g., `(f x)`)",
	"op_symbol":           "an operator",
	"quote_expr":          "a quoted expression (e.g., `'x`)",
	"quasiquote_expr":     "a quasiquoted expression (e.g., `` `x ``)",
	"unquote_splice_expr": "an unquote-splice (e.g., `~@xs`)",
	"float":               "a float",
	"exponent":            "an exponent",
	"integer":             "an integer",
	"string":              "a string",
	"boolean":             "a boolean",
	"pattern":             "a pattern",
	"wildcard":            "a wildcard `_`",
	"list_pattern":        "a list pattern (e.g., `[x, y]`)",
	"map_pattern":         "a map pattern (e.g., `{key: x}`)",
	"map_pattern_entry":   "a map pattern entry (e.g., `key: x`)",
	"set_pattern":         "a set pattern (e.g., `{x, y}`)",
	"type_expr":           "a type expression",
	"type_op":             "a type operator (e.g., `->`)",
	"option_type":         "an option type (e.g., `?T`)",
	"linear_type":         "a linear type (e.g., `!T`)",
	"seq_type":            "a sequence type (e.g., `T...`)",
	"any_type":            "`Any`",
	"void_type":           "`Void`",
	"type_name":           "a type name",
	"type_var":            "a type variable",
	"list_type":           "a list type (e.g., `[T]`)",
	"map_type":            "a map type (e.g., `{K: V}`)",
	"set_type":            "a set type (e.g., `{T}`)",
	"paren_type":          "a parenthesized type",
	"EOI":                 "the end of the input",
}

// RuleName returns a human phrase for a grammar expectation.
func RuleName(desc string) string {
	if grammar.IsLiteral(desc) {
		return desc
	}
	if s, ok := ruleNames[desc]; ok {
		return s
	}
	return "a `" + desc + "`"
}

// describe returns the expectations as a phrase:
// "a", "a or b", or "a, b, or c".
func describe(descs []string) string {
	var names []string
	seen := make(map[string]bool)
	for _, d := range descs {
		n := RuleName(d)
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	switch len(names) {
	case 0:
		return "something else"
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}

// FromMismatch returns an Error describing a grammar mismatch in the file.
func FromMismatch(f *loc.File, m *grammar.Mismatch) *Error {
	text := f.Text
	span := foundSpan(text, m.Pos)
	found := text[span[0]:span[1]]
	var e *Error
	switch {
	case len(m.Positives) == 0 && len(m.Negatives) == 0:
		e = New(SyntaxError, f, span, "syntax error: unknown syntax error")
		perr := peg.SimpleError(text, m.Fail)
		perr.FilePath = f.Path
		e.Help = perr.Error()
	case len(m.Negatives) > 0 && len(m.Positives) == 0:
		e = New(UnexpectedToken, f, span, "")
		e.Expected = "something else"
		e.Found = describe(m.Negatives)
	case span.Len() == 0:
		e = New(MissingToken, f, span, "")
		e.Expected = describe(m.Positives)
		e.Found = "end of input"
		e.AtEOF = span[0] == len(text)
		if !e.AtEOF {
			e.Found = "nothing"
		}
	default:
		e = New(UnexpectedToken, f, span, "")
		e.Expected = describe(m.Positives)
		e.Found = "'" + found + "'"
		if len(m.Negatives) > 0 {
			e.Found += " (" + describe(m.Negatives) + ")"
		}
	}
	e.fail = m.Fail
	switch e.Kind {
	case UnexpectedToken:
		e.Msg = "unexpected token: expected " + e.Expected + ", found " + e.Found
	case MissingToken:
		e.Msg = "missing token: expected " + e.Expected
	}
	var first string
	if len(m.Positives) > 0 {
		first = m.Positives[0]
	}
	e.Suggestion = suggest(first, found, m.Positives, text[:m.Pos], e.AtEOF)
	if e.Help == "" {
		e.Help = help(e, first)
	}
	return e
}

// foundSpan returns the span of the token at pos.
// The span is empty at the end of the input or at whitespace.
func foundSpan(text string, pos int) loc.Range {
	if pos >= len(text) {
		return loc.Range{len(text), len(text)}
	}
	r, w := utf8.DecodeRuneInString(text[pos:])
	end := pos + w
	switch {
	case unicode.IsSpace(r):
		return loc.Range{pos, pos}
	case r == '"':
		for end < len(text) && text[end] != '\n' {
			end++
			if text[end-1] == '"' {
				break
			}
		}
	case r == '@' || grammar.IsIdentRune(r):
		for end < len(text) {
			r, w := utf8.DecodeRuneInString(text[end:])
			if !grammar.IsIdentRune(r) && r != '?' && r != '\'' {
				break
			}
			end += w
		}
	}
	return loc.Range{pos, end}
}

func suggest(first, found string, positives []string, prefix string, atEOF bool) string {
	expected := func(rule string) bool {
		for _, p := range positives {
			if p == rule {
				return true
			}
		}
		return false
	}
	// A file may begin with a declaration,
	// so a misspelled keyword there is not taken for a module name.
	atFile := expected("module_decl") || expected("module_name") || expected("loose_decls")
	switch {
	case (atFile || expected("fn_decl")) && oneOf(found, "fun", "func", "function", "def", "defn"):
		return "Did you mean 'fn'?"
	case (atFile || expected("type_decl")) && oneOf(found, "Type", "Typ", "types"):
		return "Did you mean 'type'?"
	case (atFile || expected("op_decl")) && oneOf(found, "Op", "ops", "operation"):
		return "Did you mean 'op'?"
	case atFile:
		if found != "" && !strings.HasPrefix(found, "@") && isWord(found) {
			return "Module names must start with '@', like '@" + found + "'?"
		}
	}
	open := unclosed(prefix)
	if open == 0 {
		return ""
	}
	cl := closers[open]
	for _, p := range positives {
		if p == "'"+string(cl)+"'" {
			return "Missing closing '" + string(cl) + "'?"
		}
	}
	switch first {
	case "parenthesized_expr", "application", "call_args", "paren_type":
		if open == '(' {
			return "Missing closing ')'?"
		}
	case "module_body", "map_literal", "set_literal", "name_block", "map_pattern", "set_pattern":
		if open == '{' {
			return "Missing closing '}'?"
		}
	case "list_literal", "list_pattern", "lambda", "list_type":
		if open == '[' {
			return "Missing closing ']'?"
		}
	}
	if atEOF {
		return "Missing closing '" + string(cl) + "'?"
	}
	return ""
}

func oneOf(s string, words ...string) bool {
	for _, w := range words {
		if s == w {
			return true
		}
	}
	return false
}

func isWord(s string) bool {
	for _, r := range s {
		if !grammar.IsIdentRune(r) {
			return false
		}
	}
	return true
}

var closers = map[rune]rune{'(': ')', '[': ']', '{': '}'}

// unclosed returns the innermost unclosed bracket of the text,
// ignoring strings and comments, or 0 if all are closed.
func unclosed(text string) rune {
	var stack []rune
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '"':
			for i++; i < len(text) && text[i] != '"' && text[i] != '\n'; i++ {
				if text[i] == '\\' {
					i++
				}
			}
		case strings.HasPrefix(text[i:], "//"):
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return 0
			}
			i += end + 3
		case c == '(' || c == '[' || c == '{':
			stack = append(stack, rune(c))
		case c == ')' || c == ']' || c == '}':
			if len(stack) > 0 && closers[stack[len(stack)-1]] == rune(c) {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) == 0 {
		return 0
	}
	return stack[len(stack)-1]
}

func help(e *Error, first string) string {
	switch {
	case strings.HasPrefix(e.Suggestion, "Missing closing"):
		return "Add the missing closing bracket to match the one that was opened."
	case e.AtEOF:
		return "Expected " + e.Expected + " before the end of the input."
	case first == "fn_decl":
		return "Function declarations look like `fn: { f g }` or `fn f: Int -> Int = [x -> x]`."
	case first == "type_decl":
		return "Type declarations look like `type: { T }` or `type T = Int * Int`."
	case first == "op_decl":
		return "Operation declarations look like `op: { f }` or `op f: Int -> Int`."
	case first == "module_decl" || first == "module_name":
		return "A module looks like `@Name: { declarations }`."
	case e.Expected != "":
		return "Expected " + e.Expected + ". Check the syntax near this location."
	default:
		return "Check the syntax near this location."
	}
}
