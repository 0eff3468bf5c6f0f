// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"io"
	"io/ioutil"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/eaburns/borf/diag"
	"github.com/eaburns/borf/grammar"
	"github.com/eaburns/borf/loc"
)

// DefaultMaxErrors is the default maximum number of errors
// reported by a recovering parse.
const DefaultMaxErrors = 10

// Config configures a Parser.
type Config struct {
	// Recover is whether to continue parsing after an error,
	// reporting all errors as a single MultipleErrors.
	Recover bool
	// MaxErrors is the maximum number of errors reported
	// when recovering; if 0, DefaultMaxErrors is used.
	MaxErrors int
	// Trace, if non-nil, traces the grammar rules.
	Trace grammar.Tracer
}

func (c Config) maxErrors() int {
	if c.MaxErrors <= 0 {
		return DefaultMaxErrors
	}
	return c.MaxErrors
}

// A Parser parses Borf source.
// Errors returned by a Parser are *diag.Error.
type Parser struct {
	cfg  Config
	mods []*Module
}

// NewParser returns a new Parser.
func NewParser(cfg Config) *Parser { return &Parser{cfg: cfg} }

// Modules returns the modules parsed by Parse and ParseFile.
func (p *Parser) Modules() []*Module { return p.mods }

// Parse parses a module from an io.Reader.
// The first argument is the file path or "" if unspecified.
func (p *Parser) Parse(path string, r io.Reader) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return diag.IoError(path, err)
	}
	m, err := p.ParseString(path, string(data))
	if err != nil {
		return err
	}
	p.mods = append(p.mods, m)
	return nil
}

// ParseFile parses the module in the file specified by a path.
func (p *Parser) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return diag.IoError(path, err)
	}
	defer f.Close()
	return p.Parse(path, f)
}

// ParseString parses a module from a string.
// The path is used for locations; it may be "".
//
// When recovering, a non-nil Module may be returned with a non-nil error;
// the Module has the declarations that were parsed without error.
func (p *Parser) ParseString(path, text string) (*Module, error) {
	b := &builder{file: loc.NewFile(path, text), cfg: p.cfg}
	n, err := p.parse(b.file, grammar.File)
	if err != nil {
		if p.cfg.Recover && err.Kind.Recoverable() {
			return p.recoverModule(b, err)
		}
		return nil, err
	}
	m, err2 := b.fileNode(n)
	if err2 != nil {
		return nil, b.done(err2)
	}
	return m, b.done(nil)
}

// ParseExpr parses an expression.
func (p *Parser) ParseExpr(path, text string) (Expr, error) {
	b := &builder{file: loc.NewFile(path, text), cfg: p.cfg}
	n, err := p.parse(b.file, grammar.ExprInput)
	if err != nil {
		return nil, err
	}
	x, err2 := b.expr(n.Kids[0])
	return x, b.done(err2)
}

// ParseDecl parses a single declaration.
// A name-block declaration, such as fn: { f g },
// returns a Module with no Name holding the declared names.
func (p *Parser) ParseDecl(path, text string) (Node, error) {
	b := &builder{file: loc.NewFile(path, text), cfg: p.cfg}
	n, err := p.parse(b.file, grammar.DeclInput)
	if err != nil {
		return nil, err
	}
	d, err2 := b.declNode(n.Kids[0])
	if err2 != nil {
		return nil, b.done(err2)
	}
	return d, b.done(nil)
}

// ParseRepl parses a line of interactive input:
// a module, a declaration, or an expression.
// The returned Node is a *Module, a Decl, or an Expr.
func (p *Parser) ParseRepl(path, text string) (Node, error) {
	b := &builder{file: loc.NewFile(path, text), cfg: p.cfg}
	n, err := p.parse(b.file, grammar.Repl)
	if err != nil {
		return nil, err
	}
	var nd Node
	var err2 error
	switch k := n.Kids[0]; k.Rule {
	case "module_decl":
		nd, err2 = b.module(k)
	case "fn_decl", "type_decl", "op_decl", "dep_decl", "entity_decl":
		nd, err2 = b.declNode(k)
	default:
		nd, err2 = b.expr(k)
	}
	if err2 != nil {
		return nil, b.done(err2)
	}
	return nd, b.done(nil)
}

func (p *Parser) parse(f *loc.File, start string) (*grammar.Node, *diag.Error) {
	if grammar.Blank(f.Text) {
		e := diag.New(diag.EmptyInput, f, loc.Range{len(f.Text), len(f.Text)}, "empty input")
		e.Help = "Nothing to parse."
		return nil, e
	}
	n, err := grammar.Borf.Parse(f.Text, start, grammar.Options{Trace: p.cfg.Trace})
	if err != nil {
		m, ok := err.(*grammar.Mismatch)
		if !ok {
			return nil, diag.New(diag.Unexpected, f, loc.Range{}, err.Error())
		}
		return nil, diag.FromMismatch(f, m)
	}
	return n, nil
}

// declNode builds a declaration,
// or a nameless Module for a name-block declaration.
func (b *builder) declNode(n *grammar.Node) (Node, error) {
	if n.Kid("name_block") == nil {
		return b.decl(n)
	}
	m := &Module{location: b.loc(n.Range)}
	if err := b.addDecl(m, n); err != nil {
		return nil, err
	}
	return m, nil
}

// done returns the error of a build along with any recovered errors.
func (b *builder) done(err error) error {
	if err != nil {
		if e, ok := err.(*diag.Error); ok && len(b.diags) > 0 && e.Kind != diag.MultipleErrors {
			return diag.Join(append(b.diags, e))
		}
		return err
	}
	if e := diag.Join(b.diags); e != nil {
		return e
	}
	return nil
}

// recoverModule re-parses a module one declaration at a time,
// skipping the declarations that fail to parse.
func (p *Parser) recoverModule(b *builder, first *diag.Error) (*Module, error) {
	text := b.file.Text
	opts := grammar.Options{Trace: p.cfg.Trace}
	pos := grammar.Skip(text, 0)
	name, end, err := grammar.Borf.ParseAt(text, "module_name", pos, opts)
	if err != nil {
		return nil, first
	}
	m := &Module{location: b.loc(loc.Range{pos, len(text)}), Name: strings.TrimPrefix(name.Text, "@")}
	pos = grammar.Skip(text, end)
	if !strings.HasPrefix(text[pos:], ":") {
		return nil, first
	}
	pos = grammar.Skip(text, pos+1)
	if !strings.HasPrefix(text[pos:], "{") {
		return nil, first
	}
	pos++
	for {
		pos = grammar.Skip(text, pos)
		if pos >= len(text) {
			e := diag.New(diag.MissingToken, b.file, loc.Range{pos, pos}, "missing token: expected '}'")
			e.Expected = "'}'"
			e.Found = "end of input"
			e.AtEOF = true
			e.Suggestion = "Missing closing '}'?"
			e.Help = "Add the missing closing bracket to match the one that was opened."
			if err := b.recover(e); err != nil {
				return m, err
			}
			break
		}
		if text[pos] == '}' {
			if rest := grammar.Skip(text, pos+1); rest < len(text) {
				e := diag.New(diag.UnexpectedToken, b.file, loc.Range{rest, len(text)}, "unexpected token: expected the end of the input")
				e.Expected = "the end of the input"
				e.Help = "A file holds a single module."
				if err := b.recover(e); err != nil {
					return m, err
				}
			}
			break
		}
		n, end, err := grammar.Borf.ParseAt(text, grammar.Declaration, pos, opts)
		if err != nil {
			var e *diag.Error
			if mm, ok := err.(*grammar.Mismatch); ok {
				e = diag.FromMismatch(b.file, mm)
			} else {
				e = diag.New(diag.Unexpected, b.file, loc.Range{pos, pos}, err.Error())
			}
			if err := b.recover(e); err != nil {
				return m, err
			}
			pos = resync(text, pos)
			continue
		}
		for _, d := range n.Kids {
			if err := b.addDecl(m, d); err != nil {
				return m, err
			}
		}
		pos = end
	}
	if len(b.diags) == 0 {
		return nil, first
	}
	return m, diag.Join(b.diags)
}

// resync returns the position after pos of the next declaration keyword,
// or of the next '}' that is not closed by a '{' opened after pos,
// or the end of the text.
// String literals and comments are skipped.
func resync(text string, pos int) int {
	var depth int
	for i := pos + 1; i < len(text); {
		switch {
		case text[i] == '"':
			i = skipString(text, i)
			continue
		case strings.HasPrefix(text[i:], "//"):
			j := strings.IndexByte(text[i:], '\n')
			if j < 0 {
				return len(text)
			}
			i += j
			continue
		case strings.HasPrefix(text[i:], "/*"):
			j := strings.Index(text[i+2:], "*/")
			if j < 0 {
				return len(text)
			}
			i += j + 4
			continue
		case text[i] == '{':
			depth++
		case text[i] == '}':
			if depth == 0 {
				return i
			}
			depth--
		case declKeywordAt(text, i):
			return i
		}
		_, w := utf8.DecodeRuneInString(text[i:])
		i += w
	}
	return len(text)
}

// skipString returns the position after the string literal at i,
// or the end of the text if it is unterminated.
func skipString(text string, i int) int {
	for i++; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(text)
}

// declKeywordAt returns whether a declaration keyword
// begins a word at text[i:].
func declKeywordAt(text string, i int) bool {
	if i > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:i]); grammar.IsIdentRune(r) {
			return false
		}
	}
	for _, kw := range grammar.DeclKeywords {
		if !strings.HasPrefix(text[i:], kw) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(text[i+len(kw):]); i+len(kw) == len(text) || !grammar.IsIdentRune(r) {
			return true
		}
	}
	return false
}
