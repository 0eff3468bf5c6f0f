// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package grammar is a memoizing PEG parser
// driven by a declarative table of rules,
// and the table of rules for the Borf language.
//
// A parse either produces a tree of Nodes
// or a *Mismatch describing what was expected
// at the farthest position that the parse reached.
package grammar

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/eaburns/peggy/peg"
)

// A Kind is the kind of a Rule.
type Kind int

const (
	// Structural rules skip whitespace and comments
	// between the elements of sequences and repetitions.
	// Their Nodes have the Nodes of their sub-rules as Kids.
	Structural Kind = iota
	// Token rules skip nothing and produce leaf Nodes.
	// Rules referenced from within a token produce no Nodes.
	Token
	// Silent rules are structural rules that produce no Node;
	// the Nodes of their sub-rules are spliced into the parent.
	// Silent rules are never reported as expected.
	Silent
)

// A Rule is a named parsing expression.
type Rule struct {
	Name string
	Kind Kind
	Expr Expr
}

// An Expr is a parsing expression.
type Expr interface {
	match(p *parser, pos int) (int, bool)
}

// A Tracer is notified of every rule attempt.
type Tracer interface {
	// Enter is called when rule is attempted at byte offset pos.
	Enter(rule string, pos int)
	// Exit is called when the attempt of rule at pos is done.
	// If ok, the rule matched the text up to byte offset end;
	// otherwise end is -1.
	Exit(rule string, pos, end int, ok bool)
}

// Options are options for a single parse.
type Options struct {
	// Trace, if non-nil, is notified of each rule attempt.
	Trace Tracer
}

// A Grammar is an immutable set of rules.
// A Grammar may be used by multiple goroutines concurrently.
type Grammar struct {
	rules map[string]*Rule
	skip  Expr
}

// New returns a new Grammar.
// Skip is matched repeatedly between the elements
// of structural sequences and repetitions.
// New panics if a rule references an undefined rule,
// or if two rules have the same name.
func New(skip Expr, rules ...*Rule) *Grammar {
	g := &Grammar{rules: make(map[string]*Rule), skip: skip}
	for _, r := range rules {
		if _, ok := g.rules[r.Name]; ok {
			panic("duplicate rule " + r.Name)
		}
		g.rules[r.Name] = r
	}
	for _, r := range rules {
		g.resolve(r.Expr)
	}
	if skip != nil {
		g.resolve(skip)
	}
	return g
}

func (g *Grammar) resolve(e Expr) {
	switch e := e.(type) {
	case *ref:
		r, ok := g.rules[e.name]
		if !ok {
			panic("undefined rule " + e.name)
		}
		e.rule = r
	case seq:
		for _, k := range e {
			g.resolve(k)
		}
	case choice:
		for _, k := range e {
			g.resolve(k)
		}
	case star:
		g.resolve(e.e)
	case plus:
		g.resolve(e.e)
	case opt:
		g.resolve(e.e)
	case not:
		g.resolve(e.e)
	case and:
		g.resolve(e.e)
	}
}

// Rule returns the named rule, or nil.
func (g *Grammar) Rule(name string) *Rule { return g.rules[name] }

// Parse parses the entire text beginning with the start rule.
// The start rule is responsible for matching end of input.
// The returned error is a *Mismatch if the text does not match.
func (g *Grammar) Parse(text, start string, opts Options) (*Node, error) {
	n, _, err := g.ParseAt(text, start, 0, opts)
	return n, err
}

// ParseAt parses a prefix of text[pos:] with the start rule,
// returning the Node and the end offset of the match.
// Whitespace before pos is not skipped.
func (g *Grammar) ParseAt(text, start string, pos int, opts Options) (*Node, int, error) {
	r := g.rules[start]
	if r == nil {
		return nil, -1, fmt.Errorf("no rule %s", start)
	}
	p := &parser{
		g:        g,
		text:     text,
		trace:    opts.Trace,
		memo:     make(map[memoKey]memoEntry),
		farthest: -1,
		start:    r,
	}
	end, ok := p.call(r, pos)
	if !ok {
		return nil, -1, p.mismatch(start, pos)
	}
	if r.Kind == Silent || len(p.nodes) != 1 {
		return &Node{Rule: start, Range: [2]int{pos, end}, Text: text[pos:end], Kids: p.nodes}, end, nil
	}
	return p.nodes[0], end, nil
}

type memoKey struct {
	rule   *Rule
	pos    int
	atomic bool
}

type memoEntry struct {
	end   int
	ok    bool
	nodes []*Node
}

type attempt struct {
	desc string
	neg  bool
}

// parser is the state of a single parse session.
type parser struct {
	g     *Grammar
	text  string
	trace Tracer
	memo  map[memoKey]memoEntry
	nodes []*Node
	// start is the start rule; its failure is never collapsed.
	start *Rule

	// atomic is >0 within token rules.
	atomic int
	// neg is >0 within negative lookahead.
	neg int

	farthest int
	epoch    int
	attempts []attempt
}

func (p *parser) call(r *Rule, pos int) (int, bool) {
	if p.trace != nil {
		p.trace.Enter(r.Name, pos)
	}
	tracked := r.Kind != Silent && p.atomic == 0
	key := memoKey{rule: r, pos: pos, atomic: p.atomic > 0}
	m, ok := p.memo[key]
	if ok {
		if m.ok {
			p.nodes = append(p.nodes, m.nodes...)
			if tracked && p.neg > 0 {
				p.record(r.Name, pos, true)
			}
		} else if tracked && p.neg == 0 {
			p.record(r.Name, pos, false)
		}
	} else {
		m = p.eval(r, pos, tracked)
		p.memo[key] = m
	}
	if p.trace != nil {
		p.trace.Exit(r.Name, pos, m.end, m.ok)
	}
	return m.end, m.ok
}

func (p *parser) eval(r *Rule, pos int, tracked bool) memoEntry {
	mark, epoch := len(p.attempts), p.epoch
	nmark := len(p.nodes)
	atomic := p.atomic > 0
	if r.Kind == Token {
		p.atomic++
	}
	end, ok := r.Expr.match(p, pos)
	if r.Kind == Token {
		p.atomic--
	}
	if !ok {
		p.nodes = p.nodes[:nmark]
		if tracked && p.neg == 0 && r != p.start {
			p.collapse(r.Name, pos, mark, epoch)
		}
		return memoEntry{end: -1}
	}
	kids := append([]*Node(nil), p.nodes[nmark:]...)
	p.nodes = p.nodes[:nmark]
	var nodes []*Node
	switch {
	case atomic:
	case r.Kind == Silent:
		nodes = kids
	default:
		n := &Node{Rule: r.Name, Range: [2]int{pos, end}, Text: p.text[pos:end]}
		if r.Kind == Structural {
			n.Kids = kids
		}
		nodes = []*Node{n}
	}
	p.nodes = append(p.nodes, nodes...)
	if tracked && p.neg > 0 {
		p.record(r.Name, pos, true)
	}
	return memoEntry{end: end, ok: true, nodes: nodes}
}

// record notes an expectation at pos.
// Only expectations at the farthest position are kept.
func (p *parser) record(desc string, pos int, neg bool) {
	switch {
	case pos > p.farthest:
		p.farthest = pos
		p.epoch++
		p.attempts = []attempt{{desc: desc, neg: neg}}
	case pos == p.farthest:
		p.attempts = append(p.attempts, attempt{desc: desc, neg: neg})
	}
}

// collapse records the failure of a rule at pos,
// replacing the expectations recorded by its sub-rules at the same position.
func (p *parser) collapse(name string, pos, mark, epoch int) {
	switch {
	case pos > p.farthest:
		p.record(name, pos, false)
	case pos == p.farthest:
		if epoch == p.epoch {
			p.attempts = p.attempts[:mark]
		} else {
			p.attempts = p.attempts[:0]
		}
		p.attempts = append(p.attempts, attempt{desc: name})
	}
}

func (p *parser) want(pos int, desc string) {
	if p.atomic == 0 && p.neg == 0 {
		p.record(desc, pos, false)
	}
}

func (p *parser) skip(pos int) int {
	if p.atomic > 0 || p.g.skip == nil {
		return pos
	}
	p.atomic++
	for {
		end, ok := p.g.skip.match(p, pos)
		if !ok || end == pos {
			break
		}
		pos = end
	}
	p.atomic--
	return pos
}

func (p *parser) mismatch(start string, pos int) *Mismatch {
	m := &Mismatch{Start: start, Pos: p.farthest}
	if m.Pos < pos {
		m.Pos = pos
	}
	seen := make(map[attempt]bool)
	for _, a := range p.attempts {
		if seen[a] {
			continue
		}
		seen[a] = true
		if a.neg {
			m.Negatives = append(m.Negatives, a.desc)
		} else {
			m.Positives = append(m.Positives, a.desc)
		}
	}
	m.Fail = &peg.Fail{Name: start, Pos: pos}
	for _, d := range m.Positives {
		if IsLiteral(d) {
			m.Fail.Kids = append(m.Fail.Kids, &peg.Fail{Pos: m.Pos, Want: d})
		} else {
			m.Fail.Kids = append(m.Fail.Kids, &peg.Fail{Name: d, Pos: m.Pos})
		}
	}
	return m
}

// IsLiteral returns whether an expectation describes literal text
// rather than naming a rule.
func IsLiteral(desc string) bool {
	return len(desc) >= 2 && desc[0] == '\'' && desc[len(desc)-1] == '\''
}

// Lit matches literal text.
func Lit(s string) Expr { return lit(s) }

type lit string

func (l lit) match(p *parser, pos int) (int, bool) {
	if strings.HasPrefix(p.text[pos:], string(l)) {
		return pos + len(l), true
	}
	p.want(pos, "'"+string(l)+"'")
	return -1, false
}

// Kw matches a keyword: literal text not followed by an identifier rune.
func Kw(s string) Expr { return kw(s) }

type kw string

func (k kw) match(p *parser, pos int) (int, bool) {
	if strings.HasPrefix(p.text[pos:], string(k)) {
		end := pos + len(k)
		if end == len(p.text) {
			return end, true
		}
		if r, _ := peg.DecodeRuneInString(p.text[end:]); !IsIdentRune(r) && r != '?' && r != '\'' {
			return end, true
		}
	}
	p.want(pos, "'"+string(k)+"'")
	return -1, false
}

// IsIdentRune returns whether r may continue an identifier.
func IsIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Class matches a single rune for which f returns true.
// The name describes the class in expectations.
func Class(name string, f func(rune) bool) Expr { return class{name: name, f: f} }

type class struct {
	name string
	f    func(rune) bool
}

func (c class) match(p *parser, pos int) (int, bool) {
	if pos < len(p.text) {
		if r, w := peg.DecodeRuneInString(p.text[pos:]); c.f(r) {
			return pos + w, true
		}
	}
	p.want(pos, c.name)
	return -1, false
}

// Any matches any single rune.
var Any Expr = class{name: "any character", f: func(rune) bool { return true }}

// EOI matches the end of the input.
var EOI Expr = eoi{}

type eoi struct{}

func (eoi) match(p *parser, pos int) (int, bool) {
	if pos == len(p.text) {
		return pos, true
	}
	p.want(pos, "EOI")
	return -1, false
}

// SOI matches the start of the input.
// Leading whitespace is skipped after it like any sequence element.
var SOI Expr = soi{}

type soi struct{}

func (soi) match(p *parser, pos int) (int, bool) { return pos, pos == 0 }

// Adjacent matches the empty string
// if it is not preceded by whitespace.
var Adjacent Expr = adjacent{}

type adjacent struct{}

func (adjacent) match(p *parser, pos int) (int, bool) {
	if pos == 0 {
		return pos, false
	}
	switch p.text[pos-1] {
	case ' ', '\t', '\r', '\n':
		return pos, false
	}
	return pos, true
}

// Ref matches the named rule.
func Ref(name string) Expr { return &ref{name: name} }

type ref struct {
	name string
	rule *Rule
}

func (r *ref) match(p *parser, pos int) (int, bool) { return p.call(r.rule, pos) }

// Seq matches each expression in order.
func Seq(es ...Expr) Expr { return seq(es) }

type seq []Expr

func (s seq) match(p *parser, pos int) (int, bool) {
	for i, e := range s {
		next := pos
		if i > 0 {
			next = p.skip(pos)
		}
		end, ok := e.match(p, next)
		if !ok {
			return -1, false
		}
		// Skipped text is not consumed by an empty match,
		// so trailing whitespace is outside of the rule.
		if end > next {
			pos = end
		}
	}
	return pos, true
}

// Choice matches the first matching expression.
func Choice(es ...Expr) Expr { return choice(es) }

type choice []Expr

func (c choice) match(p *parser, pos int) (int, bool) {
	mark := len(p.nodes)
	for _, e := range c {
		if end, ok := e.match(p, pos); ok {
			return end, true
		}
		p.nodes = p.nodes[:mark]
	}
	return -1, false
}

// Star matches zero or more repetitions.
func Star(e Expr) Expr { return star{e} }

type star struct{ e Expr }

func (s star) match(p *parser, pos int) (int, bool) { return p.repeat(s.e, pos, true), true }

// Plus matches one or more repetitions.
func Plus(e Expr) Expr { return plus{e} }

type plus struct{ e Expr }

func (s plus) match(p *parser, pos int) (int, bool) {
	end, ok := s.e.match(p, pos)
	if !ok {
		return -1, false
	}
	return p.repeat(s.e, end, false), true
}

func (p *parser) repeat(e Expr, pos int, first bool) int {
	for {
		mark := len(p.nodes)
		next := pos
		if !first {
			next = p.skip(pos)
		}
		first = false
		end, ok := e.match(p, next)
		if !ok || end == next {
			p.nodes = p.nodes[:mark]
			return pos
		}
		pos = end
	}
}

// Opt matches zero or one occurrence.
func Opt(e Expr) Expr { return opt{e} }

type opt struct{ e Expr }

func (o opt) match(p *parser, pos int) (int, bool) {
	mark := len(p.nodes)
	if end, ok := o.e.match(p, pos); ok {
		return end, true
	}
	p.nodes = p.nodes[:mark]
	return pos, true
}

// Not matches the empty string if e does not match.
func Not(e Expr) Expr { return not{e} }

type not struct{ e Expr }

func (n not) match(p *parser, pos int) (int, bool) {
	mark := len(p.nodes)
	p.neg++
	_, ok := n.e.match(p, pos)
	p.neg--
	p.nodes = p.nodes[:mark]
	if ok {
		return -1, false
	}
	return pos, true
}

// And matches the empty string if e matches.
func And(e Expr) Expr { return and{e} }

type and struct{ e Expr }

func (a and) match(p *parser, pos int) (int, bool) {
	mark := len(p.nodes)
	_, ok := a.e.match(p, pos)
	p.nodes = p.nodes[:mark]
	return pos, ok
}
