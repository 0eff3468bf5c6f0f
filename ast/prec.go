package ast

import (
	"fmt"
	"strings"

	"github.com/eaburns/borf/diag"
	"github.com/eaburns/borf/loc"
)

// An item is an element of a flat operator expression:
// a prefix operator, an infix operator, or an operand.
type item struct {
	span loc.Range
	text string

	// op is OpNone for operands and for the unquote prefix.
	op      Op
	prefix  bool
	unquote bool

	// expr is the operand, or nil if the operand is malformed.
	expr Expr
	// err is the error of a malformed operand.
	err error
}

func (it item) operand() bool { return !it.prefix && it.op == OpNone }

// climb builds an operator tree from the items
// using precedence climbing.
// The range is the range of the entire operator expression.
func (b *builder) climb(items []item, r loc.Range) (Expr, error) {
	p := &climber{b: b, items: items, r: r}
	x, _, err := p.expr(0)
	if err != nil {
		return nil, err
	}
	if p.i < len(p.items) {
		it := p.items[p.i]
		return nil, diag.Newf(diag.Unexpected, b.file, it.span, "unexpected %q in operator expression", it.text)
	}
	return x, nil
}

type climber struct {
	b     *builder
	items []item
	r     loc.Range
	i     int
}

func (p *climber) expr(min int) (Expr, loc.Range, error) {
	lhs, lr, err := p.unary()
	if err != nil {
		return nil, lr, err
	}
	for p.i < len(p.items) {
		it := p.items[p.i]
		if it.prefix || it.operand() {
			break
		}
		lp, right := prec(it.op)
		if lp < min {
			break
		}
		p.i++
		rp := lp + 1
		if right {
			rp = lp
		}
		rhs, rr, err := p.expr(rp)
		if err != nil {
			return nil, lr, err
		}
		lr = loc.Range{lr[0], rr[1]}
		lhs = &Binary{location: p.b.loc(lr), Op: it.op, Left: lhs, Right: rhs}
	}
	return lhs, lr, nil
}

func (p *climber) unary() (Expr, loc.Range, error) {
	if p.i >= len(p.items) || !p.items[p.i].prefix && !p.items[p.i].operand() {
		return p.missing()
	}
	it := p.items[p.i]
	p.i++
	if it.prefix {
		x, xr, err := p.expr(prefixPrec)
		if err != nil {
			return nil, xr, err
		}
		r := loc.Range{it.span[0], xr[1]}
		if it.unquote {
			return &Unquote{location: p.b.loc(r), Expr: x}, r, nil
		}
		return &Unary{location: p.b.loc(r), Op: it.op, Operand: x}, r, nil
	}
	if it.err != nil {
		if err := p.b.recover(it.err); err != nil {
			return nil, it.span, err
		}
		return &Placeholder{location: p.b.loc(it.span)}, it.span, nil
	}
	return it.expr, it.span, nil
}

// missing handles a missing operand.
func (p *climber) missing() (Expr, loc.Range, error) {
	at := p.r[0]
	var after string
	if p.i > 0 {
		prev := p.items[p.i-1]
		at = prev.span[1]
		after = " after '" + prev.text + "'"
	}
	r := loc.Range{at, at}
	text := p.b.file.Text[p.r[0]:at]
	e := diag.Newf(diag.SyntaxError, p.b.file, r, "expected an expression%s in %q", after, context(text))
	e.Expected = "an expression"
	e.Found = "nothing"
	if p.i < len(p.items) {
		e.Found = "'" + p.items[p.i].text + "'"
	}
	e.Help = "An operator must be followed by its operand."
	if err := p.b.recover(e); err != nil {
		return nil, r, err
	}
	return &Placeholder{location: p.b.loc(r)}, r, nil
}

// context returns the partially built expression text,
// trimmed to a single line.
func context(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[i+1:])
	}
	return fmt.Sprintf("%s …", text)
}
