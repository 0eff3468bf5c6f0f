package eval

import "github.com/eaburns/borf/ast"

// Bind matches a value against a pattern.
// On a match it adds the pattern's variables to binds.
// On a mismatch it returns false and binds is unchanged.
func Bind(p ast.Pattern, v Value, binds map[string]Value) bool {
	tmp := make(map[string]Value)
	if !bind(p, v, tmp) {
		return false
	}
	for n, v := range tmp {
		binds[n] = v
	}
	return true
}

func bind(p ast.Pattern, v Value, binds map[string]Value) bool {
	switch p := p.(type) {
	case *ast.VarPat:
		binds[p.Name] = v
		return true
	case *ast.WildPat:
		return true
	case *ast.AnnotPat:
		return bind(p.Pattern, v, binds)
	case *ast.LitPat:
		return matchLit(p.Lit, v)
	case *ast.ListPat:
		l, ok := v.(*List)
		if !ok || len(l.Elems) != len(p.Elems) {
			return false
		}
		for i, e := range p.Elems {
			if !bind(e, l.Elems[i], binds) {
				return false
			}
		}
		return true
	case *ast.SetPat:
		s, ok := v.(*Set)
		if !ok || s.Len() != len(p.Elems) {
			return false
		}
		return bindSet(p.Elems, s.Elems(), make([]bool, s.Len()), binds)
	case *ast.MapPat:
		m, ok := v.(*Map)
		if !ok || m.Len() != len(p.Entries) {
			return false
		}
		for _, e := range p.Entries {
			x, ok := m.Get(String(e.Key))
			if !ok {
				x, ok = m.Get(Symbol(e.Key))
			}
			if !ok || !bind(e.Pattern, x, binds) {
				return false
			}
		}
		return true
	}
	return false
}

func matchLit(lit ast.Lit, v Value) bool {
	switch lit := lit.(type) {
	case *ast.Int:
		x, ok := v.(Int)
		return ok && int64(x) == lit.Val
	case *ast.Float:
		x, ok := v.(Float)
		return ok && float64(x) == lit.Val
	case *ast.String:
		x, ok := v.(String)
		return ok && string(x) == lit.Data
	case *ast.Bool:
		x, ok := v.(Bool)
		return ok && bool(x) == lit.Val
	}
	return false
}

// bindSet matches each pattern to a distinct unused element,
// trying elements in order and backtracking on failure.
func bindSet(pats []ast.Pattern, elems []Value, used []bool, binds map[string]Value) bool {
	if len(pats) == 0 {
		return true
	}
	for i, e := range elems {
		if used[i] {
			continue
		}
		tmp := make(map[string]Value, len(binds))
		for n, v := range binds {
			tmp[n] = v
		}
		if !bind(pats[0], e, tmp) {
			continue
		}
		used[i] = true
		if bindSet(pats[1:], elems, used, tmp) {
			for n, v := range tmp {
				binds[n] = v
			}
			return true
		}
		used[i] = false
	}
	return false
}
