package eval

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/eaburns/borf/ast"
)

// A Value is a runtime value.
type Value interface {
	String() string
	isValue()
}

// An Int is a 64-bit signed integer.
type Int int64

// A Float is a 64-bit floating point number.
type Float float64

// A String is a string of UTF-8 text.
type String string

// A Bool is a boolean.
type Bool bool

// A Symbol is a name as data.
// Symbols are distinct from strings.
type Symbol string

// A Module is the result of evaluating a module.
type Module string

// Null is the null value.
type Null struct{}

// Void is the absence of a value.
type Void struct{}

// A List is an ordered sequence of values.
type List struct {
	Elems []Value
}

// A Quote is an unevaluated expression.
type Quote struct {
	Expr ast.Expr
}

// A Closure is a function value.
type Closure struct {
	Parms []ast.Pattern
	Body  ast.Expr
	// Env is the frame in which the closure was created.
	Env Env
	// Name is the declared name of the function, or "" for a lambda.
	Name string
}

// A Native is a primitive function.
type Native struct {
	Name string
	// Arity is the number of arguments, or -1 if variadic.
	Arity int
	fn    func(in *Interp, env Env, args []Value) (Value, error)
}

func (Int) isValue()      {}
func (Float) isValue()    {}
func (String) isValue()   {}
func (Bool) isValue()     {}
func (Symbol) isValue()   {}
func (Module) isValue()   {}
func (Null) isValue()     {}
func (Void) isValue()     {}
func (*List) isValue()    {}
func (*Map) isValue()     {}
func (*Set) isValue()     {}
func (*Quote) isValue()   {}
func (*Closure) isValue() {}
func (*Native) isValue()  {}

func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }

func (v Float) String() string {
	switch f := float64(v); {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return ast.FloatString(f)
	}
}

func (v String) String() string  { return strconv.Quote(string(v)) }
func (v Bool) String() string    { return strconv.FormatBool(bool(v)) }
func (v Symbol) String() string  { return string(v) }
func (v Module) String() string  { return "<module:" + string(v) + ">" }
func (Null) String() string      { return "null" }
func (Void) String() string      { return "void" }
func (*Closure) String() string  { return "<function>" }
func (v *Native) String() string { return "<native " + v.Name + ">" }
func (v *Quote) String() string  { return "'" + ast.Format(v.Expr) }

func (v *List) String() string {
	var s strings.Builder
	s.WriteRune('[')
	for i, e := range v.Elems {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(e.String())
	}
	s.WriteRune(']')
	return s.String()
}

// A MapEntry is a key/value pair of a Map.
type MapEntry struct {
	Key, Val Value
}

// A Map maps hashable keys to values.
// Entries are kept in insertion order.
type Map struct {
	entries []MapEntry
	index   map[string]int
}

// NewMap returns a new, empty Map.
func NewMap() *Map { return &Map{index: make(map[string]int)} }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns the entries in insertion order.
// The returned slice must not be modified.
func (m *Map) Entries() []MapEntry { return m.entries }

// Put sets the value of a key.
// It is a HashingError if the key is not Hashable.
func (m *Map) Put(k, v Value) error {
	h, ok := hashKey(k)
	if !ok {
		return hashError(k)
	}
	if i, ok := m.index[h]; ok {
		m.entries[i].Val = v
		return nil
	}
	m.index[h] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: k, Val: v})
	return nil
}

// Get returns the value of a key.
func (m *Map) Get(k Value) (Value, bool) {
	h, ok := hashKey(k)
	if !ok {
		return nil, false
	}
	i, ok := m.index[h]
	if !ok {
		return nil, false
	}
	return m.entries[i].Val, true
}

func (m *Map) String() string {
	var s strings.Builder
	s.WriteRune('{')
	for i, e := range m.entries {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(e.Key.String())
		s.WriteString(": ")
		s.WriteString(e.Val.String())
	}
	s.WriteRune('}')
	return s.String()
}

// A Set is a set of hashable values.
// Elements are kept in insertion order.
type Set struct {
	elems []Value
	index map[string]int
}

// NewSet returns a new, empty Set.
func NewSet() *Set { return &Set{index: make(map[string]int)} }

// Len returns the number of elements.
func (s *Set) Len() int { return len(s.elems) }

// Elems returns the elements in insertion order.
// The returned slice must not be modified.
func (s *Set) Elems() []Value { return s.elems }

// Add adds an element.
// It is a HashingError if the element is not Hashable.
func (s *Set) Add(v Value) error {
	h, ok := hashKey(v)
	if !ok {
		return hashError(v)
	}
	if _, ok := s.index[h]; !ok {
		s.index[h] = len(s.elems)
		s.elems = append(s.elems, v)
	}
	return nil
}

// Has returns whether the value is an element.
func (s *Set) Has(v Value) bool {
	h, ok := hashKey(v)
	if !ok {
		return false
	}
	_, ok = s.index[h]
	return ok
}

func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("#{")
	for i, e := range s.elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteRune('}')
	return b.String()
}

// TypeName returns the name of the type of a value.
func TypeName(v Value) string {
	switch v.(type) {
	case Int:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Bool:
		return "Boolean"
	case Symbol:
		return "Symbol"
	case *List:
		return "List"
	case *Map:
		return "Map"
	case *Set:
		return "Set"
	case *Closure, *Native:
		return "Function"
	case Module:
		return "Module"
	case *Quote:
		return "Quote"
	case Null:
		return "Null"
	case Void:
		return "Void"
	}
	return "Unknown"
}

// Hashable returns whether the value can be a Map key or Set element.
func Hashable(v Value) bool {
	_, ok := hashKey(v)
	return ok
}

// hashKey returns a string that is the same for equal hashable values.
// Collections are hashed independent of their entry order.
func hashKey(v Value) (string, bool) {
	var s strings.Builder
	if !buildHashKey(v, &s) {
		return "", false
	}
	return s.String(), true
}

func buildHashKey(v Value, s *strings.Builder) bool {
	switch v := v.(type) {
	case Int:
		s.WriteString("i" + v.String())
	case Float:
		f := float64(v)
		if f == 0 {
			f = 0 // -0
		}
		if i, ok := integral(f); ok {
			// Equal to the Int.
			s.WriteString("i" + strconv.FormatInt(i, 10))
		} else if math.IsNaN(f) {
			s.WriteString("fNaN")
		} else {
			s.WriteString("f" + strconv.FormatFloat(f, 'g', -1, 64))
		}
	case String:
		s.WriteString("s" + strconv.Quote(string(v)))
	case Symbol:
		s.WriteString("y" + strconv.Quote(string(v)))
	case Bool:
		s.WriteString("b" + v.String())
	case Null:
		s.WriteString("n")
	case Void:
		s.WriteString("v")
	case *List:
		s.WriteRune('[')
		for _, e := range v.Elems {
			if !buildHashKey(e, s) {
				return false
			}
			s.WriteRune(',')
		}
		s.WriteRune(']')
	case *Map:
		var keys []string
		for _, e := range v.entries {
			var b strings.Builder
			if !buildHashKey(e.Key, &b) {
				return false
			}
			b.WriteRune(':')
			if !buildHashKey(e.Val, &b) {
				return false
			}
			keys = append(keys, b.String())
		}
		sort.Strings(keys)
		s.WriteString("{" + strings.Join(keys, ",") + "}")
	case *Set:
		keys := make([]string, 0, len(v.index))
		for k := range v.index {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s.WriteString("#{" + strings.Join(keys, ",") + "}")
	default:
		return false
	}
	return true
}

// integral returns f as an int64 if it has an exact int64 value.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// Equal returns whether two values are equal.
// Integers and floats compare by numeric value.
// Closures are equal if their parameters and bodies are equal,
// regardless of their environments.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Int:
		switch b := b.(type) {
		case Int:
			return a == b
		case Float:
			i, ok := integral(float64(b))
			return ok && i == int64(a)
		}
	case Float:
		switch b := b.(type) {
		case Int:
			i, ok := integral(float64(a))
			return ok && i == int64(b)
		case Float:
			return a == b || math.IsNaN(float64(a)) && math.IsNaN(float64(b))
		}
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case *Map:
		b, ok := b.(*Map)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for _, e := range a.entries {
			v, ok := b.Get(e.Key)
			if !ok || !Equal(e.Val, v) {
				return false
			}
		}
		return true
	case *Set:
		b, ok := b.(*Set)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for h := range a.index {
			if _, ok := b.index[h]; !ok {
				return false
			}
		}
		return true
	case *Closure:
		b, ok := b.(*Closure)
		if !ok || len(a.Parms) != len(b.Parms) || !ast.Equal(a.Body, b.Body) {
			return false
		}
		for i := range a.Parms {
			if !ast.Equal(a.Parms[i], b.Parms[i]) {
				return false
			}
		}
		return true
	case *Native:
		b, ok := b.(*Native)
		return ok && a.Name == b.Name
	case *Quote:
		b, ok := b.(*Quote)
		return ok && ast.Equal(a.Expr, b.Expr)
	default:
		return a == b
	}
	return false
}
