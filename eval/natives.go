package eval

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// epsilon is the machine epsilon of a float64.
// Dividing by a float smaller in magnitude is a DivisionByZero.
const epsilon = 0x1p-52

func natives() []*Native {
	return []*Native{
		{Name: "+", Arity: 2, fn: add},
		{Name: "-", Arity: 2, fn: arith("-", sub, func(a, b float64) float64 { return a - b })},
		{Name: "*", Arity: 2, fn: arith("*", mul, func(a, b float64) float64 { return a * b })},
		{Name: "/", Arity: 2, fn: div},
		{Name: "mod", Arity: 2, fn: mod},
		{Name: "neg", Arity: 1, fn: neg},
		{Name: "==", Arity: 2, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
			return Bool(Equal(args[0], args[1])), nil
		}},
		{Name: "!=", Arity: 2, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
			return Bool(!Equal(args[0], args[1])), nil
		}},
		{Name: "<", Arity: 2, fn: compare(func(c int) bool { return c < 0 })},
		{Name: ">", Arity: 2, fn: compare(func(c int) bool { return c > 0 })},
		{Name: "<=", Arity: 2, fn: compare(func(c int) bool { return c <= 0 })},
		{Name: ">=", Arity: 2, fn: compare(func(c int) bool { return c >= 0 })},
		{Name: "and", Arity: 2, fn: logic(func(a, b bool) bool { return a && b })},
		{Name: "or", Arity: 2, fn: logic(func(a, b bool) bool { return a || b })},
		{Name: "not", Arity: 1, fn: not},
		{Name: "cons", Arity: 2, fn: cons},
		{Name: "car", Arity: 1, fn: car},
		{Name: "cdr", Arity: 1, fn: cdr},
		{Name: "list", Arity: -1, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
			return &List{Elems: append([]Value{}, args...)}, nil
		}},
		{Name: "typeof", Arity: 1, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
			return Symbol(TypeName(args[0])), nil
		}},
		{Name: "null?", Arity: 1, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
			switch v := args[0].(type) {
			case Null:
				return Bool(true), nil
			case *List:
				return Bool(len(v.Elems) == 0), nil
			}
			return Bool(false), nil
		}},
		{Name: "len", Arity: 1, fn: length},
		is("integer?", "Integer"),
		is("float?", "Float"),
		is("boolean?", "Boolean"),
		is("string?", "String"),
		is("symbol?", "Symbol"),
		is("list?", "List"),
		is("map?", "Map"),
		is("set?", "Set"),
		is("function?", "Function"),
		is("quote?", "Quote"),
		{Name: "primitive?", Arity: 1, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
			_, ok := args[0].(*Native)
			return Bool(ok), nil
		}},
		{Name: "print", Arity: -1, fn: printValues},
		{Name: "eval", Arity: 1, fn: evalNative},
		{Name: "set", Arity: 2, fn: set},
	}
}

// is returns a native that tests the type name of its argument.
func is(name, typ string) *Native {
	return &Native{Name: name, Arity: 1, fn: func(_ *Interp, _ Env, args []Value) (Value, error) {
		return Bool(TypeName(args[0]) == typ), nil
	}}
}

func add(_ *Interp, _ Env, args []Value) (Value, error) {
	switch a := args[0].(type) {
	case String:
		if b, ok := args[1].(String); ok {
			return a + b, nil
		}
	case *List:
		if b, ok := args[1].(*List); ok {
			elems := make([]Value, 0, len(a.Elems)+len(b.Elems))
			elems = append(elems, a.Elems...)
			return &List{Elems: append(elems, b.Elems...)}, nil
		}
	case *Map:
		if b, ok := args[1].(*Map); ok {
			m := NewMap()
			for _, e := range a.Entries() {
				m.Put(e.Key, e.Val)
			}
			for _, e := range b.Entries() {
				m.Put(e.Key, e.Val)
			}
			return m, nil
		}
	case *Set:
		if b, ok := args[1].(*Set); ok {
			s := NewSet()
			for _, e := range a.Elems() {
				s.Add(e)
			}
			for _, e := range b.Elems() {
				s.Add(e)
			}
			return s, nil
		}
	default:
		return arith("+", plus, func(a, b float64) float64 { return a + b })(nil, Env{}, args)
	}
	if isCollection(args[1]) || isNumber(args[1]) {
		return nil, errorf(ComplexTypeMismatch, "cannot add %s and %s", TypeName(args[0]), TypeName(args[1]))
	}
	return nil, typeError(TypeName(args[0]), args[1])
}

func isCollection(v Value) bool {
	switch v.(type) {
	case String, *List, *Map, *Set:
		return true
	}
	return false
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Int, Float:
		return true
	}
	return false
}

// arith returns a native for a binary arithmetic operator.
// Integer operands give an Integer;
// any Float operand gives a Float.
func arith(sym string, ints func(a, b int64) (int64, bool), floats func(a, b float64) float64) func(*Interp, Env, []Value) (Value, error) {
	return func(_ *Interp, _ Env, args []Value) (Value, error) {
		a, b := args[0], args[1]
		if !isNumber(a) {
			if isCollection(a) && isNumber(b) {
				return nil, errorf(ComplexTypeMismatch, "cannot apply %s to %s and %s", sym, TypeName(a), TypeName(b))
			}
			return nil, typeError("Number", a)
		}
		if !isNumber(b) {
			return nil, typeError("Number", b)
		}
		if x, ok := a.(Int); ok {
			if y, ok := b.(Int); ok {
				z, ok := ints(int64(x), int64(y))
				if !ok {
					return nil, errorf(InvalidOperation, "integer overflow: %s %s %s", x, sym, y)
				}
				return Int(z), nil
			}
		}
		return Float(floats(toFloat(a), toFloat(b))), nil
	}
}

func toFloat(v Value) float64 {
	switch v := v.(type) {
	case Int:
		return float64(v)
	case Float:
		return float64(v)
	}
	return math.NaN()
}

func plus(a, b int64) (int64, bool) {
	c := a + b
	return c, (c > a) == (b > 0)
}

func sub(a, b int64) (int64, bool) {
	c := a - b
	return c, (c < a) == (b > 0)
}

func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || c/b != a {
		return 0, false
	}
	return c, true
}

// div always gives a Float.
func div(_ *Interp, _ Env, args []Value) (Value, error) {
	a, b := args[0], args[1]
	if !isNumber(a) {
		return nil, typeError("Number", a)
	}
	switch y := b.(type) {
	case Int:
		if y == 0 {
			return nil, errorf(DivisionByZero, "division by zero")
		}
	case Float:
		if math.Abs(float64(y)) < epsilon {
			return nil, errorf(DivisionByZero, "division by zero")
		}
	default:
		return nil, typeError("Number", b)
	}
	return Float(toFloat(a) / toFloat(b)), nil
}

func mod(_ *Interp, _ Env, args []Value) (Value, error) {
	a, ok := args[0].(Int)
	if !ok {
		return nil, typeError("Integer", args[0])
	}
	b, ok := args[1].(Int)
	if !ok {
		return nil, typeError("Integer", args[1])
	}
	if b == 0 {
		return nil, errorf(DivisionByZero, "division by zero")
	}
	return a % b, nil
}

func neg(_ *Interp, _ Env, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case Int:
		if v == math.MinInt64 {
			return nil, errorf(InvalidOperation, "integer overflow: -%s", v)
		}
		return -v, nil
	case Float:
		return -v, nil
	}
	return nil, typeError("Number", args[0])
}

func compare(test func(int) bool) func(*Interp, Env, []Value) (Value, error) {
	return func(_ *Interp, _ Env, args []Value) (Value, error) {
		a, b := args[0], args[1]
		if x, ok := a.(String); ok {
			y, ok := b.(String)
			if !ok {
				return nil, typeError("String", b)
			}
			return Bool(test(strings.Compare(string(x), string(y)))), nil
		}
		if !isNumber(a) {
			return nil, typeError("Number or String", a)
		}
		if !isNumber(b) {
			return nil, typeError("Number", b)
		}
		if x, ok := a.(Int); ok {
			if y, ok := b.(Int); ok {
				switch {
				case x < y:
					return Bool(test(-1)), nil
				case x > y:
					return Bool(test(1)), nil
				}
				return Bool(test(0)), nil
			}
		}
		switch x, y := toFloat(a), toFloat(b); {
		case x < y:
			return Bool(test(-1)), nil
		case x > y:
			return Bool(test(1)), nil
		case x == y:
			return Bool(test(0)), nil
		}
		// NaN is unordered.
		return Bool(false), nil
	}
}

func logic(op func(a, b bool) bool) func(*Interp, Env, []Value) (Value, error) {
	return func(_ *Interp, _ Env, args []Value) (Value, error) {
		a, ok := args[0].(Bool)
		if !ok {
			return nil, typeError("Boolean", args[0])
		}
		b, ok := args[1].(Bool)
		if !ok {
			return nil, typeError("Boolean", args[1])
		}
		return Bool(op(bool(a), bool(b))), nil
	}
}

func not(_ *Interp, _ Env, args []Value) (Value, error) {
	b, ok := args[0].(Bool)
	if !ok {
		return nil, typeError("Boolean", args[0])
	}
	return !b, nil
}

func cons(_ *Interp, _ Env, args []Value) (Value, error) {
	l, ok := args[1].(*List)
	if !ok {
		return nil, typeError("List", args[1])
	}
	elems := make([]Value, 0, len(l.Elems)+1)
	elems = append(elems, args[0])
	return &List{Elems: append(elems, l.Elems...)}, nil
}

func car(_ *Interp, _ Env, args []Value) (Value, error) {
	l, ok := args[0].(*List)
	if !ok {
		return nil, typeError("List", args[0])
	}
	if len(l.Elems) == 0 {
		return nil, errorf(InvalidArguments, "car: empty list")
	}
	return l.Elems[0], nil
}

func cdr(_ *Interp, _ Env, args []Value) (Value, error) {
	l, ok := args[0].(*List)
	if !ok {
		return nil, typeError("List", args[0])
	}
	if len(l.Elems) == 0 {
		return nil, errorf(InvalidArguments, "cdr: empty list")
	}
	return &List{Elems: append([]Value{}, l.Elems[1:]...)}, nil
}

func length(_ *Interp, _ Env, args []Value) (Value, error) {
	switch v := args[0].(type) {
	case *List:
		return Int(len(v.Elems)), nil
	case String:
		return Int(utf8.RuneCountInString(string(v))), nil
	case *Map:
		return Int(v.Len()), nil
	case *Set:
		return Int(v.Len()), nil
	}
	return nil, typeError("List, String, Map, or Set", args[0])
}

// printValues writes its arguments separated by spaces.
// Strings are written without quotes.
func printValues(in *Interp, _ Env, args []Value) (Value, error) {
	var s strings.Builder
	for i, a := range args {
		if i > 0 {
			s.WriteRune(' ')
		}
		if str, ok := a.(String); ok {
			s.WriteString(string(str))
		} else {
			s.WriteString(a.String())
		}
	}
	s.WriteRune('\n')
	if _, err := fmt.Fprint(in.cfg.Stdout, s.String()); err != nil {
		return nil, errorf(InvalidOperation, "print: %s", err)
	}
	return Void{}, nil
}

func evalNative(in *Interp, env Env, args []Value) (Value, error) {
	x, err := code(args[0])
	if err != nil {
		return nil, err
	}
	return in.eval(x, env)
}

// set rebinds an existing variable named by a String or Symbol.
func set(_ *Interp, env Env, args []Value) (Value, error) {
	name, ok := keyName(args[0])
	if !ok {
		return nil, typeError("String or Symbol", args[0])
	}
	if err := env.Set(name, args[1]); err != nil {
		return nil, err
	}
	return args[1], nil
}
