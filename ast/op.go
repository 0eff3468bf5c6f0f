package ast

// An Op is an interned operator.
type Op int

// The operators, from lowest to highest precedence level.
const (
	OpNone Op = iota
	OpColon
	OpOr
	OpAnd
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNot
	OpNeg
	OpPipe
	NumOps
)

var opSymbols = [NumOps]string{
	OpColon: ":",
	OpOr:    "or",
	OpAnd:   "and",
	OpEq:    "==",
	OpNe:    "!=",
	OpLt:    "<",
	OpGt:    ">",
	OpLe:    "<=",
	OpGe:    ">=",
	OpAdd:   "+",
	OpSub:   "-",
	OpMul:   "*",
	OpDiv:   "/",
	OpNot:   "!",
	OpNeg:   "-",
	OpPipe:  "|>",
}

// String returns the source symbol of the operator.
func (op Op) String() string {
	if op <= OpNone || op >= NumOps {
		return "?"
	}
	return opSymbols[op]
}

// Name returns the name bound to the operator's function.
// It differs from the symbol only for the prefix operators.
func (op Op) Name() string {
	switch op {
	case OpNot:
		return "not"
	case OpNeg:
		return "neg"
	}
	return op.String()
}

// Prefix returns whether the operator is a prefix operator.
func (op Op) Prefix() bool { return op == OpNot || op == OpNeg }

// Infix returns the infix operator with the given symbol, or OpNone.
func Infix(sym string) Op {
	switch sym {
	case ":":
		return OpColon
	case "or":
		return OpOr
	case "and":
		return OpAnd
	case "==":
		return OpEq
	case "!=":
		return OpNe
	case "<":
		return OpLt
	case ">":
		return OpGt
	case "<=":
		return OpLe
	case ">=":
		return OpGe
	case "+":
		return OpAdd
	case "-":
		return OpSub
	case "*":
		return OpMul
	case "/":
		return OpDiv
	case "|>":
		return OpPipe
	}
	return OpNone
}

// Infix operator binding power and associativity.
const (
	colonPrec = 10 * (iota + 1)
	orPrec
	andPrec
	cmpPrec
	addPrec
	mulPrec
	prefixPrec
	pipePrec
)

// prec returns the precedence of an infix operator
// and whether it is right-associative.
func prec(op Op) (int, bool) {
	switch op {
	case OpColon:
		return colonPrec, false
	case OpOr:
		return orPrec, false
	case OpAnd:
		return andPrec, false
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return cmpPrec, false
	case OpAdd, OpSub:
		return addPrec, false
	case OpMul, OpDiv:
		return mulPrec, false
	case OpPipe:
		return pipePrec, true
	}
	return 0, false
}
