package eval

import (
	"fmt"
	"strings"

	"github.com/eaburns/borf/loc"
)

// An ErrorKind classifies an evaluation error.
type ErrorKind int

// The kinds of evaluation errors.
const (
	UnboundVariable ErrorKind = iota
	TypeError
	ArityMismatch
	NotAFunction
	DivisionByZero
	InvalidArguments
	PatternMatchFailed
	CannotSetUndefined
	InvalidOperation
	QuasiquoteError
	HashingError
	ComplexTypeMismatch
	numErrorKinds
)

var errorKindNames = [numErrorKinds]string{
	UnboundVariable:     "UnboundVariable",
	TypeError:           "TypeError",
	ArityMismatch:       "ArityMismatch",
	NotAFunction:        "NotAFunction",
	DivisionByZero:      "DivisionByZero",
	InvalidArguments:    "InvalidArguments",
	PatternMatchFailed:  "PatternMatchFailed",
	CannotSetUndefined:  "CannotSetUndefined",
	InvalidOperation:    "InvalidOperation",
	QuasiquoteError:     "QuasiquoteError",
	HashingError:        "HashingError",
	ComplexTypeMismatch: "ComplexTypeMismatch",
}

func (k ErrorKind) String() string {
	if k < 0 || k >= numErrorKinds {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// An Error is an evaluation error.
type Error struct {
	Kind ErrorKind
	// Loc is the location of the innermost expression
	// whose evaluation failed, or nil if unknown.
	Loc   *loc.Loc
	Msg   string
	Notes []string
}

func errorf(kind ErrorKind, f string, vs ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(f, vs...)}
}

func note(err *Error, f string, vs ...interface{}) {
	err.Notes = append(err.Notes, fmt.Sprintf(f, vs...))
}

func (err *Error) Error() string {
	var s strings.Builder
	if err.Loc != nil {
		s.WriteString(err.Loc.String())
		s.WriteString(": ")
	}
	s.WriteString(err.Msg)
	for _, n := range err.Notes {
		s.WriteString("\n\t")
		s.WriteString(n)
	}
	return s.String()
}

func typeError(want string, got Value) *Error {
	return errorf(TypeError, "expected %s, found %s (%s)", want, TypeName(got), got)
}

func hashError(v Value) *Error {
	return errorf(HashingError, "cannot use %s of type %s as a key", v, TypeName(v))
}
