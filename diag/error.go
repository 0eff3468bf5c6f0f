// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package diag has the parse-time error taxonomy
// and builds diagnostics from grammar mismatches.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eaburns/borf/loc"
	"github.com/eaburns/peggy/peg"
)

// A Kind is a kind of parse error.
type Kind int

// The kinds of parse errors.
const (
	Io Kind = iota
	SyntaxError
	EmptyInput
	ValueError
	UnexpectedToken
	MissingToken
	MissingNode
	UnexpectedRule
	InvalidLiteral
	InvalidMapKey
	InvalidMapPatternKey
	InvalidTypePattern
	LegacyComma
	MultipleErrors
	Unexpected
)

var kindNames = [...]string{
	Io:                   "Io",
	SyntaxError:          "SyntaxError",
	EmptyInput:           "EmptyInput",
	ValueError:           "ValueError",
	UnexpectedToken:      "UnexpectedToken",
	MissingToken:         "MissingToken",
	MissingNode:          "MissingNode",
	UnexpectedRule:       "UnexpectedRule",
	InvalidLiteral:       "InvalidLiteral",
	InvalidMapKey:        "InvalidMapKey",
	InvalidMapPatternKey: "InvalidMapPatternKey",
	InvalidTypePattern:   "InvalidTypePattern",
	LegacyComma:          "LegacyComma",
	MultipleErrors:       "MultipleErrors",
	Unexpected:           "Unexpected",
}

var kindCodes = [...]string{
	Io:                   "io",
	SyntaxError:          "syntax_error",
	EmptyInput:           "empty_input",
	ValueError:           "value_error",
	UnexpectedToken:      "unexpected_token",
	MissingToken:         "missing_token",
	MissingNode:          "missing_node",
	UnexpectedRule:       "unexpected_rule",
	InvalidLiteral:       "invalid_literal",
	InvalidMapKey:        "invalid_map_key",
	InvalidMapPatternKey: "invalid_map_pattern_key",
	InvalidTypePattern:   "invalid_type_pattern",
	LegacyComma:          "legacy_comma",
	MultipleErrors:       "multiple_errors",
	Unexpected:           "unexpected",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Code returns the machine-readable code of the Kind.
func (k Kind) Code() string {
	if k < 0 || int(k) >= len(kindCodes) {
		return "borf::parser::unknown"
	}
	return "borf::parser::" + kindCodes[k]
}

// Recoverable returns whether an interactive session
// may keep going after an error of this Kind.
func (k Kind) Recoverable() bool {
	return k == SyntaxError || k == UnexpectedToken || k == MissingToken
}

// An Error is a parse error.
type Error struct {
	Kind Kind
	// Msg is a one-line description of the error.
	Msg string

	// Path is the source name, or "" if unnamed.
	Path string
	// Text is the source text.
	Text string
	// Span is the byte range of the offending text.
	Span loc.Range
	// Line and Col are the 1-based line and rune column of Span[0].
	Line, Col int

	// Expected and Found describe the mismatch
	// of UnexpectedToken and MissingToken errors.
	Expected string
	Found    string
	// AtEOF is whether the error is at the end of the input.
	AtEOF bool

	// Help is a human-readable hint.
	Help string
	// Suggestion is a single-line fix, or "".
	Suggestion string

	// Errors are the errors of a MultipleErrors.
	Errors []*Error

	// Err is the cause of an Io error.
	Err error

	fail *peg.Fail
}

// New returns a new Error of the given kind for a span of the file.
func New(kind Kind, f *loc.File, span loc.Range, msg string) *Error {
	e := &Error{Kind: kind, Msg: msg, Span: span, Line: 1, Col: 1}
	if f != nil {
		e.Path = f.Path
		e.Text = f.Text
		e.Line, e.Col = f.LineCol(span[0])
	}
	return e
}

// Newf is like New, but with a formatted message.
func Newf(kind Kind, f *loc.File, span loc.Range, format string, args ...interface{}) *Error {
	return New(kind, f, span, fmt.Sprintf(format, args...))
}

// IoError returns a new Io Error for a failure to read the named source.
func IoError(path string, err error) *Error {
	return &Error{Kind: Io, Msg: err.Error(), Path: path, Err: err}
}

// Join returns a single error for the errors:
// nil if there are none, the error itself if there is one,
// and otherwise a MultipleErrors.
func Join(errs []*Error) *Error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	sorted := append([]*Error(nil), errs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span[0] < sorted[j].Span[0] })
	first := sorted[0]
	return &Error{
		Kind:   MultipleErrors,
		Msg:    fmt.Sprintf("%d errors", len(sorted)),
		Path:   first.Path,
		Text:   first.Text,
		Span:   first.Span,
		Line:   first.Line,
		Col:    first.Col,
		Errors: sorted,
	}
}

// Loc returns the location of the error.
func (e *Error) Loc() loc.Loc {
	return loc.Loc{Path: e.Path, Range: e.Span, Line: e.Line, Col: e.Col}
}

// Recoverable returns whether the error is of a recoverable Kind.
func (e *Error) Recoverable() bool { return e.Kind.Recoverable() }

// Unwrap returns the cause of an Io error.
func (e *Error) Unwrap() error { return e.Err }

// Tree returns the grammar failure tree, if any.
func (e *Error) Tree() *peg.Fail { return e.fail }

func (e *Error) Error() string {
	switch {
	case e.Kind == MultipleErrors:
		var s strings.Builder
		s.WriteString(e.Msg)
		for _, err := range e.Errors {
			s.WriteString("\n\t")
			s.WriteString(strings.Replace(err.Error(), "\n", "\n\t", -1))
		}
		return s.String()
	case e.Kind == Io:
		if e.Path == "" {
			return e.Msg
		}
		return e.Path + ": " + e.Msg
	default:
		return e.Loc().String() + ": " + e.Msg
	}
}
