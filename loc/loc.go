// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package loc has routines for tracking source locations.
package loc

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// A Range is a start and end byte offset.
type Range [2]int

// GetRange returns itself.
// This is useful so than Range can be embedded in a struct
// and that struct can implement interface{GetRange() Range}.
func (r Range) GetRange() Range { return r }

// Len returns the number of bytes in the Range.
func (r Range) Len() int { return r[1] - r[0] }

// A Loc describes a source location.
// Line and Col are 1-based and refer to the start of the Range;
// Col counts runes, not bytes.
type Loc struct {
	Path  string
	Range Range
	Line  int
	Col   int
}

func (l Loc) String() string {
	if l.Path == "" {
		return fmt.Sprintf("%d.%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d.%d", l.Path, l.Line, l.Col)
}

// A File is the text of a single source, with its line offsets.
type File struct {
	Path string
	Text string
	// lines[i] is the byte offset of the start of line i+1.
	lines []int
}

// NewFile returns a new File for the given path and text.
// The path is only used for display; it may be empty.
func NewFile(path, text string) *File {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &File{Path: path, Text: text, lines: lines}
}

// Loc returns the Loc of a Range in the File.
// It returns nil if the Range is not within the File.
func (f *File) Loc(r Range) *Loc {
	if f == nil || r[0] < 0 || r[1] > len(f.Text) || r[0] > r[1] {
		return nil
	}
	line, col := f.LineCol(r[0])
	return &Loc{Path: f.Path, Range: r, Line: line, Col: col}
}

// LineCol returns the 1-based line and rune column of a byte offset.
// Offsets past the end of the text are clamped to the end.
func (f *File) LineCol(p int) (int, int) {
	if p > len(f.Text) {
		p = len(f.Text)
	}
	if p < 0 {
		p = 0
	}
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > p }) - 1
	return i + 1, utf8.RuneCountInString(f.Text[f.lines[i]:p]) + 1
}

// NumLines returns the number of lines in the File.
// A trailing newline begins a final, empty line.
func (f *File) NumLines() int { return len(f.lines) }

// Line returns the text of a 1-based line without its newline.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	start := f.lines[n-1]
	end := len(f.Text)
	if n < len(f.lines) {
		end = f.lines[n] - 1
	}
	if end > start && f.Text[end-1] == '\r' {
		end--
	}
	return f.Text[start:end]
}
