package loc

import "testing"

func TestLoc(t *testing.T) {
	const text = "ab\ncdé f\n\nxyz"
	f := NewFile("test.borf", text)
	tests := []struct {
		r    Range
		want string
	}{
		{r: Range{0, 0}, want: "test.borf:1.1"},
		{r: Range{1, 2}, want: "test.borf:1.2"},
		{r: Range{2, 3}, want: "test.borf:1.3"},
		{r: Range{3, 4}, want: "test.borf:2.1"},
		// é is two bytes, but one column.
		{r: Range{8, 9}, want: "test.borf:2.5"},
		{r: Range{10, 10}, want: "test.borf:3.1"},
		{r: Range{11, 14}, want: "test.borf:4.1"},
		{r: Range{14, 14}, want: "test.borf:4.4"},
	}
	for _, test := range tests {
		l := f.Loc(test.r)
		if l == nil {
			t.Errorf("Loc(%v)=nil, want %s", test.r, test.want)
			continue
		}
		if got := l.String(); got != test.want {
			t.Errorf("Loc(%v)=%s, want %s", test.r, got, test.want)
		}
		if l.Range != test.r {
			t.Errorf("Loc(%v).Range=%v", test.r, l.Range)
		}
	}
}

func TestLocOutOfRange(t *testing.T) {
	f := NewFile("", "abc")
	for _, r := range []Range{{-1, 0}, {0, 4}, {2, 1}} {
		if l := f.Loc(r); l != nil {
			t.Errorf("Loc(%v)=%v, want nil", r, l)
		}
	}
	var nilFile *File
	if l := nilFile.Loc(Range{0, 0}); l != nil {
		t.Errorf("nil File Loc=%v, want nil", l)
	}
}

func TestLine(t *testing.T) {
	f := NewFile("", "one\r\ntwo\n\nfour\n")
	want := []string{"one", "two", "", "four", ""}
	if n := f.NumLines(); n != len(want) {
		t.Fatalf("NumLines()=%d, want %d", n, len(want))
	}
	for i, w := range want {
		if got := f.Line(i + 1); got != w {
			t.Errorf("Line(%d)=%q, want %q", i+1, got, w)
		}
	}
	if got := f.Line(0); got != "" {
		t.Errorf("Line(0)=%q, want empty", got)
	}
	if got := f.Line(100); got != "" {
		t.Errorf("Line(100)=%q, want empty", got)
	}
}

func TestLocNoPath(t *testing.T) {
	f := NewFile("", "x")
	if got := f.Loc(Range{0, 1}).String(); got != "1.1" {
		t.Errorf("got %s, want 1.1", got)
	}
}
