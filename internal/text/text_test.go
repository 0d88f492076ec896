package text

import (
	"strings"
	"testing"
	"unicode/utf8"
)

const fox = "The <e1>quick</e1> brown fox"

func TestParseScenario(t *testing.T) {
	segs := Parse(fox, 80)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}

	want := []struct {
		raw, text     string
		opens, closes []string
		offset        int
		lineStart     int
	}{
		{"The ", "The ", nil, nil, 0, 0},
		{"<e1>quick", "quick", []string{"e1"}, nil, 4, 1},
		{"</e1> brown fox", " brown fox", nil, []string{"e1"}, 9, 2},
	}
	for i, w := range want {
		s := segs[i]
		if s.Raw != w.raw || s.Text != w.text {
			t.Errorf("segment %d: raw=%q text=%q, want raw=%q text=%q", i, s.Raw, s.Text, w.raw, w.text)
		}
		if got := markerTags(s.OpeningTags); !equalStrings(got, w.opens) {
			t.Errorf("segment %d: opening %v, want %v", i, got, w.opens)
		}
		if got := markerTags(s.ClosingTags); !equalStrings(got, w.closes) {
			t.Errorf("segment %d: closing %v, want %v", i, got, w.closes)
		}
		if s.Offset != w.offset || s.LineStart != w.lineStart || s.Index != i {
			t.Errorf("segment %d: offset=%d lineStart=%d index=%d", i, s.Offset, s.LineStart, s.Index)
		}
	}
}

func TestParseMalformedMarkupIsText(t *testing.T) {
	cases := []struct {
		in   string
		want string // plain text
	}{
		{"a < b > c", "a < b > c"},
		{"<a>unclosed", "<a>unclosed"},
		{"</b>stray<b>", "</b>stray<b>"},
		{"<bad id>x</bad id>", "<bad id>x</bad id>"},
		{"<>empty</>", "<>empty</>"},
		{"<a>ok</a> <b>", "ok <b>"},
		{"<x><y>nested</y></x>", "nested"},
		{"<a>cross<b>ing</a>tags</b>", "crossingtags"},
	}
	for _, tc := range cases {
		tx := New(tc.in, 80)
		if got := tx.Plain(); got != tc.want {
			t.Errorf("Plain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTrailingMarkup(t *testing.T) {
	segs := Parse("x<a>y</a>", 10)
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	last := segs[2]
	if last.Raw != "</a>" || last.Text != "" || len(last.ClosingTags) != 1 {
		t.Errorf("trailing segment = %+v", last)
	}
	if len(last.Lines) != 1 || last.Lines[0] != "" {
		t.Errorf("trailing segment lines = %q, want one empty line", last.Lines)
	}
}

func TestParseEmpty(t *testing.T) {
	if segs := Parse("", 10); len(segs) != 0 {
		t.Errorf("Parse(\"\") = %d segments, want 0", len(segs))
	}
	tx := New("", 10)
	if tx.NoLines() != 0 {
		t.Errorf("NoLines = %d, want 0", tx.NoLines())
	}
	if got := tx.IndexForCoordinate(Coord{X: 3, Y: 2}, true); got != 0 {
		t.Errorf("IndexForCoordinate on empty text = %d", got)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain only",
		fox,
		"<a></a>",
		"<a>x</a><b>y</b>",
		"trailing<a>x</a>",
		"<x><y>nested</y> tail</x>",
		"a < b > c <a>real</a> </z>",
		"<e1>héllo wörld</e1> ünïcode",
		"line one\nline <t>two</t>\n",
	}
	for _, in := range inputs {
		for _, n := range []int{1, 3, 80} {
			if got := Serialize(Parse(in, n)); got != in {
				t.Errorf("Serialize(Parse(%q, %d)) = %q", in, n, got)
			}
		}
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want []string
	}{
		{"abcdefg", 3, []string{"abc", "def", "g"}},
		{"abcdef", 3, []string{"abc", "def"}},
		{"", 5, []string{""}},
		{"ab", 0, []string{"a", "b"}},
		{"héllo", 2, []string{"hé", "ll", "o"}},
	}
	for _, tc := range cases {
		got := Wrap(tc.in, tc.n)
		if !equalStrings(got, tc.want) {
			t.Errorf("Wrap(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestWrapInvariant(t *testing.T) {
	docs := []string{
		"<p>Lorem ipsum dolor sit amet,</p> consectetur <q>adipiscing</q> elit, sed do eiusmod <r>tempor</r>",
		"ab\xffcd <x>\xc3z\xe2\x82</x> 日本語",
	}
	for _, doc := range docs {
		for _, n := range []int{1, 2, 3, 7, 13, 200} {
			for _, s := range Parse(doc, n) {
				if got := strings.Join(s.Lines, ""); got != s.Text {
					t.Errorf("n=%d segment %d: lines join to %q, want %q", n, s.Index, got, s.Text)
				}
				for i, l := range s.Lines {
					w := utf8.RuneCountInString(l)
					if w > n {
						t.Errorf("n=%d segment %d line %d: width %d", n, s.Index, i, w)
					}
					if i < len(s.Lines)-1 && w != n {
						t.Errorf("n=%d segment %d line %d: width %d, want exactly %d", n, s.Index, i, w, n)
					}
				}
			}
		}
	}
}

func TestInvalidUTF8Preserved(t *testing.T) {
	tx := New("ab\xff<a>cd</a>", 3)
	if got := tx.Plain(); got != "ab\xffcd" {
		t.Fatalf("plain = %q", got)
	}
	if got := tx.PlainLen(); got != 5 {
		t.Fatalf("plain length = %d, want 5", got)
	}
	if got := tx.RangeText(Coord{X: 1, Y: 0}, Coord{X: 0, Y: 1}); got != "b\xffc" {
		t.Errorf("range text = %q, want %q", got, "b\xffc")
	}
}

func TestLineTableMonotonic(t *testing.T) {
	tx := New("<a>first run</a> second run <b>third</b><c></c> fourth", 4)
	segs := tx.Segments()
	next := 0
	for _, s := range segs {
		if s.LineStart != next {
			t.Fatalf("segment %d starts at %d, want %d", s.Index, s.LineStart, next)
		}
		if s.LineEnd < s.LineStart {
			t.Fatalf("segment %d ends before it starts", s.Index)
		}
		next = s.LineEnd + 1
	}
	if next != tx.NoLines() {
		t.Fatalf("line table ends at %d, NoLines=%d", next, tx.NoLines())
	}
	for abs := 0; abs < tx.NoLines(); abs++ {
		p, ok := tx.Locate(abs, 0)
		if !ok {
			t.Fatalf("Locate(%d) failed", abs)
		}
		if p.Line() != abs {
			t.Errorf("Locate(%d) resolved to line %d", abs, p.Line())
		}
	}
	if _, ok := tx.Locate(tx.NoLines(), 0); ok {
		t.Error("Locate past the end should fail")
	}
	if _, ok := tx.Locate(-1, 0); ok {
		t.Error("Locate(-1) should fail")
	}
}

func TestLocateClampsColumn(t *testing.T) {
	tx := New(fox, 80)
	p, ok := tx.Locate(1, 999)
	if !ok || p.SegmentIndex != 1 || p.CharInLineIndex != 5 {
		t.Errorf("Locate(1, 999) = %+v, %v", p, ok)
	}
	p, _ = tx.Locate(1, -4)
	if p.CharInLineIndex != 0 {
		t.Errorf("negative column not clamped: %+v", p)
	}
}

func TestTextAtLineRange(t *testing.T) {
	tx := New(fox, 80)
	got := tx.TextAtLineRange(-1, 3)
	want := []string{"", "The ", "quick", " brown fox", ""}
	if !equalStrings(got, want) {
		t.Errorf("TextAtLineRange = %q, want %q", got, want)
	}
}

func TestIndexForCoordinate(t *testing.T) {
	tx := New(fox, 80)
	cases := []struct {
		c         Coord
		inclusive bool
		want      int
	}{
		{Coord{X: 0, Y: 0}, false, 0},
		{Coord{X: 2, Y: 1}, false, 6},
		{Coord{X: 2, Y: 1}, true, 7},
		{Coord{X: 50, Y: 1}, false, 9},
		{Coord{X: 50, Y: 1}, true, 9},
		{Coord{X: 0, Y: 2}, false, 9},
		{Coord{X: 3, Y: 99}, false, 19},
		{Coord{X: 3, Y: -1}, false, 0},
	}
	for _, tc := range cases {
		if got := tx.IndexForCoordinate(tc.c, tc.inclusive); got != tc.want {
			t.Errorf("IndexForCoordinate(%+v, %v) = %d, want %d", tc.c, tc.inclusive, got, tc.want)
		}
	}
}

func TestCoordForIndex(t *testing.T) {
	tx := New("<a>abcdefg</a>hij", 3)
	cases := []struct {
		off  int
		want Coord
	}{
		{0, Coord{X: 0, Y: 0}},
		{4, Coord{X: 1, Y: 1}},
		{7, Coord{X: 0, Y: 3}},
		{10, Coord{X: 3, Y: 3}},
		{-5, Coord{X: 0, Y: 0}},
	}
	for _, tc := range cases {
		got := tx.CoordForIndex(tc.off)
		if got != tc.want {
			t.Errorf("CoordForIndex(%d) = %+v, want %+v", tc.off, got, tc.want)
		}
		if tc.off >= 0 && tx.IndexForCoordinate(got, false) != tc.off {
			t.Errorf("IndexForCoordinate(CoordForIndex(%d)) = %d", tc.off, tx.IndexForCoordinate(got, false))
		}
	}
}

func TestRawIndexForPlain(t *testing.T) {
	tx := New(fox, 80)
	cases := []struct {
		off     int
		leading bool
		want    int
	}{
		{0, true, 0},
		{2, false, 2},
		{4, true, 8},
		{4, false, 4},
		{6, true, 10},
		{9, false, 13},
		{9, true, 18},
		{19, true, len(fox)},
	}
	for _, tc := range cases {
		if got := tx.RawIndexForPlain(tc.off, tc.leading); got != tc.want {
			t.Errorf("RawIndexForPlain(%d, %v) = %d, want %d", tc.off, tc.leading, got, tc.want)
		}
	}

	trailing := New("x<a>y</a>", 80)
	if got := trailing.RawIndexForPlain(2, false); got != 5 {
		t.Errorf("end of text before trailing markup = %d, want 5", got)
	}
	if got := trailing.RawIndexForPlain(2, true); got != 9 {
		t.Errorf("end of text after trailing markup = %d, want 9", got)
	}
}

func TestWordBoundary(t *testing.T) {
	tx := New(fox, 80)
	cases := []struct {
		line, col   int
		left, right int
	}{
		{1, 2, -2, 2},
		{1, 0, 0, 4},
		{2, 3, -2, 2},
		{2, 0, 0, 0},
		{0, 1, -1, 1},
		{1, 99, -5, -1},
	}
	for _, tc := range cases {
		p, ok := tx.Locate(tc.line, tc.col)
		if !ok {
			t.Fatalf("Locate(%d, %d) failed", tc.line, tc.col)
		}
		l, r := tx.WordBoundary(p)
		if l != tc.left || r != tc.right {
			t.Errorf("WordBoundary(line %d col %d) = (%d, %d), want (%d, %d)", tc.line, tc.col, l, r, tc.left, tc.right)
		}
	}
}

func TestRangeText(t *testing.T) {
	tx := New(fox, 80)
	if got := tx.RangeText(Coord{X: 0, Y: 1}, Coord{X: 4, Y: 1}); got != "quick" {
		t.Errorf("RangeText quick = %q", got)
	}
	if got := tx.RangeText(Coord{X: 2, Y: 0}, Coord{X: 3, Y: 2}); got != "e quick bro" {
		t.Errorf("RangeText across segments = %q", got)
	}
	if got := tx.RangeText(Coord{X: 3, Y: 2}, Coord{X: 2, Y: 0}); got != "e quick bro" {
		t.Errorf("RangeText reversed = %q", got)
	}
}

func TestSpans(t *testing.T) {
	tx := New("abcdefghij", 4)
	got := tx.Spans(Coord{X: 2, Y: 0}, Coord{X: 0, Y: 2}, 0, 10)
	want := []Span{{Line: 0, Start: 2, End: 4}, {Line: 1, Start: 0, End: 4}, {Line: 2, Start: 0, End: 1}}
	if len(got) != len(want) {
		t.Fatalf("Spans = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got := tx.Spans(Coord{X: 2, Y: 0}, Coord{X: 0, Y: 2}, 1, 1); len(got) != 1 || got[0].Line != 1 {
		t.Errorf("clipped Spans = %+v", got)
	}
	if got := tx.Spans(Coord{X: 2, Y: 1}, Coord{X: 0, Y: 0}, 0, 10); got != nil {
		t.Errorf("reversed Spans = %+v, want nil", got)
	}
}

func TestSetModeResegments(t *testing.T) {
	tx := New(fox, 80)
	tx.SetMode(ModeRaw)
	if n := len(tx.Segments()); n != 1 {
		t.Fatalf("raw mode: %d segments, want 1", n)
	}
	if tx.Plain() != fox {
		t.Errorf("raw mode plain = %q", tx.Plain())
	}
	tx.SetMode(ModeHighlight)
	if n := len(tx.Segments()); n != 3 {
		t.Errorf("highlight mode: %d segments, want 3", n)
	}
	if tx.Value() != fox {
		t.Errorf("mode switch changed the value: %q", tx.Value())
	}
}

func TestSetCharsAtLineIdempotent(t *testing.T) {
	tx := New(fox, 80)
	if !tx.SetCharsAtLine(4) {
		t.Fatal("first resize should change the layout")
	}
	before := tx.NoLines()
	if tx.SetCharsAtLine(4) {
		t.Error("second resize with the same width should be a no-op")
	}
	if tx.NoLines() != before {
		t.Errorf("NoLines changed: %d -> %d", before, tx.NoLines())
	}
}

func TestInsertText(t *testing.T) {
	cases := []struct {
		at      Coord
		s       string
		want    string
		wantEnd int
	}{
		{Coord{X: 5, Y: 1}, "!", "The <e1>quick!</e1> brown fox", 10},
		{Coord{X: 0, Y: 2}, "X", "The <e1>quick</e1>X brown fox", 10},
		{Coord{X: 0, Y: 1}, "very ", "The <e1>very quick</e1> brown fox", 9},
		{Coord{X: 0, Y: 0}, ">", ">The <e1>quick</e1> brown fox", 1},
		{Coord{X: 0, Y: 9}, ".", "The <e1>quick</e1> brown fox.", 20},
	}
	for _, tc := range cases {
		tx := New(fox, 80)
		end := tx.InsertText(tc.at, tc.s)
		if tx.Value() != tc.want {
			t.Errorf("InsertText(%+v, %q) = %q, want %q", tc.at, tc.s, tx.Value(), tc.want)
		}
		if end != tc.wantEnd {
			t.Errorf("InsertText(%+v, %q) end = %d, want %d", tc.at, tc.s, end, tc.wantEnd)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("raw"); err != nil || m != ModeRaw {
		t.Errorf("ParseMode(raw) = %v, %v", m, err)
	}
	if _, err := ParseMode("fancy"); err == nil {
		t.Error("ParseMode(fancy) should fail")
	}
}

func markerTags(ms []Marker) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Tag)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
