package text

import (
	"sort"
	"unicode"
)

// Coord is a column and absolute wrapped line.
type Coord struct {
	X int
	Y int
}

// Less orders coords by line, then column.
func (c Coord) Less(o Coord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// SegmentPosition points into the segment/line table.
type SegmentPosition struct {
	SegmentIndex    int
	LineIndex       int // relative to the segment
	CharInLineIndex int
	LineStart       int
	LineEnd         int
}

// Line returns the absolute line of p.
func (p SegmentPosition) Line() int { return p.LineStart + p.LineIndex }

// Coord converts p to an absolute coord.
func (p SegmentPosition) Coord() Coord {
	return Coord{X: p.CharInLineIndex, Y: p.Line()}
}

// Less orders positions by absolute line, then column.
func (p SegmentPosition) Less(o SegmentPosition) bool {
	return p.Coord().Less(o.Coord())
}

// Span is a column range [Start, End) on one absolute line.
type Span struct {
	Line  int
	Start int
	End   int
}

// Locate resolves an absolute line and column. The column is clamped to
// the line's length; ok is false when abs is outside the document.
func (t *Text) Locate(abs, column int) (SegmentPosition, bool) {
	if abs < 0 || abs >= len(t.lines) {
		return SegmentPosition{}, false
	}
	ref := t.lines[abs]
	seg := &t.segments[ref.seg]
	n := t.LineLen(abs)
	column = max(0, min(column, n))
	return SegmentPosition{
		SegmentIndex:    ref.seg,
		LineIndex:       ref.line,
		CharInLineIndex: column,
		LineStart:       seg.LineStart,
		LineEnd:         seg.LineEnd,
	}, true
}

// OffsetOf returns the plain offset of p.
func (t *Text) OffsetOf(p SegmentPosition) int {
	if p.SegmentIndex < 0 || p.SegmentIndex >= len(t.segments) {
		return 0
	}
	return t.segments[p.SegmentIndex].Offset + p.LineIndex*t.charsAtLine + p.CharInLineIndex
}

// IndexForCoordinate converts c to an offset into the plain text. Lines
// past the end clamp to the end of the text. With inclusive set the
// character under c.X is counted too.
func (t *Text) IndexForCoordinate(c Coord, inclusive bool) int {
	if len(t.lines) == 0 {
		return 0
	}
	if c.Y >= len(t.lines) {
		return t.PlainLen()
	}
	if c.Y < 0 {
		c = Coord{X: 0, Y: 0}
	}
	p, _ := t.Locate(c.Y, c.X)
	off := t.OffsetOf(p)
	if inclusive && p.CharInLineIndex < t.LineLen(c.Y) {
		off++
	}
	return off
}

// SegmentIndexForOffset returns the segment whose text holds the plain
// offset. An offset on a boundary belongs to the segment starting there;
// the end of the text belongs to the last segment. It returns -1 for an
// empty document.
func (t *Text) SegmentIndexForOffset(off int) int {
	if len(t.segments) == 0 {
		return -1
	}
	i := sort.Search(len(t.segments), func(i int) bool {
		s := &t.segments[i]
		return s.Offset+s.length > off
	})
	if i == len(t.segments) {
		return len(t.segments) - 1
	}
	return i
}

// CoordForIndex is the inverse of IndexForCoordinate.
func (t *Text) CoordForIndex(off int) Coord {
	if len(t.segments) == 0 {
		return Coord{}
	}
	off = max(0, min(off, t.PlainLen()))
	if off == t.PlainLen() {
		last := len(t.lines) - 1
		return Coord{X: t.LineLen(last), Y: last}
	}
	s := &t.segments[t.SegmentIndexForOffset(off)]
	rel := off - s.Offset
	return Coord{X: rel % t.charsAtLine, Y: s.LineStart + rel/t.charsAtLine}
}

// RawIndexForPlain maps a plain offset to a byte offset in the raw value.
// When markup sits exactly at the offset, leading places the result
// after it and !leading before it.
func (t *Text) RawIndexForPlain(off int, leading bool) int {
	off = max(0, min(off, t.PlainLen()))
	for i := range t.segments {
		s := &t.segments[i]
		end := s.Offset + s.length
		if off > end || (off == end && i < len(t.segments)-1) {
			continue
		}
		if off == s.Offset && !leading {
			return s.RawStart
		}
		return s.RawStart + s.textStart + byteIndex(s.Text, off-s.Offset)
	}
	return len(t.value)
}

// RangeText returns the plain text from start to end, end inclusive.
func (t *Text) RangeText(start, end Coord) string {
	if end.Less(start) {
		start, end = end, start
	}
	from := t.IndexForCoordinate(start, false)
	to := t.IndexForCoordinate(end, true)
	if to <= from {
		return ""
	}
	return t.plain[t.runeOff[from]:t.runeOff[to]]
}

// WordBoundary returns signed column offsets from p to the first and
// last character of the word under it. Both are zero off a word.
func (t *Text) WordBoundary(p SegmentPosition) (left, right int) {
	if p.SegmentIndex < 0 || p.SegmentIndex >= len(t.segments) {
		return 0, 0
	}
	seg := &t.segments[p.SegmentIndex]
	if p.LineIndex < 0 || p.LineIndex >= len(seg.Lines) {
		return 0, 0
	}
	line := []rune(seg.Lines[p.LineIndex])
	i := min(p.CharInLineIndex, len(line)-1)
	if i < 0 || !isWordRune(line[i]) {
		return 0, 0
	}
	l, r := i, i
	for l > 0 && isWordRune(line[l-1]) {
		l--
	}
	for r < len(line)-1 && isWordRune(line[r+1]) {
		r++
	}
	return l - p.CharInLineIndex, r - p.CharInLineIndex
}

// Spans returns the per-line column ranges covered by start..end (end
// inclusive), limited to lines first..last.
func (t *Text) Spans(start, end Coord, first, last int) []Span {
	if end.Less(start) {
		return nil
	}
	lo := max(start.Y, first, 0)
	hi := min(end.Y, last, len(t.lines)-1)
	var spans []Span
	for y := lo; y <= hi; y++ {
		n := t.LineLen(y)
		s, e := 0, n
		if y == start.Y {
			s = start.X
		}
		if y == end.Y {
			e = min(end.X, n-1) + 1
		}
		s = max(0, min(s, n))
		e = max(0, min(e, n))
		if e > s {
			spans = append(spans, Span{Line: y, Start: s, End: e})
		}
	}
	return spans
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// byteIndex returns the byte offset of the n-th rune of s.
func byteIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	i := 0
	for j := range s {
		if i == n {
			return j
		}
		i++
	}
	return len(s)
}
