package text

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mode selects how the raw value is laid out.
type Mode int

const (
	// ModeHighlight parses markup into segments and tags.
	ModeHighlight Mode = iota
	// ModeRaw shows the raw value as one run, markup included.
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	default:
		return "highlight"
	}
}

// ParseMode maps "raw" or "highlight" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "highlight", "":
		return ModeHighlight, nil
	case "raw":
		return ModeRaw, nil
	}
	return ModeHighlight, fmt.Errorf("unknown display mode %q", s)
}

type lineRef struct {
	seg  int
	line int
}

// Text owns a tagged document and its derived layout. Segments and the
// line table are rebuilt into fresh slices and swapped in whole on every
// change, so readers never see a half-built layout.
type Text struct {
	value       string
	mode        Mode
	charsAtLine int

	segments []Segment
	lines    []lineRef
	plain    string
	runeOff  []int // byte offset of each rune in plain, plus len(plain)
}

// New lays value out at charsAtLine columns in highlight mode.
func New(value string, charsAtLine int) *Text {
	if charsAtLine < 1 {
		charsAtLine = 1
	}
	t := &Text{value: value, charsAtLine: charsAtLine}
	t.rebuild()
	return t
}

func (t *Text) rebuild() {
	var segs []Segment
	if t.mode == ModeRaw {
		segs = parsePlain(t.value, t.charsAtLine)
	} else {
		segs = Parse(t.value, t.charsAtLine)
	}

	total := 0
	plainLen := 0
	for i := range segs {
		total += len(segs[i].Lines)
		plainLen += segs[i].length
	}
	lines := make([]lineRef, 0, total)
	var plain strings.Builder
	runeOff := make([]int, 0, plainLen+1)
	for i := range segs {
		for j := range segs[i].Lines {
			lines = append(lines, lineRef{seg: i, line: j})
		}
		base := plain.Len()
		for k := range segs[i].Text {
			runeOff = append(runeOff, base+k)
		}
		plain.WriteString(segs[i].Text)
	}
	runeOff = append(runeOff, plain.Len())

	t.segments, t.lines = segs, lines
	t.plain, t.runeOff = plain.String(), runeOff
}

// Value returns the raw tagged string.
func (t *Text) Value() string { return t.value }

// SetValue replaces the document.
func (t *Text) SetValue(v string) {
	if v == t.value {
		return
	}
	t.value = v
	t.rebuild()
}

func (t *Text) Mode() Mode { return t.mode }

// SetMode switches layout mode and re-segments.
func (t *Text) SetMode(m Mode) {
	if m == t.mode {
		return
	}
	t.mode = m
	t.rebuild()
}

func (t *Text) CharsAtLine() int { return t.charsAtLine }

// SetCharsAtLine rewraps at n columns. It reports whether the layout
// changed.
func (t *Text) SetCharsAtLine(n int) bool {
	if n < 1 {
		n = 1
	}
	if n == t.charsAtLine {
		return false
	}
	t.charsAtLine = n
	t.rebuild()
	return true
}

// Segments returns the current layout. Callers must not modify it.
func (t *Text) Segments() []Segment { return t.segments }

// Segment returns the segment at index i.
func (t *Text) Segment(i int) (*Segment, bool) {
	if i < 0 || i >= len(t.segments) {
		return nil, false
	}
	return &t.segments[i], true
}

// NoLines returns the total number of wrapped lines.
func (t *Text) NoLines() int { return len(t.lines) }

// PlainLen returns the plain text length in runes.
func (t *Text) PlainLen() int { return len(t.runeOff) - 1 }

// Plain returns the document with markup stripped.
func (t *Text) Plain() string { return t.plain }

// Line returns the plain text of absolute line abs, or "" when out of
// range.
func (t *Text) Line(abs int) string {
	if abs < 0 || abs >= len(t.lines) {
		return ""
	}
	ref := t.lines[abs]
	return t.segments[ref.seg].Lines[ref.line]
}

// LineLen returns the rune length of absolute line abs.
func (t *Text) LineLen(abs int) int {
	return utf8.RuneCountInString(t.Line(abs))
}

// TextAtLineRange returns one string per absolute line in [first, last].
func (t *Text) TextAtLineRange(first, last int) []string {
	if last < first {
		return nil
	}
	out := make([]string, last-first+1)
	for i := range out {
		out[i] = t.Line(first + i)
	}
	return out
}

// InsertText inserts s literally at the plain position under at and
// returns the plain offset just past the inserted text. At a segment
// start the text goes after that segment's markup, elsewhere before any
// markup sitting at the offset.
func (t *Text) InsertText(at Coord, s string) int {
	off := t.IndexForCoordinate(at, false)
	if s == "" {
		return off
	}
	leading := true
	if p, ok := t.Locate(at.Y, at.X); ok {
		leading = t.OffsetOf(p) == t.segments[p.SegmentIndex].Offset
	}
	raw := t.RawIndexForPlain(off, leading)
	t.SetValue(t.value[:raw] + s + t.value[raw:])
	return off + utf8.RuneCountInString(s)
}
