package text

import (
	"sort"
	"unicode/utf8"
)

// Marker is one tag boundary attached to a segment.
type Marker struct {
	Tag        string
	RawOffset  int // byte offset of the markup inside Segment.Raw
	TextOffset int // rune offset into Segment.Text the marker applies at
}

// Segment is a run of the document between tag boundaries. Markup is
// kept with the text it precedes, so Raw always starts with the markup
// (if any) and ends with the run's plain text.
type Segment struct {
	Raw         string
	Text        string
	OpeningTags []Marker
	ClosingTags []Marker
	Lines       []string
	LineStart   int
	LineEnd     int
	Index       int

	RawStart int // byte offset of Raw in the document value
	Offset   int // rune offset of Text in the plain text

	textStart int // byte offset of Text inside Raw
	length    int // runes in Text
}

// Len returns the length of the segment's plain text in runes.
func (s *Segment) Len() int { return s.length }

// NoLines returns how many wrapped lines the segment occupies.
func (s *Segment) NoLines() int { return s.LineEnd - s.LineStart + 1 }

// Boundary is a marker tagged with its direction.
type Boundary struct {
	Marker
	Closing bool
}

// Boundaries returns opening and closing markers merged in raw order.
func (s *Segment) Boundaries() []Boundary {
	refs := make([]Boundary, 0, len(s.OpeningTags)+len(s.ClosingTags))
	for _, m := range s.OpeningTags {
		refs = append(refs, Boundary{Marker: m})
	}
	for _, m := range s.ClosingTags {
		refs = append(refs, Boundary{Marker: m, Closing: true})
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].RawOffset < refs[j].RawOffset })
	return refs
}

// Parse splits raw into segments wrapped at charsAtLine. Only markup
// that pairs up is treated as a tag; anything else is literal text.
func Parse(raw string, charsAtLine int) []Segment {
	var segs []Segment
	start, textStart := 0, 0
	var opens, closes []Marker

	flush := func(end int) {
		if end == start {
			return
		}
		segs = append(segs, newSegment(raw[start:end], textStart-start, opens, closes))
		start, textStart = end, end
		opens, closes = nil, nil
	}

	for _, tk := range markupTokens(raw) {
		if tk.start > textStart {
			flush(tk.start)
		}
		m := Marker{Tag: tk.tag, RawOffset: tk.start - start}
		if tk.closing {
			closes = append(closes, m)
		} else {
			opens = append(opens, m)
		}
		textStart = tk.end
	}
	flush(len(raw))

	layout(segs, charsAtLine)
	return segs
}

// parsePlain lays raw out as a single run with its markup left visible.
func parsePlain(raw string, charsAtLine int) []Segment {
	if raw == "" {
		return nil
	}
	segs := []Segment{newSegment(raw, 0, nil, nil)}
	layout(segs, charsAtLine)
	return segs
}

func newSegment(raw string, textStart int, opens, closes []Marker) Segment {
	txt := raw[textStart:]
	return Segment{
		Raw:         raw,
		Text:        txt,
		OpeningTags: opens,
		ClosingTags: closes,
		textStart:   textStart,
		length:      utf8.RuneCountInString(txt),
	}
}

// layout assigns indices, offsets and wrapped lines in document order.
func layout(segs []Segment, charsAtLine int) {
	line, off, rawOff := 0, 0, 0
	for i := range segs {
		s := &segs[i]
		s.Index = i
		s.Lines = Wrap(s.Text, charsAtLine)
		s.LineStart = line
		s.LineEnd = line + len(s.Lines) - 1
		s.Offset = off
		s.RawStart = rawOff
		line = s.LineEnd + 1
		off += s.length
		rawOff += len(s.Raw)
	}
}

// Wrap breaks s into chunks of exactly charsAtLine runes, the last one
// possibly shorter. Chunks are cut at byte boundaries, so joining them
// gives back s even when it holds invalid UTF-8. Empty text still yields
// one empty line.
func Wrap(s string, charsAtLine int) []string {
	if charsAtLine < 1 {
		charsAtLine = 1
	}
	if s == "" {
		return []string{""}
	}
	lines := make([]string, 0, utf8.RuneCountInString(s)/charsAtLine+1)
	start, n := 0, 0
	for i := range s {
		if n == charsAtLine {
			lines = append(lines, s[start:i])
			start, n = i, 0
		}
		n++
	}
	return append(lines, s[start:])
}
