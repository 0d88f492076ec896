package annotation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/xonecas/annotator/internal/text"
)

var (
	ErrInvalidTag = errors.New("invalid tag id")
	ErrEmptyRange = errors.New("empty range")
)

// Range is a half-open span of plain-text offsets.
type Range struct {
	Start int
	End   int
}

// RangeFromCoords converts a selection to a Range. The end coord is
// inclusive.
func RangeFromCoords(t *text.Text, start, end text.Coord) Range {
	if end.Less(start) {
		start, end = end, start
	}
	return Range{
		Start: t.IndexForCoordinate(start, false),
		End:   t.IndexForCoordinate(end, true),
	}
}

func (r Range) normalize(plainLen int) Range {
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = max(0, min(r.Start, plainLen))
	r.End = max(0, min(r.End, plainLen))
	return r
}

// Empty reports whether r covers no characters.
func (r Range) Empty() bool { return r.End <= r.Start }

// WrapRangeWithTag surrounds r with <tag> and </tag>. The opening tag
// goes after any markup already at r.Start, the closing tag before any
// markup at r.End, so existing annotations keep their extent.
func WrapRangeWithTag(t *text.Text, r Range, tag string) error {
	if !text.IsTagID(tag) {
		return fmt.Errorf("wrap %q: %w", tag, ErrInvalidTag)
	}
	r = r.normalize(t.PlainLen())
	if r.Empty() {
		return fmt.Errorf("wrap %q: %w", tag, ErrEmptyRange)
	}

	v := t.Value()
	rs := t.RawIndexForPlain(r.Start, true)
	re := t.RawIndexForPlain(r.End, false)
	t.SetValue(v[:rs] + text.OpenTag(tag) + v[rs:re] + text.CloseTag(tag) + v[re:])
	return nil
}

// RemoveTagFromRange deletes the tag pair around r. The opening marker
// is the last one at or before the segment holding r's last character;
// the closing marker is the first one at or after the segment holding
// r's first character. It reports false, changing nothing, when tag is
// not active over r or either marker is missing.
func RemoveTagFromRange(t *text.Text, r Range, tag string) bool {
	if t.NoLines() == 0 {
		return false
	}
	r = r.normalize(t.PlainLen())
	last := max(r.Start, r.End-1)

	sp, ok := positionAt(t, r.Start)
	if !ok {
		return false
	}
	ep, ok := positionAt(t, last)
	if !ok {
		return false
	}
	if !slices.Contains(ActiveTagsInRange(t, sp, ep), tag) {
		return false
	}

	segs := t.Segments()
	startSeg := t.SegmentIndexForOffset(r.Start)
	endSeg := t.SegmentIndexForOffset(last)

	open := -1
	for i := endSeg; i >= 0 && open < 0; i-- {
		ms := segs[i].OpeningTags
		for j := len(ms) - 1; j >= 0; j-- {
			if ms[j].Tag == tag {
				open = segs[i].RawStart + ms[j].RawOffset
				break
			}
		}
	}
	closing := -1
	for i := startSeg; i < len(segs) && closing < 0; i++ {
		for _, m := range segs[i].ClosingTags {
			if m.Tag == tag {
				closing = segs[i].RawStart + m.RawOffset
				break
			}
		}
	}
	if open < 0 || closing < 0 {
		return false
	}

	v := t.Value()
	ol, cl := len(text.OpenTag(tag)), len(text.CloseTag(tag))
	if closing > open {
		v = v[:closing] + v[closing+cl:]
		v = v[:open] + v[open+ol:]
	} else {
		v = v[:open] + v[open+ol:]
		v = v[:closing] + v[closing+cl:]
	}
	t.SetValue(v)
	return true
}

// RemoveTagAt removes the tag pair covering the character at c.
func RemoveTagAt(t *text.Text, c text.Coord, tag string) bool {
	off := t.IndexForCoordinate(c, false)
	return RemoveTagFromRange(t, Range{Start: off, End: off + 1}, tag)
}

// RemoveAllTags deletes every pair of tag, empty pairs included, and
// returns how many pairs it removed.
func RemoveAllTags(t *text.Text, tag string) int {
	type cut struct{ at, n int }
	var cuts []cut
	pairs := 0
	ol, cl := len(text.OpenTag(tag)), len(text.CloseTag(tag))
	for _, s := range t.Segments() {
		for _, m := range s.OpeningTags {
			if m.Tag == tag {
				cuts = append(cuts, cut{s.RawStart + m.RawOffset, ol})
				pairs++
			}
		}
		for _, m := range s.ClosingTags {
			if m.Tag == tag {
				cuts = append(cuts, cut{s.RawStart + m.RawOffset, cl})
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	slices.SortFunc(cuts, func(a, b cut) int { return b.at - a.at })
	v := t.Value()
	for _, c := range cuts {
		v = v[:c.at] + v[c.at+c.n:]
	}
	t.SetValue(v)
	return pairs
}
