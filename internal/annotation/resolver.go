// Package annotation resolves which tags cover a position and edits tag
// markup in a document.
package annotation

import (
	"sort"

	"github.com/xonecas/annotator/internal/text"
)

// ActiveTagsAt returns the set of tags open at pos. Markers toggle a tag
// on or off in document order; markers in pos's own segment apply up to
// the exact character.
func ActiveTagsAt(t *text.Text, pos text.SegmentPosition) map[string]bool {
	segs := t.Segments()
	state := make(map[string]bool)
	if len(segs) == 0 {
		return state
	}
	si := max(0, min(pos.SegmentIndex, len(segs)-1))
	for i := 0; i < si; i++ {
		for _, b := range segs[i].Boundaries() {
			state[b.Tag] = !b.Closing
		}
	}
	rel := pos.LineIndex*t.CharsAtLine() + pos.CharInLineIndex
	for _, b := range segs[si].Boundaries() {
		if b.TextOffset <= rel {
			state[b.Tag] = !b.Closing
		}
	}

	open := make(map[string]bool, len(state))
	for tag, on := range state {
		if on {
			open[tag] = true
		}
	}
	return open
}

// ActiveTagsInRange returns, sorted, the tags open at start plus the
// tags opened after start up to and including end.
func ActiveTagsInRange(t *text.Text, start, end text.SegmentPosition) []string {
	if end.Less(start) {
		start, end = end, start
	}
	set := ActiveTagsAt(t, start)
	from, to := t.OffsetOf(start), t.OffsetOf(end)

	segs := t.Segments()
	for i := max(0, start.SegmentIndex); i <= end.SegmentIndex && i < len(segs); i++ {
		for _, m := range segs[i].OpeningTags {
			if p := segs[i].Offset + m.TextOffset; p > from && p <= to {
				set[m.Tag] = true
			}
		}
	}
	return sortedKeys(set)
}

// Occurrences returns every matched open/close pair of tag in the order
// the pairs open. Each pair is [first character, last character]; an
// empty pair ends one column before it starts.
func Occurrences(t *text.Text, tag string) [][2]text.Coord {
	type pair struct{ open, close int }
	var pairs []pair
	var stack []int
	for _, s := range t.Segments() {
		for _, b := range s.Boundaries() {
			if b.Tag != tag {
				continue
			}
			p := s.Offset + b.TextOffset
			if !b.Closing {
				stack = append(stack, p)
				continue
			}
			if len(stack) == 0 {
				continue
			}
			pairs = append(pairs, pair{open: stack[len(stack)-1], close: p})
			stack = stack[:len(stack)-1]
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].open < pairs[j].open })

	out := make([][2]text.Coord, 0, len(pairs))
	for _, p := range pairs {
		start := t.CoordForIndex(p.open)
		end := text.Coord{X: start.X - 1, Y: start.Y}
		if p.close > p.open {
			end = t.CoordForIndex(p.close - 1)
		}
		out = append(out, [2]text.Coord{start, end})
	}
	return out
}

// TagOccurrence returns the n-th (1-indexed) occurrence of tag. ok is
// false once n runs past the last one.
func TagOccurrence(t *text.Text, tag string, n int) (start, end text.Coord, ok bool) {
	occ := Occurrences(t, tag)
	if n < 1 || n > len(occ) {
		return text.Coord{}, text.Coord{}, false
	}
	return occ[n-1][0], occ[n-1][1], true
}

// Tags returns every tag id used in the document, sorted.
func Tags(t *text.Text) []string {
	set := make(map[string]bool)
	for _, s := range t.Segments() {
		for _, m := range s.OpeningTags {
			set[m.Tag] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// positionAt resolves a plain offset to a segment position.
func positionAt(t *text.Text, off int) (text.SegmentPosition, bool) {
	c := t.CoordForIndex(off)
	return t.Locate(c.Y, c.X)
}
