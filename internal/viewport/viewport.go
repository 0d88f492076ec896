// Package viewport tracks the window of wrapped lines that is visible.
package viewport

// Viewport is the visible line range [LineStart, LineEnd]. NoLines is
// fixed by the surface height; only the start moves.
type Viewport struct {
	LineStart int
	LineEnd   int
	NoLines   int
}

// New returns a viewport of noLines lines starting at lineStart.
func New(lineStart, noLines int) *Viewport {
	v := &Viewport{NoLines: max(1, noLines)}
	v.set(max(0, lineStart))
	return v
}

func (v *Viewport) set(start int) {
	v.LineStart = start
	v.LineEnd = start + v.NoLines - 1
}

// maxStart is the last valid LineStart for a document of total lines.
func (v *Viewport) maxStart(total int) int {
	return max(0, total-v.NoLines)
}

// ScrollTo moves the window so it starts at target, clamped to
// [0, max(0, total-NoLines)].
func (v *Viewport) ScrollTo(target, total int) {
	v.set(max(0, min(target, v.maxStart(total))))
}

// ScrollUp moves the window n lines toward the top.
func (v *Viewport) ScrollUp(n int) {
	v.set(max(0, v.LineStart-n))
}

// ScrollDown moves the window n lines toward the bottom.
func (v *Viewport) ScrollDown(n, total int) {
	v.ScrollTo(v.LineStart+n, total)
}

// UpdateLineEnd resizes the window to noLines, keeping LineStart unless
// the new size pushes it past the end.
func (v *Viewport) UpdateLineEnd(noLines, total int) {
	v.NoLines = max(1, noLines)
	v.ScrollTo(v.LineStart, total)
}

// Contains reports whether absolute line is visible.
func (v *Viewport) Contains(line int) bool {
	return line >= v.LineStart && line <= v.LineEnd
}

// Reveal scrolls the least amount needed to make line visible.
func (v *Viewport) Reveal(line, total int) {
	switch {
	case line < v.LineStart:
		v.ScrollTo(line, total)
	case line > v.LineEnd:
		v.ScrollTo(line-v.NoLines+1, total)
	}
}

// Row returns the surface row of absolute line.
func (v *Viewport) Row(line int) int { return line - v.LineStart }
