// Package paint holds the fill descriptions shared by the annotator and
// the surfaces it draws on.
package paint

// FillKind selects how a rectangle is painted.
type FillKind int

const (
	FillSolid     FillKind = iota // blend Color onto the background
	FillUnderline                 // underline the text in Color
	FillFocus                     // solid fill plus bold text
	FillCaret                     // reverse video
)

// Fill describes a rectangle paint.
type Fill struct {
	Color   string
	Opacity float64
	Kind    FillKind
}
