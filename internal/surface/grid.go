// Package surface provides a terminal cell grid the annotator draws on.
package surface

import (
	"math"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/xonecas/annotator/internal/highlight"
	"github.com/xonecas/annotator/internal/paint"
)

// Cell is one grid position. Content is a grapheme cluster; the cells
// covered by the right half of a wide cluster hold "".
type Cell struct {
	Content   string
	Fg        string
	Bg        string
	Bold      bool
	Underline bool
	Reverse   bool
}

// Grid is a cols×rows cell buffer where one pixel unit is one cell, so
// character width and line height are both 1.
type Grid struct {
	cols, rows int
	fg, bg     string
	cells      []Cell
}

// NewGrid returns a cleared grid with default text and background colors.
func NewGrid(cols, rows int, fg, bg string) *Grid {
	g := &Grid{fg: fg, bg: bg}
	g.Resize(cols, rows)
	return g
}

// Resize reallocates the grid, clearing it.
func (g *Grid) Resize(cols, rows int) {
	g.cols, g.rows = max(0, cols), max(0, rows)
	g.cells = make([]Cell, g.cols*g.rows)
	g.Clear()
}

// SetColors changes the default colors used by Clear.
func (g *Grid) SetColors(fg, bg string) {
	g.fg, g.bg = fg, bg
}

func (g *Grid) Size() (w, h float64) { return float64(g.cols), float64(g.rows) }

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{Content: " ", Fg: g.fg, Bg: g.bg}
	}
}

// At returns the cell at column x, row y.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return Cell{}
	}
	return g.cells[y*g.cols+x]
}

func (g *Grid) at(x, y int) *Cell {
	return &g.cells[y*g.cols+x]
}

// FillRect paints every cell the rectangle touches.
func (g *Grid) FillRect(x, y, w, h float64, f paint.Fill) {
	x0 := max(0, int(math.Floor(x)))
	y0 := max(0, int(math.Floor(y)))
	x1 := min(g.cols, int(math.Ceil(x+w)))
	y1 := min(g.rows, int(math.Ceil(y+h)))
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			c := g.at(col, row)
			switch f.Kind {
			case paint.FillUnderline:
				c.Underline = true
				c.Fg = highlight.Blend(c.Fg, f.Color, max(f.Opacity, 0.5))
			case paint.FillFocus:
				c.Bold = true
				c.Bg = highlight.Blend(c.Bg, f.Color, f.Opacity)
			case paint.FillCaret:
				c.Reverse = true
			default:
				c.Bg = highlight.Blend(c.Bg, f.Color, f.Opacity)
			}
		}
	}
}

// FillText writes s from cell (x, y), one grapheme cluster at a time.
// Control characters show as spaces; text past the right edge is
// dropped.
func (g *Grid) FillText(s string, x, y float64, color string) {
	row := int(math.Floor(y))
	col := int(math.Floor(x))
	if row < 0 || row >= g.rows {
		return
	}
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		w := gr.Width()
		if isControl(cluster) {
			cluster, w = " ", 1
		}
		w = max(w, 1)
		if col+w > g.cols {
			return
		}
		if col >= 0 {
			c := g.at(col, row)
			c.Content, c.Fg = cluster, color
			for k := 1; k < w; k++ {
				g.at(col+k, row).Content = ""
			}
		}
		col += w
	}
}

func isControl(cluster string) bool {
	r := []rune(cluster)
	return len(r) > 0 && (r[0] < 0x20 || r[0] == 0x7f)
}

// MeasureText returns the cell width of s.
func (g *Grid) MeasureText(s string) float64 {
	return float64(ansi.StringWidth(s))
}

// PlainRows returns the grid text, one string per row, without trailing
// spaces.
func (g *Grid) PlainRows() []string {
	rows := make([]string, g.rows)
	for y := range rows {
		var b strings.Builder
		for x := 0; x < g.cols; x++ {
			b.WriteString(g.at(x, y).Content)
		}
		rows[y] = strings.TrimRight(b.String(), " ")
	}
	return rows
}

// Render returns the grid as styled terminal rows joined by newlines.
func (g *Grid) Render() string {
	rows := make([]string, g.rows)
	for y := range rows {
		var b strings.Builder
		var run strings.Builder
		var cur Cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(cellStyle(cur).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < g.cols; x++ {
			c := g.at(x, y)
			if c.Content == "" {
				continue
			}
			if !sameStyle(*c, cur) {
				flush()
				cur = *c
			}
			run.WriteString(c.Content)
		}
		flush()
		rows[y] = b.String()
	}
	return strings.Join(rows, "\n")
}

func sameStyle(a, b Cell) bool {
	return a.Fg == b.Fg && a.Bg == b.Bg && a.Bold == b.Bold &&
		a.Underline == b.Underline && a.Reverse == b.Reverse
}

func cellStyle(c Cell) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(c.Bold).Underline(c.Underline).Reverse(c.Reverse)
	if c.Fg != "" {
		st = st.Foreground(lipgloss.Color(c.Fg))
	}
	if c.Bg != "" {
		st = st.Background(lipgloss.Color(c.Bg))
	}
	return st
}
