// Package highlight derives UI and annotation colors from a Chroma theme
// and blends highlight fills onto backgrounds.
package highlight

import (
	"hash/fnv"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// ThemeBg extracts the background hex color from a Chroma style.
// Returns "" if no background is set.
func ThemeBg(theme string) string {
	sty := styles.Get(theme)
	if sty == nil {
		return ""
	}
	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

// Palette holds the annotator's colors derived from a Chroma theme.
// The grayscale ramp interpolates bg toward fg; Accent is the most
// saturated token color; Tags are the distinct token colors used for
// tags that have no stored schema.
type Palette struct {
	Bg     string // document background
	Fg     string // document text
	Gutter string // 25% bg→fg: line numbers
	Border string // 10% bg→fg: status bar background
	Muted  string // 45% bg→fg: status text
	Accent string // caret, prompts
	Select string // selection fill
	Tags   []string
}

// ThemePalette derives a palette from a Chroma theme name. Same theme,
// same palette.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return defaultPalette()
	}
	entry := sty.Get(chroma.Background)
	bg := "#000000"
	fg := "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}

	accent := pickAccent(sty, fg)
	return Palette{
		Bg:     bg,
		Fg:     fg,
		Gutter: Lerp(bg, fg, 0.25),
		Border: Lerp(bg, fg, 0.10),
		Muted:  Lerp(bg, fg, 0.45),
		Accent: accent,
		Select: Lerp(bg, accent, 0.35),
		Tags:   tokenColors(sty, bg),
	}
}

func defaultPalette() Palette {
	return Palette{
		Bg: "#000000", Fg: "#c8c8c8",
		Gutter: "#323232", Border: "#141414", Muted: "#5a5a5a",
		Accent: "#00dfff", Select: "#004e59",
		Tags: []string{"#ff8700", "#5fd700", "#00afff", "#d75fd7", "#ffd700"},
	}
}

// TagColor picks a stable color for tag from the palette.
func (p Palette) TagColor(tag string) string {
	if len(p.Tags) == 0 {
		return p.Accent
	}
	h := fnv.New32a()
	h.Write([]byte(tag))
	return p.Tags[h.Sum32()%uint32(len(p.Tags))]
}

// pickAccent returns the most saturated foreground color across all tokens.
func pickAccent(sty *chroma.Style, fallback string) string {
	best := fallback
	bestSat := 0.0
	for tt := chroma.TokenType(0); tt < 2000; tt++ {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		c, err := colorful.Hex(e.Colour.String())
		if err != nil {
			continue
		}
		if _, sat, v := c.Hsv(); v > 0 && sat > bestSat {
			bestSat = sat
			best = c.Hex()
		}
	}
	return best
}

// tokenColors collects distinct, reasonably saturated token colors that
// stand apart from bg.
func tokenColors(sty *chroma.Style, bg string) []string {
	base, err := colorful.Hex(bg)
	if err != nil {
		base = colorful.Color{}
	}
	seen := make(map[string]bool)
	var out []string
	for tt := chroma.TokenType(0); tt < 2000; tt++ {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		c, err := colorful.Hex(e.Colour.String())
		if err != nil {
			continue
		}
		if _, sat, _ := c.Hsv(); sat < 0.3 || c.DistanceLab(base) < 0.25 {
			continue
		}
		hex := c.Hex()
		if !seen[hex] {
			seen[hex] = true
			out = append(out, hex)
		}
	}
	if len(out) == 0 {
		return defaultPalette().Tags
	}
	return out
}
