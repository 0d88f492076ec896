package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var cssNames = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"magenta": "#ff00ff",
	"cyan":    "#00ffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
	"teal":    "#008080",
	"navy":    "#000080",
}

// ParseColor reads "#rgb", "#rrggbb", "rgb(r, g, b)", "rgba(r, g, b, a)"
// or a basic CSS color name. alpha is 1 unless rgba gives one.
func ParseColor(s string) (c colorful.Color, alpha float64, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := cssNames[s]; ok {
		s = hex
	}
	switch {
	case strings.HasPrefix(s, "#"):
		c, err = colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, 0, fmt.Errorf("parse color %q: %w", s, err)
		}
		return c, 1, nil
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return colorful.Color{}, 0, fmt.Errorf("parse color %q: unknown format", s)
}

func parseFunc(args string, n int) (colorful.Color, float64, error) {
	parts := strings.Split(args, ",")
	if len(parts) != n {
		return colorful.Color{}, 0, fmt.Errorf("parse color: want %d components, got %d", n, len(parts))
	}
	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return colorful.Color{}, 0, fmt.Errorf("parse color: bad component %q", parts[i])
		}
		rgb[i] = float64(v) / 255
	}
	alpha := 1.0
	if n == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return colorful.Color{}, 0, fmt.Errorf("parse color: bad alpha %q", parts[3])
		}
		alpha = a
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, alpha, nil
}

// Normalize returns s as "#rrggbb", or fallback when s does not parse.
func Normalize(s, fallback string) string {
	c, _, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c.Hex()
}

// Blend paints fg over bg at opacity (times fg's own alpha) and returns
// the result as "#rrggbb". An unparseable fg leaves bg unchanged.
func Blend(bg, fg string, opacity float64) string {
	base, _, err := ParseColor(bg)
	if err != nil {
		base = colorful.Color{}
	}
	top, alpha, err := ParseColor(fg)
	if err != nil {
		return base.Hex()
	}
	t := max(0, min(1, opacity*alpha))
	return base.BlendRgb(top, t).Clamped().Hex()
}

// Lerp interpolates between two colors at fraction t.
func Lerp(a, b string, t float64) string {
	return Blend(a, b, t)
}
