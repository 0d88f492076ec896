package highlight

import "testing"

func TestParseColor(t *testing.T) {
	cases := []struct {
		in    string
		hex   string
		alpha float64
	}{
		{"#ff0000", "#ff0000", 1},
		{"#0f0", "#00ff00", 1},
		{"  Blue ", "#0000ff", 1},
		{"rgb(255, 128, 0)", "#ff8000", 1},
		{"rgba(0,0,255,0.25)", "#0000ff", 0.25},
	}
	for _, tc := range cases {
		c, a, err := ParseColor(tc.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.in, err)
		}
		if c.Hex() != tc.hex || a != tc.alpha {
			t.Errorf("ParseColor(%q) = %s %v, want %s %v", tc.in, c.Hex(), a, tc.hex, tc.alpha)
		}
	}
	for _, bad := range []string{"", "#12", "rgb(1,2)", "rgba(1,2,3,4)", "rgb(300,0,0)", "chartreuse-ish"} {
		if _, _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) should fail", bad)
		}
	}
}

func TestBlend(t *testing.T) {
	cases := []struct {
		bg, fg  string
		opacity float64
		want    string
	}{
		{"#000000", "#ffffff", 0.5, "#808080"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 7, "#ffffff"},
		{"#000000", "rgba(255,255,255,0.5)", 1, "#808080"},
		{"#102030", "not a color", 1, "#102030"},
	}
	for _, tc := range cases {
		if got := Blend(tc.bg, tc.fg, tc.opacity); got != tc.want {
			t.Errorf("Blend(%q, %q, %v) = %s, want %s", tc.bg, tc.fg, tc.opacity, got, tc.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("red", "#000000"); got != "#ff0000" {
		t.Errorf("Normalize(red) = %s", got)
	}
	if got := Normalize("??", "#123456"); got != "#123456" {
		t.Errorf("Normalize fallback = %s", got)
	}
}

func TestThemePaletteDeterministic(t *testing.T) {
	a := ThemePalette("monokai")
	b := ThemePalette("monokai")
	if a.Bg != b.Bg || a.Accent != b.Accent || len(a.Tags) != len(b.Tags) {
		t.Fatalf("palette not deterministic: %+v vs %+v", a, b)
	}
	if a.Bg == "" || a.Fg == "" || len(a.Tags) == 0 {
		t.Errorf("incomplete palette: %+v", a)
	}
	if a.TagColor("e1") != b.TagColor("e1") {
		t.Error("TagColor not stable")
	}
}

func TestThemePaletteUnknownTheme(t *testing.T) {
	p := ThemePalette("definitely-not-a-theme")
	if p.Bg == "" || p.Accent == "" {
		t.Errorf("fallback palette incomplete: %+v", p)
	}
	if (Palette{}).TagColor("x") != "" {
		t.Error("empty palette should fall back to its accent")
	}
}
