package collect

import "testing"

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"*.log", "test.log", false, true},
		{"*.log", "test.txt", false, false},
		{"*.log", "logs/test.log", false, true},

		{"drafts/", "drafts", true, true},
		{"drafts/", "drafts/chapter1.txt", false, true},
		{"drafts/", "book/drafts", true, true},
		{"drafts/", "drafts.txt", false, false},

		{"build/*", "build/output.txt", false, true},
		{"build/*", "build", true, false},

		{"**/temp", "temp", false, true},
		{"**/temp", "src/lib/temp", false, true},

		{"/root.txt", "root.txt", false, true},
		{"/root.txt", "src/root.txt", false, false},

		{"note?.md", "note1.md", false, true},
		{"note?.md", "note12.md", false, false},
		{"[ab].txt", "a.txt", false, true},
		{"[ab].txt", "c.txt", false, false},
		{`\#hash`, "#hash", false, true},
	}

	for _, tt := range tests {
		r, ok := parseRule(tt.pattern)
		if !ok {
			t.Errorf("failed to parse pattern %q", tt.pattern)
			continue
		}
		rules := ignoreRules{r}
		if got := rules.ignored(tt.path, tt.isDir); got != tt.want {
			t.Errorf("pattern %q, path %q (isDir=%v): got %v, want %v",
				tt.pattern, tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestParseRuleSkipsNoise(t *testing.T) {
	for _, line := range []string{"", "   ", "# comment", "/", "!"} {
		if _, ok := parseRule(line); ok {
			t.Errorf("parseRule(%q) should yield no rule", line)
		}
	}
}

func TestLastRuleWins(t *testing.T) {
	var rules ignoreRules
	for _, p := range []string{"*.log", "!keep.log"} {
		r, ok := parseRule(p)
		if !ok {
			t.Fatalf("parse %q", p)
		}
		rules = append(rules, r)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"test.log", true},
		{"keep.log", false},
		{"other.txt", false},
	}
	for _, tt := range tests {
		if got := rules.ignored(tt.path, false); got != tt.want {
			t.Errorf("path %q: got %v, want %v", tt.path, got, tt.want)
		}
	}
}
