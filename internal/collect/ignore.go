package collect

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

// ignoreRules is a parsed .gitignore. The last matching rule wins.
type ignoreRules []rule

type rule struct {
	re       *regexp.Regexp
	negate   bool
	dirOnly  bool
	anchored bool
}

// readIgnore parses the .gitignore at p. A missing file ignores nothing.
func readIgnore(p string) (ignoreRules, error) {
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules ignoreRules
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if r, ok := parseRule(sc.Text()); ok {
			rules = append(rules, r)
		}
	}
	return rules, sc.Err()
}

// parseRule turns one .gitignore line into a rule. Blank lines, comments
// and patterns that do not compile yield false.
func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return rule{}, false
	}
	var r rule
	if line[0] == '!' {
		r.negate = true
		line = line[1:]
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if line == "" {
		return rule{}, false
	}
	re, err := regexp.Compile(globRegexp(line, r.anchored))
	if err != nil {
		return rule{}, false
	}
	r.re = re
	return r, true
}

// ignored reports whether the slash-separated relative path rel is
// ignored.
func (rs ignoreRules) ignored(rel string, isDir bool) bool {
	ignored := false
	for _, r := range rs {
		if r.matches(rel, isDir) {
			ignored = !r.negate
		}
	}
	return ignored
}

func (r rule) matches(rel string, isDir bool) bool {
	switch {
	case r.dirOnly && isDir:
		return r.re.MatchString(rel)
	case r.dirOnly:
		// a file inside an ignored directory
		return r.re.MatchString(path.Dir(rel))
	case r.anchored:
		return r.re.MatchString(rel)
	}
	return r.re.MatchString(rel) || r.re.MatchString(path.Base(rel))
}

// globRegexp converts a gitignore glob to a regexp. Unanchored globs
// match at any directory depth, and everything below a match matches.
func globRegexp(glob string, anchored bool) string {
	var b strings.Builder
	if anchored {
		b.WriteString("^")
	} else {
		b.WriteString("(^|/)")
	}
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			switch {
			case strings.HasPrefix(glob[i:], "**/"):
				b.WriteString("(.*/)?")
				i += 2
			case strings.HasPrefix(glob[i:], "**"):
				b.WriteString(".*")
				i++
			default:
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			j := strings.IndexByte(glob[i+1:], ']')
			if j < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(glob[i : i+j+2])
			i += j + 1
		case '\\':
			if i+1 < len(glob) {
				i++
				b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
				continue
			}
			b.WriteString(`\\`)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	if anchored {
		b.WriteString("$")
	} else {
		b.WriteString("(/.*)?$")
	}
	return b.String()
}
