package text

// token is one markup candidate found in a raw value.
type token struct {
	start, end int // byte range in raw, end exclusive
	tag        string
	closing    bool
}

// IsTagID reports whether id can name a tag: one or more of
// letters, digits, '_', '.', ':' or '-'.
func IsTagID(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !isIDByte(id[i]) {
			return false
		}
	}
	return true
}

func isIDByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == ':' || c == '-'
}

// OpenTag returns the opening markup for tag.
func OpenTag(tag string) string { return "<" + tag + ">" }

// CloseTag returns the closing markup for tag.
func CloseTag(tag string) string { return "</" + tag + ">" }

// scanTokens finds every well-formed <id> or </id> in raw, in order.
// Nothing here decides whether a token is markup; see pairTokens.
func scanTokens(raw string) []token {
	var toks []token
	for i := 0; i < len(raw); i++ {
		if raw[i] != '<' {
			continue
		}
		j := i + 1
		closing := false
		if j < len(raw) && raw[j] == '/' {
			closing = true
			j++
		}
		k := j
		for k < len(raw) && isIDByte(raw[k]) {
			k++
		}
		if k == j || k >= len(raw) || raw[k] != '>' {
			continue
		}
		toks = append(toks, token{start: i, end: k + 1, tag: raw[j:k], closing: closing})
		i = k
	}
	return toks
}

// pairTokens keeps the tokens that close an earlier open token of the same
// id, together with the open they close. Everything else stays literal
// text, so stray or unbalanced markup never breaks a document.
func pairTokens(toks []token) []token {
	keep := make([]bool, len(toks))
	open := make(map[string][]int)
	for i, tk := range toks {
		if !tk.closing {
			open[tk.tag] = append(open[tk.tag], i)
			continue
		}
		stack := open[tk.tag]
		if len(stack) == 0 {
			continue
		}
		keep[stack[len(stack)-1]] = true
		keep[i] = true
		open[tk.tag] = stack[:len(stack)-1]
	}

	var out []token
	for i, tk := range toks {
		if keep[i] {
			out = append(out, tk)
		}
	}
	return out
}

func markupTokens(raw string) []token {
	return pairTokens(scanTokens(raw))
}
