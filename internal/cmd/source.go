package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xonecas/annotator/internal/annotation"
	"github.com/xonecas/annotator/internal/store"
	"github.com/xonecas/annotator/internal/text"
)

// source is a document read from a file or from the store.
type source struct {
	id, title string
	path      string // set when read from a file
	raw       string
	scroll    int
}

// loadSource reads arg as a file when one exists at that path, otherwise
// as a stored document id.
func loadSource(st *store.Store, arg string) (source, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		b, err := os.ReadFile(arg)
		if err != nil {
			return source{}, fmt.Errorf("read %s: %w", arg, err)
		}
		id, err := docIDForPath(arg)
		if err != nil {
			return source{}, err
		}
		return source{id: id, title: filepath.Base(arg), path: arg, raw: string(b)}, nil
	}

	doc, err := st.GetDocument(arg)
	if errors.Is(err, store.ErrNotFound) {
		return source{}, fmt.Errorf("%q is neither a file nor a stored document", arg)
	}
	if err != nil {
		return source{}, err
	}
	return source{id: doc.ID, title: doc.Title, raw: doc.Raw, scroll: doc.Scroll}, nil
}

// save writes raw back to where the source came from.
func (s source) save(st *store.Store, raw string) error {
	if s.path != "" {
		info, err := os.Stat(s.path)
		if err != nil {
			return err
		}
		return os.WriteFile(s.path, []byte(raw), info.Mode().Perm())
	}
	return st.PutDocument(store.Document{ID: s.id, Title: s.title, Raw: raw, Scroll: s.scroll})
}

// name is what diffs and logs call the source.
func (s source) name() string {
	if s.path != "" {
		return s.path
	}
	return s.id
}

// docIDForPath is the store id of an imported file: its absolute path.
func docIDForPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// rangeFlags select a plain-text range by match or by offsets.
type rangeFlags struct {
	match string
	nth   int
	span  string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.match, "match", "", "select the text of this match")
	cmd.Flags().IntVar(&f.nth, "nth", 1, "which match of --match to select (1-based)")
	cmd.Flags().StringVar(&f.span, "range", "", "select plain-text offsets start:end (end exclusive)")
	cmd.MarkFlagsMutuallyExclusive("match", "range")
}

func (f *rangeFlags) set() bool { return f.match != "" || f.span != "" }

// resolve returns the selected range of t.
func (f *rangeFlags) resolve(t *text.Text) (annotation.Range, error) {
	switch {
	case f.span != "":
		return parseSpan(f.span, t.PlainLen())
	case f.match != "":
		return nthMatch(t.Plain(), f.match, f.nth)
	}
	return annotation.Range{}, errors.New("one of --match or --range is required")
}

func parseSpan(s string, plainLen int) (annotation.Range, error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return annotation.Range{}, fmt.Errorf("range %q: want start:end", s)
	}
	start, err := strconv.Atoi(a)
	if err != nil {
		return annotation.Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	end, err := strconv.Atoi(b)
	if err != nil {
		return annotation.Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	if start < 0 || end > plainLen || start >= end {
		return annotation.Range{}, fmt.Errorf("range %q: outside 0:%d", s, plainLen)
	}
	return annotation.Range{Start: start, End: end}, nil
}

// nthMatch finds the n-th occurrence of q in plain, in rune offsets.
// Unlike the wrapped-line search it crosses segment boundaries.
func nthMatch(plain, q string, n int) (annotation.Range, error) {
	hay, needle := []rune(plain), []rune(q)
	seen := 0
	for i := 0; i+len(needle) <= len(hay); i++ {
		if string(hay[i:i+len(needle)]) != q {
			continue
		}
		seen++
		if seen == n {
			return annotation.Range{Start: i, End: i + len(needle)}, nil
		}
	}
	if seen == 0 {
		return annotation.Range{}, fmt.Errorf("no match for %q", q)
	}
	return annotation.Range{}, fmt.Errorf("match %d of %q: only %d found", n, q, seen)
}
