// Package collect finds the documents of a directory tree for import.
// The .git directory, paths ignored by the root .gitignore, binary files
// and files over the size limit are skipped.
package collect

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"
)

const defaultMaxSize = 10 << 20 // 10 MiB

// sniffLen is how much of a file is checked for NUL bytes.
const sniffLen = 8000

// Options configures a walk.
type Options struct {
	Pattern  string // regexp matched against the file name or relative path; empty matches every file
	MaxFiles int    // 0 = unlimited
	MaxSize  int64  // bytes; 0 = 10 MiB
}

// File is one collected document.
type File struct {
	Path string // root joined with Rel
	Rel  string // relative to the root, slash separated
}

// Files walks root in lexical order and returns the text files matching
// opts.
func Files(ctx context.Context, root string, opts Options) ([]File, error) {
	var re *regexp.Regexp
	if opts.Pattern != "" {
		var err error
		if re, err = regexp.Compile(opts.Pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}

	rules, err := readIgnore(filepath.Join(root, ".gitignore"))
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("ignoring unreadable .gitignore")
		rules = nil
	}

	var files []File
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || rules.ignored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || rules.ignored(rel, false) {
			return nil
		}
		if re != nil && !re.MatchString(d.Name()) && !re.MatchString(rel) {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > maxSize {
			return nil
		}
		if !isText(p) {
			return nil
		}

		files = append(files, File{Path: p, Rel: rel})
		if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// isText reports whether the start of the file is free of NUL bytes.
func isText(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) < 0
}
