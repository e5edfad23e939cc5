// Package scan discovers markup documents beneath a directory tree.
package scan

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Options configures document discovery.
type Options struct {
	// MaxDepth bounds recursion below the root: 0 means the root directory
	// only, -1 means unlimited.
	MaxDepth int

	// Extensions are the document extensions to match, case-insensitive.
	Extensions []string
}

// DefaultOptions matches HTML documents recursively.
func DefaultOptions() Options {
	return Options{
		MaxDepth:   -1,
		Extensions: []string{".html", ".htm"},
	}
}

// Scan walks fsys from root and returns matching document paths, sorted,
// relative to the root and slash-separated.
func Scan(fsys fs.FS, root string, opts Options) ([]string, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	exts := normalizeExts(opts.Extensions)

	var matches []string
	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if opts.MaxDepth >= 0 && depth(rel) >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
			return nil
		}
		if !exts[strings.ToLower(filepath.Ext(rel))] {
			return nil
		}

		matches = append(matches, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(strings.ToLower(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

func depth(rel string) int {
	rel = filepath.Clean(rel)
	if rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/")
}
