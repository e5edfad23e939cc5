package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no strategy produced an existing file.
var ErrNotFound = errors.New("image not found")

// DefaultMediaRelPath is the conventional media location beneath an export
// root, relative to it.
const DefaultMediaRelPath = "media/other"

// Strategy maps a raw image reference plus a document directory to an existing
// file path. Strategies report every concrete path they considered so failed
// resolutions can be diagnosed; they are tried in order and the first hit wins.
type Strategy interface {
	Name() string
	Locate(ref, docDir string) (path string, attempts []string)
}

// Options configures a Resolver.
type Options struct {
	// MediaRelPath overrides the conventional media location beneath the
	// export root. Empty means DefaultMediaRelPath.
	MediaRelPath string

	// Logger receives per-resolution diagnostics at debug level. Nil disables.
	Logger *slog.Logger
}

// Resolver resolves raw image references from markup documents to absolute
// paths on disk using an ordered list of fallback strategies.
type Resolver struct {
	strategies []Strategy
	logger     *slog.Logger
}

// New returns a Resolver with the standard strategy order: the reference
// relative to the document's directory, then a basename lookup in the export's
// media root, then a case- and extension-insensitive basename match there.
func New(opts Options) *Resolver {
	rel := opts.MediaRelPath
	if rel == "" {
		rel = DefaultMediaRelPath
	}
	rel = filepath.FromSlash(rel)

	return &Resolver{
		strategies: []Strategy{
			relativeStrategy{},
			basenameStrategy{rel: rel},
			fuzzyStrategy{rel: rel},
		},
		logger: opts.Logger,
	}
}

// Resolve maps ref against the directory of the markup document it came from.
// The returned path is absolute and exists at the time of resolution. On
// failure it returns ErrNotFound; the attempted paths are returned either way
// for diagnostics and do not affect the resolution contract.
func (r *Resolver) Resolve(ref, docDir string) (string, []string, error) {
	var attempts []string
	for _, s := range r.strategies {
		found, tried := s.Locate(ref, docDir)
		attempts = append(attempts, tried...)
		if found == "" {
			continue
		}
		abs, err := filepath.Abs(found)
		if err != nil {
			return "", attempts, fmt.Errorf("absolute path for %s: %w", found, err)
		}
		if r.logger != nil {
			r.logger.Debug("image resolved", "ref", ref, "strategy", s.Name(), "path", abs)
		}
		return abs, attempts, nil
	}

	if r.logger != nil {
		r.logger.Debug("image not found", "ref", ref, "attempts", attempts)
	}
	return "", attempts, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// relativeStrategy interprets the reference as a path relative to the markup
// document's own directory.
type relativeStrategy struct{}

func (relativeStrategy) Name() string { return "relative-to-document" }

func (relativeStrategy) Locate(ref, docDir string) (string, []string) {
	candidate := filepath.Join(docDir, filepath.FromSlash(ref))
	if fileExists(candidate) {
		return candidate, []string{candidate}
	}
	return "", []string{candidate}
}

// basenameStrategy looks the reference's final path segment up inside the
// export's media root.
type basenameStrategy struct {
	rel string
}

func (basenameStrategy) Name() string { return "media-root-basename" }

func (s basenameStrategy) Locate(ref, docDir string) (string, []string) {
	root, ok := mediaRoot(docDir, s.rel)
	if !ok {
		return "", nil
	}
	candidate := filepath.Join(root, refBase(ref))
	if fileExists(candidate) {
		return candidate, []string{candidate}
	}
	return "", []string{candidate}
}

// fuzzyStrategy tolerates export tools that alter basename case or swap
// between equivalent extensions on re-encode.
type fuzzyStrategy struct {
	rel string
}

func (fuzzyStrategy) Name() string { return "media-root-fuzzy" }

func (s fuzzyStrategy) Locate(ref, docDir string) (string, []string) {
	root, ok := mediaRoot(docDir, s.rel)
	if !ok {
		return "", nil
	}

	base := refBase(ref)
	attempts := []string{filepath.Join(root, base) + " (case/extension-insensitive)"}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", attempts
	}

	want := normalizeName(base)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if normalizeName(entry.Name()) == want {
			return filepath.Join(root, entry.Name()), attempts
		}
	}
	return "", attempts
}

// mediaRoot walks upward from docDir until a directory containing the media
// relative path exists, and returns that media directory.
func mediaRoot(docDir, rel string) (string, bool) {
	dir := docDir
	for {
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func refBase(ref string) string {
	return filepath.Base(filepath.FromSlash(ref))
}

// normalizeName lowercases a basename and folds equivalent extensions so
// "Photo1.JPEG" matches "photo1.jpg".
func normalizeName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ToLower(stem) + ext
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
