package extract

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// Options configures document parsing.
type Options struct {
	// ImageExtensions limits which link targets count as image references.
	// If empty, DefaultImageExtensions is used.
	ImageExtensions []string

	// Logger receives per-candidate diagnostics at debug level. Nil disables.
	Logger *slog.Logger
}

// DefaultImageExtensions are the image file extensions recognized in link
// targets, matched case-insensitively.
func DefaultImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".heic"}
}

// Document is a parsed markup document ready for candidate iteration.
type Document struct {
	root   *html.Node
	exts   map[string]bool
	logger *slog.Logger
}

// Parse parses a markup document. A document that cannot be parsed at all
// fails here; no partial records are salvaged from it.
func Parse(r io.Reader, opts Options) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	exts := opts.ImageExtensions
	if len(exts) == 0 {
		exts = DefaultImageExtensions()
	}

	return &Document{
		root:   root,
		exts:   normalizeExts(exts),
		logger: opts.Logger,
	}, nil
}

// Candidates yields one candidate per image reference, in document order
// (top to bottom). The sequence is finite and restartable; every iteration
// walks the parsed tree anew.
func (d *Document) Candidates() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		d.walk(d.root, yield)
	}
}

func (d *Document) walk(n *html.Node, yield func(Candidate) bool) bool {
	if n.Type == html.ElementNode {
		if ref, ok := d.imageRef(n); ok && !d.wrappedDuplicate(n, ref) {
			if !yield(d.candidateFor(n, ref)) {
				return false
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !d.walk(c, yield) {
			return false
		}
	}
	return true
}

// imageRef returns the link target of an <img src> or <a href> node when it
// points at a recognized image extension. Query strings and fragments are
// stripped first; export tools append cache-busting parameters.
func (d *Document) imageRef(n *html.Node) (string, bool) {
	var key string
	switch n.Data {
	case "img":
		key = "src"
	case "a":
		key = "href"
	default:
		return "", false
	}

	for _, a := range n.Attr {
		if a.Key != key {
			continue
		}
		ref := strings.TrimSpace(a.Val)
		if i := strings.IndexAny(ref, "?#"); i >= 0 {
			ref = ref[:i]
		}
		if ref == "" {
			continue
		}
		if d.exts[strings.ToLower(path.Ext(ref))] {
			return ref, true
		}
	}
	return "", false
}

// wrappedDuplicate reports whether n is an <img> inside an <a> carrying the
// same reference. A thumbnail link and its inner image are one visual image;
// only the anchor yields a candidate.
func (d *Document) wrappedDuplicate(n *html.Node, ref string) bool {
	if n.Data != "img" {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode || p.Data != "a" {
			continue
		}
		if r, ok := d.imageRef(p); ok && r == ref {
			return true
		}
	}
	return false
}

func (d *Document) candidateFor(n *html.Node, ref string) Candidate {
	// The date is searched in the nearest enclosing block first, then in
	// wider ancestor blocks: per-post containers typically hold the date in
	// a sibling element of whatever wraps the image. Widening stops at
	// <body> and at the first ancestor spanning other image references,
	// since a block holding several images is a wrapper around posts and
	// its text belongs to whichever post wrote it.
	block := enclosingBlock(n)
	for b := block; b != nil; b = parentBlock(b) {
		if b != block && (b.Data == "body" || d.spansOtherImages(b, n, ref)) {
			break
		}
		if when, ok := FindDate(textOf(b)); ok {
			if d.logger != nil {
				d.logger.Debug("date found near image", "ref", ref, "taken", when)
			}
			return Candidate{Record: Record{Ref: ref, Taken: when}}
		}
	}

	context := snippet(textOf(block))
	if d.logger != nil {
		d.logger.Debug("no date near image", "ref", ref, "context", context)
	}
	return Candidate{Record: Record{Ref: ref}, Context: context}
}

// spansOtherImages reports whether block b contains an image reference beyond
// the one rooted at n. The thumbnail-link pair around n counts as n itself.
func (d *Document) spansOtherImages(b, n *html.Node, ref string) bool {
	found := false
	var visit func(m *html.Node)
	visit = func(m *html.Node) {
		if found {
			return
		}
		if m.Type == html.ElementNode && m != n {
			if r, ok := d.imageRef(m); ok && (r != ref || !sameLineage(m, n)) {
				found = true
				return
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(b)
	return found
}

// sameLineage reports whether one node encloses the other.
func sameLineage(a, b *html.Node) bool {
	return encloses(a, b) || encloses(b, a)
}

func encloses(outer, inner *html.Node) bool {
	for p := inner.Parent; p != nil; p = p.Parent {
		if p == outer {
			return true
		}
	}
	return false
}

// blockTags bound the textual vicinity searched for a date.
var blockTags = map[string]bool{
	"div":     true,
	"td":      true,
	"li":      true,
	"section": true,
	"article": true,
	"body":    true,
}

func enclosingBlock(n *html.Node) *html.Node {
	if b := parentBlock(n); b != nil {
		return b
	}
	return n
}

func parentBlock(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && blockTags[p.Data] {
			return p
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	appendText(n, &sb)
	return sb.String()
}

func appendText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(c, sb)
	}
}

const maxSnippet = 80

// snippet collapses whitespace and truncates for use in diagnostics.
func snippet(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= maxSnippet {
		return collapsed
	}
	return string(runes[:maxSnippet])
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
