// Package fix runs the extract, resolve, rewrite pipeline over markup
// documents and accumulates a per-image outcome for each step that fails
// or succeeds.
//
// Failures are values, not control flow: nothing that happens to a single
// image or document aborts the batch.
package fix

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/quidome/export-date-fixer/pkg/extract"
	"github.com/quidome/export-date-fixer/pkg/resolve"
	"github.com/quidome/export-date-fixer/pkg/rewrite"
)

// Kind classifies the result of processing one image reference, or, for
// KindDocFailed, one whole document.
type Kind string

const (
	// KindUpdated: metadata and timestamps were rewritten.
	KindUpdated Kind = "updated"
	// KindWouldUpdate: dry run; the file resolved and would be rewritten.
	KindWouldUpdate Kind = "would-update"
	// KindNoDate: an image reference with no recognizable date nearby.
	KindNoDate Kind = "no-date"
	// KindNotFound: a date parsed but no file could be resolved.
	KindNotFound Kind = "not-found"
	// KindWriteFailed: the metadata update failed; the original was restored.
	KindWriteFailed Kind = "write-failed"
	// KindDocFailed: the document could not be read or parsed at all.
	KindDocFailed Kind = "doc-failed"
)

// Outcome records what happened for one image reference within a document.
type Outcome struct {
	Kind Kind
	Doc  string
	Ref  string

	// Path is the resolved absolute file path (Updated, WouldUpdate,
	// WriteFailed).
	Path string

	// Taken is the timestamp applied or that would be applied.
	Taken time.Time

	// Context is a snippet of the markup text near the image (NoDate).
	Context string

	// Attempts are the concrete paths tried during resolution (NotFound).
	Attempts []string

	// Err carries the underlying failure (NotFound, WriteFailed, DocFailed).
	Err error
}

// Options configures a pipeline run.
type Options struct {
	// DryRun resolves but performs no mutation.
	DryRun bool

	// MediaRelPath locates the media directory beneath the export root.
	// Empty means the conventional location.
	MediaRelPath string

	// ImageExtensions overrides the recognized image reference extensions.
	ImageExtensions []string

	// Rewrite configures the metadata writer.
	Rewrite rewrite.Options

	// Logger receives debug diagnostics from all stages. Nil disables.
	Logger *slog.Logger
}

// ProcessBatch processes documents strictly in order. Per-document and
// per-image failures become outcomes; they never abort the batch.
func ProcessBatch(docs []string, opts Options) []Outcome {
	var outcomes []Outcome
	for _, doc := range docs {
		outcomes = append(outcomes, ProcessDocument(doc, opts)...)
	}
	return outcomes
}

// ProcessDocument runs the pipeline over one markup document, returning one
// outcome per image reference in document order. A document that cannot be
// read or parsed yields a single KindDocFailed outcome.
func ProcessDocument(docPath string, opts Options) []Outcome {
	f, err := os.Open(docPath)
	if err != nil {
		return []Outcome{{Kind: KindDocFailed, Doc: docPath, Err: fmt.Errorf("open document: %w", err)}}
	}
	doc, err := extract.Parse(f, extract.Options{
		ImageExtensions: opts.ImageExtensions,
		Logger:          opts.Logger,
	})
	f.Close()
	if err != nil {
		return []Outcome{{Kind: KindDocFailed, Doc: docPath, Err: err}}
	}

	docDir := filepath.Dir(docPath)
	resolver := resolve.New(resolve.Options{
		MediaRelPath: opts.MediaRelPath,
		Logger:       opts.Logger,
	})

	var outcomes []Outcome
	for cand := range doc.Candidates() {
		outcomes = append(outcomes, processCandidate(cand, docPath, docDir, resolver, opts))
	}
	return outcomes
}

func processCandidate(cand extract.Candidate, docPath, docDir string, resolver *resolve.Resolver, opts Options) Outcome {
	out := Outcome{Doc: docPath, Ref: cand.Ref}

	if !cand.HasDate() {
		out.Kind = KindNoDate
		out.Context = cand.Context
		return out
	}
	out.Taken = cand.Taken

	path, attempts, err := resolver.Resolve(cand.Ref, docDir)
	if err != nil {
		out.Kind = KindNotFound
		out.Attempts = attempts
		out.Err = err
		return out
	}
	out.Path = path

	if opts.DryRun {
		out.Kind = KindWouldUpdate
		return out
	}

	if err := rewrite.Apply(path, cand.Taken, opts.Rewrite); err != nil {
		out.Kind = KindWriteFailed
		out.Err = err
		return out
	}

	out.Kind = KindUpdated
	return out
}
