// Package report renders human-readable summaries of pipeline outcomes.
// It consumes outcomes for display only and never influences processing.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/quidome/export-date-fixer/pkg/fix"
)

// Tally counts outcomes by kind.
type Tally struct {
	Updated     int
	WouldUpdate int
	NoDate      int
	NotFound    int
	WriteFailed int
	DocFailed   int
}

// Count tallies a batch of outcomes.
func Count(outcomes []fix.Outcome) Tally {
	var t Tally
	for _, out := range outcomes {
		switch out.Kind {
		case fix.KindUpdated:
			t.Updated++
		case fix.KindWouldUpdate:
			t.WouldUpdate++
		case fix.KindNoDate:
			t.NoDate++
		case fix.KindNotFound:
			t.NotFound++
		case fix.KindWriteFailed:
			t.WriteFailed++
		case fix.KindDocFailed:
			t.DocFailed++
		}
	}
	return t
}

// Total is the number of outcomes tallied.
func (t Tally) Total() int {
	return t.Updated + t.WouldUpdate + t.NoDate + t.NotFound + t.WriteFailed + t.DocFailed
}

// Render writes a per-outcome table to w. When w is a terminal the table uses
// a rounded style; otherwise plain borders keep the output pipe-friendly.
func Render(w io.Writer, outcomes []fix.Outcome) {
	if len(outcomes) == 0 {
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	}

	tw.AppendHeader(table.Row{"Result", "Document", "Image", "Detail"})
	for _, out := range outcomes {
		tw.AppendRow(table.Row{
			string(out.Kind),
			filepath.Base(out.Doc),
			imageCell(out),
			detail(out),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 60, Align: text.AlignLeft},
	})
	tw.Render()
}

// WriteSummary writes the final one-line-per-kind tally.
func WriteSummary(w io.Writer, t Tally) {
	fmt.Fprintf(w, "\n%d image(s) processed\n", t.Total())
	if t.Updated > 0 {
		fmt.Fprintf(w, "  updated:      %d\n", t.Updated)
	}
	if t.WouldUpdate > 0 {
		fmt.Fprintf(w, "  would update: %d\n", t.WouldUpdate)
	}
	if t.NoDate > 0 {
		fmt.Fprintf(w, "  no date:      %d\n", t.NoDate)
	}
	if t.NotFound > 0 {
		fmt.Fprintf(w, "  not found:    %d\n", t.NotFound)
	}
	if t.WriteFailed > 0 {
		fmt.Fprintf(w, "  write failed: %d\n", t.WriteFailed)
	}
	if t.DocFailed > 0 {
		fmt.Fprintf(w, "  doc failed:   %d\n", t.DocFailed)
	}
}

func imageCell(out fix.Outcome) string {
	if out.Path != "" {
		return filepath.Base(out.Path)
	}
	return out.Ref
}

func detail(out fix.Outcome) string {
	switch out.Kind {
	case fix.KindUpdated, fix.KindWouldUpdate:
		return out.Taken.Format("2006-01-02 15:04:05")
	case fix.KindNoDate:
		return out.Context
	case fix.KindNotFound:
		return fmt.Sprintf("tried %d path(s)", len(out.Attempts))
	default:
		if out.Err != nil {
			return strings.TrimSpace(out.Err.Error())
		}
		return ""
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
