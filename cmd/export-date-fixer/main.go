package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quidome/export-date-fixer/pkg/config"
	"github.com/quidome/export-date-fixer/pkg/fix"
	"github.com/quidome/export-date-fixer/pkg/report"
	"github.com/quidome/export-date-fixer/pkg/rewrite"
	"github.com/quidome/export-date-fixer/pkg/scan"
)

const version = "0.1.0"

type options struct {
	verbose    bool
	debug      bool
	dryRun     bool
	configPath string
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "export-date-fixer",
		Short:   "Restore photo capture dates from export markup",
		Long:    "Export Date Fixer recovers original capture dates for photos in a personal-data export by reading the dates still recorded in the export's HTML documents and writing them back into each image's embedded metadata and filesystem timestamps.",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Export Date Fixer CLI")
			cmd.Printf("Version: %s\n", version)
			if opts.dryRun {
				cmd.Println("Dry run mode: enabled")
			}
			cmd.Println("")
			cmd.Println("Use --help to see available commands and options")
		},
	}

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "show extractor and resolver diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "resolve images without modifying them")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML config file")

	rootCmd.AddCommand(newFixCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))

	return rootCmd
}

func newFixCmd(opts *options) *cobra.Command {
	var recursive bool

	fixCmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Rewrite image dates recorded in markup documents",
		Long:  "Process one markup document or all documents in a directory: extract each image's recorded date, resolve the image on disk and rewrite its embedded date fields and filesystem timestamps. Per-image failures are reported and never abort the run.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			docs, err := collectDocs(args[0], recursive, cfg)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				cmd.Println("no markup documents found")
				return nil
			}
			if opts.verbose {
				cmd.PrintErrf("processing %d document(s)\n", len(docs))
			}

			outcomes := fix.ProcessBatch(docs, fix.Options{
				DryRun:          opts.dryRun,
				MediaRelPath:    cfg.MediaRelPath,
				ImageExtensions: cfg.ImageExtensions,
				Rewrite: rewrite.Options{
					BackupSuffix: cfg.BackupSuffix,
					Verify:       !cfg.SkipVerify,
				},
				Logger: newLogger(cmd.ErrOrStderr(), opts.debug),
			})

			report.Render(cmd.OutOrStdout(), outcomes)
			report.WriteSummary(cmd.OutOrStdout(), report.Count(outcomes))
			return nil
		},
	}

	fixCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "search for markup documents recursively")

	return fixCmd
}

func newScanCmd(opts *options) *cobra.Command {
	var recursive bool

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List markup documents that would be processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			docs, err := collectDocs(args[0], recursive, cfg)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				cmd.Println(doc)
			}
			if opts.verbose {
				cmd.PrintErrf("found %d markup document(s)\n", len(docs))
			}
			return nil
		},
	}

	scanCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "search for markup documents recursively")

	return scanCmd
}

// collectDocs turns the positional argument into an ordered document list:
// a single file must itself be a markup document, a directory is scanned.
func collectDocs(target string, recursive bool, cfg config.Config) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}

	if !info.IsDir() {
		if !hasExt(target, cfg.DocExtensions) {
			return nil, fmt.Errorf("not a markup document: %s", target)
		}
		return []string{target}, nil
	}

	scanOpts := scan.DefaultOptions()
	scanOpts.Extensions = cfg.DocExtensions
	if !recursive {
		scanOpts.MaxDepth = 0
	}

	matches, err := scan.Scan(os.DirFS(target), ".", scanOpts)
	if err != nil {
		return nil, err
	}

	docs := make([]string, len(matches))
	for i, m := range matches {
		docs[i] = filepath.Join(target, filepath.FromSlash(m))
	}
	return docs, nil
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// newLogger returns a debug-level logger when diagnostics are requested,
// nil otherwise.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	if !debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
