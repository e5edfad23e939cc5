// Package rewrite performs guarded in-place updates of an image's embedded
// date fields and filesystem timestamps.
//
// Every update is wrapped in a backup-and-restore discipline: the original
// file is copied to a .backup sibling before any mutation, restored from it
// on any failure, and the backup is removed only after the update succeeded.
package rewrite

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"

	"github.com/quidome/export-date-fixer/pkg/exifread"
)

// ErrUnsupported is returned for formats whose embedded metadata cannot be
// rewritten in place. The target file is not touched.
var ErrUnsupported = errors.New("unsupported image format")

const defaultBackupSuffix = ".backup"

// Options configures Apply.
type Options struct {
	// BackupSuffix names the transient backup sibling. Empty means ".backup".
	BackupSuffix string

	// Verify re-reads the embedded fields after writing and fails the update
	// when they do not match what was written.
	Verify bool
}

// DefaultOptions enables post-write verification.
func DefaultOptions() Options {
	return Options{BackupSuffix: defaultBackupSuffix, Verify: true}
}

// Apply updates the embedded date fields (DateTime, DateTimeOriginal,
// DateTimeDigitized) and the filesystem modify/access times of the image at
// path to when. The file is left byte-identical to its original state unless
// the whole update succeeds. If the update fails and the original cannot be
// restored either, the error says so and the backup file is left in place as
// the recovery path.
func Apply(path string, when time.Time, opts Options) error {
	when = when.Truncate(time.Second)

	embed, err := embedderFor(path)
	if err != nil {
		return err
	}

	suffix := opts.BackupSuffix
	if suffix == "" {
		suffix = defaultBackupSuffix
	}
	backup := path + suffix

	if err := copyPreservingTimes(path, backup); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	if err := mutate(path, when, embed, opts); err != nil {
		// Best-effort restore; the backup carries the original content
		// and timestamps.
		if restoreErr := os.Rename(backup, path); restoreErr != nil {
			return fmt.Errorf("%w (restore failed, backup retained at %s: %v)", err, backup, restoreErr)
		}
		return err
	}

	if err := os.Remove(backup); err != nil {
		return fmt.Errorf("remove backup: %w", err)
	}
	return nil
}

func mutate(path string, when time.Time, embed embedder, opts Options) error {
	if err := embed(path, when); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if opts.Verify {
		if err := verify(path, when); err != nil {
			return err
		}
	}
	// Timestamps go last: the verification read would advance atime again.
	if err := os.Chtimes(path, when, when); err != nil {
		return fmt.Errorf("set timestamps: %w", err)
	}
	return nil
}

// verify confirms the embedded original-capture field reads back as the
// timestamp that was written.
func verify(path string, when time.Time) error {
	fields, ok, err := exifread.ReadFile(path)
	if err != nil {
		return fmt.Errorf("verify metadata: %w", err)
	}
	if !ok || !fields.DateTimeOriginal.Equal(when) {
		return fmt.Errorf("verify metadata: read back %v, wrote %v", fields.DateTimeOriginal, when)
	}
	return nil
}

func embedderFor(path string) (embedder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return embedJPEG, nil
	case ".png":
		return embedPNG, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

// copyPreservingTimes copies src to dst, carrying over the file mode and the
// original access/modify times so a restore puts everything back.
func copyPreservingTimes(src, dst string) error {
	spec, err := times.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy content: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	if err := os.Chtimes(dst, spec.AccessTime(), spec.ModTime()); err != nil {
		return fmt.Errorf("preserve timestamps: %w", err)
	}
	return nil
}
