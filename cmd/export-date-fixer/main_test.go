package main

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/quidome/export-date-fixer/pkg/exifread"
)

func TestRootCommand_PrintsVersion(t *testing.T) {
	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	output := out.String()
	if !strings.Contains(output, "Export Date Fixer CLI") {
		t.Fatalf("expected output to include CLI header, got %q", output)
	}
	if !strings.Contains(output, "Version: "+version) {
		t.Fatalf("expected output to include version, got %q", output)
	}
}

func TestFixCommand_RequiresPath(t *testing.T) {
	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"fix"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestFixCommand_MissingPathFails(t *testing.T) {
	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"fix", filepath.Join(t.TempDir(), "nope")})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestFixCommand_EndToEnd(t *testing.T) {
	root := t.TempDir()
	img := writeExport(t, root)

	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"fix", "--recursive", root})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fix: %v\noutput: %s", err, out.String())
	}

	output := out.String()
	if !strings.Contains(output, "updated") {
		t.Fatalf("expected an updated outcome, got:\n%s", output)
	}
	if !strings.Contains(output, "1 image(s) processed") {
		t.Fatalf("expected summary, got:\n%s", output)
	}

	want := time.Date(2012, 8, 6, 16, 13, 0, 0, time.Local)
	fields, ok, err := exifread.ReadFile(img)
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if !fields.DateTimeOriginal.Equal(want) {
		t.Fatalf("DateTimeOriginal %v, want %v", fields.DateTimeOriginal, want)
	}
}

func TestFixCommand_DryRunMutatesNothing(t *testing.T) {
	root := t.TempDir()
	img := writeExport(t, root)
	before, err := os.ReadFile(img)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"fix", "--recursive", "--dry-run", root})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(out.String(), "would-update") {
		t.Fatalf("expected would-update outcome, got:\n%s", out.String())
	}

	after, err := os.ReadFile(img)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("dry run mutated the image")
	}
}

func TestScanCommand_ListsDocuments(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root)

	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"scan", "--recursive", root})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out.String(), "posts.html") {
		t.Fatalf("expected document listing, got %q", out.String())
	}
}

func TestScanCommand_NonRecursiveSkipsSubdirs(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root)

	cmd := newRootCmd()

	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"scan", root})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.Contains(out.String(), "posts.html") {
		t.Fatalf("non-recursive scan should not reach nested document, got %q", out.String())
	}
}

// writeExport builds a minimal export tree: a markup document in a
// subdirectory and a matching JPEG in the media root. Returns the image path.
func writeExport(t *testing.T, root string) string {
	t.Helper()

	docDir := filepath.Join(root, "activity")
	mediaDir := filepath.Join(root, "media", "other")
	for _, dir := range []string{docDir, mediaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	doc := `<html><body><div><a href="photo1.jpg">Aug 06, 2012 4:13 pm</a></div></body></html>`
	if err := os.WriteFile(filepath.Join(docDir, "posts.html"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: 120, B: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	imgPath := filepath.Join(mediaDir, "photo1.jpg")
	if err := os.WriteFile(imgPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write jpeg: %v", err)
	}
	return imgPath
}
