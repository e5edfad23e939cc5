package rewrite

import (
	"fmt"
	"os"
	"time"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	pngstructure "github.com/dsoprea/go-png-image-structure/v2"

	"github.com/quidome/export-date-fixer/pkg/exifread"
)

// embedder writes the three embedded date fields into the file at path.
// The image payload itself is rewritten structurally, not re-encoded.
type embedder func(path string, when time.Time) error

func embedJPEG(path string, when time.Time) error {
	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse jpeg: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// No existing metadata segment; start from an empty builder.
		rootIb, err = newRootBuilder()
		if err != nil {
			return err
		}
	}

	if err := setDateTags(rootIb, when); err != nil {
		return err
	}
	if err := sl.SetExif(rootIb); err != nil {
		return fmt.Errorf("set exif segment: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewrite jpeg: %w", err)
	}
	defer f.Close()
	if err := sl.Write(f); err != nil {
		return fmt.Errorf("write jpeg: %w", err)
	}
	return nil
}

func embedPNG(path string, when time.Time) error {
	pmp := pngstructure.NewPngMediaParser()
	intfc, err := pmp.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse png: %w", err)
	}
	cs := intfc.(*pngstructure.ChunkSlice)

	rootIb, err := cs.ConstructExifBuilder()
	if err != nil {
		rootIb, err = newRootBuilder()
		if err != nil {
			return err
		}
	}

	if err := setDateTags(rootIb, when); err != nil {
		return err
	}
	if err := cs.SetExif(rootIb); err != nil {
		return fmt.Errorf("set exif chunk: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewrite png: %w", err)
	}
	defer f.Close()
	if err := cs.WriteTo(f); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func newRootBuilder() (*exif.IfdBuilder, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("ifd mapping: %w", err)
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

// setDateTags writes the primary timestamp into the root IFD and the capture
// and digitization timestamps into the Exif IFD.
func setDateTags(rootIb *exif.IfdBuilder, when time.Time) error {
	stamp := when.Format(exifread.Layout)

	ifd0, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0")
	if err != nil {
		return fmt.Errorf("root ifd: %w", err)
	}
	if err := ifd0.SetStandardWithName("DateTime", stamp); err != nil {
		return fmt.Errorf("set DateTime: %w", err)
	}

	exifIfd, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/Exif")
	if err != nil {
		return fmt.Errorf("exif ifd: %w", err)
	}
	if err := exifIfd.SetStandardWithName("DateTimeOriginal", stamp); err != nil {
		return fmt.Errorf("set DateTimeOriginal: %w", err)
	}
	if err := exifIfd.SetStandardWithName("DateTimeDigitized", stamp); err != nil {
		return fmt.Errorf("set DateTimeDigitized: %w", err)
	}
	return nil
}
