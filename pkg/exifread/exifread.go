// Package exifread extracts embedded date fields from image files.
//
// It is used to verify metadata rewrites by reading back what was written.
package exifread

import (
	"io"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Layout is the textual form of embedded date fields.
const Layout = "2006:01:02 15:04:05"

// Fields holds the three embedded date fields. A zero value means the field
// is absent or unparsable.
type Fields struct {
	DateTime          time.Time
	DateTimeOriginal  time.Time
	DateTimeDigitized time.Time
}

func (f Fields) empty() bool {
	return f.DateTime.IsZero() && f.DateTimeOriginal.IsZero() && f.DateTimeDigitized.IsZero()
}

// Read extracts the embedded date fields from a JPEG or TIFF stream.
// A stream without usable metadata returns (Fields{}, false, nil).
func Read(r io.Reader) (Fields, bool, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return Fields{}, false, nil
	}

	var f Fields
	f.DateTime = timeFromTag(x, exif.DateTime)
	f.DateTimeOriginal = timeFromTag(x, exif.DateTimeOriginal)
	f.DateTimeDigitized = timeFromTag(x, exif.DateTimeDigitized)
	if f.empty() {
		return Fields{}, false, nil
	}
	return f, true, nil
}

// ReadFile extracts the embedded date fields from the file at path. Containers
// the stream decoder cannot handle (PNG carries its metadata in a chunk) fall
// back to a raw scan for the embedded blob.
func ReadFile(path string) (Fields, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fields{}, false, err
	}
	fields, ok, err := Read(f)
	f.Close()
	if err == nil && ok {
		return fields, true, nil
	}
	return readFlat(path)
}

func timeFromTag(x *exif.Exif, name exif.FieldName) time.Time {
	tag, err := x.Get(name)
	if err != nil {
		return time.Time{}
	}
	s, err := tag.StringVal()
	if err != nil {
		return time.Time{}
	}
	// Embedded dates carry no zone; interpret as local.
	tm, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return tm
}
