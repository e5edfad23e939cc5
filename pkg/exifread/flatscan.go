package exifread

import (
	"errors"
	"time"

	"github.com/dsoprea/go-exif/v3"
)

// readFlat locates the raw embedded metadata blob anywhere in the file and
// decodes it to a flat tag list, independent of the surrounding container.
func readFlat(path string) (Fields, bool, error) {
	raw, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return Fields{}, false, nil
		}
		return Fields{}, false, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return Fields{}, false, nil
	}

	var f Fields
	for _, tag := range tags {
		s, ok := tag.Value.(string)
		if !ok {
			continue
		}
		tm, parseErr := time.ParseInLocation(Layout, s, time.Local)
		if parseErr != nil {
			continue
		}
		switch tag.TagName {
		case "DateTime":
			f.DateTime = tm
		case "DateTimeOriginal":
			f.DateTimeOriginal = tm
		case "DateTimeDigitized":
			f.DateTimeDigitized = tm
		}
	}
	if f.empty() {
		return Fields{}, false, nil
	}
	return f, true, nil
}
