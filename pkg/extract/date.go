package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Record associates a raw image reference with the capture time recorded
// alongside it in the markup. Taken has second precision and no zone
// information; it is interpreted in local time and never re-parsed downstream.
type Record struct {
	Ref   string
	Taken time.Time
}

// Candidate is one image-date association found in a document. When no
// recognizable date appears near the image reference, Taken is zero and
// Context holds a snippet of the surrounding text for diagnosis.
type Candidate struct {
	Record
	Context string
}

// HasDate reports whether a date was recognized near the image reference.
func (c Candidate) HasDate() bool { return !c.Taken.IsZero() }

// EmbeddedLayout is the textual form used by embedded metadata date fields.
const EmbeddedLayout = "2006:01:02 15:04:05"

var (
	// Display format: "Aug 06, 2012 4:13 pm". The am/pm marker and month
	// abbreviation match in any case.
	reDisplay = regexp.MustCompile(`(?i)\b([a-z]{3}) (\d{1,2}), (\d{4}) (\d{1,2}):(\d{2}) (am|pm)\b`)

	// Embedded-metadata format: "2012:08:06 16:13:00".
	reEmbedded = regexp.MustCompile(`\b(\d{4}):(\d{2}):(\d{2}) (\d{2}):(\d{2}):(\d{2})\b`)
)

// FindDate scans text for the first recognizable date, trying the display
// format before the embedded-metadata format. Both formats denote naive local
// timestamps; equal instants in either format parse to equal values.
func FindDate(text string) (time.Time, bool) {
	for _, m := range reDisplay.FindAllStringSubmatch(text, -1) {
		if when, ok := parseDisplay(m); ok {
			return when, true
		}
	}
	for _, m := range reEmbedded.FindAllString(text, -1) {
		if when, err := time.ParseInLocation(EmbeddedLayout, m, time.Local); err == nil {
			return when, true
		}
	}
	return time.Time{}, false
}

func parseDisplay(m []string) (time.Time, bool) {
	month, ok := monthAbbrev(m[1])
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if day < 1 || day > 31 || hour < 1 || hour > 12 {
		return time.Time{}, false
	}

	// 12-hour to 24-hour clock.
	if strings.EqualFold(m[6], "pm") {
		if hour != 12 {
			hour += 12
		}
	} else if hour == 12 {
		hour = 0
	}

	when := time.Date(year, month, day, hour, minute, 0, 0, time.Local)
	// time.Date normalizes out-of-range days ("Sep 31" becomes Oct 1);
	// such a date was never written by the export tool, so reject it.
	if when.Month() != month || when.Day() != day {
		return time.Time{}, false
	}
	return when, true
}

func monthAbbrev(s string) (time.Month, bool) {
	if len(s) != 3 {
		return 0, false
	}
	normalized := strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	t, err := time.Parse("Jan", normalized)
	if err != nil {
		return 0, false
	}
	return t.Month(), true
}
