// Package view derives display-ready projections from test runs.
//
// Everything here is pure: functions take the records and the current time
// and never fail. Malformed input turns into explicit placeholders.
package view

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// InvalidDate is shown for absent or unparseable timestamps.
const InvalidDate = "Invalid date"

// AbsoluteLayout is the layout of formatted absolute timestamps.
const AbsoluteLayout = "Jan 2, 2006 15:04:05"

// layouts accepted from the service, most common first
var layouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006, 3:04:05 PM",
}

// Timestamp is a timestamp rendered for display.
type Timestamp struct {
	Absolute string `json:"absolute"`
	Relative string `json:"relative"`
	Valid    bool   `json:"valid"`
}

// ParseTime parses a service timestamp. Values without a zone are read as
// local time.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders raw as an absolute and a relative string.
func FormatTimestamp(raw string, now time.Time) Timestamp {
	t, ok := ParseTime(raw)
	if !ok {
		return Timestamp{Absolute: InvalidDate, Relative: InvalidDate}
	}
	return Timestamp{
		Absolute: t.Format(AbsoluteLayout),
		Relative: humanize.RelTime(t, now, "ago", "from now"),
		Valid:    true,
	}
}
