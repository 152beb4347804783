package dataset

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order. The last two cover the default
// short-date number format of spreadsheet exports.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"01-02-06",
}

// ParseDate parses a calendar day and returns it at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
