package search

import (
	"strings"
	"time"

	"funmarket/internal/domain"
)

const dateLayout = "2006-01-02"

// CalendarDate reduces s to a YYYY-MM-DD date in loc. Plain dates are taken as
// they are; timestamps carrying a zone are converted to loc first.
func CalendarDate(s string, loc *time.Location) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t.Format(dateLayout), true
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc).Format(dateLayout), true
		}
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t.Format(dateLayout), true
	}
	return "", false
}

// IsAvailable is false only when date is one of the listing's blackout dates.
// An empty date means no availability filter.
func IsAvailable(l domain.Listing, date string) bool {
	if date == "" {
		return true
	}
	return !l.UnavailableDates.Has(date)
}
