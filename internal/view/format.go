package view

import (
	"fmt"
	"time"
)

// FormatDate renders a timestamp as `d-m-yyyy (HH:MM)`.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d-%d-%d (%02d:%02d)", t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute())
}

// FormatSeconds renders a duration in whole seconds as a readable range.
// Minutes are dropped once days appear, seconds once days or hours appear.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	seconds -= days * 86400
	hours := seconds / 3600
	seconds -= hours * 3600
	minutes := seconds / 60
	seconds -= minutes * 60

	result := ""
	if days > 0 {
		result += fmt.Sprintf("%d day(s) ", days)
	}
	if hours > 0 {
		result += fmt.Sprintf("%d hour(s) ", hours)
	}
	if minutes > 0 && days == 0 {
		result += fmt.Sprintf("%d minute(s)", minutes)
	}
	if days == 0 && hours == 0 {
		result += fmt.Sprintf("%d second(s)", seconds)
	}
	return result
}

// ElapsedSince returns whole seconds from since to now, never negative.
func ElapsedSince(now time.Time, since time.Time) int {
	delta := int(now.Sub(since).Seconds())
	if delta < 0 {
		return 0
	}
	return delta
}
