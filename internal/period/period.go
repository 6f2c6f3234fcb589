// Package period provides the calendar windows used for booking limits.
package period

import "time"

// Week returns the half-open interval [start, end) of the calendar week
// containing t, with weeks beginning on firstDay. The boundaries are
// midnight in t's location.
func Week(t time.Time, firstDay time.Weekday) (start, end time.Time) {
	day := midnight(t)
	offset := (int(day.Weekday()) - int(firstDay) + 7) % 7
	start = day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// Month returns the half-open interval [start, end) of the calendar month
// containing t, with boundaries at midnight in t's location.
func Month(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// Day returns the half-open interval [start, end) of the calendar day
// containing t.
func Day(t time.Time) (start, end time.Time) {
	start = midnight(t)
	return start, start.AddDate(0, 0, 1)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
