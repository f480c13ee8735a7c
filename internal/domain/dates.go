package domain

import "time"

// Day truncates t to midnight UTC of its calendar date. All ledger dates are days.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Within reports whether day lies in [start, end], inclusive on both sides.
func Within(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}
