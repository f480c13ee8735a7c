package recurrence

import (
	"fmt"
	"time"

	"github.com/carson-networks/ledger-server/internal/domain"
)

// addMonths moves t forward by n calendar months, clamping to the last day of the target month
// instead of overflowing into the next one as time.AddDate does.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := min(t.Day(), domain.DaysIn(first.Year(), first.Month()))
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Advance returns the execution date following base. For MONTHLY schedules a dayOfMonth anchor
// in 1..31 pins the result to that day, or to the month's last day when the month is shorter.
func Advance(base time.Time, frequency domain.Frequency, dayOfMonth int) (time.Time, error) {
	base = domain.Day(base)
	switch frequency {
	case domain.FrequencyDaily:
		return base.AddDate(0, 0, 1), nil
	case domain.FrequencyWeekly:
		return base.AddDate(0, 0, 7), nil
	case domain.FrequencyMonthly:
		next := addMonths(base, 1)
		if dayOfMonth >= 1 && dayOfMonth <= 31 {
			day := min(dayOfMonth, domain.DaysIn(next.Year(), next.Month()))
			next = time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, time.UTC)
		}
		return next, nil
	case domain.FrequencyYearly:
		return addMonths(base, 12), nil
	}
	return time.Time{}, fmt.Errorf("frequency %q: %w", frequency, domain.ErrInvalidFrequency)
}
