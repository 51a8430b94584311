package metrics

import "time"

// DerivePeriod resolves a period type to inclusive date boundaries around
// now. Weekly periods run ISO-style Monday through Sunday: a Sunday "now"
// belongs to the week that started the preceding Monday.
func DerivePeriod(periodType PeriodType, now time.Time) (Period, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch periodType {
	case PeriodDaily:
		return Period{Type: PeriodDaily, Start: today, End: today}, nil
	case PeriodWeekly:
		weekday := int(today.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		monday := today.AddDate(0, 0, -(weekday - 1))
		return Period{Type: PeriodWeekly, Start: monday, End: monday.AddDate(0, 0, 6)}, nil
	case PeriodMonthly:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		last := first.AddDate(0, 1, -1)
		return Period{Type: PeriodMonthly, Start: first, End: last}, nil
	}
	return Period{}, ErrUnknownPeriodType
}

// WorkingDays counts Monday..Friday between start and end inclusive.
func WorkingDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}
