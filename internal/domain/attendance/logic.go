package attendance

import "time"

// DayOf truncates a timestamp to its calendar date in the local zone of t.
// Attendance is keyed per (user, date), so two check-ins on the same calendar
// day collide regardless of the hour.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WorkedHours returns the span between check-in and check-out in hours,
// rounded to two decimals. Returns 0 when either side is missing or the
// interval is negative.
func WorkedHours(checkIn, checkOut *time.Time) float64 {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	d := checkOut.Sub(*checkIn)
	if d < 0 {
		return 0
	}
	hours := d.Hours()
	return float64(int(hours*100+0.5)) / 100
}

// StatusForHours classifies a checked-out day: under four hours counts as a
// half day, anything longer as present.
func StatusForHours(hours float64) string {
	if hours > 0 && hours < 4 {
		return StatusHalfDay
	}
	return StatusPresent
}
