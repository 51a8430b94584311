package attendance

import (
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	morning := time.Date(2026, 3, 11, 8, 15, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 11, 19, 45, 0, 0, time.UTC)
	if !DayOf(morning).Equal(DayOf(evening)) {
		t.Fatalf("same-day timestamps should collapse to one date")
	}
	nextDay := time.Date(2026, 3, 12, 0, 0, 1, 0, time.UTC)
	if DayOf(morning).Equal(DayOf(nextDay)) {
		t.Fatalf("different days should not collide")
	}
}

func TestWorkedHours(t *testing.T) {
	in := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 11, 17, 30, 0, 0, time.UTC)

	if got := WorkedHours(&in, &out); got != 8.5 {
		t.Fatalf("expected 8.5 hours, got %v", got)
	}
	if got := WorkedHours(nil, &out); got != 0 {
		t.Fatalf("missing check-in should yield 0, got %v", got)
	}
	if got := WorkedHours(&out, &in); got != 0 {
		t.Fatalf("negative interval should yield 0, got %v", got)
	}
}

func TestStatusForHours(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{8, StatusPresent},
		{4, StatusPresent},
		{3.99, StatusHalfDay},
		{1, StatusHalfDay},
		{0, StatusPresent},
	}
	for _, tc := range cases {
		if got := StatusForHours(tc.hours); got != tc.want {
			t.Fatalf("StatusForHours(%v) = %q, want %q", tc.hours, got, tc.want)
		}
	}
}
