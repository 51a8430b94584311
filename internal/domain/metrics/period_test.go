package metrics

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDerivePeriodDaily(t *testing.T) {
	now := time.Date(2026, time.March, 11, 14, 30, 0, 0, time.UTC)
	period, err := DerivePeriod(PeriodDaily, now)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !period.Start.Equal(date(2026, time.March, 11)) || !period.End.Equal(date(2026, time.March, 11)) {
		t.Fatalf("daily period should be today only, got %v..%v", period.Start, period.End)
	}
}

func TestDerivePeriodWeeklyFromWednesday(t *testing.T) {
	// 2026-03-11 is a Wednesday.
	period, err := DerivePeriod(PeriodWeekly, date(2026, time.March, 11))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !period.Start.Equal(date(2026, time.March, 9)) {
		t.Fatalf("expected Monday 2026-03-09, got %v", period.Start)
	}
	if !period.End.Equal(date(2026, time.March, 15)) {
		t.Fatalf("expected Sunday 2026-03-15, got %v", period.End)
	}
}

func TestDerivePeriodWeeklySundayMapsToPrecedingMonday(t *testing.T) {
	// 2026-03-15 is a Sunday; it closes the week opened on 03-09.
	period, err := DerivePeriod(PeriodWeekly, date(2026, time.March, 15))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !period.Start.Equal(date(2026, time.March, 9)) {
		t.Fatalf("Sunday must map to the preceding Monday, got %v", period.Start)
	}
	if !period.End.Equal(date(2026, time.March, 15)) {
		t.Fatalf("expected Sunday itself as end, got %v", period.End)
	}
}

func TestDerivePeriodWeeklyMonday(t *testing.T) {
	// A Monday starts its own week.
	period, err := DerivePeriod(PeriodWeekly, date(2026, time.March, 9))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !period.Start.Equal(date(2026, time.March, 9)) || !period.End.Equal(date(2026, time.March, 15)) {
		t.Fatalf("unexpected week %v..%v", period.Start, period.End)
	}
}

func TestDerivePeriodMonthly(t *testing.T) {
	period, err := DerivePeriod(PeriodMonthly, date(2026, time.February, 17))
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if !period.Start.Equal(date(2026, time.February, 1)) || !period.End.Equal(date(2026, time.February, 28)) {
		t.Fatalf("unexpected month %v..%v", period.Start, period.End)
	}
}

func TestDerivePeriodIdenticalInputsIdenticalBoundaries(t *testing.T) {
	now := time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC)
	for _, periodType := range []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly} {
		a, err := DerivePeriod(periodType, now)
		if err != nil {
			t.Fatalf("derive %s: %v", periodType, err)
		}
		b, err := DerivePeriod(periodType, now)
		if err != nil {
			t.Fatalf("derive %s: %v", periodType, err)
		}
		if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
			t.Fatalf("%s derivation not deterministic: %+v vs %+v", periodType, a, b)
		}
	}
}

func TestDerivePeriodUnknownType(t *testing.T) {
	if _, err := DerivePeriod(PeriodType("quarterly"), time.Now()); !errors.Is(err, ErrUnknownPeriodType) {
		t.Fatalf("expected ErrUnknownPeriodType, got %v", err)
	}
}

func TestWorkingDays(t *testing.T) {
	// 2026-03-09 (Mon) .. 2026-03-15 (Sun) has five working days.
	if got := WorkingDays(date(2026, time.March, 9), date(2026, time.March, 15)); got != 5 {
		t.Fatalf("expected 5 working days, got %d", got)
	}
	// Weekend-only range.
	if got := WorkingDays(date(2026, time.March, 14), date(2026, time.March, 15)); got != 0 {
		t.Fatalf("expected 0 working days, got %d", got)
	}
	// Inverted range.
	if got := WorkingDays(date(2026, time.March, 15), date(2026, time.March, 9)); got != 0 {
		t.Fatalf("expected 0 for inverted range, got %d", got)
	}
}
