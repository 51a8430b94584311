package kra

import (
	"errors"
	"testing"
)

func TestValidatePeriod(t *testing.T) {
	valid := []Period{
		{Type: PeriodMonthly, Month: 1, Year: 2026},
		{Type: PeriodMonthly, Month: 12, Year: 2026},
		{Type: PeriodQuarterly, Quarter: 1, Year: 2026},
		{Type: PeriodQuarterly, Quarter: 4, Year: 2026},
	}
	for _, period := range valid {
		if err := validatePeriod(period); err != nil {
			t.Fatalf("period %+v should be valid: %v", period, err)
		}
	}

	invalid := []Period{
		{Type: PeriodMonthly, Month: 0, Year: 2026},
		{Type: PeriodMonthly, Month: 13, Year: 2026},
		{Type: PeriodMonthly, Month: 3, Quarter: 1, Year: 2026},
		{Type: PeriodQuarterly, Quarter: 0, Year: 2026},
		{Type: PeriodQuarterly, Quarter: 5, Year: 2026},
		{Type: PeriodQuarterly, Quarter: 2, Month: 6, Year: 2026},
		{Type: PeriodType("yearly"), Year: 2026},
		{Type: PeriodMonthly, Month: 6, Year: 1999},
	}
	for _, period := range invalid {
		if err := validatePeriod(period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("period %+v should be invalid, got %v", period, err)
		}
	}
}
