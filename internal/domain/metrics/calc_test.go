package metrics

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAggregates struct {
	completed, total   int
	onTime             int
	ratingSum          float64
	ratingCount        int
	present, scheduled int
	overdue            int
	atRisk             int
	lowPerformers      int
	highAbsence        int

	gotWindow time.Duration
	failWith  error
}

func (f *fakeAggregates) TaskCounts(context.Context, Scope, Period) (int, int, error) {
	return f.completed, f.total, f.failWith
}

func (f *fakeAggregates) OnTimeCompletions(context.Context, Scope, Period) (int, int, error) {
	return f.onTime, f.completed, f.failWith
}

func (f *fakeAggregates) TaskRatingStats(context.Context, Scope, Period) (float64, int, error) {
	return f.ratingSum, f.ratingCount, f.failWith
}

func (f *fakeAggregates) PresentAndScheduledDays(context.Context, Scope, Period) (int, int, error) {
	return f.present, f.scheduled, f.failWith
}

func (f *fakeAggregates) OverdueTaskCount(context.Context, Scope, time.Time) (int, error) {
	return f.overdue, f.failWith
}

func (f *fakeAggregates) AtRiskTaskCount(_ context.Context, _ Scope, _ time.Time, window time.Duration) (int, error) {
	f.gotWindow = window
	return f.atRisk, f.failWith
}

func (f *fakeAggregates) LowPerformerCount(context.Context, Scope, Period, float64, float64) (int, error) {
	return f.lowPerformers, f.failWith
}

func (f *fakeAggregates) HighAbsenceCount(context.Context, Scope, Period, int) (int, error) {
	return f.highAbsence, f.failWith
}

func testPeriod() Period {
	return Period{Type: PeriodWeekly, Start: date(2026, time.March, 9), End: date(2026, time.March, 15)}
}

func TestCalculateKPICompletionRate(t *testing.T) {
	engine := NewEngine(&fakeAggregates{completed: 6, total: 8}, 48*time.Hour)
	def := Definition{Formula: FormulaTaskCompletionRate, Kind: KindKPI}

	value, err := engine.CalculateKPI(context.Background(), def, Scope{UserID: "u1"}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if value != 75 {
		t.Fatalf("expected 75, got %v", value)
	}
}

func TestCalculateKPIZeroDenominatorIsZero(t *testing.T) {
	engine := NewEngine(&fakeAggregates{}, 48*time.Hour)
	for _, formula := range []Formula{FormulaTaskCompletionRate, FormulaOnTimeDelivery, FormulaAvgTaskRating, FormulaAttendanceRate} {
		value, err := engine.CalculateKPI(context.Background(), Definition{Formula: formula}, Scope{}, testPeriod())
		if err != nil {
			t.Fatalf("%s: %v", formula, err)
		}
		if value != 0 {
			t.Fatalf("%s with empty aggregates: expected 0, got %v", formula, value)
		}
	}
}

func TestCalculateKPIOnTimeDelivery(t *testing.T) {
	engine := NewEngine(&fakeAggregates{onTime: 3, completed: 4}, 48*time.Hour)
	value, err := engine.CalculateKPI(context.Background(), Definition{Formula: FormulaOnTimeDelivery}, Scope{}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if value != 75 {
		t.Fatalf("expected 75, got %v", value)
	}
}

func TestCalculateKPIAvgRating(t *testing.T) {
	engine := NewEngine(&fakeAggregates{ratingSum: 14, ratingCount: 4}, 48*time.Hour)
	value, err := engine.CalculateKPI(context.Background(), Definition{Formula: FormulaAvgTaskRating}, Scope{}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if value != 3.5 {
		t.Fatalf("expected 3.5, got %v", value)
	}
}

func TestCalculateKPIAttendanceRate(t *testing.T) {
	engine := NewEngine(&fakeAggregates{present: 18, scheduled: 20}, 48*time.Hour)
	value, err := engine.CalculateKPI(context.Background(), Definition{Formula: FormulaAttendanceRate}, Scope{Department: "Engineering"}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if value != 90 {
		t.Fatalf("expected 90, got %v", value)
	}
}

func TestCalculateKPIUnknownFormula(t *testing.T) {
	engine := NewEngine(&fakeAggregates{}, 48*time.Hour)
	_, err := engine.CalculateKPI(context.Background(), Definition{Formula: Formula("velocity")}, Scope{}, testPeriod())
	if !errors.Is(err, ErrUnknownFormula) {
		t.Fatalf("expected ErrUnknownFormula, got %v", err)
	}
}

func TestCalculateKPIRejectsKRIFormula(t *testing.T) {
	engine := NewEngine(&fakeAggregates{}, 48*time.Hour)
	_, err := engine.CalculateKPI(context.Background(), Definition{Formula: FormulaOverdueTasks}, Scope{}, testPeriod())
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestCalculateKPIPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	engine := NewEngine(&fakeAggregates{failWith: storeErr}, 48*time.Hour)
	_, err := engine.CalculateKPI(context.Background(), Definition{Formula: FormulaTaskCompletionRate}, Scope{}, testPeriod())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}

func TestCalculateKRIClassifies(t *testing.T) {
	engine := NewEngine(&fakeAggregates{overdue: 12}, 48*time.Hour)
	def := Definition{Formula: FormulaOverdueTasks, ThresholdWarning: floatPtr(10), ThresholdCritical: floatPtr(20)}

	result, err := engine.CalculateKRI(context.Background(), def, Scope{}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Value != 12 || result.RiskLevel != RiskHigh {
		t.Fatalf("expected value 12 risk high, got %+v", result)
	}
}

func TestCalculateKRIAtRiskUsesConfiguredWindow(t *testing.T) {
	store := &fakeAggregates{atRisk: 2}
	engine := NewEngine(store, 72*time.Hour)
	def := Definition{Formula: FormulaTasksAtRisk}

	result, err := engine.CalculateKRI(context.Background(), def, Scope{}, testPeriod())
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if result.Value != 2 || result.RiskLevel != RiskLow {
		t.Fatalf("unexpected result %+v", result)
	}
	if store.gotWindow != 72*time.Hour {
		t.Fatalf("expected 72h window, got %v", store.gotWindow)
	}
}

func TestCalculateKRIRejectsKPIFormula(t *testing.T) {
	engine := NewEngine(&fakeAggregates{}, 48*time.Hour)
	_, err := engine.CalculateKRI(context.Background(), Definition{Formula: FormulaAttendanceRate}, Scope{}, testPeriod())
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch, got %v", err)
	}
}

func TestKPIStatusToleranceBand(t *testing.T) {
	cases := []struct {
		value, target float64
		want          Status
	}{
		{85, 100, StatusBelowTarget}, // 85 < 90
		{89.999, 100, StatusBelowTarget},
		{90, 100, StatusOnTarget}, // boundary: not strictly below target*0.9
		{100, 100, StatusOnTarget},
		{110, 100, StatusOnTarget}, // boundary: not strictly above target*1.1
		{110.001, 100, StatusAboveTarget},
		{150, 100, StatusAboveTarget},
		{4, 5, StatusBelowTarget},
		{4.6, 5, StatusOnTarget},
	}
	for _, tc := range cases {
		if got := KPIStatus(tc.value, tc.target); got != tc.want {
			t.Fatalf("value %v target %v: want %s, got %s", tc.value, tc.target, tc.want, got)
		}
	}
}
