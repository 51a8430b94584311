package metrics

import (
	"context"
	"fmt"
	"time"
)

// Floors feeding the employee-level risk formulas. An employee counts toward
// low_performance when either floor is breached; an employee counts toward
// high_absenteeism past AbsenceDayFloor unexcused absence days in the period.
const (
	LowPerformanceRatingFloor     = 3.0
	LowPerformanceCompletionFloor = 50.0
	AbsenceDayFloor               = 3
)

// AggregateStore is the relational collaborator behind every formula. All
// counts are scoped and (where meaningful) period-bounded.
type AggregateStore interface {
	TaskCounts(ctx context.Context, scope Scope, period Period) (completed, total int, err error)
	OnTimeCompletions(ctx context.Context, scope Scope, period Period) (onTime, completed int, err error)
	TaskRatingStats(ctx context.Context, scope Scope, period Period) (sum float64, count int, err error)
	PresentAndScheduledDays(ctx context.Context, scope Scope, period Period) (present, scheduled int, err error)
	OverdueTaskCount(ctx context.Context, scope Scope, asOf time.Time) (int, error)
	AtRiskTaskCount(ctx context.Context, scope Scope, asOf time.Time, window time.Duration) (int, error)
	LowPerformerCount(ctx context.Context, scope Scope, period Period, ratingFloor, completionFloor float64) (int, error)
	HighAbsenceCount(ctx context.Context, scope Scope, period Period, dayFloor int) (int, error)
}

// Engine computes KPI and KRI values. It holds no mutable state; Now is
// injectable for tests and defaults to time.Now.
type Engine struct {
	Store      AggregateStore
	RiskWindow time.Duration
	Now        func() time.Time
}

func NewEngine(store AggregateStore, riskWindow time.Duration) *Engine {
	return &Engine{Store: store, RiskWindow: riskWindow, Now: time.Now}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CalculateKPI evaluates a KPI definition over scope and period. Zero
// denominators yield zero, not an error.
func (e *Engine) CalculateKPI(ctx context.Context, def Definition, scope Scope, period Period) (float64, error) {
	if kind, ok := def.Formula.KindOf(); !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormula, def.Formula)
	} else if kind != KindKPI {
		return 0, fmt.Errorf("%w: %q is not a kpi formula", ErrKindMismatch, def.Formula)
	}

	switch def.Formula {
	case FormulaTaskCompletionRate:
		completed, total, err := e.Store.TaskCounts(ctx, scope, period)
		if err != nil {
			return 0, err
		}
		return ratio(completed, total) * 100, nil

	case FormulaOnTimeDelivery:
		onTime, completed, err := e.Store.OnTimeCompletions(ctx, scope, period)
		if err != nil {
			return 0, err
		}
		return ratio(onTime, completed) * 100, nil

	case FormulaAvgTaskRating:
		sum, count, err := e.Store.TaskRatingStats(ctx, scope, period)
		if err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, nil
		}
		return sum / float64(count), nil

	case FormulaTasksCompleted:
		completed, _, err := e.Store.TaskCounts(ctx, scope, period)
		if err != nil {
			return 0, err
		}
		return float64(completed), nil

	case FormulaAttendanceRate:
		present, scheduled, err := e.Store.PresentAndScheduledDays(ctx, scope, period)
		if err != nil {
			return 0, err
		}
		return ratio(present, scheduled) * 100, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFormula, def.Formula)
}

// CalculateKRI evaluates a KRI definition and classifies the result against
// the definition's thresholds. Overdue and at-risk counts are evaluated as
// of now rather than period-bounded.
func (e *Engine) CalculateKRI(ctx context.Context, def Definition, scope Scope, period Period) (KRIResult, error) {
	if kind, ok := def.Formula.KindOf(); !ok {
		return KRIResult{}, fmt.Errorf("%w: %q", ErrUnknownFormula, def.Formula)
	} else if kind != KindKRI {
		return KRIResult{}, fmt.Errorf("%w: %q is not a kri formula", ErrKindMismatch, def.Formula)
	}

	var count int
	var err error
	switch def.Formula {
	case FormulaOverdueTasks:
		count, err = e.Store.OverdueTaskCount(ctx, scope, e.now())
	case FormulaTasksAtRisk:
		count, err = e.Store.AtRiskTaskCount(ctx, scope, e.now(), e.RiskWindow)
	case FormulaLowPerformance:
		count, err = e.Store.LowPerformerCount(ctx, scope, period, LowPerformanceRatingFloor, LowPerformanceCompletionFloor)
	case FormulaHighAbsenteeism:
		count, err = e.Store.HighAbsenceCount(ctx, scope, period, AbsenceDayFloor)
	default:
		return KRIResult{}, fmt.Errorf("%w: %q", ErrUnknownFormula, def.Formula)
	}
	if err != nil {
		return KRIResult{}, err
	}

	value := float64(count)
	return KRIResult{Value: value, RiskLevel: ClassifyRisk(value, def.ThresholdWarning, def.ThresholdCritical)}, nil
}

// KPIStatus classifies a calculated value against its target with a fixed
// ±10% tolerance band.
func KPIStatus(value, target float64) Status {
	switch {
	case value < target*0.9:
		return StatusBelowTarget
	case value > target*1.1:
		return StatusAboveTarget
	default:
		return StatusOnTarget
	}
}

func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
