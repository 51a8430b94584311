package metrics

import "time"

type Kind string

const (
	KindKPI Kind = "kpi"
	KindKRI Kind = "kri"
)

// Formula is the closed set of calculation kinds a definition can select.
// Dispatch is switch-based; anything else is ErrUnknownFormula.
type Formula string

const (
	FormulaTaskCompletionRate Formula = "task_completion_rate"
	FormulaOnTimeDelivery     Formula = "ontime_delivery"
	FormulaAvgTaskRating      Formula = "avg_task_rating"
	FormulaTasksCompleted     Formula = "tasks_completed"
	FormulaAttendanceRate     Formula = "attendance_rate"

	FormulaOverdueTasks    Formula = "overdue_tasks"
	FormulaTasksAtRisk     Formula = "tasks_at_risk"
	FormulaLowPerformance  Formula = "low_performance"
	FormulaHighAbsenteeism Formula = "high_absenteeism"
)

func (f Formula) KindOf() (Kind, bool) {
	switch f {
	case FormulaTaskCompletionRate, FormulaOnTimeDelivery, FormulaAvgTaskRating, FormulaTasksCompleted, FormulaAttendanceRate:
		return KindKPI, true
	case FormulaOverdueTasks, FormulaTasksAtRisk, FormulaLowPerformance, FormulaHighAbsenteeism:
		return KindKRI, true
	}
	return "", false
}

type Definition struct {
	ID                string   `json:"id"`
	Code              string   `json:"code"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Kind              Kind     `json:"kind"`
	Formula           Formula  `json:"formula"`
	TargetValue       *float64 `json:"targetValue,omitempty"`
	ThresholdWarning  *float64 `json:"thresholdWarning,omitempty"`
	ThresholdCritical *float64 `json:"thresholdCritical,omitempty"`
	IsActive          bool     `json:"isActive"`
}

// Scope names the entity a metric is computed for. Both fields empty means
// organization-wide.
type Scope struct {
	UserID     string `json:"userId,omitempty"`
	Department string `json:"department,omitempty"`
}

func (s Scope) OrgWide() bool {
	return s.UserID == "" && s.Department == ""
}

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

// Period boundaries are date-granular and inclusive on both ends.
type Period struct {
	Type  PeriodType `json:"type"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
}

type Status string

const (
	StatusBelowTarget Status = "below_target"
	StatusOnTarget    Status = "on_target"
	StatusAboveTarget Status = "above_target"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Metric is one persisted calculation, unique per
// (definition, scope, period type, period start, period end).
type Metric struct {
	ID           string    `json:"id"`
	DefinitionID string    `json:"definitionId"`
	Scope        Scope     `json:"scope"`
	Period       Period    `json:"period"`
	Value        float64   `json:"value"`
	TargetValue  *float64  `json:"targetValue,omitempty"`
	Status       Status    `json:"status,omitempty"`
	RiskLevel    RiskLevel `json:"riskLevel,omitempty"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

type KRIResult struct {
	Value     float64   `json:"value"`
	RiskLevel RiskLevel `json:"riskLevel"`
}
