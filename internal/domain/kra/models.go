package kra

import "time"

// Definition is one Key Result Area assigned to a user, rated periodically.
// Weights are percentages; a user's active weights conventionally total 100.
type Definition struct {
	ID               string  `json:"id"`
	UserID           string  `json:"userId"`
	Number           int     `json:"kraNumber"`
	Name             string  `json:"kraName"`
	WeightPercentage float64 `json:"weightPercentage"`
	KPI1             string  `json:"kpi1"`
	KPI2             string  `json:"kpi2"`
	IsActive         bool    `json:"isActive"`
}

type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

// Period identifies a rating window: month 1..12 for monthly, quarter 1..4
// for quarterly.
type Period struct {
	Type    PeriodType `json:"type"`
	Month   int        `json:"month,omitempty"`
	Quarter int        `json:"quarter,omitempty"`
	Year    int        `json:"year"`
}

const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusFinal     = "final"
)

type Submission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	KRAID       string    `json:"kraId"`
	Period      Period    `json:"period"`
	Rating      int       `json:"rating"`
	SubmittedBy string    `json:"submittedBy"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// RatedEntry pairs a submission's rating with its KRA weight: the scoring
// engine's only input.
type RatedEntry struct {
	Rating           int
	WeightPercentage float64
}

type Score struct {
	UserID       string    `json:"userId"`
	Period       Period    `json:"period"`
	TotalScore   float64   `json:"totalScore"`
	Category     string    `json:"category"`
	CalculatedAt time.Time `json:"calculatedAt"`
}
