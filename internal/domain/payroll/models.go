package payroll

import "time"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"

	ComponentEarning   = "earning"
	ComponentDeduction = "deduction"
)

type Component struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

type Payslip struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	UserName   string      `json:"userName,omitempty"`
	Month      int         `json:"month"`
	Year       int         `json:"year"`
	BaseSalary float64     `json:"baseSalary"`
	Gross      float64     `json:"gross"`
	Deductions float64     `json:"deductions"`
	Net        float64     `json:"net"`
	Currency   string      `json:"currency"`
	Components []Component `json:"components,omitempty"`
	Status     string      `json:"status"`
	FilePath   string      `json:"-"`
	CreatedAt  time.Time   `json:"createdAt"`
}
