package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

type Type struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	IsPaid      bool      `json:"isPaid"`
	Entitlement float64   `json:"entitlement"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Request struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	UserName    string     `json:"userName,omitempty"`
	LeaveTypeID string     `json:"leaveTypeId"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	StartHalf   bool       `json:"startHalf"`
	EndHalf     bool       `json:"endHalf"`
	Days        float64    `json:"days"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	DecidedBy   *string    `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Balance struct {
	UserID      string    `json:"userId"`
	LeaveTypeID string    `json:"leaveTypeId"`
	Balance     float64   `json:"balance"`
	Pending     float64   `json:"pending"`
	Used        float64   `json:"used"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
