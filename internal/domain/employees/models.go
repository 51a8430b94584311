package employees

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Department  string     `json:"department"`
	Designation string     `json:"designation"`
	ManagerID   *string    `json:"managerId,omitempty"`
	BaseSalary  *float64   `json:"baseSalary,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Status      string     `json:"status"`
	JoinedAt    *time.Time `json:"joinedAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	Department  string
	Designation string
	ManagerID   *string
	BaseSalary  *float64
	Currency    string
	JoinedAt    *time.Time
}

type UpdateInput struct {
	Name        *string
	Role        *string
	Department  *string
	Designation *string
	ManagerID   *string
	BaseSalary  *float64
	Currency    *string
}
