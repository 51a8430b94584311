package tasks

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  string     `json:"assigneeId"`
	AssignedBy  string     `json:"assignedBy"`
	ManagerID   string     `json:"-"`
	Department  string     `json:"department"`
	Deadline    time.Time  `json:"deadline"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	RatedBy     string     `json:"ratedBy,omitempty"`
	Report      string     `json:"report,omitempty"`
	ReportedAt  *time.Time `json:"reportedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
