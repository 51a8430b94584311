package attendance

import "time"

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusOnLeave = "on_leave"
	StatusHalfDay = "half_day"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPresent, StatusAbsent, StatusOnLeave, StatusHalfDay:
		return true
	}
	return false
}

type Record struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	UserName     string     `json:"userName,omitempty"`
	WorkDate     time.Time  `json:"workDate"`
	Status       string     `json:"status"`
	CheckInTime  *time.Time `json:"checkInTime,omitempty"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	WorkedHours  *float64   `json:"workedHours,omitempty"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Summary aggregates one user's attendance over a date range.
type Summary struct {
	UserID      string  `json:"userId"`
	PresentDays int     `json:"presentDays"`
	AbsentDays  int     `json:"absentDays"`
	LeaveDays   int     `json:"leaveDays"`
	HalfDays    int     `json:"halfDays"`
	WorkedHours float64 `json:"workedHours"`
}
