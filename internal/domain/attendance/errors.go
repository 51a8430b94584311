package attendance

import "errors"

var (
	ErrAlreadyCheckedIn  = errors.New("attendance: already checked in for this date")
	ErrNotCheckedIn      = errors.New("attendance: no check-in recorded for this date")
	ErrAlreadyCheckedOut = errors.New("attendance: already checked out for this date")
	ErrRecordNotFound    = errors.New("attendance: record not found")
	ErrUnknownStatus     = errors.New("attendance: unknown status")
)
