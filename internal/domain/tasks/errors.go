package tasks

import "errors"

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidTransition  = errors.New("invalid task status transition")
	ErrReportAlreadyFiled = errors.New("task report already filed")
	ErrNotCompleted       = errors.New("task is not completed")
	ErrRatingOutOfRange   = errors.New("task rating must be between 1 and 5")
)
