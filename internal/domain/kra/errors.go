package kra

import "errors"

var (
	ErrRatingOutOfRange = errors.New("rating must be an integer between 1 and 5")
	ErrInvalidPeriod    = errors.New("invalid rating period")
	ErrWeightOverflow   = errors.New("active KRA weights may not exceed 100 percent")
	ErrKRANotFound      = errors.New("kra definition not found")
	ErrSubjectNotFound  = errors.New("kra subject not found")
	ErrNoSubmissions    = errors.New("no submissions for period")
)
