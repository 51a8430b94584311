package leave

import "errors"

var (
	ErrRequestNotFound = errors.New("leave: request not found")
	ErrInvalidState    = errors.New("leave: request not in a decidable state")
	ErrInvalidRange    = errors.New("leave: invalid date range")
	ErrTypeNotFound    = errors.New("leave: leave type not found")
)
