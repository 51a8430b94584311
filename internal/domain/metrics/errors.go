package metrics

import "errors"

var (
	ErrUnknownFormula     = errors.New("unknown calculation formula")
	ErrUnknownPeriodType  = errors.New("unknown period type")
	ErrDefinitionNotFound = errors.New("metric definition not found or inactive")
	ErrKindMismatch       = errors.New("formula does not match definition kind")
)
