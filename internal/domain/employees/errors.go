package employees

import "errors"

var (
	ErrNotFound       = errors.New("employees: employee not found")
	ErrEmailTaken     = errors.New("employees: email already in use")
	ErrUnknownRole    = errors.New("employees: unknown role")
	ErrManagerCycle   = errors.New("employees: employee cannot be their own manager")
	ErrMissingField   = errors.New("employees: required field missing")
	ErrWeakPassword   = errors.New("employees: password too short")
	ErrAlreadyRemoved = errors.New("employees: employee already deactivated")
)
