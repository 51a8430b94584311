package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("no authenticated principal")
	ErrForbidden       = errors.New("insufficient role or ownership")
	ErrUnknownRole     = errors.New("role is not in the catalog")
	ErrUserNotFound    = errors.New("user not found")
)
