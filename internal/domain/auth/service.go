package auth

import (
	"context"
	"errors"
)

// UserLoader is the lookup the principal resolver needs; *Store satisfies it.
type UserLoader interface {
	LoadUser(ctx context.Context, userID string) (UserRecord, error)
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
}

// Resolver turns a bearer token into a Principal. Every verification failure
// collapses to ErrUnauthenticated so transport code has exactly one
// anonymous outcome to handle.
type Resolver struct {
	Secret string
	Users  UserLoader
}

func NewResolver(secret string, users UserLoader) *Resolver {
	return &Resolver{Secret: secret, Users: users}
}

func (r *Resolver) Resolve(ctx context.Context, bearer string) (Principal, error) {
	claims, err := ParseToken(r.Secret, bearer)
	if err != nil {
		return Principal{}, ErrUnauthenticated
	}

	if claims.SessionID != "" {
		valid, err := r.Users.SessionValid(ctx, claims.UserID, HashToken(claims.SessionID))
		if err != nil {
			return Principal{}, err
		}
		if !valid {
			return Principal{}, ErrUnauthenticated
		}
	}

	record, err := r.Users.LoadUser(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return Principal{}, ErrUnauthenticated
	}
	if err != nil {
		return Principal{}, err
	}

	role := Role(record.Role)
	if !ValidRole(role) {
		return Principal{}, ErrUnknownRole
	}

	return Principal{
		ID:          record.ID,
		Email:       record.Email,
		Role:        role,
		Category:    CategoryOf(role),
		Department:  record.Department,
		Designation: record.Designation,
		SessionID:   claims.SessionID,
	}, nil
}
