package employees

import (
	"context"
	"strings"

	"opshub/internal/domain/auth"
)

type StoreAPI interface {
	List(ctx context.Context, scope auth.Scope, department, status string, limit, offset int) ([]Employee, error)
	Get(ctx context.Context, employeeID string) (Employee, error)
	Create(ctx context.Context, in CreateInput, passwordHash string) (string, error)
	Update(ctx context.Context, employeeID string, in UpdateInput) error
	Deactivate(ctx context.Context, employeeID string) error
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, scope auth.Scope, department, status string, limit, offset int) ([]Employee, error) {
	return s.store.List(ctx, scope, department, status, limit, offset)
}

func (s *Service) Get(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.Get(ctx, employeeID)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return "", ErrMissingField
	}
	if len(in.Password) < 8 {
		return "", ErrWeakPassword
	}
	if !auth.ValidRole(auth.Role(in.Role)) {
		return "", ErrUnknownRole
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", err
	}
	return s.store.Create(ctx, in, hash)
}

func (s *Service) Update(ctx context.Context, employeeID string, in UpdateInput) error {
	if in.Role != nil && !auth.ValidRole(auth.Role(*in.Role)) {
		return ErrUnknownRole
	}
	if in.ManagerID != nil && *in.ManagerID == employeeID {
		return ErrManagerCycle
	}
	return s.store.Update(ctx, employeeID, in)
}

func (s *Service) Deactivate(ctx context.Context, employeeID string) error {
	return s.store.Deactivate(ctx, employeeID)
}
