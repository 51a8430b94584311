package employees

import (
	"context"
	"errors"
	"testing"

	"opshub/internal/domain/auth"
)

type fakeEmployeeStore struct {
	created CreateInput
	hash    string
	updated UpdateInput
}

func (f *fakeEmployeeStore) List(_ context.Context, _ auth.Scope, _, _ string, _, _ int) ([]Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeStore) Get(_ context.Context, _ string) (Employee, error) {
	return Employee{}, ErrNotFound
}

func (f *fakeEmployeeStore) Create(_ context.Context, in CreateInput, passwordHash string) (string, error) {
	f.created = in
	f.hash = passwordHash
	return "new-id", nil
}

func (f *fakeEmployeeStore) Update(_ context.Context, _ string, in UpdateInput) error {
	f.updated = in
	return nil
}

func (f *fakeEmployeeStore) Deactivate(_ context.Context, _ string) error { return nil }

func TestCreateValidation(t *testing.T) {
	store := &fakeEmployeeStore{}
	svc := NewService(store)

	_, err := svc.Create(context.Background(), CreateInput{Email: "a@b.c", Password: "longenough", Role: string(auth.RoleEmployee)})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for empty name, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{Name: "Dev", Email: "a@b.c", Password: "short", Role: string(auth.RoleEmployee)})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateInput{Name: "Dev", Email: "a@b.c", Password: "longenough", Role: "Wizard"})
	if !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestCreateNormalizesAndHashes(t *testing.T) {
	store := &fakeEmployeeStore{}
	svc := NewService(store)

	id, err := svc.Create(context.Background(), CreateInput{
		Name:     "  Dev One ",
		Email:    " Dev@Example.COM ",
		Password: "longenough",
		Role:     string(auth.RoleBackendDev),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "new-id" {
		t.Fatalf("unexpected id %q", id)
	}
	if store.created.Email != "dev@example.com" {
		t.Fatalf("email not normalized: %q", store.created.Email)
	}
	if store.created.Name != "Dev One" {
		t.Fatalf("name not trimmed: %q", store.created.Name)
	}
	if store.hash == "" || store.hash == "longenough" {
		t.Fatalf("password must be hashed, got %q", store.hash)
	}
	if err := auth.CheckPassword(store.hash, "longenough"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestUpdateRejectsSelfManager(t *testing.T) {
	store := &fakeEmployeeStore{}
	svc := NewService(store)

	self := "e1"
	err := svc.Update(context.Background(), "e1", UpdateInput{ManagerID: &self})
	if !errors.Is(err, ErrManagerCycle) {
		t.Fatalf("expected ErrManagerCycle, got %v", err)
	}
}
