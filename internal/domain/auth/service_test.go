package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeUserLoader struct {
	users    map[string]UserRecord
	sessions map[string]bool
}

func (f *fakeUserLoader) LoadUser(_ context.Context, userID string) (UserRecord, error) {
	if record, ok := f.users[userID]; ok {
		return record, nil
	}
	return UserRecord{}, ErrUserNotFound
}

func (f *fakeUserLoader) SessionValid(_ context.Context, userID, tokenHash string) (bool, error) {
	return f.sessions[userID+"/"+tokenHash], nil
}

func TestResolveBuildsPrincipalWithCategory(t *testing.T) {
	loader := &fakeUserLoader{
		users: map[string]UserRecord{
			"u1": {ID: "u1", Email: "dev@example.com", Role: string(RoleBackendDev), Department: "Engineering"},
		},
		sessions: map[string]bool{"u1/" + HashToken("s1"): true},
	}
	resolver := NewResolver("secret", loader)

	token, err := GenerateToken("secret", Claims{UserID: "u1", SessionID: "s1"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	principal, err := resolver.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.Role != RoleBackendDev || principal.Category != CategoryDeveloper {
		t.Fatalf("expected developer principal, got %+v", principal)
	}
}

func TestResolveBadTokenIsUnauthenticatedNotFatal(t *testing.T) {
	resolver := NewResolver("secret", &fakeUserLoader{})
	if _, err := resolver.Resolve(context.Background(), "garbage"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolveRevokedSession(t *testing.T) {
	loader := &fakeUserLoader{
		users:    map[string]UserRecord{"u1": {ID: "u1", Role: string(RoleEmployee)}},
		sessions: map[string]bool{},
	}
	resolver := NewResolver("secret", loader)
	token, err := GenerateToken("secret", Claims{UserID: "u1", SessionID: "s1"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for revoked session, got %v", err)
	}
}

func TestResolveUnknownRoleRejected(t *testing.T) {
	loader := &fakeUserLoader{
		users: map[string]UserRecord{"u1": {ID: "u1", Role: "Wizard"}},
	}
	resolver := NewResolver("secret", loader)
	token, err := GenerateToken("secret", Claims{UserID: "u1"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestResolveDeletedUserIsUnauthenticated(t *testing.T) {
	resolver := NewResolver("secret", &fakeUserLoader{})
	token, err := GenerateToken("secret", Claims{UserID: "ghost"}, time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
