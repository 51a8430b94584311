package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"opshub/internal/domain/auth"
)

type staticUserLoader struct {
	record auth.UserRecord
}

func (l staticUserLoader) LoadUser(_ context.Context, userID string) (auth.UserRecord, error) {
	if userID != l.record.ID {
		return auth.UserRecord{}, auth.ErrUserNotFound
	}
	return l.record, nil
}

func (l staticUserLoader) SessionValid(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func testResolver() *auth.Resolver {
	return auth.NewResolver("test-secret", staticUserLoader{record: auth.UserRecord{
		ID:    "u1",
		Email: "dev@example.com",
		Role:  string(auth.RoleBackendDev),
	}})
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", auth.Claims{UserID: "u1", RoleName: string(auth.RoleBackendDev)}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var got auth.Principal
	var found bool
	handler := Authenticate(testResolver())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetPrincipal(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("principal not attached")
	}
	if got.ID != "u1" || got.Role != auth.RoleBackendDev {
		t.Fatalf("unexpected principal %+v", got)
	}
	if got.Category != auth.CategoryDeveloper {
		t.Fatalf("expected developer category, got %q", got.Category)
	}
}

func TestAuthenticatePassesThroughBadToken(t *testing.T) {
	handler := Authenticate(testResolver())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); ok {
			t.Fatal("principal must not be attached for a garbage token")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
