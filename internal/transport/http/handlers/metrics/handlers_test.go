package metricshandler

import (
	"net/http/httptest"
	"testing"

	"opshub/internal/domain/auth"
)

func TestScopeFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		principal auth.Principal
		query     string
		wantOK    bool
		wantUser  string
		wantDept  string
	}{
		{
			name:      "admin keeps requested scope",
			principal: auth.Principal{ID: "a1", Role: auth.RoleAdmin},
			query:     "?userId=u9&department=Engineering",
			wantOK:    true,
			wantUser:  "u9",
			wantDept:  "Engineering",
		},
		{
			name:      "manager org-wide request narrows to own department",
			principal: auth.Principal{ID: "m1", Role: auth.RoleManager, Department: "Logistics"},
			query:     "",
			wantOK:    true,
			wantDept:  "Logistics",
		},
		{
			name:      "employee defaults to self",
			principal: auth.Principal{ID: "e1", Role: auth.RoleBackendDev},
			query:     "",
			wantOK:    true,
			wantUser:  "e1",
		},
		{
			name:      "employee may not request someone else",
			principal: auth.Principal{ID: "e1", Role: auth.RoleBackendDev},
			query:     "?userId=e2",
			wantOK:    false,
		},
		{
			name:   "anonymous gets nothing",
			query:  "?userId=u1",
			wantOK: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/metrics/results"+tc.query, nil)
			scope, ok := scopeFromRequest(r, tc.principal)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if !ok {
				return
			}
			if scope.UserID != tc.wantUser {
				t.Fatalf("expected user scope %q, got %q", tc.wantUser, scope.UserID)
			}
			if scope.Department != tc.wantDept {
				t.Fatalf("expected department scope %q, got %q", tc.wantDept, scope.Department)
			}
		})
	}
}
