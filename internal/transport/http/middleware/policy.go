package middleware

import (
	"errors"
	"net/http"

	"opshub/internal/domain/auth"
	"opshub/internal/transport/http/api"
)

// RequirePolicy guards a route with an access policy evaluated against the
// route itself: any tier match passes, including the team tier, because no
// resource exists yet at this point. Ownership and direct-report checks on
// individual records happen in the handlers.
func RequirePolicy(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := GetPrincipal(r.Context())
			if err := auth.CheckRouteAccess(principal, policy); err != nil {
				WriteAccessError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles is the common case: only the named roles (plus the implicit
// Super Admin superset) may pass.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	return RequirePolicy(auth.Policy{FullAccess: roles})
}

// WriteAccessError maps the auth sentinels onto 401/403 so that a missing
// identity and an insufficient one stay distinguishable to clients.
func WriteAccessError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := GetRequestID(r.Context())
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
	case errors.Is(err, auth.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "access_check_failed", "access check failed", requestID)
	}
}
