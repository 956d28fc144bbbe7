package middleware

import (
	"net/http"

	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/service/authz"
)

// RequirePolicy evaluates the route's declared role and permission
// requirements against the user resolved by the Auth middleware.
// Runs strictly after it: a missing user means the pipeline is miswired
// or the route was left unauthenticated, both deny.
func RequirePolicy(policy authz.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			if err := authz.Authorize(user, policy); err != nil {
				render.ServiceError(w, "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
