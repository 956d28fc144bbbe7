package middleware

import (
	"context"
	"net/http"

	"github.com/devadeboye/mini-jira/internal/handlers/render"
	"github.com/devadeboye/mini-jira/internal/models"
)

type Authenticator interface {
	// Resolve the user behind the request's bearer token
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

// Auth rejects requests without a valid access token behind an active user
// and attaches the resolved user to the request context. The response body
// never says which check failed.
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(r.Context(), r)
			if err != nil {
				render.ServiceError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
