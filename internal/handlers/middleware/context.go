package middleware

import (
	"context"

	"github.com/devadeboye/mini-jira/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// NewContextWithUser attaches the resolved user for downstream handlers
func NewContextWithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext extracts the user resolved by the auth middleware
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}
