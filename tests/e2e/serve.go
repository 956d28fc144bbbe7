// Package e2e spins the full router on top of a single database
// transaction so every test leaves the database untouched.
package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/devadeboye/mini-jira/internal/handlers"
	"github.com/devadeboye/mini-jira/internal/logger"
	"github.com/devadeboye/mini-jira/internal/repository/postgres"
	"github.com/devadeboye/mini-jira/internal/service/auth"
	"github.com/devadeboye/mini-jira/internal/service/tracker"
	"github.com/devadeboye/mini-jira/internal/testutil"
)

type Services struct {
	Auth    *auth.Service
	Tracker *tracker.Service
}

// ServeWithTx runs the http server with every repository bound to one
// transaction (one connection means one transaction). The transaction is
// rolled back when the test ends.
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, s Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := auth.NewTokenManager(auth.TokenConfig{SecretKey: "test-secret"}, storage.Refresh())
		require.NoError(t, err, "token manager should be created without errors")

		authService, err := auth.NewService(auth.Config{}, tokenManager, storage.User(), storage.Refresh())
		require.NoError(t, err, "auth service should be created without errors")

		trackerService := tracker.NewService(storage)

		router := handlers.NewRouter(handlers.RouterConfig{
			Log:           logger.Nop(),
			Auth:          authService,
			Authenticator: authService,
			Tracker:       trackerService,
			AuthRPS:       1000, // don't throttle tests
			AuthBurst:     1000,
		})

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{Auth: authService, Tracker: trackerService})
	})
}
