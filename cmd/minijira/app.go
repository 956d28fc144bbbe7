package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/devadeboye/mini-jira/internal/db"
	"github.com/devadeboye/mini-jira/internal/handlers"
	"github.com/devadeboye/mini-jira/internal/logger"
	"github.com/devadeboye/mini-jira/internal/metrics"
	"github.com/devadeboye/mini-jira/internal/repository/postgres"
	"github.com/devadeboye/mini-jira/internal/service/auth"
	"github.com/devadeboye/mini-jira/internal/service/tracker"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
	Log        *logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	log := logger.New(c.Environment, c.LogLevel)

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	tokenManager, err := auth.NewTokenManager(auth.TokenConfig{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	}, storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{
		SecureCookies: c.SecureCookies,
	}, tokenManager, storage.User(), storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	trackerService := tracker.NewService(storage)

	metrics.Init()

	mux := handlers.NewRouter(handlers.RouterConfig{
		Log:            log,
		Auth:           authService,
		Authenticator:  authService,
		Tracker:        trackerService,
		AllowedOrigins: c.AllowedOrigins,
		AuthRPS:        c.AuthRateRPS,
		AuthBurst:      c.AuthRateBurst,
	})

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		Log:        log,
	}, nil
}

// Run starts the http server and closes it gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.Log.Error().Msg("HTTP server shutdown timeout exceeded, forcing shutdown")
		}
		s.Log.Info().Msg("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until the context is cancelled, then drain connections
	s.Log.Info().Str("addr", s.ListenAddr).Msg("Starting server")
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
