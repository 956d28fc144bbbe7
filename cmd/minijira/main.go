package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	cfg, err := NewConfig(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("can't load configuration")
		os.Exit(1)
	}

	srv, err := NewServerApp(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("can't initialize app")
		os.Exit(1)
	}

	// Cancel the context on SIGINT or SIGTERM
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		srv.Log.Warn().Msg("Interrupt signal")
		cancel()
	}()

	if err := srv.Run(ctx); !errors.Is(err, http.ErrServerClosed) {
		srv.Log.Error().Err(err).Msg("HTTP server error")
	}
}
