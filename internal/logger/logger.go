// Package logger wraps zerolog with the constructors and context helpers
// used across the service. Handlers obtain a request-scoped logger via
// FromContext; everything else receives *Logger by injection.
package logger

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger embeds zerolog.Logger so the full zerolog API is available
type Logger struct {
	zerolog.Logger
}

// Environments the service knows about. Dev gets a human readable console
// writer, everything else writes JSON to stdout.
const (
	EnvDev        = "dev"
	EnvProduction = "prod"
)

// LevelInfo is the default level name, kept as a constant for config defaults
const LevelInfo = "info"

func New(environment string, level string) *Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	switch environment {
	case EnvDev:
		writer := zerolog.ConsoleWriter{Out: os.Stdout}
		logger = zerolog.New(writer).Level(lvl).With().Timestamp().Caller().Logger()
	default:
		logger = zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}

	return &Logger{logger}
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

type ctxKey struct{}

// WithContext stores the logger in the context
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in the context, or a no-op logger
// when none was attached
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Nop()
}

// FromRequest is a convenience wrapper around FromContext
func FromRequest(r *http.Request) *Logger {
	return FromContext(r.Context())
}
