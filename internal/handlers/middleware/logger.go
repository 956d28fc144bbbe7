package middleware

import (
	"net/http"
	"time"

	"github.com/devadeboye/mini-jira/internal/logger"
)

type logData struct {
	responseStatus int
	responseSize   int
}

type logWriter struct {
	http.ResponseWriter
	data logData
}

func (w *logWriter) Write(p []byte) (int, error) {
	size, err := w.ResponseWriter.Write(p)
	w.data.responseSize += size
	return size, err
}

func (w *logWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.data.responseStatus = statusCode
}

// Logger attaches a request-scoped logger (tagged with the request id) to
// the context and writes one line per completed request
func Logger(l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := &logger.Logger{
				Logger: l.With().Str("request_id", RequestIDFromContext(r.Context())).Logger(),
			}
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			lw := &logWriter{
				ResponseWriter: w,
				data:           logData{responseStatus: http.StatusOK, responseSize: 0},
			}

			next.ServeHTTP(lw, r)

			reqLogger.Info().
				Str("method", r.Method).
				Str("uri", r.RequestURI).
				Dur("duration", time.Since(start)).
				Int("status", lw.data.responseStatus).
				Int("size", lw.data.responseSize).
				Msg("got HTTP request")
		})
	}
}
