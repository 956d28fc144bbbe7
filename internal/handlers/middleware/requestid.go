package middleware

import (
	"context"
	"net/http"

	"github.com/oklog/ulid/v2"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID tags every request with a fresh ulid, echoed in the response
// header and available to the logging middleware through the context
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the id set by RequestID, empty when absent
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
