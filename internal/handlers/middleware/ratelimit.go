package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/devadeboye/mini-jira/internal/handlers/render"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. Meant for the credential
// endpoints where brute force attempts are the concern.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}

	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		clients: map[string]*clientLimiter{},
	}
}

func (m *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			render.ServiceError(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimiter) allow(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	client, ok := m.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.clients[ip] = client
	}
	client.lastSeen = time.Now()

	// Opportunistic cleanup so the map doesn't grow unbounded
	if len(m.clients) > 10_000 {
		for key, c := range m.clients {
			if time.Since(c.lastSeen) > 10*time.Minute {
				delete(m.clients, key)
			}
		}
	}

	return client.limiter.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
