package transport

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies per-client request rate limiting keyed by the
// remote host. State is in-memory, so each server instance enforces
// its limit independently.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	mu    sync.Mutex
	hosts map[string]*hostLimiter
}

type hostLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter creates a rate limiter allowing rps requests per
// second per client, with a burst of the same size.
func NewRateLimiter(rps int) *RateLimiter {
	rl := &RateLimiter{
		rps:   rate.Limit(rps),
		burst: rps,
		hosts: make(map[string]*hostLimiter),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from the given host is within the limit.
func (rl *RateLimiter) Allow(host string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	hl, ok := rl.hosts[host]
	if !ok {
		hl = &hostLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.hosts[host] = hl
	}
	hl.lastAccess = time.Now()
	return hl.limiter.Allow()
}

// cleanup removes stale host entries every 60 seconds.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-5 * time.Minute)
		for host, hl := range rl.hosts {
			if hl.lastAccess.Before(cutoff) {
				delete(rl.hosts, host)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns an HTTP middleware that applies rate limiting.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !rl.Allow(host) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "RATE_LIMIT_EXCEEDED",
				"message": "Too many requests. Please slow down.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
