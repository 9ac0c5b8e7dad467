package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3)

	// Burst of 3 should be allowed
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("request %d should be allowed", i+1)
		}
	}

	// 4th immediate request should be denied
	if rl.Allow("10.0.0.1") {
		t.Error("request 4 should be denied")
	}
}

func TestRateLimiterHostIsolation(t *testing.T) {
	rl := NewRateLimiter(1)

	if !rl.Allow("10.0.0.1") {
		t.Error("host1 first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("host1 second request should be denied")
	}

	// A different host has its own budget
	if !rl.Allow("10.0.0.2") {
		t.Error("host2 first request should be allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.RemoteAddr = "10.0.0.1:55555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}
