package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *time.Time) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    func() time.Time { return clock },
	}
	return rl, &clock
}

func TestRateLimiterBudget(t *testing.T) {
	rl, _ := newTestLimiter(2, time.Minute)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("requests inside the budget rejected")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request allowed, want rejected")
	}

	// Budgets are per IP.
	if !rl.Allow("10.0.0.2") {
		t.Error("fresh IP rejected")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl, clock := newTestLimiter(1, time.Minute)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first request rejected")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request allowed inside the window")
	}

	*clock = clock.Add(61 * time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("request rejected after the window passed")
	}
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl, clock := newTestLimiter(5, time.Minute)

	rl.Allow("10.0.0.1")
	*clock = clock.Add(3 * time.Minute)
	rl.evictIdle()

	if _, tracked := rl.hits["10.0.0.1"]; tracked {
		t.Error("idle IP still tracked after eviction")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limited := RateLimit(2, time.Minute)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	hit := func(ip string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Real-IP", ip)
		limited(rec, req)
		return rec.Code
	}

	if code := hit("203.0.113.7"); code != http.StatusOK {
		t.Fatalf("first request status = %d", code)
	}
	if code := hit("203.0.113.7"); code != http.StatusOK {
		t.Fatalf("second request status = %d", code)
	}
	if code := hit("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := hit("203.0.113.8"); code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1"}, "10.0.0.9:4431", "198.51.100.4"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.5 "}, "10.0.0.9:4431", "198.51.100.5"},
		{"remote addr", nil, "198.51.100.6:55000", "198.51.100.6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			got := clientIP(req)
			if got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
