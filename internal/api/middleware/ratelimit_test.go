package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestFindLimitPrecedence(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{})

	pattern, limit := rl.findLimit(httptest.NewRequest("POST", "/api/rooms", nil))
	if pattern != "POST /api/rooms" || limit == nil {
		t.Fatalf("expected creation limit, got %q", pattern)
	}

	pattern, limit = rl.findLimit(httptest.NewRequest("POST", "/api/rooms/abc123de/messages", nil))
	if pattern != "POST /api/rooms/" || limit == nil {
		t.Fatalf("uploads must match the longer pattern, got %q", pattern)
	}

	pattern, limit = rl.findLimit(httptest.NewRequest("GET", "/room/abc123de/listen", nil))
	if limit != nil {
		t.Fatalf("views are unlimited, got %q", pattern)
	}
}

func TestMemoryBackendLimits(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	// Creation allows a burst of 10 per IP, then rejects.
	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest("POST", "/api/rooms", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		if i < 10 && last.Code != http.StatusCreated {
			t.Fatalf("request %d unexpectedly limited: %d", i, last.Code)
		}
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	// A different IP has its own budget.
	req := httptest.NewRequest("POST", "/api/rooms", nil)
	req.RemoteAddr = "198.51.100.9:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected fresh budget for new IP, got %d", rec.Code)
	}
}

func TestWhitelistBypassesLimits(t *testing.T) {
	rl := NewRateLimiter(nil, zerolog.Nop(), RateLimiterConfig{
		Whitelist: []string{"203.0.113.7", "10.0.0.0/8"},
	})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for _, addr := range []string{"203.0.113.7:1234", "10.1.2.3:1234"} {
		for i := 0; i < 20; i++ {
			req := httptest.NewRequest("POST", "/api/rooms", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusCreated {
				t.Fatalf("whitelisted %s limited after %d requests", addr, i)
			}
		}
	}
}
