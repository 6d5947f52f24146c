package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := newRateLimiter(5)

	for i := 0; i < 5; i++ {
		ok, _ := limiter.allow("10.0.0.1")
		assert.True(t, ok, "request %d", i+1)
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	limiter := newRateLimiter(3)

	for i := 0; i < 3; i++ {
		ok, _ := limiter.allow("10.0.0.1")
		assert.True(t, ok)
	}

	ok, retryAfter := limiter.allow("10.0.0.1")
	assert.False(t, ok)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 60)
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	limiter := newRateLimiter(1)

	ok, _ := limiter.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = limiter.allow("10.0.0.1")
	assert.False(t, ok)

	// Another caller has its own budget.
	ok, _ = limiter.allow("10.0.0.2")
	assert.True(t, ok)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(1)
	limiter.now = func() time.Time { return now }

	ok, _ := limiter.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = limiter.allow("10.0.0.1")
	assert.False(t, ok)

	// The next window grants a fresh budget.
	now = now.Add(rateLimitWindow)
	ok, _ = limiter.allow("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiter_Prune(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(10)
	limiter.now = func() time.Time { return now }

	limiter.allow("10.0.0.1")
	limiter.allow("10.0.0.2")
	assert.Len(t, limiter.counters, 2)

	now = now.Add(2 * rateLimitWindow)
	limiter.prune()
	assert.Empty(t, limiter.counters)
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := rateLimitMiddleware(next, 2)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings", http.NoBody))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings", http.NoBody))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "192.168.1.5:54321"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	// The first X-Forwarded-For entry wins over RemoteAddr.
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	assert.Equal(t, "203.0.113.10", clientIP(req))
}
