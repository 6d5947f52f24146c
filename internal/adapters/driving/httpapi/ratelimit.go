package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultRequestsPerMinute is the per-IP budget when none is configured.
const DefaultRequestsPerMinute = 60

// rateLimitWindow is the fixed counting window.
const rateLimitWindow = time.Minute

// ipCounter tracks request counts for one caller within the current window.
type ipCounter struct {
	count       int
	windowStart time.Time
}

// rateLimiter is a fixed-window in-memory counter per caller IP.
// State is process-local: counters reset on restart and are not shared
// across replicas, which is acceptable for best-effort abuse protection.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	counters map[string]*ipCounter
	now      func() time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	if limit == 0 {
		limit = DefaultRequestsPerMinute
	}
	return &rateLimiter{
		limit:    limit,
		counters: make(map[string]*ipCounter),
		now:      time.Now,
	}
}

// allow counts one request for ip. The second return value is the number
// of seconds until the window resets, for the Retry-After header.
func (l *rateLimiter) allow(ip string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	c, ok := l.counters[ip]
	if !ok || now.Sub(c.windowStart) >= rateLimitWindow {
		l.counters[ip] = &ipCounter{count: 1, windowStart: now}
		return true, 0
	}

	c.count++
	if c.count > l.limit {
		retryAfter := int(rateLimitWindow.Seconds() - now.Sub(c.windowStart).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		return false, retryAfter
	}
	return true, 0
}

// prune drops counters whose window has expired. Called opportunistically
// so the map does not grow unbounded with one-off callers.
func (l *rateLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, c := range l.counters {
		if now.Sub(c.windowStart) >= rateLimitWindow {
			delete(l.counters, ip)
		}
	}
}

// rateLimitMiddleware wraps next with per-IP fixed-window rate limiting.
func rateLimitMiddleware(next http.Handler, limit int) http.Handler {
	limiter := newRateLimiter(limit)

	// Periodic sweep keeps memory bounded under churny client IPs.
	go func() {
		ticker := time.NewTicker(5 * rateLimitWindow)
		defer ticker.Stop()
		for range ticker.C {
			limiter.prune()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retryAfter := limiter.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the caller address, preferring the first
// X-Forwarded-For entry when a proxy sits in front.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
