package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"studybuddy/internal/httputil"
)

// RateLimiter implements per-client rate limiting, keyed by remote IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex

	perMinute int
	burst     int
}

// NewRateLimiter creates a limiter allowing perMinute requests per client
// with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		perMinute: perMinute,
		burst:     burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Double-check after acquiring write lock
		limiter, exists = rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rate.Limit(rl.perMinute)/60, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

// Limit wraps a handler with the per-IP rate limit. Used on the credential
// endpoints to slow down guessing.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		if !rl.getLimiter(host).Allow() {
			httputil.RespondError(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}
