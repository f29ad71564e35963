package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/j0lvera/pgbudget/internal/domain"
	"github.com/j0lvera/pgbudget/internal/infrastructure/metrics"
)

type ownerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-owner rate limiting. Requests without an owner
// are limited by client address.
type RateLimiter struct {
	limiters map[string]*ownerLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
// rate: requests per second
// burst: max burst size
func NewRateLimiter(r float64, b int, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*ownerLimiter),
		rate:     rate.Limit(r),
		burst:    b,
		metrics:  m,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, exists := rl.limiters[key]
	if !exists {
		l = &ownerLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = l
	}
	l.lastSeen = rl.now()

	return l.limiter
}

// Limit is a middleware that enforces rate limiting per owner
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := domain.OwnerFromContext(r.Context())
		if !ok {
			key = "addr:" + r.RemoteAddr
		}

		if !rl.getLimiter(key).Allow() {
			if rl.metrics != nil {
				rl.metrics.RateLimitHits.Inc()
			}
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CleanupLimiters drops limiters idle for longer than maxIdle.
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	for key, l := range rl.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
