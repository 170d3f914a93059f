package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/facilitair/site-server-go/internal/audit"
	"github.com/facilitair/site-server-go/internal/ratelimit"
)

// RateLimitMiddleware throttles an endpoint per client IP. The limiter
// implementation is injected so single-process deployments can stay in
// memory while load-balanced ones share counters through redis.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	name    string
	limit   int
	window  time.Duration
}

func NewRateLimitMiddleware(limiter ratelimit.Limiter, name string, limit int, window time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		name:    name,
		limit:   limit,
		window:  window,
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.name + ":" + audit.GetClientIP(r)
		allowed, resetAt := m.limiter.Allow(r.Context(), key, m.limit, m.window)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"endpoint": m.name},
			})
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"success": false,
				"message": "Too many requests. Please try again later.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
