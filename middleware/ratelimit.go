package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Limiter is the request budget consulted by [RateLimit]. It is satisfied by the
// Redis-backed limiter in internal/rate.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int64, error)
	Window() time.Duration
}

// KeyFunc derives the rate limit key for a request. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// RateLimit rejects requests over budget with 429 Too Many Requests and calls onLimited
// for each rejection. Limiter errors let the request through. A nil limiter disables
// the middleware.
func RateLimit(limiter Limiter, onLimited func(), keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, _, err := limiter.Allow(r.Context(), key)
			if err != nil || ok {
				next.ServeHTTP(w, r)
				return
			}

			if onLimited != nil {
				onLimited()
			}
			if secs := int(limiter.Window().Seconds()); secs > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})
	}
}

// ClientIP keys requests by the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
