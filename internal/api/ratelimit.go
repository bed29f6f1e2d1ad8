package api

import (
	"net/http"

	"github.com/joestump/recipe-manager/internal/metrics"
	"golang.org/x/time/rate"
)

// rateLimit returns a token-bucket middleware shared by every API route.
// A non-positive limit disables it.
func rateLimit(limit float64, burst int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(limit), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				metrics.RateLimitRejectsTotal.Inc()
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", CodeRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
