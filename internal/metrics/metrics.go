package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_api_requests_total",
		Help: "API requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipes_api_request_duration_seconds",
		Help:    "Time spent serving API requests.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	RateLimitRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipes_api_rate_limit_rejects_total",
		Help: "API requests rejected by the rate limiter.",
	})

	RecipesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "recipes_total",
		Help: "Total number of recipes in the database.",
	})

	ClientErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipes_client_errors_total",
		Help: "Failed calls from the UI client to the API, by operation.",
	}, []string{"op"})
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request count and latency per chi route pattern. It
// must be installed on a chi router so the pattern is known after routing.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		APIRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		APIRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
