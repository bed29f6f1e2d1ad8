package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joestump/recipe-manager/internal/metrics"
	"github.com/joestump/recipe-manager/internal/store"
)

// BasePath is where the API router is mounted by the web router.
const BasePath = "/api"

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Recipes store.RecipeStoreIface

	// RateLimit is the sustained request rate per second across all API
	// clients; zero disables limiting. RateBurst is the bucket size.
	RateLimit float64
	RateBurst int
}

// NewAPIRouter creates a chi sub-router for /api.
// All responses, errors included, are application/json.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(jsonContentType)
	r.Use(metrics.Instrument)
	r.Use(rateLimit(deps.RateLimit, deps.RateBurst))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", CodeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", CodeBadRequest)
	})

	registerRecipeRoutes(r, deps.Recipes)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
