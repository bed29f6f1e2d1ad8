package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joestump/recipe-manager/docs/swagger"
	"github.com/joestump/recipe-manager/internal/api"
	"github.com/joestump/recipe-manager/internal/logging"
	"github.com/joestump/recipe-manager/internal/metrics"
	"github.com/joestump/recipe-manager/web"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	Recipes        RecipeClient
	// API is mounted at /api when non-nil. The UI reaches it through
	// Recipes, which may point at this same process or elsewhere.
	API http.Handler
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)

	// Static assets (embedded). Use fs.Sub so the file server sees
	// css/app.css directly, not static/css/... paths.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Handle("/metrics", metrics.Handler())

	// Swagger UI must be registered before the API mount claims /api.
	r.Get(api.BasePath+"/docs/*", httpSwagger.WrapHandler)
	if deps.API != nil {
		r.Mount(api.BasePath, deps.API)
	}

	// Views. Sessions are only needed here, for flash messages.
	recipes := NewRecipesHandler(deps.Recipes, deps.SessionManager)
	r.Group(func(r chi.Router) {
		r.Use(deps.SessionManager.LoadAndSave)

		r.Get("/", recipes.Index)
		r.Get("/recipes", recipes.List)
		r.Post("/recipes", recipes.Create)
		r.Get("/recipes/new", recipes.New)
		r.Get("/recipes/{id:[0-9]+}/edit", recipes.Edit)
		r.Post("/recipes/{id:[0-9]+}", recipes.Update)
		r.Put("/recipes/{id:[0-9]+}", recipes.Update)
		r.Get("/recipes/{id:[0-9]+}/confirm-delete", recipes.ConfirmDelete)
		r.Get("/recipes/{id:[0-9]+}/actions", recipes.Actions)
		r.Delete("/recipes/{id:[0-9]+}", recipes.Delete)
		r.Post("/recipes/{id:[0-9]+}/delete", recipes.DeleteForm)
	})

	return r
}
