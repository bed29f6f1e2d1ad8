package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/joestump/recipe-manager/internal/metrics"
	"github.com/joestump/recipe-manager/internal/store"
	"github.com/rs/zerolog/log"
)

// recipesAPIHandler provides REST handlers for recipe management.
type recipesAPIHandler struct {
	recipes store.RecipeStoreIface
}

// registerRecipeRoutes registers recipe routes on r. Ids that are not
// decimal digits never match and fall through to the JSON 404 handler.
func registerRecipeRoutes(r chi.Router, recipes store.RecipeStoreIface) {
	h := &recipesAPIHandler{recipes: recipes}
	r.Get("/recipes", h.List)
	r.Post("/recipes", h.Create)
	r.Get("/recipes/{id:[0-9]+}", h.Get)
	r.Put("/recipes/{id:[0-9]+}", h.Update)
	r.Delete("/recipes/{id:[0-9]+}", h.Delete)
}

// List returns every stored recipe ordered by id.
// GET /api/recipes
//
// @Summary      List recipes
// @Description  Returns all recipes ordered by id.
// @Tags         Recipes
// @Produce      json
// @Success      200  {array}   Recipe
// @Failure      429  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /recipes [get]
func (h *recipesAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.List(r.Context())
	if err != nil {
		writeInternal(w, r, "list recipes", err)
		return
	}

	resp := make([]Recipe, 0, len(recipes))
	for _, rec := range recipes {
		resp = append(resp, toRecipe(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single recipe by id.
// GET /api/recipes/{id}
//
// @Summary      Get a recipe
// @Tags         Recipes
// @Produce      json
// @Param        id   path      int  true  "Recipe ID"
// @Success      200  {object}  Recipe
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /recipes/{id} [get]
func (h *recipesAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.recipes.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "recipe not found", CodeNotFound)
		return
	}
	if err != nil {
		writeInternal(w, r, "get recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipe(rec))
}

// Create stores a new recipe under a freshly assigned id. Any id in the body
// is ignored.
// POST /api/recipes
//
// @Summary      Create a recipe
// @Description  Validates and stores a new recipe. The id is assigned by the server.
// @Tags         Recipes
// @Accept       json
// @Produce      json
// @Param        body  body      Recipe  true  "Recipe to create"
// @Success      201   {object}  Recipe
// @Header       201   {string}  Location  "/api/recipes/{id}"
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /recipes [post]
func (h *recipesAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req Recipe
	if !decodeRecipe(w, r, &req) {
		return
	}

	created, err := h.recipes.Insert(r.Context(), req.record())
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr.Fields)
			return
		}
		writeInternal(w, r, "create recipe", err)
		return
	}

	h.refreshCount(r.Context())
	w.Header().Set("Location", BasePath+"/recipes/"+strconv.FormatInt(created.ID, 10))
	writeJSON(w, http.StatusCreated, toRecipe(created))
}

// Update replaces every field of an existing recipe. The body id must equal
// the path id.
// PUT /api/recipes/{id}
//
// @Summary      Update a recipe
// @Description  Replaces all fields of the recipe. The body id must match the path id.
// @Tags         Recipes
// @Accept       json
// @Produce      json
// @Param        id    path      int     true  "Recipe ID"
// @Param        body  body      Recipe  true  "Replacement recipe"
// @Success      204
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /recipes/{id} [put]
func (h *recipesAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req Recipe
	if !decodeRecipe(w, r, &req) {
		return
	}

	rec := req.record()
	if err := store.ValidateRecipe(rec); err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr.Fields)
			return
		}
		writeInternal(w, r, "validate recipe", err)
		return
	}

	if req.ID == nil || *req.ID != id {
		writeError(w, http.StatusBadRequest, "body id does not match path id", CodeIDMismatch)
		return
	}

	if _, err := h.recipes.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "recipe not found", CodeNotFound)
			return
		}
		writeInternal(w, r, "get recipe", err)
		return
	}

	// A concurrent delete between the lookup above and this write surfaces
	// here as ErrNotFound; the record is not recreated.
	if err := h.recipes.Replace(r.Context(), id, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info().Int64("id", id).Msg("api: recipe removed during update")
			writeError(w, http.StatusNotFound, "recipe not found", CodeNotFound)
			return
		}
		writeInternal(w, r, "replace recipe", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete permanently removes a recipe.
// DELETE /api/recipes/{id}
//
// @Summary      Delete a recipe
// @Tags         Recipes
// @Produce      json
// @Param        id   path  int  true  "Recipe ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /recipes/{id} [delete]
func (h *recipesAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Remove(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "recipe not found", CodeNotFound)
			return
		}
		writeInternal(w, r, "remove recipe", err)
		return
	}

	h.refreshCount(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} route parameter. Values that overflow int64 can
// never have been issued, so they are reported as 404.
// maxBodyBytes bounds a recipe request body.
const maxBodyBytes = 1 << 20

// decodeRecipe reads exactly one JSON object from the body. Trailing data and
// bodies over maxBodyBytes are rejected with 400.
func decodeRecipe(w http.ResponseWriter, r *http.Request, req *Recipe) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(req)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("trailing data after JSON body")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "request body too large", CodeBadRequest)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body", CodeBadRequest)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "recipe not found", CodeNotFound)
		return 0, false
	}
	return id, true
}

// refreshCount brings the recipes gauge in line with the table after a write.
func (h *recipesAPIHandler) refreshCount(ctx context.Context) {
	n, err := h.recipes.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("api: count recipes")
		return
	}
	metrics.RecipesTotal.Set(float64(n))
}
