package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/joestump/recipe-manager/internal/client"
	"github.com/joestump/recipe-manager/internal/session"
)

const (
	msgLoadFailed   = "Failed to load recipes. Please try again."
	msgSaveFailed   = "Failed to save recipe. Please try again."
	msgDeleteFailed = "Failed to delete recipe. Please try again."
	msgFetchFailed  = "Failed to load recipe. Please try again."
	msgSaved        = "Recipe saved."
	msgDeleted      = "Recipe deleted."
)

// RecipeClient is the API surface the views use. *client.Client satisfies it.
type RecipeClient interface {
	ListRecipes(ctx context.Context) ([]client.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*client.Recipe, error)
	CreateRecipe(ctx context.Context, r client.Recipe) (*client.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, r client.Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
}

var _ RecipeClient = (*client.Client)(nil)

// ListData is the data for the recipe_list fragment.
type ListData struct {
	Recipes []client.Recipe
	Error   string
}

// IndexPage is the template data for the list view. When Loaded is false the
// page shows a loading indicator and HTMX fetches the list fragment.
type IndexPage struct {
	BasePage
	Loaded bool
	List   ListData
}

// FormPage is the template data for the create/edit form.
type FormPage struct {
	BasePage
	ID     int64 // zero in create mode
	Form   RecipeForm
	Errors map[string]string
	Error  string
}

// IsEdit reports whether the form edits an existing recipe.
func (p FormPage) IsEdit() bool { return p.ID != 0 }

// Action is the URL the form submits to.
func (p FormPage) Action() string {
	if p.IsEdit() {
		return "/recipes/" + strconv.FormatInt(p.ID, 10)
	}
	return "/recipes"
}

// ActionsData is the data for a card's control strip.
type ActionsData struct {
	ID    int64
	Error string
}

// ConfirmPage is the template data for the non-HTMX delete confirmation.
type ConfirmPage struct {
	BasePage
	Recipe *client.Recipe
}

// RecipesHandler renders the list and form views on top of the API client.
type RecipesHandler struct {
	recipes  RecipeClient
	sessions *scs.SessionManager
}

// NewRecipesHandler creates a new RecipesHandler.
func NewRecipesHandler(rc RecipeClient, sm *scs.SessionManager) *RecipesHandler {
	return &RecipesHandler{recipes: rc, sessions: sm}
}

func (h *RecipesHandler) base(r *http.Request, title string) BasePage {
	bp := BasePage{Title: title}
	if kind, msg := session.PopFlash(r.Context(), h.sessions); msg != "" {
		bp.Flash = &Flash{Type: kind, Message: msg}
	}
	return bp
}

// Index renders the list view shell. The list itself is fetched on load.
func (h *RecipesHandler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "index.html", IndexPage{BasePage: h.base(r, "Recipes")})
}

// List fetches all recipes through the API. HTMX requests get the
// recipe_list fragment; others get the full list page.
func (h *RecipesHandler) List(w http.ResponseWriter, r *http.Request) {
	var data ListData
	recipes, err := h.recipes.ListRecipes(r.Context())
	if err != nil {
		data.Error = msgLoadFailed
	} else {
		data.Recipes = recipes
	}

	if isHTMX(r) {
		renderFragment(w, http.StatusOK, "recipe_list", data)
		return
	}
	render(w, http.StatusOK, "index.html", IndexPage{BasePage: h.base(r, "Recipes"), Loaded: true, List: data})
}

// New renders the empty create form.
func (h *RecipesHandler) New(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "form.html", FormPage{BasePage: h.base(r, "Add New Recipe")})
}

// Edit renders the form pre-populated with the stored recipe.
func (h *RecipesHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	rec, err := h.recipes.GetRecipe(r.Context(), id)
	if err != nil {
		h.redirectHome(w, r, "error", msgFetchFailed)
		return
	}
	render(w, http.StatusOK, "form.html", FormPage{
		BasePage: h.base(r, "Edit Recipe"),
		ID:       id,
		Form:     formFromRecipe(rec),
	})
}

// Create processes the create form submission.
func (h *RecipesHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, 0)
}

// Update processes the edit form submission. It is routed for both POST
// (plain HTML forms) and PUT (HTMX).
func (h *RecipesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	h.save(w, r, id)
}

func (h *RecipesHandler) save(w http.ResponseWriter, r *http.Request, id int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	page := FormPage{BasePage: BasePage{Title: "Add New Recipe"}, ID: id, Form: formFromRequest(r)}
	if page.IsEdit() {
		page.Title = "Edit Recipe"
	}

	if err := page.Form.Validate(); err != nil {
		page.Errors = fieldErrors(err)
		if page.Errors == nil {
			page.Error = msgSaveFailed
		}
		h.renderForm(w, r, page)
		return
	}

	var err error
	if page.IsEdit() {
		err = h.recipes.UpdateRecipe(r.Context(), id, page.Form.Recipe())
	} else {
		_, err = h.recipes.CreateRecipe(r.Context(), page.Form.Recipe())
	}
	if err != nil {
		var terr *client.TransportError
		if errors.As(err, &terr) && len(terr.Fields) > 0 {
			page.Errors = terr.Fields
		} else {
			page.Error = msgSaveFailed
		}
		h.renderForm(w, r, page)
		return
	}

	h.redirectHome(w, r, "success", msgSaved)
}

// renderForm re-renders the form with the submitted values. HTMX swaps only
// the form element.
func (h *RecipesHandler) renderForm(w http.ResponseWriter, r *http.Request, page FormPage) {
	if isHTMX(r) {
		renderFragment(w, http.StatusOK, "recipe_form", page)
		return
	}
	render(w, http.StatusOK, "form.html", page)
}

// ConfirmDelete asks for explicit confirmation before deleting. HTMX swaps
// the card's controls for the confirmation buttons; otherwise a page is shown.
func (h *RecipesHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	if isHTMX(r) {
		renderFragment(w, http.StatusOK, "delete_confirm", ActionsData{ID: id})
		return
	}
	rec, err := h.recipes.GetRecipe(r.Context(), id)
	if err != nil {
		h.redirectHome(w, r, "error", msgFetchFailed)
		return
	}
	render(w, http.StatusOK, "confirm_delete.html", ConfirmPage{BasePage: h.base(r, "Delete Recipe"), Recipe: rec})
}

// Actions restores a card's Edit/Delete controls after a cancelled delete.
func (h *RecipesHandler) Actions(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	renderFragment(w, http.StatusOK, "recipe_actions", ActionsData{ID: id})
}

// Delete removes a recipe for an HTMX request. Success returns an empty 200
// body so the card is swapped out without refetching the list. On failure
// the card stays and its controls show the error.
func (h *RecipesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(r.Context(), id); err != nil {
		w.Header().Set("HX-Retarget", "#recipe-"+strconv.FormatInt(id, 10)+"-actions")
		w.Header().Set("HX-Reswap", "outerHTML")
		renderFragment(w, http.StatusOK, "recipe_actions", ActionsData{ID: id, Error: msgDeleteFailed})
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteForm is the plain-form equivalent of Delete.
func (h *RecipesHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, ok := recipeID(w, r)
	if !ok {
		return
	}
	if err := h.recipes.DeleteRecipe(r.Context(), id); err != nil {
		h.redirectHome(w, r, "error", msgDeleteFailed)
		return
	}
	h.redirectHome(w, r, "success", msgDeleted)
}

// redirectHome closes the current view and returns to the list, leaving a
// flash message for it.
func (h *RecipesHandler) redirectHome(w http.ResponseWriter, r *http.Request, kind, msg string) {
	session.PutFlash(r.Context(), h.sessions, kind, msg)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func recipeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
