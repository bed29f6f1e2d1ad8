package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/joestump/recipe-manager/internal/api"
	"github.com/joestump/recipe-manager/internal/store"
)

func tea() api.Recipe {
	return api.Recipe{
		Name:         "Tea",
		Ingredients:  "water, tea leaves",
		Instructions: "Boil, steep.",
		PrepTime:     5,
	}
}

func TestRecipes_List_Seeded(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, http.MethodGet, "/recipes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp []api.Recipe
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantNames := []string{"Classic Pancakes", "Simple Pasta Carbonara", "Vegetable Stir Fry"}
	if len(resp) != len(wantNames) {
		t.Fatalf("len = %d, want %d", len(resp), len(wantNames))
	}
	for i, name := range wantNames {
		if resp[i].ID == nil || *resp[i].ID != int64(i+1) {
			t.Errorf("resp[%d].ID = %v, want %d", i, resp[i].ID, i+1)
		}
		if resp[i].Name != name {
			t.Errorf("resp[%d].Name = %q, want %q", i, resp[i].Name, name)
		}
	}
	if resp[0].PrepTime != 20 {
		t.Errorf("pancakes prepTime = %d, want 20", resp[0].PrepTime)
	}
}

func TestRecipes_Create_Created(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, http.MethodPost, "/recipes", tea())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var created api.Recipe
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == nil {
		t.Fatal("created recipe has no id")
	}
	if *created.ID >= 1 && *created.ID <= 3 {
		t.Errorf("id = %d, want an id not in {1,2,3}", *created.ID)
	}
	want := tea()
	want.ID = created.ID
	if created != want {
		t.Errorf("created = %+v, want %+v", created, want)
	}

	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/api/recipes/") {
		t.Errorf("Location = %q, want /api/recipes/{id}", loc)
	}

	get := do(t, env.Router, http.MethodGet, strings.TrimPrefix(loc, "/api"), nil)
	if get.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d", loc, get.Code)
	}
	var fetched api.Recipe
	if err := json.NewDecoder(get.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *fetched.ID != *created.ID || fetched.Name != "Tea" || fetched.PrepTime != 5 {
		t.Errorf("fetched = %+v, want %+v", fetched, created)
	}
}

func TestRecipes_Create_IgnoresBodyID(t *testing.T) {
	env := newTestEnv(t)
	body := tea()
	body.ID = int64p(1)

	rec := do(t, env.Router, http.MethodPost, "/recipes", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created api.Recipe
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *created.ID == 1 {
		t.Error("create overwrote the seeded id 1")
	}

	r1, err := env.Store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get 1: %v", err)
	}
	if r1.Name != "Classic Pancakes" {
		t.Errorf("recipe 1 name = %q, want unchanged", r1.Name)
	}
}

func TestRecipes_Create_InvalidBody(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{`{`, `{"name":"Tea","prepTime":"five"}`, `[]`} {
		rec := do(t, env.Router, http.MethodPost, "/recipes", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
			continue
		}
		if resp := decodeError(t, rec); resp.Code != api.CodeBadRequest {
			t.Errorf("body %s: code = %q, want %q", body, resp.Code, api.CodeBadRequest)
		}
	}
}

func TestRecipes_TrailingDataRejected(t *testing.T) {
	env := newTestEnv(t)
	valid := `{"id":1,"name":"Tea","ingredients":"water","instructions":"Boil.","prepTime":5}`

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/recipes"},
		{http.MethodPut, "/recipes/1"},
	} {
		rec := do(t, env.Router, tc.method, tc.path, valid+`garbage`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s: status = %d, want 400", tc.method, tc.path, rec.Code)
			continue
		}
		if resp := decodeError(t, rec); resp.Code != api.CodeBadRequest {
			t.Errorf("%s %s: code = %q, want %q", tc.method, tc.path, resp.Code, api.CodeBadRequest)
		}
	}

	n, err := env.Store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("recipes = %d, want 3 (nothing written)", n)
	}
	r1, err := env.Store.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if r1.Name != "Classic Pancakes" {
		t.Errorf("recipe 1 name = %q, want unchanged", r1.Name)
	}
}

func TestRecipes_Create_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t)
	body := `{"name":"` + strings.Repeat("a", 2<<20) + `","ingredients":"x","instructions":"y","prepTime":1}`

	rec := do(t, env.Router, http.MethodPost, "/recipes", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Code != api.CodeBadRequest || resp.Error != "request body too large" {
		t.Errorf("error = %+v", resp)
	}
}

func TestRecipes_Create_FieldBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *api.Recipe)
		wantStatus int
		wantField  string
	}{
		{"name 100 chars", func(r *api.Recipe) { r.Name = strings.Repeat("n", 100) }, http.StatusCreated, ""},
		{"name 101 chars", func(r *api.Recipe) { r.Name = strings.Repeat("n", 101) }, http.StatusBadRequest, "name"},
		{"prepTime 0", func(r *api.Recipe) { r.PrepTime = 0 }, http.StatusBadRequest, "prepTime"},
		{"prepTime 1", func(r *api.Recipe) { r.PrepTime = 1 }, http.StatusCreated, ""},
		{"prepTime 1000", func(r *api.Recipe) { r.PrepTime = 1000 }, http.StatusCreated, ""},
		{"prepTime 1001", func(r *api.Recipe) { r.PrepTime = 1001 }, http.StatusBadRequest, "prepTime"},
		{"blank ingredients", func(r *api.Recipe) { r.Ingredients = "   " }, http.StatusBadRequest, "ingredients"},
		{"missing instructions", func(r *api.Recipe) { r.Instructions = "" }, http.StatusBadRequest, "instructions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body := tea()
			tt.mutate(&body)

			rec := do(t, env.Router, http.MethodPost, "/recipes", body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantField == "" {
				return
			}
			resp := decodeError(t, rec)
			if resp.Code != api.CodeValidationFailed {
				t.Errorf("code = %q, want %q", resp.Code, api.CodeValidationFailed)
			}
			if _, ok := resp.Fields[tt.wantField]; !ok {
				t.Errorf("fields = %v, want key %q", resp.Fields, tt.wantField)
			}

			n, _ := env.Store.Count(context.Background())
			if n != 3 {
				t.Errorf("count = %d, want 3 (rejected recipe must not be written)", n)
			}
		})
	}
}

func TestRecipes_Get_NotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/recipes/999", "/recipes/abc", "/recipes/-1", "/recipes/99999999999999999999"} {
		rec := do(t, env.Router, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusNotFound)
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("GET %s Content-Type = %q, want application/json", path, ct)
		}
		if resp := decodeError(t, rec); resp.Code != api.CodeNotFound {
			t.Errorf("GET %s code = %q, want %q", path, resp.Code, api.CodeNotFound)
		}
	}
}

func TestRecipes_Update_NoContent(t *testing.T) {
	env := newTestEnv(t)
	body := api.Recipe{
		ID:           int64p(2),
		Name:         "Carbonara v2",
		Ingredients:  "...",
		Instructions: "...",
		PrepTime:     30,
	}

	rec := do(t, env.Router, http.MethodPut, "/recipes/2", body)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}

	get := do(t, env.Router, http.MethodGet, "/recipes/2", nil)
	var got api.Recipe
	if err := json.NewDecoder(get.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == nil || *got.ID != 2 || got.Name != "Carbonara v2" || got.Ingredients != "..." || got.Instructions != "..." || got.PrepTime != 30 {
		t.Errorf("after update = %+v, want %+v", got, body)
	}
}

func TestRecipes_Update_IDMismatch(t *testing.T) {
	env := newTestEnv(t)

	for name, id := range map[string]*int64{"other id": int64p(3), "missing id": nil} {
		body := tea()
		body.ID = id
		rec := do(t, env.Router, http.MethodPut, "/recipes/2", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", name, rec.Code, http.StatusBadRequest)
			continue
		}
		if resp := decodeError(t, rec); resp.Code != api.CodeIDMismatch {
			t.Errorf("%s: code = %q, want %q", name, resp.Code, api.CodeIDMismatch)
		}
	}

	for _, id := range []int64{2, 3} {
		r, err := env.Store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get %d: %v", id, err)
		}
		if r.Name == "Tea" {
			t.Errorf("recipe %d was modified by a mismatched update", id)
		}
	}
}

func TestRecipes_Update_ValidationBeforeMismatch(t *testing.T) {
	env := newTestEnv(t)
	body := tea()
	body.ID = int64p(3)
	body.PrepTime = 0

	rec := do(t, env.Router, http.MethodPut, "/recipes/2", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if resp := decodeError(t, rec); resp.Code != api.CodeValidationFailed {
		t.Errorf("code = %q, want %q", resp.Code, api.CodeValidationFailed)
	}
}

func TestRecipes_Update_NotFound(t *testing.T) {
	env := newTestEnv(t)
	body := tea()
	body.ID = int64p(999)

	rec := do(t, env.Router, http.MethodPut, "/recipes/999", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNotFound, rec.Body.String())
	}
	n, _ := env.Store.Count(context.Background())
	if n != 3 {
		t.Errorf("count = %d, want 3 (update must not create)", n)
	}
}

func TestRecipes_Delete_ThenGet(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, http.MethodDelete, "/recipes/1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	if get := do(t, env.Router, http.MethodGet, "/recipes/1", nil); get.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want %d", get.Code, http.StatusNotFound)
	}

	list := do(t, env.Router, http.MethodGet, "/recipes", nil)
	var resp []api.Recipe
	if err := json.NewDecoder(list.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
	if *resp[0].ID != 2 || *resp[1].ID != 3 {
		t.Errorf("remaining ids = %d,%d, want 2,3", *resp[0].ID, *resp[1].ID)
	}

	if again := do(t, env.Router, http.MethodDelete, "/recipes/1", nil); again.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want %d", again.Code, http.StatusNotFound)
	}
}

func TestRecipes_Delete_NeverIssued(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, http.MethodDelete, "/recipes/12345", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRecipes_RateLimited(t *testing.T) {
	rs := newTestEnv(t).Store
	router := api.NewAPIRouter(api.Deps{Recipes: rs, RateLimit: 0.001, RateBurst: 1})

	if rec := do(t, router, http.MethodGet, "/recipes", nil); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", rec.Code, http.StatusOK)
	}
	rec := do(t, router, http.MethodGet, "/recipes", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header when rate limited")
	}
	if resp := decodeError(t, rec); resp.Code != api.CodeRateLimited {
		t.Errorf("code = %q, want %q", resp.Code, api.CodeRateLimited)
	}
}

// vanishingStore reports a recipe as present on Get but fails the write as
// if it had been deleted in between.
type vanishingStore struct {
	store.RecipeStoreIface
}

func (vanishingStore) Get(ctx context.Context, id int64) (*store.Recipe, error) {
	return &store.Recipe{ID: id, Name: "x", Ingredients: "x", Instructions: "x", PrepTime: 1}, nil
}

func (vanishingStore) Replace(ctx context.Context, id int64, r *store.Recipe) error {
	return store.ErrNotFound
}

func TestRecipes_Update_VanishedDuringWrite(t *testing.T) {
	router := api.NewAPIRouter(api.Deps{Recipes: vanishingStore{}})
	body := tea()
	body.ID = int64p(7)

	rec := do(t, router, http.MethodPut, "/recipes/7", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if resp := decodeError(t, rec); resp.Code != api.CodeNotFound {
		t.Errorf("code = %q, want %q", resp.Code, api.CodeNotFound)
	}
}

// brokenStore fails every read with a storage fault.
type brokenStore struct {
	store.RecipeStoreIface
}

func (brokenStore) List(ctx context.Context) ([]*store.Recipe, error) {
	return nil, errors.New("disk on fire")
}

func TestRecipes_List_StorageFault(t *testing.T) {
	router := api.NewAPIRouter(api.Deps{Recipes: brokenStore{}})

	rec := do(t, router, http.MethodGet, "/recipes", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "disk on fire") {
		t.Error("storage fault cause leaked into the response body")
	}
	if resp := decodeError(t, rec); resp.Code != api.CodeInternalError {
		t.Errorf("code = %q, want %q", resp.Code, api.CodeInternalError)
	}
}
