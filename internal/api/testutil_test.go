package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joestump/recipe-manager/internal/api"
	"github.com/joestump/recipe-manager/internal/store"
	"github.com/joestump/recipe-manager/internal/testutil"
)

// testEnv holds the router and the store behind it.
type testEnv struct {
	Router http.Handler
	Store  *store.RecipeStore
}

// newTestEnv creates an in-memory SQLite test database, runs migrations
// (including the three seed recipes), and wires up the API router with
// rate limiting disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rs := store.NewRecipeStore(testutil.NewTestDB(t))
	return &testEnv{
		Router: api.NewAPIRouter(api.Deps{Recipes: rs}),
		Store:  rs,
	}
}

// do sends a request with an optional JSON body through h.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v; body: %s", err, rec.Body.String())
	}
	return resp
}

func int64p(v int64) *int64 { return &v }
