// Package client is the UI's typed wrapper around the recipe HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joestump/recipe-manager/internal/metrics"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 10 * time.Second

// Operations reported in TransportError.Op.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

var opMessages = map[string]string{
	OpList:   "Failed to fetch recipes",
	OpGet:    "Failed to fetch recipe",
	OpCreate: "Failed to create recipe",
	OpUpdate: "Failed to update recipe",
	OpDelete: "Failed to delete recipe",
}

// Recipe mirrors the API's JSON representation. A zero ID is omitted, which
// is what create expects.
type Recipe struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	Ingredients  string `json:"ingredients"`
	Instructions string `json:"instructions"`
	PrepTime     int    `json:"prepTime"`
}

// TransportError is returned for every failed call: network errors, non-2xx
// responses and undecodable bodies alike. Error() is safe to show to users;
// the cause is only reachable through Unwrap.
type TransportError struct {
	Op         string
	StatusCode int               // 0 when no response was received
	Fields     map[string]string // per-field messages from a 400 body, if any
	Err        error
}

func (e *TransportError) Error() string {
	if msg, ok := opMessages[e.Op]; ok {
		return msg
	}
	return "Request failed"
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a TransportError for a 404 response.
func IsNotFound(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr) && terr.StatusCode == http.StatusNotFound
}

// Client calls the recipe API rooted at a base URL such as
// http://localhost:5000/api. It does not retry or cache.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// current *http.Client, so a client passed to WithHTTPClient is not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRecipes returns every recipe ordered by id.
func (c *Client) ListRecipes(ctx context.Context) ([]Recipe, error) {
	var recipes []Recipe
	if err := c.do(ctx, OpList, http.MethodGet, "/recipes", nil, http.StatusOK, &recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []Recipe{}
	}
	return recipes, nil
}

// GetRecipe returns one recipe. A missing recipe yields an error for which
// IsNotFound is true.
func (c *Client) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	var r Recipe
	if err := c.do(ctx, OpGet, http.MethodGet, recipePath(id), nil, http.StatusOK, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecipe stores r under a new id and returns the stored recipe.
func (c *Client) CreateRecipe(ctx context.Context, r Recipe) (*Recipe, error) {
	r.ID = 0
	var created Recipe
	if err := c.do(ctx, OpCreate, http.MethodPost, "/recipes", r, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRecipe replaces the recipe with the given id. The body id is set to
// id so the server's mismatch check passes.
func (c *Client) UpdateRecipe(ctx context.Context, id int64, r Recipe) error {
	r.ID = id
	return c.do(ctx, OpUpdate, http.MethodPut, recipePath(id), r, http.StatusNoContent, nil)
}

// DeleteRecipe permanently removes the recipe with the given id.
func (c *Client) DeleteRecipe(ctx context.Context, id int64) error {
	return c.do(ctx, OpDelete, http.MethodDelete, recipePath(id), nil, http.StatusNoContent, nil)
}

func recipePath(id int64) string {
	return "/recipes/" + strconv.FormatInt(id, 10)
}

// errorBody is the subset of the API error response the client reads.
type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, op, method, path string, in any, wantStatus int, out any) error {
	reqID := uuid.NewString()
	fail := func(status int, fields map[string]string, err error) error {
		log.Error().Err(err).
			Str("op", op).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Str("request_id", reqID).
			Msg("client: api call failed")
		metrics.ClientErrorsTotal.WithLabelValues(op).Inc()
		return &TransportError{Op: op, StatusCode: status, Fields: fields, Err: err}
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fail(0, nil, fmt.Errorf("marshal request: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fail(0, nil, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, nil, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != wantStatus {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		var fields map[string]string
		if resp.StatusCode == http.StatusBadRequest && len(eb.Fields) > 0 {
			fields = eb.Fields
		}
		return fail(resp.StatusCode, fields, fmt.Errorf("api returned %d: %s", resp.StatusCode, bytes.TrimSpace(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fail(resp.StatusCode, nil, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}
