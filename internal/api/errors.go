package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeIDMismatch       = "ID_MISMATCH"
	CodeNotFound         = "NOT_FOUND"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "validation failed",
		Code:   CodeValidationFailed,
		Fields: fields,
	})
}

// writeInternal logs err and writes a generic 500. The cause never reaches the
// response body.
func writeInternal(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.Error().Err(err).
		Str("op", op).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("api: storage fault")
	writeError(w, http.StatusInternalServerError, "internal error", CodeInternalError)
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("api: encode response")
	}
}
