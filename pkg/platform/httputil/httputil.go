// Package httputil centralizes JSON rendering for handlers so every endpoint
// speaks the same envelope. Errors render as {"error": <message>} with the
// status derived from the domain error code; internal causes never leak.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "careergate/pkg/domain-errors"
	"careergate/pkg/requestcontext"
)

// ErrorResponse is the JSON error envelope returned by every API endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP response. Uncoded and
// internal errors render a generic message; the cause belongs in logs.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorResponse{Error: dErrors.MessageOf(err)})
}

// Decode parses the request body into T. On malformed input it writes a 400
// response and returns ok=false; the handler should just return.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := r.Context()
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
			"path", r.URL.Path,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body"))
		return nil, false
	}
	return &req, true
}
