package web

// errors.go provides unified error response handling for the API.
//
// Handlers call respondError, which maps the technical error to an
// operator-facing message via importer.MapError, logs the technical detail
// with the request id for correlation, and writes a JSON body.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/koitrade/backoffice/internal/importer"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

// respondError logs the technical error server-side and writes the mapped
// user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := importer.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	respondErrorJSON(w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg importer.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Error:   msg.Message,
	})
}

// respondBadRequest writes a 400 with a literal message, bypassing the error
// pattern table: request-shape problems have exact causes.
func respondBadRequest(w http.ResponseWriter, message string) {
	respondErrorJSON(w, importer.UserMessage{
		Message: message,
		Action:  "Fix the request body and retry",
		Code:    "REQ001",
	}, http.StatusBadRequest)
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
