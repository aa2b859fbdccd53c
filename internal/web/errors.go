package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err) and the status follows from the error kind
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is returned as JSON

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/JonMunkholm/anseconv/internal/convert"
	"github.com/JonMunkholm/anseconv/internal/core"
	"github.com/JonMunkholm/anseconv/internal/logging"
	"github.com/JonMunkholm/anseconv/internal/schema"
	"github.com/JonMunkholm/anseconv/internal/source"
)

// Request errors raised by the handlers themselves.
var (
	errFileTooLarge = errors.New("file too large")
	errNoFile       = errors.New("no file provided")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
// Detail carries the technical error for record errors, which name the
// offending row and cell.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// respondError logs the technical error and writes the coded user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if isRecordError(err) {
		resp.Detail = err.Error()
	}
	respondErrorJSON(w, resp, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// statusFor picks the HTTP status for a conversion error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile),
		errors.Is(err, source.ErrWorksheetNotFound),
		errors.Is(err, convert.ErrUnsupportedExtension):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyConversions):
		return http.StatusServiceUnavailable
	case isRecordError(err):
		return http.StatusUnprocessableEntity
	}

	var cfgErr *schema.ConfigurationError
	if errors.As(err, &cfgErr) {
		return http.StatusInternalServerError
	}
	if core.IsUserFacing(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// isRecordError reports whether err rejects the uploaded content itself.
func isRecordError(err error) bool {
	var (
		unmErr  *core.UnmatchedRecordError
		cellErr *core.CellParsingError
	)
	return errors.As(err, &unmErr) || errors.As(err, &cellErr)
}
