package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/SwarupDevkota/ghumna-sub000/internal/logger"
	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
	"github.com/SwarupDevkota/ghumna-sub000/pkg/db"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// ValidationError carries the request fields that were missing or malformed.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

func Invalid(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, APIError{Code: code, Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, e APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{Error: e})
}

// WriteFailure maps a domain error to the HTTP error envelope. Anything
// unclassified is a 500 and is logged with the request id.
func WriteFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	var te *workflow.TransitionError
	switch {
	case errors.As(err, &ve):
		writeEnvelope(w, http.StatusBadRequest, APIError{Code: "VALIDATION_FAILED", Message: ve.Message, Fields: ve.Fields})
	case errors.Is(err, db.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.As(err, &te):
		WriteError(w, http.StatusBadRequest, "INVALID_STATE_TRANSITION", te.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		WriteError(w, http.StatusBadRequest, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	case errors.Is(err, role.ErrForbidden):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "not allowed")
	default:
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
		msg := "internal error"
		if exposeErrors(r.Context()) {
			msg = err.Error()
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", msg)
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
