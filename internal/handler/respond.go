package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/internnepal/jobboard/internal/ctxkeys"
	"github.com/internnepal/jobboard/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
}

// errorStatus maps client-facing service errors to HTTP status codes.
// Order matters: the first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrDuplicateAccount, http.StatusConflict},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidCode, http.StatusBadRequest},
	{service.ErrInvalidOrExpired, http.StatusBadRequest},
	{service.ErrAlreadyVerified, http.StatusConflict},
	{service.ErrEmailNotVerified, http.StatusForbidden},
	{service.ErrNotification, http.StatusBadGateway},
	{service.ErrInvalidAccessToken, http.StatusUnauthorized},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeEmpty(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, struct{}{})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeServiceError never exposes storage or crypto details; those are logged instead.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeMessage(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			writeMessage(w, m.status, m.err.Error())
			return
		}
	}

	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", ctxkeys.RequestID(r.Context()),
		"error", err,
	)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}

	writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}
