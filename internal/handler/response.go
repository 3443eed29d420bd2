// Package handler contains the HTTP layer: thin glue that parses requests,
// calls the service layer, and shapes JSON responses.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/breakline/surfspots/internal/apperror"
	"github.com/breakline/surfspots/internal/auth"
	"github.com/breakline/surfspots/internal/model"
	"github.com/breakline/surfspots/internal/repository"
)

// ErrorResponse is the standard error shape returned by every endpoint:
// one human-readable string, nothing structured.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before the first body write; once Encode writes,
// header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status and sends
// the standard error body. The service layer returns apperror sentinels;
// this is the single place they become status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		}

		writeJSON(w, status, ErrorResponse{Error: appErr.Message})
		return
	}

	// Unknown error — generic 500. The raw message stays in the logs, not
	// in the response.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// currentUser resolves the acting user for an authenticated request.
// RequireAuth has already validated the token; a user row that has since
// vanished is treated the same as no session.
func currentUser(r *http.Request, users repository.UserRepository) (*model.User, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthorized("not authenticated")
	}

	user, err := users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("not authenticated")
		}
		return nil, err
	}

	return user, nil
}
