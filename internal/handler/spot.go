package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/breakline/surfspots/internal/repository"
	"github.com/breakline/surfspots/internal/service"
)

// SpotHandler manages the surf-spot endpoints.
type SpotHandler struct {
	spots  *service.SpotService
	users  repository.UserRepository
	logger *slog.Logger
}

// NewSpotHandler creates a SpotHandler.
func NewSpotHandler(spots *service.SpotService, users repository.UserRepository, logger *slog.Logger) *SpotHandler {
	return &SpotHandler{
		spots:  spots,
		users:  users,
		logger: logger,
	}
}

// HandleList returns all spots with their owners populated.
//
// HTTP: GET /api/spots (public)
func (h *SpotHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	spots, err := h.spots.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spots)
}

// HandleCreate creates a new spot owned by the signed-in user. When the
// payload carries coordinates, the created spot comes back with a forecast
// snapshot (unless the provider failed, which never fails the request).
//
// HTTP: POST /api/spots (session required)
func (h *SpotHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var in service.SpotInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid spot JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	spot, err := h.spots.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, spot)
}

// HandleGet returns a single spot together with its comments and the
// derived average rating.
//
// HTTP: GET /api/spots/{id} (public)
func (h *SpotHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	detail, err := h.spots.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleUpdate applies a partial update to a spot. Admin only.
//
// HTTP: PUT /api/spots/{id}?skipForecastUpdate=true (session required)
//
// The skipForecastUpdate flag preserves the stored forecast snapshot even
// when the request body changes the location.
func (h *SpotHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	var in service.SpotInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid spot JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	skipRefresh := r.URL.Query().Get("skipForecastUpdate") == "true"

	spot, err := h.spots.Update(r.Context(), actor, r.PathValue("id"), in, skipRefresh)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, spot)
}

// HandleDelete removes a spot and all of its comments. Admin only.
//
// HTTP: DELETE /api/spots/{id} (session required)
func (h *SpotHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.spots.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "spot deleted successfully"})
}
