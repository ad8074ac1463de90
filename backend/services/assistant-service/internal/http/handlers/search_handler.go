package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chargeassist/backend/libs/validation"
	"chargeassist/backend/services/assistant-service/internal/clients"
	"chargeassist/backend/services/assistant-service/internal/http/middleware"
	"chargeassist/backend/services/assistant-service/internal/service"
)

type searchRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	RadiusKm  float64  `json:"radius_km" validate:"omitempty,gte=1,lte=100"`
}

// SearchHandler serves POST /api/stations/search.
type SearchHandler struct {
	svc    *service.AssistantService
	logger *zap.Logger
}

// NewSearchHandler builds handler.
func NewSearchHandler(svc *service.AssistantService, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{svc: svc, logger: logger}
}

// Handle runs a directory search and returns stations ranked best first.
// When the caller supplied session credentials the result also becomes that
// session's station context.
func (h *SearchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID, _ := middleware.SessionIDFromContext(r.Context())

	ranked, err := h.svc.SearchStations(r.Context(), service.SearchInput{
		SessionID: sessionID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		RadiusKm:  req.RadiusKm,
	})
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, clients.ErrDirectoryUnavailable):
		writeError(w, http.StatusBadGateway, "station directory unavailable")
		return
	case err != nil:
		h.logger.Error("station search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to search stations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(ranked),
		"stations": ranked,
	})
}
