package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chargeassist/backend/libs/validation"
	"chargeassist/backend/services/assistant-service/internal/http/middleware"
	"chargeassist/backend/services/assistant-service/internal/models"
	"chargeassist/backend/services/assistant-service/internal/service"
)

type locationPayload struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	RadiusKm  float64  `json:"radius_km" validate:"omitempty,gte=1,lte=100"`
}

type chatRequest struct {
	Message  string           `json:"message" validate:"required,max=2000"`
	Location *locationPayload `json:"location"`
}

type chatResponse struct {
	SessionID         string                 `json:"session_id"`
	Reply             models.Turn            `json:"reply"`
	Degraded          bool                   `json:"degraded,omitempty"`
	DirectoryDegraded bool                   `json:"directory_degraded,omitempty"`
	Recommendations   []models.ScoredStation `json:"recommendations,omitempty"`
}

// ChatHandler serves POST /api/chat.
type ChatHandler struct {
	svc    *service.AssistantService
	logger *zap.Logger
}

// NewChatHandler builds handler.
func NewChatHandler(svc *service.AssistantService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

// Handle runs one chat turn for the caller's session. An optional location
// in the request refreshes station recommendations before the reply is
// generated.
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session credentials")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input := service.ChatInput{SessionID: sessionID, Message: req.Message}
	if req.Location != nil {
		input.Location = &service.Location{
			Latitude:  *req.Location.Latitude,
			Longitude: *req.Location.Longitude,
			RadiusKm:  req.Location.RadiusKm,
		}
	}

	result, err := h.svc.Chat(r.Context(), input)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "message is required")
		return
	case err != nil:
		h.logger.Error("chat turn failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:         result.Session.ID,
		Reply:             result.Reply,
		Degraded:          result.Degraded,
		DirectoryDegraded: result.DirectoryDegraded,
		Recommendations:   result.Session.Recommendations,
	})
}
