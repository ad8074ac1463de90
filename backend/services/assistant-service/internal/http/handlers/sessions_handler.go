package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/http/middleware"
	"chargeassist/backend/services/assistant-service/internal/service"
)

// SessionsHandler serves session lifecycle endpoints.
type SessionsHandler struct {
	svc    *service.AssistantService
	tokens *service.TokenService
	logger *zap.Logger
}

// NewSessionsHandler builds handler set. tokens may be nil when token auth
// is disabled; Create then returns only the session id.
func NewSessionsHandler(svc *service.AssistantService, tokens *service.TokenService, logger *zap.Logger) *SessionsHandler {
	return &SessionsHandler{
		svc:    svc,
		tokens: tokens,
		logger: logger,
	}
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.StartSession(r.Context())
	if err != nil {
		h.logger.Error("start session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	payload := map[string]interface{}{"session": session}
	if h.tokens != nil {
		token, err := h.tokens.GenerateToken(session.ID)
		if err != nil {
			h.logger.Error("issue session token failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to start session")
			return
		}
		payload["token"] = token
	}
	writeJSON(w, http.StatusCreated, payload)
}

// Me handles GET /api/sessions/me.
func (h *SessionsHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session credentials")
		return
	}

	session, err := h.svc.GetSession(r.Context(), sessionID)
	if errors.Is(err, service.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("load session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"session": session})
}

// End handles DELETE /api/sessions/me.
func (h *SessionsHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session credentials")
		return
	}

	if err := h.svc.EndSession(r.Context(), sessionID); err != nil {
		h.logger.Error("end session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
