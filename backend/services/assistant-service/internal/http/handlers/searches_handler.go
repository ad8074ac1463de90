package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"chargeassist/backend/services/assistant-service/internal/service"
)

// NewRecentSearchesHandler returns GET /internal/searches/recent handler.
func NewRecentSearchesHandler(svc *service.AssistantService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		records, err := svc.RecentSearches(r.Context(), limit)
		if errors.Is(err, service.ErrSearchLogDisabled) {
			writeError(w, http.StatusNotFound, "search history is disabled")
			return
		}
		if err != nil {
			logger.Error("load recent searches failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load searches")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"searches": records})
	}
}
