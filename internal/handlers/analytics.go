package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mindful-journal/journal-backend/internal/middleware"
	"github.com/mindful-journal/journal-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	log       logrus.FieldLogger
}

func NewAnalyticsHandler(analytics *services.AnalyticsService, log logrus.FieldLogger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, log: log}
}

// GetAnalytics returns streak, mood and word statistics for the session user.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	a, err := h.analytics.ForUser(ctx, userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("analytics failed")
		writeError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}
	writeJSON(w, http.StatusOK, a)
}
