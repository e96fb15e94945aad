package handler

import (
	"net/http"

	"github.com/ledfit-api/internal/application/progress"
	"github.com/ledfit-api/internal/domain"
)

// ProgressHandler handles the metrics and achievement endpoints.
type ProgressHandler struct {
	svc progress.Service
}

func NewProgressHandler(svc progress.Service) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// UpdateMetrics records a finished session for the caller.
func (h *ProgressHandler) UpdateMetrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req domain.MetricsDelta
	if !decodeBody(w, r, &req) {
		return
	}
	totals, err := h.svc.UpdateMetrics(r.Context(), userID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *ProgressHandler) UpdateAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	achievements, err := h.svc.UpdateAchievements(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AchievementsEnvelope{Achievements: achievements})
}
