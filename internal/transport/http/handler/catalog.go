package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ledfit-api/internal/application/catalog"
)

// CatalogHandler serves exercises and workouts.
type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler { return &CatalogHandler{svc: svc} }

func (h *CatalogHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.svc.ListExercises(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (h *CatalogHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetExercise(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *CatalogHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := h.svc.ListWorkouts(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *CatalogHandler) GetWorkout(w http.ResponseWriter, r *http.Request) {
	wk, err := h.svc.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wk)
}
