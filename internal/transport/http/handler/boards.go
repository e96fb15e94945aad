package handler

import (
	"net/http"

	"github.com/ledfit-api/internal/application/board"
	"github.com/ledfit-api/internal/domain"
)

type BoardHandler struct {
	svc board.Service
}

func NewBoardHandler(svc board.Service) *BoardHandler { return &BoardHandler{svc: svc} }

func (h *BoardHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Status(r.Context(), userID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// WorkoutState answers 200 whenever the pause flag was stored, even if the
// board could not be reached; the body says whether the command went out.
func (h *BoardHandler) WorkoutState(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req domain.WorkoutStateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.svc.SetWorkoutState(r.Context(), userID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BoardHandler) SyncTime(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req domain.SyncTimeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.svc.SyncTime(r.Context(), userID, req); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "time synced with board"})
}
