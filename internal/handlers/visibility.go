package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/services"
)

type visibilityService interface {
	ToggleForSelf(ctx context.Context, userID uuid.UUID, kind string, id int64) (*models.VisibilityChange, error)
	SetActive(ctx context.Context, actor services.Actor, kind string, id int64, active bool) (*services.ActivationResult, error)
}

type statsService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*models.Stats, error)
}

type VisibilityHandler struct {
	visibility visibilityService
}

func NewVisibilityHandler(visibility visibilityService) *VisibilityHandler {
	return &VisibilityHandler{visibility: visibility}
}

// Toggle hides a shared word, theme, set or card for the caller only.
func (h *VisibilityHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	change, err := h.visibility.ToggleForSelf(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "kind"), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

// SetActive changes the active flag for everyone.
func (h *VisibilityHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.ActiveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.visibility.SetActive(r.Context(), actorFrom(r), chi.URLParam(r, "kind"), id, req.Active)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type StatsHandler struct {
	stats statsService
}

func NewStatsHandler(stats statsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
