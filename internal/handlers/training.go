package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

const historyLimit = 20

type trainingEngine interface {
	Setup(ctx context.Context, userID uuid.UUID, req training.SetupRequest) (*training.State, error)
	Next(ctx context.Context, userID uuid.UUID) (*training.DealResult, error)
	Answer(ctx context.Context, userID uuid.UUID, req training.AnswerRequest) (*training.AnswerResult, error)
	Resume(ctx context.Context, userID uuid.UUID, restart bool) (*training.DealResult, error)
	Clear(ctx context.Context, userID uuid.UUID, purge bool) (*training.ClearResult, error)
	Current(ctx context.Context, userID uuid.UUID) (*training.State, error)
}

type runHistory interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.TrainingRun, error)
}

type TrainingHandler struct {
	engine trainingEngine
	runs   runHistory
}

func NewTrainingHandler(engine trainingEngine, runs runHistory) *TrainingHandler {
	return &TrainingHandler{engine: engine, runs: runs}
}

func (h *TrainingHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var req training.SetupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	state, err := h.engine.Setup(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, state.View())
}

func (h *TrainingHandler) Current(w http.ResponseWriter, r *http.Request) {
	state, err := h.engine.Current(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state.View())
}

func (h *TrainingHandler) Next(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Next(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TrainingHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req training.AnswerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ItemID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "item_id is required", r))
		return
	}

	result, err := h.engine.Answer(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Resume accepts restart either as a query flag or in an optional JSON body.
func (h *TrainingHandler) Resume(w http.ResponseWriter, r *http.Request) {
	restart, ok := boolOption(w, r, "restart")
	if !ok {
		return
	}

	result, err := h.engine.Resume(r.Context(), middleware.GetUserID(r.Context()), restart)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TrainingHandler) Clear(w http.ResponseWriter, r *http.Request) {
	purge, ok := boolOption(w, r, "purge")
	if !ok {
		return
	}

	result, err := h.engine.Clear(r.Context(), middleware.GetUserID(r.Context()), purge)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TrainingHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "limit must be between 1 and 100", r))
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRecent(r.Context(), middleware.GetUserID(r.Context()), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if runs == nil {
		runs = []models.TrainingRun{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func boolOption(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	if raw := r.URL.Query().Get(name); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+name+" flag", r))
			return false, false
		}
		return v, true
	}

	if r.Body == nil {
		return false, true
	}
	var body map[string]bool
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return false, true
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false, false
	}
	return body[name], true
}
