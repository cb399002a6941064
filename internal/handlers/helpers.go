package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/services"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

// setupPath is the frontend page that opens the setup form, sent as the
// redirect of a stale session. The API endpoint lives under /api/v1.
const setupPath = "/training/setup"

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	resp := errorResp(code, message, r)
	resp.Error.Fields = fields
	return resp
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return false
	}
	return true
}

// idParam reads a positive integer URL parameter, answering 400 otherwise.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid "+name, r))
		return 0, false
	}
	return id, true
}

func actorFrom(r *http.Request) services.Actor {
	return services.Actor{
		UserID: middleware.GetUserID(r.Context()),
		Role:   middleware.GetRole(r.Context()),
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *services.ValidationError
		conflict     *services.ConflictError
		notFound     *services.NotFoundError
		unauthorized *services.UnauthorizedError
		forbidden    *services.ForbiddenError
		rateLimited  *services.RateLimitError
		cfgErr       *training.ConfigurationError
		stale        *training.StaleSessionError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", validation.Fields, r))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", conflict.Message, r))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFound.Message, r))
	case errors.As(err, &unauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthorized.Message, r))
	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", forbidden.Message, r))
	case errors.As(err, &rateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateLimited.Message, r))
	case errors.As(err, &cfgErr):
		var fields map[string]string
		if cfgErr.Field != "" {
			fields = map[string]string{cfgErr.Field: cfgErr.Message}
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("CONFIGURATION_ERROR", cfgErr.Message, fields, r))
	case errors.As(err, &stale):
		resp := errorResp("SESSION_STALE", "No training session in progress", r)
		resp.Error.Redirect = setupPath
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, training.ErrNoEligibleItems):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("NO_ELIGIBLE_ITEMS", "No eligible items for this configuration", r))
	default:
		zap.L().Error("unhandled request error",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
