package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/importer"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/services"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/worker"
)

const maxUploadSize = 10 * 1024 * 1024

type importAuthorizer interface {
	AuthorizeImport(ctx context.Context, actor services.Actor, themeID int64, levelID *int64) error
}

type jobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

type ImportHandler struct {
	content     importAuthorizer
	jobs        jobRepository
	redis       *redis.Client
	storagePath string
	logger      *zap.Logger
}

func NewImportHandler(content importAuthorizer, jobs jobRepository, redisClient *redis.Client, storagePath string, logger *zap.Logger) *ImportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportHandler{
		content:     content,
		jobs:        jobs,
		redis:       redisClient,
		storagePath: storagePath,
		logger:      logger,
	}
}

// Upload stores a vocabulary spreadsheet and queues its import into a theme.
// Progress and the final report arrive over the websocket.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxUploadSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 10MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	if !importer.Supported(header.Filename) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorResp("UNSUPPORTED_FORMAT", "Only .xlsx and .csv files are supported", r))
		return
	}

	themeID, err := strconv.ParseInt(r.FormValue("theme_id"), 10, 64)
	if err != nil || themeID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"theme_id": "A theme is required"}, r))
		return
	}
	var levelID *int64
	if raw := r.FormValue("level_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"level_id": "Invalid level"}, r))
			return
		}
		levelID = &id
	}

	actor := actorFrom(r)
	if err := h.content.AuthorizeImport(r.Context(), actor, themeID, levelID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	path, err := h.save(file, header.Filename)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	config, _ := json.Marshal(models.ImportConfig{
		FilePath: path,
		Filename: header.Filename,
		ThemeID:  themeID,
		LevelID:  levelID,
	})
	job := &models.Job{
		UserID:      actor.UserID,
		Type:        models.JobTypeVocabularyImport,
		ReferenceID: themeID,
		ConfigJSON:  config,
	}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		os.Remove(path)
		handleServiceError(w, r, err)
		return
	}
	if err := worker.Enqueue(r.Context(), h.redis, job); err != nil {
		h.logger.Error("failed to enqueue import", zap.String("job_id", job.ID.String()), zap.Error(err))
		handleServiceError(w, r, err)
		return
	}

	h.logger.Info("vocabulary import queued",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", actor.UserID.String()),
		zap.Int64("theme_id", themeID),
		zap.String("filename", header.Filename),
	)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	})
}

func (h *ImportHandler) save(src io.Reader, filename string) (string, error) {
	dir := filepath.Join(h.storagePath, "imports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, uuid.New().String()+strings.ToLower(filepath.Ext(filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	return path, dst.Close()
}

// GetJob reports an import job to its owner.
func (h *ImportHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	if job.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}
	writeJSON(w, http.StatusOK, job)
}
