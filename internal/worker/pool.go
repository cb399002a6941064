package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/importer"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
)

const (
	ImportQueue = "queue:vocabulary-import"
	maxRetries  = 3
	lockTTL     = 10 * time.Minute
	popTimeout  = 30 * time.Second
)

type jobStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateError(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
}

type wordStore interface {
	CreateBatch(ctx context.Context, words []models.Word) (int64, error)
}

type themeStore interface {
	GetByID(ctx context.Context, id int64) (*models.Theme, error)
}

type Publisher interface {
	PublishUpdate(ctx context.Context, userID uuid.UUID, msg models.WSMessage) error
}

// permanentError marks failures that a retry cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

// Enqueue pushes a job on its queue.
func Enqueue(ctx context.Context, client *redis.Client, job *models.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return client.LPush(ctx, jobQueueName(job.Type), string(data)).Err()
}

func jobQueueName(jobType string) string {
	return "queue:" + jobType
}

// Pool runs vocabulary imports pulled from redis.
type Pool struct {
	redis       *redis.Client
	jobs        jobStore
	words       wordStore
	themes      themeStore
	events      Publisher
	logger      *zap.Logger
	workerCount int
	backoff     func(retry int) time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(
	redisClient *redis.Client,
	jobs jobStore,
	words wordStore,
	themes themeStore,
	events Publisher,
	logger *zap.Logger,
	workerCount int,
) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		redis:       redisClient,
		jobs:        jobs,
		words:       words,
		themes:      themes,
		events:      events,
		logger:      logger,
		workerCount: workerCount,
		backoff: func(retry int) time.Duration {
			return time.Duration(1<<uint(retry)) * time.Second
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("started import workers", zap.Int("count", p.workerCount))
}

// Stop cancels pending pops and waits for running jobs to finish.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.With(zap.Int("worker", id))

	for {
		if p.ctx.Err() != nil {
			log.Info("worker shutting down")
			return
		}

		result, err := p.redis.BLPop(p.ctx, popTimeout, ImportQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && p.ctx.Err() == nil {
				log.Warn("queue pop failed", zap.Error(err))
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		// Jobs run to completion even when Stop is called mid-import.
		p.handle(context.Background(), log, result[1])
	}
}

func (p *Pool) handle(ctx context.Context, log *zap.Logger, raw string) {
	var job models.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error("failed to parse job", zap.Error(err))
		return
	}

	lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
	locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
	if err != nil || !locked {
		return // Another worker has this job
	}
	defer p.redis.Del(ctx, lockKey)

	log = log.With(zap.String("job_id", job.ID.String()), zap.String("type", job.Type))
	log.Info("processing job")

	p.jobs.UpdateStatus(ctx, job.ID, models.JobStatusProcessing)
	p.publish(ctx, job.UserID, models.WSMessage{
		Type:    "status_update",
		Payload: models.StatusUpdate{JobID: job.ID, Step: 1, StepName: "Reading spreadsheet"},
	})

	var event *models.ImportCompletedEvent
	switch job.Type {
	case models.JobTypeVocabularyImport:
		event, err = p.processImport(ctx, &job)
	default:
		err = permanent(fmt.Errorf("unknown job type: %s", job.Type))
	}

	if err != nil {
		p.handleFailure(ctx, log, &job, err)
		return
	}
	p.handleSuccess(ctx, log, &job, event)
}

func (p *Pool) processImport(ctx context.Context, job *models.Job) (*models.ImportCompletedEvent, error) {
	var cfg models.ImportConfig
	if err := json.Unmarshal(job.ConfigJSON, &cfg); err != nil {
		return nil, permanent(fmt.Errorf("invalid import config: %w", err))
	}

	theme, err := p.themes.GetByID(ctx, cfg.ThemeID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, permanent(fmt.Errorf("theme %d no longer exists", cfg.ThemeID))
		}
		return nil, fmt.Errorf("failed to load theme: %w", err)
	}

	file, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to open upload: %w", err))
	}
	defer file.Close()

	name := cfg.Filename
	if name == "" {
		name = filepath.Base(cfg.FilePath)
	}
	parsed, err := importer.Parse(file, name)
	if err != nil {
		return nil, permanent(err)
	}

	p.publish(ctx, job.UserID, models.WSMessage{
		Type:    "status_update",
		Payload: models.StatusUpdate{JobID: job.ID, Step: 2, StepName: "Saving words"},
	})

	words := make([]models.Word, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		words = append(words, models.Word{
			ThemeID:         theme.ID,
			LevelID:         cfg.LevelID,
			OwnerID:         theme.OwnerID,
			Hebrew:          row.Hebrew,
			Transliteration: row.Transliteration,
			French:          row.French,
			Difficulty:      row.Difficulty,
		})
	}

	imported, err := p.words.CreateBatch(ctx, words)
	if err != nil {
		return nil, err
	}

	return &models.ImportCompletedEvent{
		JobID:    job.ID,
		ThemeID:  theme.ID,
		Imported: int(imported),
		Skipped:  parsed.Skipped,
		Errors:   parsed.Errors,
	}, nil
}

func (p *Pool) handleSuccess(ctx context.Context, log *zap.Logger, job *models.Job, event *models.ImportCompletedEvent) {
	p.jobs.UpdateStatus(ctx, job.ID, models.JobStatusCompleted)
	p.removeUpload(log, job)

	p.publish(ctx, job.UserID, models.WSMessage{Type: "import_completed", Payload: event})
	log.Info("job completed", zap.Int("imported", event.Imported), zap.Int("skipped", event.Skipped))
}

func (p *Pool) handleFailure(ctx context.Context, log *zap.Logger, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	var perm *permanentError
	if !errors.As(err, &perm) && job.RetryCount < maxRetries {
		log.Warn("job failed, retrying", zap.Int("attempt", job.RetryCount), zap.Error(err))
		p.jobs.UpdateStatus(ctx, job.ID, models.JobStatusPending)
		p.jobs.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		jobBytes, _ := json.Marshal(job)
		time.AfterFunc(p.backoff(job.RetryCount), func() {
			if err := p.redis.LPush(context.Background(), jobQueueName(job.Type), string(jobBytes)).Err(); err != nil {
				log.Error("failed to requeue job", zap.Error(err))
			}
		})
		return
	}

	log.Error("job failed permanently", zap.Int("attempt", job.RetryCount), zap.Error(err))
	p.jobs.UpdateStatus(ctx, job.ID, models.JobStatusFailed)
	p.jobs.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
	p.removeUpload(log, job)

	p.publish(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

func (p *Pool) removeUpload(log *zap.Logger, job *models.Job) {
	var cfg models.ImportConfig
	if err := json.Unmarshal(job.ConfigJSON, &cfg); err != nil || cfg.FilePath == "" {
		return
	}
	if err := os.Remove(cfg.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove upload", zap.String("path", cfg.FilePath), zap.Error(err))
	}
}

func (p *Pool) publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	if p.events == nil {
		return
	}
	if err := p.events.PublishUpdate(ctx, userID, msg); err != nil {
		p.logger.Warn("failed to publish update", zap.String("type", msg.Type), zap.Error(err))
	}
}
