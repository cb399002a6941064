package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

type TrainingRunRepo struct {
	db DBTX
}

func NewTrainingRunRepo(db DBTX) *TrainingRunRepo {
	return &TrainingRunRepo{db: db}
}

func (r *TrainingRunRepo) StartRun(ctx context.Context, userID uuid.UUID, source training.Source, total int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO training_runs (id, user_id, source, total) VALUES ($1, $2, $3, $4)`,
		id, userID, string(source), total,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// FinishRun closes a run once; later calls keep the first counters.
func (r *TrainingRunRepo) FinishRun(ctx context.Context, runID uuid.UUID, answered, correct int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE training_runs
		SET answered = $2, correct = $3, ended_at = NOW()
		WHERE id = $1 AND ended_at IS NULL`,
		runID, answered, correct,
	)
	return err
}

func (r *TrainingRunRepo) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.TrainingRun, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, source, total, answered, correct, started_at, ended_at
		FROM training_runs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]models.TrainingRun, 0)
	for rows.Next() {
		var run models.TrainingRun
		if err := rows.Scan(&run.ID, &run.UserID, &run.Source, &run.Total, &run.Answered,
			&run.Correct, &run.StartedAt, &run.EndedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CountCompleted counts runs whose every item was answered.
func (r *TrainingRunRepo) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM training_runs
		WHERE user_id = $1 AND ended_at IS NOT NULL AND answered >= total`,
		userID,
	).Scan(&n)
	return n, err
}
