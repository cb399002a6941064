package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

type ProgressRepo struct {
	db DBTX
}

func NewProgressRepo(db DBTX) *ProgressRepo {
	return &ProgressRepo{db: db}
}

func counters(correct bool) (success, fail int) {
	if correct {
		return 1, 0
	}
	return 0, 1
}

// RecordWord upserts the user's progress on a word in a single statement and
// returns the clamped strength.
func (r *ProgressRepo) RecordWord(ctx context.Context, userID uuid.UUID, wordID int64, correct bool) (int, error) {
	success, fail := counters(correct)
	delta := -training.StrengthStep
	if correct {
		delta = training.StrengthStep
	}

	query := `
		INSERT INTO progress (user_id, word_id, success_count, fail_count, strength, last_seen)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, word_id) DO UPDATE SET
			success_count = progress.success_count + EXCLUDED.success_count,
			fail_count = progress.fail_count + EXCLUDED.fail_count,
			strength = GREATEST($6::int, LEAST($7::int, progress.strength + $8::int)),
			last_seen = NOW()
		RETURNING strength`

	var strength int
	err := r.db.QueryRow(ctx, query,
		userID, wordID, success, fail, training.NextStrength(0, correct),
		training.MinStrength, training.MaxStrength, delta,
	).Scan(&strength)
	if err != nil {
		return 0, err
	}
	return strength, nil
}

// RecordCard upserts card counters. Cards have no strength.
func (r *ProgressRepo) RecordCard(ctx context.Context, userID uuid.UUID, cardID int64, correct bool) error {
	success, fail := counters(correct)
	_, err := r.db.Exec(ctx, `
		INSERT INTO card_progress (user_id, card_id, success_count, fail_count, last_seen)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			success_count = card_progress.success_count + EXCLUDED.success_count,
			fail_count = card_progress.fail_count + EXCLUDED.fail_count,
			last_seen = NOW()`,
		userID, cardID, success, fail,
	)
	return err
}

func (r *ProgressRepo) DeleteWordProgress(ctx context.Context, userID uuid.UUID, themeIDs []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM progress p
		USING words w
		WHERE p.word_id = w.id AND p.user_id = $1 AND w.theme_id = ANY($2)`,
		userID, themeIDs,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ProgressRepo) DeleteCardProgress(ctx context.Context, userID uuid.UUID, setIDs []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM card_progress cp
		USING cards c
		WHERE cp.card_id = c.id AND cp.user_id = $1 AND c.set_id = ANY($2)`,
		userID, setIDs,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// WordStats returns seen, mastered, success and failure totals for words.
func (r *ProgressRepo) WordStats(ctx context.Context, userID uuid.UUID) (seen, mastered, successes, failures int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE strength >= $2),
			COALESCE(SUM(success_count), 0),
			COALESCE(SUM(fail_count), 0)
		FROM progress WHERE user_id = $1`,
		userID, training.MaxStrength,
	).Scan(&seen, &mastered, &successes, &failures)
	return
}

func (r *ProgressRepo) CardStats(ctx context.Context, userID uuid.UUID) (seen, successes, failures int, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success_count), 0), COALESCE(SUM(fail_count), 0)
		FROM card_progress WHERE user_id = $1`,
		userID,
	).Scan(&seen, &successes, &failures)
	return
}

func (r *ProgressRepo) CountFavorites(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM favorites WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
