package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

type WordRepo struct {
	db DBTX
}

func NewWordRepo(db DBTX) *WordRepo {
	return &WordRepo{db: db}
}

func (r *WordRepo) Create(ctx context.Context, w *models.Word) error {
	w.Active = true
	query := `INSERT INTO words (theme_id, level_id, owner_id, hebrew, transliteration, french, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		w.ThemeID, w.LevelID, w.OwnerID, w.Hebrew, w.Transliteration, w.French, w.Difficulty,
	).Scan(&w.ID, &w.CreatedAt)
}

// CreateBatch bulk-inserts imported words with COPY in one transaction.
func (r *WordRepo) CreateBatch(ctx context.Context, words []models.Word) (int64, error) {
	if len(words) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	rows := make([][]any, len(words))
	for i, w := range words {
		rows[i] = []any{w.ThemeID, w.LevelID, w.OwnerID, w.Hebrew, w.Transliteration, w.French, w.Difficulty}
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"words"},
		[]string{"theme_id", "level_id", "owner_id", "hebrew", "transliteration", "french", "difficulty"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy words: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return n, nil
}

func (r *WordRepo) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	w := &models.Word{}
	query := `SELECT id, theme_id, level_id, owner_id, hebrew, transliteration, french, difficulty, active, created_at
		FROM words WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.ThemeID, &w.LevelID, &w.OwnerID, &w.Hebrew, &w.Transliteration,
		&w.French, &w.Difficulty, &w.Active, &w.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListByTheme returns the words of a theme the user may see, with their
// override and favorite flags.
func (r *WordRepo) ListByTheme(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Word, error) {
	query := `
		SELECT w.id, w.theme_id, w.level_id, w.owner_id, w.hebrew, w.transliteration, w.french,
			w.difficulty, w.active, COALESCE(o.state, ''), (f.word_id IS NOT NULL), w.created_at
		FROM words w
		LEFT JOIN visibility_overrides o
			ON o.user_id = $1 AND o.entity_kind = 'word' AND o.entity_id = w.id
		LEFT JOIN favorites f ON f.user_id = $1 AND f.word_id = w.id
		WHERE w.theme_id = $2 AND (w.owner_id IS NULL OR w.owner_id = $1)
		ORDER BY w.id`

	rows, err := r.db.Query(ctx, query, userID, themeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]*models.Word, 0)
	for rows.Next() {
		w := &models.Word{}
		if err := rows.Scan(
			&w.ID, &w.ThemeID, &w.LevelID, &w.OwnerID, &w.Hebrew, &w.Transliteration, &w.French,
			&w.Difficulty, &w.Active, &w.Override, &w.IsFavorite, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (r *WordRepo) Update(ctx context.Context, w *models.Word) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE words SET level_id = $1, hebrew = $2, transliteration = $3, french = $4, difficulty = $5
		 WHERE id = $6`,
		w.LevelID, w.Hebrew, w.Transliteration, w.French, w.Difficulty, w.ID,
	))
}

func (r *WordRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.Exec(ctx, "DELETE FROM words WHERE id = $1", id))
}

// ToggleFavorite flips the favorite marker in one statement and reports the
// new state.
func (r *WordRepo) ToggleFavorite(ctx context.Context, userID uuid.UUID, wordID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		WITH removed AS (
			DELETE FROM favorites WHERE user_id = $1 AND word_id = $2 RETURNING 1
		)
		INSERT INTO favorites (user_id, word_id)
		SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM removed)`,
		userID, wordID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *WordRepo) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Word, error) {
	query := `
		SELECT w.id, w.theme_id, w.level_id, w.owner_id, w.hebrew, w.transliteration, w.french,
			w.difficulty, w.active, w.created_at
		FROM favorites f
		JOIN words w ON w.id = f.word_id
		WHERE f.user_id = $1 AND (w.owner_id IS NULL OR w.owner_id = $1)
		ORDER BY f.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]*models.Word, 0)
	for rows.Next() {
		w := &models.Word{IsFavorite: true}
		if err := rows.Scan(
			&w.ID, &w.ThemeID, &w.LevelID, &w.OwnerID, &w.Hebrew, &w.Transliteration, &w.French,
			&w.Difficulty, &w.Active, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
