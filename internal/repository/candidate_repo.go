package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

// CandidateRepo loads drill candidates with everything the visibility rules
// need. Filtering itself happens in the training package.
type CandidateRepo struct {
	db DBTX
}

func NewCandidateRepo(db DBTX) *CandidateRepo {
	return &CandidateRepo{db: db}
}

func (r *CandidateRepo) WordCandidates(ctx context.Context, userID uuid.UUID, themeIDs []int64) ([]training.WordCandidate, error) {
	query := `
		SELECT w.id, w.theme_id, w.level_id, COALESCE(l.active, TRUE), w.difficulty,
			w.hebrew, w.transliteration, w.french, w.created_at,
			w.owner_id, w.active, COALESCE(wo.state, ''),
			t.owner_id, t.active, COALESCE(tov.state, ''),
			p.strength, p.last_seen
		FROM words w
		JOIN themes t ON t.id = w.theme_id
		LEFT JOIN levels l ON l.id = w.level_id
		LEFT JOIN visibility_overrides wo
			ON wo.user_id = $1 AND wo.entity_kind = 'word' AND wo.entity_id = w.id
		LEFT JOIN visibility_overrides tov
			ON tov.user_id = $1 AND tov.entity_kind = 'theme' AND tov.entity_id = t.id
		LEFT JOIN progress p ON p.user_id = $1 AND p.word_id = w.id
		WHERE w.theme_id = ANY($2)
		  AND (w.owner_id IS NULL OR w.owner_id = $1)
		ORDER BY w.id`

	rows, err := r.db.Query(ctx, query, userID, themeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]training.WordCandidate, 0)
	for rows.Next() {
		var c training.WordCandidate
		var wordOverride, themeOverride string
		if err := rows.Scan(
			&c.ID, &c.ThemeID, &c.LevelID, &c.LevelActive, &c.Difficulty,
			&c.Hebrew, &c.Transliteration, &c.French, &c.CreatedAt,
			&c.Word.OwnerID, &c.Word.Active, &wordOverride,
			&c.Theme.OwnerID, &c.Theme.Active, &themeOverride,
			&c.Strength, &c.LastSeen,
		); err != nil {
			return nil, err
		}
		c.Word.Override = training.ParseOverrideState(wordOverride)
		c.Theme.Override = training.ParseOverrideState(themeOverride)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *CandidateRepo) CardCandidates(ctx context.Context, userID uuid.UUID, setIDs []int64) ([]training.CardCandidate, error) {
	query := `
		SELECT c.id, c.set_id, c.position, c.hebrew, c.transliteration, c.french, c.created_at,
			s.owner_id, c.active, COALESCE(co.state, ''),
			s.active, COALESCE(so.state, '')
		FROM cards c
		JOIN sets s ON s.id = c.set_id
		LEFT JOIN visibility_overrides co
			ON co.user_id = $1 AND co.entity_kind = 'card' AND co.entity_id = c.id
		LEFT JOIN visibility_overrides so
			ON so.user_id = $1 AND so.entity_kind = 'set' AND so.entity_id = s.id
		WHERE c.set_id = ANY($2)
		  AND (s.owner_id IS NULL OR s.owner_id = $1)
		ORDER BY c.id`

	rows, err := r.db.Query(ctx, query, userID, setIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]training.CardCandidate, 0)
	for rows.Next() {
		var c training.CardCandidate
		var cardOverride, setOverride string
		if err := rows.Scan(
			&c.ID, &c.SetID, &c.Position, &c.Hebrew, &c.Transliteration, &c.French, &c.CreatedAt,
			&c.Set.OwnerID, &c.Card.Active, &cardOverride,
			&c.Set.Active, &setOverride,
		); err != nil {
			return nil, err
		}
		// Cards carry the ownership of their set.
		c.Card.OwnerID = c.Set.OwnerID
		c.Card.Override = training.ParseOverrideState(cardOverride)
		c.Set.Override = training.ParseOverrideState(setOverride)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *CandidateRepo) LevelThemeID(ctx context.Context, levelID int64) (int64, bool, error) {
	var themeID int64
	err := r.db.QueryRow(ctx, "SELECT theme_id FROM levels WHERE id = $1", levelID).Scan(&themeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return themeID, true, nil
}
