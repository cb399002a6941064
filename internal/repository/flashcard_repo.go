package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

type FlashcardRepo struct {
	db DBTX
}

func NewFlashcardRepo(db DBTX) *FlashcardRepo {
	return &FlashcardRepo{db: db}
}

// Set operations

func (r *FlashcardRepo) CreateSet(ctx context.Context, s *models.FlashcardSet) error {
	s.Active = true
	return r.db.QueryRow(ctx,
		`INSERT INTO sets (owner_id, name) VALUES ($1, $2) RETURNING id, created_at`,
		s.OwnerID, s.Name,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *FlashcardRepo) GetSetByID(ctx context.Context, id int64) (*models.FlashcardSet, error) {
	s := &models.FlashcardSet{}
	query := `SELECT s.id, s.owner_id, s.name, s.active, s.created_at,
			(SELECT COUNT(*) FROM cards c WHERE c.set_id = s.id)
		FROM sets s WHERE s.id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.OwnerID, &s.Name, &s.Active, &s.CreatedAt, &s.CardCount)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSets returns the user's sets followed by shared ones.
func (r *FlashcardRepo) ListSets(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error) {
	query := `
		SELECT s.id, s.owner_id, s.name, s.active, COALESCE(o.state, ''), s.created_at,
			(SELECT COUNT(*) FROM cards c WHERE c.set_id = s.id) AS card_count
		FROM sets s
		LEFT JOIN visibility_overrides o
			ON o.user_id = $1 AND o.entity_kind = 'set' AND o.entity_id = s.id
		WHERE s.owner_id = $1 OR s.owner_id IS NULL
		ORDER BY s.owner_id NULLS LAST, s.created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := make([]*models.FlashcardSet, 0)
	for rows.Next() {
		s := &models.FlashcardSet{}
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Active, &s.Override, &s.CreatedAt, &s.CardCount); err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func (r *FlashcardRepo) RenameSet(ctx context.Context, id int64, name string) error {
	return expectOne(r.db.Exec(ctx, "UPDATE sets SET name = $1 WHERE id = $2", name, id))
}

func (r *FlashcardRepo) DeleteSet(ctx context.Context, id int64) error {
	return expectOne(r.db.Exec(ctx, "DELETE FROM sets WHERE id = $1", id))
}

// Card operations

// CreateCard appends the card at the end of its set unless a position is
// given.
func (r *FlashcardRepo) CreateCard(ctx context.Context, c *models.Card, position *int) error {
	c.Active = true
	query := `
		INSERT INTO cards (set_id, hebrew, transliteration, french, position)
		VALUES ($1, $2, $3, $4,
			COALESCE($5, (SELECT COALESCE(MAX(position), -1) + 1 FROM cards WHERE set_id = $1)))
		RETURNING id, position, created_at`

	return r.db.QueryRow(ctx, query,
		c.SetID, c.Hebrew, c.Transliteration, c.French, position,
	).Scan(&c.ID, &c.Position, &c.CreatedAt)
}

func (r *FlashcardRepo) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	c := &models.Card{}
	query := `SELECT id, set_id, hebrew, transliteration, french, position, active, favorite, memorized, created_at
		FROM cards WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.SetID, &c.Hebrew, &c.Transliteration, &c.French,
		&c.Position, &c.Active, &c.Favorite, &c.Memorized, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *FlashcardRepo) ListCards(ctx context.Context, setID int64) ([]models.Card, error) {
	query := `SELECT id, set_id, hebrew, transliteration, french, position, active, favorite, memorized, created_at
		FROM cards WHERE set_id = $1 ORDER BY position, id`

	rows, err := r.db.Query(ctx, query, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := make([]models.Card, 0)
	for rows.Next() {
		c := models.Card{}
		if err := rows.Scan(
			&c.ID, &c.SetID, &c.Hebrew, &c.Transliteration, &c.French,
			&c.Position, &c.Active, &c.Favorite, &c.Memorized, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *FlashcardRepo) UpdateCard(ctx context.Context, c *models.Card) error {
	return expectOne(r.db.Exec(ctx,
		`UPDATE cards SET hebrew = $1, transliteration = $2, french = $3, position = $4,
		 favorite = $5, memorized = $6 WHERE id = $7`,
		c.Hebrew, c.Transliteration, c.French, c.Position, c.Favorite, c.Memorized, c.ID,
	))
}

func (r *FlashcardRepo) DeleteCard(ctx context.Context, id int64) error {
	return expectOne(r.db.Exec(ctx, "DELETE FROM cards WHERE id = $1", id))
}
