package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

type ThemeRepo struct {
	db DBTX
}

func NewThemeRepo(db DBTX) *ThemeRepo {
	return &ThemeRepo{db: db}
}

// Theme operations

func (r *ThemeRepo) Create(ctx context.Context, t *models.Theme) error {
	t.Active = true
	return r.db.QueryRow(ctx,
		`INSERT INTO themes (owner_id, name) VALUES ($1, $2) RETURNING id, created_at`,
		t.OwnerID, t.Name,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *ThemeRepo) GetByID(ctx context.Context, id int64) (*models.Theme, error) {
	t := &models.Theme{}
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, name, active, created_at FROM themes WHERE id = $1`, id,
	).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Active, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListVisible returns shared themes and the user's own, with the user's
// override on shared ones.
func (r *ThemeRepo) ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Theme, error) {
	query := `
		SELECT t.id, t.owner_id, t.name, t.active, COALESCE(o.state, ''), t.created_at,
			(SELECT COUNT(*) FROM words w
			 WHERE w.theme_id = t.id AND (w.owner_id IS NULL OR w.owner_id = $1)) AS word_count
		FROM themes t
		LEFT JOIN visibility_overrides o
			ON o.user_id = $1 AND o.entity_kind = 'theme' AND o.entity_id = t.id
		WHERE t.owner_id IS NULL OR t.owner_id = $1
		ORDER BY t.owner_id NULLS FIRST, t.name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	themes := make([]*models.Theme, 0)
	for rows.Next() {
		t := &models.Theme{}
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Active, &t.Override, &t.CreatedAt, &t.WordCount); err != nil {
			return nil, err
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func (r *ThemeRepo) Rename(ctx context.Context, id int64, name string) error {
	return expectOne(r.db.Exec(ctx, "UPDATE themes SET name = $1 WHERE id = $2", name, id))
}

func (r *ThemeRepo) Delete(ctx context.Context, id int64) error {
	return expectOne(r.db.Exec(ctx, "DELETE FROM themes WHERE id = $1", id))
}

// Level operations

func (r *ThemeRepo) CreateLevel(ctx context.Context, l *models.Level) error {
	l.Active = true
	return r.db.QueryRow(ctx,
		`INSERT INTO levels (theme_id, name, level_order) VALUES ($1, $2, $3) RETURNING id`,
		l.ThemeID, l.Name, l.Order,
	).Scan(&l.ID)
}

func (r *ThemeRepo) GetLevel(ctx context.Context, id int64) (*models.Level, error) {
	l := &models.Level{}
	err := r.db.QueryRow(ctx,
		`SELECT id, theme_id, name, level_order, active FROM levels WHERE id = $1`, id,
	).Scan(&l.ID, &l.ThemeID, &l.Name, &l.Order, &l.Active)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *ThemeRepo) ListLevels(ctx context.Context, themeID int64) ([]*models.Level, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, theme_id, name, level_order, active FROM levels WHERE theme_id = $1 ORDER BY level_order, id`,
		themeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make([]*models.Level, 0)
	for rows.Next() {
		l := &models.Level{}
		if err := rows.Scan(&l.ID, &l.ThemeID, &l.Name, &l.Order, &l.Active); err != nil {
			return nil, err
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (r *ThemeRepo) SetLevelActive(ctx context.Context, id int64, active bool) error {
	return expectOne(r.db.Exec(ctx, "UPDATE levels SET active = $1 WHERE id = $2", active, id))
}
