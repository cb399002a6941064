package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

// EntityKind names a content table that supports per-user overrides.
type EntityKind string

const (
	KindWord  EntityKind = "word"
	KindTheme EntityKind = "theme"
	KindSet   EntityKind = "set"
	KindCard  EntityKind = "card"
)

func ParseEntityKind(s string) (EntityKind, bool) {
	switch k := EntityKind(s); k {
	case KindWord, KindTheme, KindSet, KindCard:
		return k, true
	default:
		return "", false
	}
}

// Table names are fixed per kind; never build them from input.
var activeUpdates = map[EntityKind]string{
	KindWord:  "UPDATE words SET active = $1 WHERE id = $2",
	KindTheme: "UPDATE themes SET active = $1 WHERE id = $2",
	KindSet:   "UPDATE sets SET active = $1 WHERE id = $2",
	KindCard:  "UPDATE cards SET active = $1 WHERE id = $2",
}

var ownerQueries = map[EntityKind]string{
	KindWord:  "SELECT owner_id, active FROM words WHERE id = $1",
	KindTheme: "SELECT owner_id, active FROM themes WHERE id = $1",
	KindSet:   "SELECT owner_id, active FROM sets WHERE id = $1",
	KindCard:  "SELECT s.owner_id, c.active FROM cards c JOIN sets s ON s.id = c.set_id WHERE c.id = $1",
}

type OverrideRepo struct {
	db DBTX
}

func NewOverrideRepo(db DBTX) *OverrideRepo {
	return &OverrideRepo{db: db}
}

// Entity returns the owner and active flag of a content row.
func (r *OverrideRepo) Entity(ctx context.Context, kind EntityKind, id int64) (training.Visibility, error) {
	query, ok := ownerQueries[kind]
	if !ok {
		return training.Visibility{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	var v training.Visibility
	if err := r.db.QueryRow(ctx, query, id).Scan(&v.OwnerID, &v.Active); err != nil {
		return training.Visibility{}, err
	}
	return v, nil
}

func (r *OverrideRepo) Get(ctx context.Context, userID uuid.UUID, kind EntityKind, id int64) (training.OverrideState, error) {
	var state string
	err := r.db.QueryRow(ctx,
		"SELECT state FROM visibility_overrides WHERE user_id = $1 AND entity_kind = $2 AND entity_id = $3",
		userID, string(kind), id,
	).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return training.OverrideInherit, nil
	}
	if err != nil {
		return training.OverrideInherit, err
	}
	return training.ParseOverrideState(state), nil
}

// Set writes an override. Inherit removes the row.
func (r *OverrideRepo) Set(ctx context.Context, userID uuid.UUID, kind EntityKind, id int64, state training.OverrideState) error {
	if state == training.OverrideInherit {
		_, err := r.db.Exec(ctx,
			"DELETE FROM visibility_overrides WHERE user_id = $1 AND entity_kind = $2 AND entity_id = $3",
			userID, string(kind), id,
		)
		return err
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO visibility_overrides (user_id, entity_kind, entity_id, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, entity_kind, entity_id) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()`,
		userID, string(kind), id, string(state),
	)
	return err
}

// SetEntityActive flips the shared active flag. Deactivation purges every
// user's override on the entity in the same transaction.
func (r *OverrideRepo) SetEntityActive(ctx context.Context, kind EntityKind, id int64, active bool) (purged int64, err error) {
	update, ok := activeUpdates[kind]
	if !ok {
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, update, active, id)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	if !active {
		tag, err = tx.Exec(ctx,
			"DELETE FROM visibility_overrides WHERE entity_kind = $1 AND entity_id = $2",
			string(kind), id,
		)
		if err != nil {
			return 0, err
		}
		purged = tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return purged, nil
}
