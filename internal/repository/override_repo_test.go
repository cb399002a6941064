package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

func TestOverrideRepo_DeactivatePurgesOverrides(t *testing.T) {
	mock := newMock(t)
	repo := NewOverrideRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE words SET active = $1 WHERE id = $2")).
		WithArgs(false, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM visibility_overrides WHERE entity_kind = $1 AND entity_id = $2")).
		WithArgs("word", int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	purged, err := repo.SetEntityActive(context.Background(), KindWord, 5, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepo_ActivateKeepsOverrides(t *testing.T) {
	mock := newMock(t)
	repo := NewOverrideRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE themes SET active = $1 WHERE id = $2")).
		WithArgs(true, int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	purged, err := repo.SetEntityActive(context.Background(), KindTheme, 2, true)
	require.NoError(t, err)
	assert.Zero(t, purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepo_DeactivateMissingRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewOverrideRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sets SET active")).
		WithArgs(false, int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	_, err := repo.SetEntityActive(context.Background(), KindSet, 404, false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepo_GetAndSet(t *testing.T) {
	mock := newMock(t)
	repo := NewOverrideRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT state FROM visibility_overrides")).
		WithArgs(userID, "theme", int64(1)).
		WillReturnError(pgx.ErrNoRows)
	state, err := repo.Get(context.Background(), userID, KindTheme, 1)
	require.NoError(t, err)
	assert.Equal(t, training.OverrideInherit, state)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO visibility_overrides")).
		WithArgs(userID, "theme", int64(1), "off").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Set(context.Background(), userID, KindTheme, 1, training.OverrideForceOff))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM visibility_overrides WHERE user_id = $1")).
		WithArgs(userID, "theme", int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Set(context.Background(), userID, KindTheme, 1, training.OverrideInherit))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepo_Entity(t *testing.T) {
	mock := newMock(t)
	repo := NewOverrideRepo(mock)
	owner := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM cards c JOIN sets s")).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"owner_id", "active"}).AddRow(&owner, true))

	v, err := repo.Entity(context.Background(), KindCard, 9)
	require.NoError(t, err)
	assert.True(t, v.OwnedBy(owner))
	assert.True(t, v.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseEntityKind(t *testing.T) {
	k, ok := ParseEntityKind("card")
	assert.True(t, ok)
	assert.Equal(t, KindCard, k)

	_, ok = ParseEntityKind("users")
	assert.False(t, ok)
}
