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

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

func TestWordRepo_ToggleFavorite(t *testing.T) {
	mock := newMock(t)
	repo := NewWordRepo(mock)
	userID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).
		WithArgs(userID, int64(3)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO favorites")).
		WithArgs(userID, int64(3)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	on, err := repo.ToggleFavorite(context.Background(), userID, 3)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = repo.ToggleFavorite(context.Background(), userID, 3)
	require.NoError(t, err)
	assert.False(t, on)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_CreateBatch(t *testing.T) {
	mock := newMock(t)
	repo := NewWordRepo(mock)
	owner := uuid.New()

	words := []models.Word{
		{ThemeID: 5, OwnerID: &owner, Hebrew: "כלב", French: "chien", Difficulty: 1},
		{ThemeID: 5, OwnerID: &owner, Hebrew: "חתול", French: "chat", Difficulty: 2},
	}

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{"words"},
		[]string{"theme_id", "level_id", "owner_id", "hebrew", "transliteration", "french", "difficulty"}).
		WillReturnResult(2)
	mock.ExpectCommit()

	n, err := repo.CreateBatch(context.Background(), words)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_CreateBatchEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewWordRepo(mock)

	n, err := repo.CreateBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWordRepo_DeleteMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewWordRepo(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM words")).
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 99)
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
