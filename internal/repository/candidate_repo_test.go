package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

var wordCandidateColumns = []string{
	"id", "theme_id", "level_id", "level_active", "difficulty",
	"hebrew", "transliteration", "french", "created_at",
	"word_owner", "word_active", "word_override",
	"theme_owner", "theme_active", "theme_override",
	"strength", "last_seen",
}

func TestCandidateRepo_WordCandidates(t *testing.T) {
	mock := newMock(t)
	repo := NewCandidateRepo(mock)
	userID := uuid.New()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	levelID := int64(4)
	strength := 40
	seen := created.Add(time.Hour)

	rows := pgxmock.NewRows(wordCandidateColumns).
		AddRow(int64(1), int64(5), nil, true, 1, "שלום", "shalom", "bonjour", created,
			nil, true, "off", nil, true, "", nil, nil).
		AddRow(int64(2), int64(5), &levelID, false, 2, "תודה", "toda", "merci", created,
			&userID, true, "", nil, true, "", &strength, &seen)

	mock.ExpectQuery(regexp.QuoteMeta("FROM words w")).
		WithArgs(userID, []int64{5}).
		WillReturnRows(rows)

	got, err := repo.WordCandidates(context.Background(), userID, []int64{5})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, training.OverrideForceOff, got[0].Word.Override)
	assert.True(t, got[0].Word.Global())
	assert.Nil(t, got[0].Strength)

	assert.Equal(t, int64(4), *got[1].LevelID)
	assert.False(t, got[1].LevelActive)
	assert.True(t, got[1].Word.OwnedBy(userID))
	assert.Equal(t, 40, *got[1].Strength)
	assert.Equal(t, seen, *got[1].LastSeen)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepo_CardCandidatesInheritSetOwner(t *testing.T) {
	mock := newMock(t)
	repo := NewCandidateRepo(mock)
	userID := uuid.New()
	created := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "set_id", "position", "hebrew", "transliteration", "french", "created_at",
		"owner_id", "card_active", "card_override", "set_active", "set_override",
	}).AddRow(int64(10), int64(7), 0, "ספר", "sefer", "livre", created, &userID, true, "", true, "")

	mock.ExpectQuery(regexp.QuoteMeta("FROM cards c")).
		WithArgs(userID, []int64{7}).
		WillReturnRows(rows)

	got, err := repo.CardCandidates(context.Background(), userID, []int64{7})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Card.OwnedBy(userID))
	assert.True(t, got[0].Set.OwnedBy(userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepo_LevelThemeID(t *testing.T) {
	mock := newMock(t)
	repo := NewCandidateRepo(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT theme_id FROM levels")).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"theme_id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT theme_id FROM levels")).
		WithArgs(int64(4)).
		WillReturnError(pgx.ErrNoRows)

	themeID, found, err := repo.LevelThemeID(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(5), themeID)

	_, found, err = repo.LevelThemeID(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, mock.ExpectationsWereMet())
}
