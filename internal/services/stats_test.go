package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	err error
}

func (s stubStats) WordStats(ctx context.Context, userID uuid.UUID) (int, int, int, int, error) {
	return 20, 4, 50, 10, nil
}

func (s stubStats) CardStats(ctx context.Context, userID uuid.UUID) (int, int, int, error) {
	return 6, 7, 3, s.err
}

func (s stubStats) CountFavorites(ctx context.Context, userID uuid.UUID) (int, error) {
	return 2, nil
}

func (s stubStats) CountCompleted(ctx context.Context, userID uuid.UUID) (int, error) {
	return 5, nil
}

func TestStatsService(t *testing.T) {
	svc := NewStatsService(stubStats{}, stubStats{})

	st, err := svc.Stats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 20, st.WordsSeen)
	assert.Equal(t, 4, st.WordsMastered)
	assert.Equal(t, 6, st.CardsSeen)
	assert.Equal(t, 2, st.Favorites)
	assert.Equal(t, 5, st.RunsCompleted)
	assert.Equal(t, 70, st.AnswersRecorded)

	boom := errors.New("db down")
	_, err = NewStatsService(stubStats{err: boom}, stubStats{}).Stats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}
