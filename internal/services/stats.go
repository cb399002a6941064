package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
)

type statsSource interface {
	WordStats(ctx context.Context, userID uuid.UUID) (seen, mastered, successes, failures int, err error)
	CardStats(ctx context.Context, userID uuid.UUID) (seen, successes, failures int, err error)
	CountFavorites(ctx context.Context, userID uuid.UUID) (int, error)
}

type runCounter interface {
	CountCompleted(ctx context.Context, userID uuid.UUID) (int, error)
}

type StatsService struct {
	progress statsSource
	runs     runCounter
}

func NewStatsService(progress statsSource, runs runCounter) *StatsService {
	return &StatsService{progress: progress, runs: runs}
}

// Stats runs the aggregate queries concurrently.
func (s *StatsService) Stats(ctx context.Context, userID uuid.UUID) (*models.Stats, error) {
	var st models.Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		st.WordsSeen, st.WordsMastered, st.WordSuccesses, st.WordFailures, err = s.progress.WordStats(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		st.CardsSeen, st.CardSuccesses, st.CardFailures, err = s.progress.CardStats(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		st.Favorites, err = s.progress.CountFavorites(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		st.RunsCompleted, err = s.runs.CountCompleted(ctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	st.AnswersRecorded = st.WordSuccesses + st.WordFailures + st.CardSuccesses + st.CardFailures
	return &st, nil
}
