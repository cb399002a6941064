package training

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	StrengthStep = 10
	MinStrength  = 0
	MaxStrength  = 100
)

// NextStrength applies one answer to a word strength.
func NextStrength(prev int, correct bool) int {
	next := prev - StrengthStep
	if correct {
		next = prev + StrengthStep
	}
	if next > MaxStrength {
		return MaxStrength
	}
	if next < MinStrength {
		return MinStrength
	}
	return next
}

// ProgressStore persists per-user answer counters. Each Record call must be a
// single atomic row update.
type ProgressStore interface {
	RecordWord(ctx context.Context, userID uuid.UUID, wordID int64, correct bool) (strength int, err error)
	RecordCard(ctx context.Context, userID uuid.UUID, cardID int64, correct bool) error
	DeleteWordProgress(ctx context.Context, userID uuid.UUID, themeIDs []int64) (int64, error)
	DeleteCardProgress(ctx context.Context, userID uuid.UUID, setIDs []int64) (int64, error)
}

// ProgressUpdater routes an answer to the word or card counters.
type ProgressUpdater struct {
	store ProgressStore
}

func NewProgressUpdater(store ProgressStore) *ProgressUpdater {
	return &ProgressUpdater{store: store}
}

// Update records one answer. The returned strength is nil for cards.
func (u *ProgressUpdater) Update(ctx context.Context, userID uuid.UUID, source Source, itemID int64, correct bool) (*int, error) {
	if source == SourceCards {
		if err := u.store.RecordCard(ctx, userID, itemID, correct); err != nil {
			return nil, fmt.Errorf("failed to record card progress: %w", err)
		}
		return nil, nil
	}

	strength, err := u.store.RecordWord(ctx, userID, itemID, correct)
	if err != nil {
		return nil, fmt.Errorf("failed to record word progress: %w", err)
	}
	return &strength, nil
}

// Purge deletes the history of the content a configuration selects.
func (u *ProgressUpdater) Purge(ctx context.Context, userID uuid.UUID, cfg Config) (int64, error) {
	if cfg.Source() == SourceCards {
		n, err := u.store.DeleteCardProgress(ctx, userID, cfg.SetIDs)
		if err != nil {
			return 0, fmt.Errorf("failed to purge card progress: %w", err)
		}
		return n, nil
	}
	n, err := u.store.DeleteWordProgress(ctx, userID, cfg.ThemeIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to purge word progress: %w", err)
	}
	return n, nil
}
