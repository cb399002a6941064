package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

type overrideRepository interface {
	Entity(ctx context.Context, kind repository.EntityKind, id int64) (training.Visibility, error)
	Get(ctx context.Context, userID uuid.UUID, kind repository.EntityKind, id int64) (training.OverrideState, error)
	Set(ctx context.Context, userID uuid.UUID, kind repository.EntityKind, id int64, state training.OverrideState) error
	SetEntityActive(ctx context.Context, kind repository.EntityKind, id int64, active bool) (int64, error)
}

// VisibilityService changes what a user sees in training: personal
// suppression of shared content, and the shared active flag itself.
type VisibilityService struct {
	overrides overrideRepository
	logger    *zap.Logger
}

func NewVisibilityService(overrides overrideRepository, logger *zap.Logger) *VisibilityService {
	return &VisibilityService{overrides: overrides, logger: logger}
}

// ActivationResult reports a change of the shared active flag.
type ActivationResult struct {
	Kind   string `json:"kind"`
	ID     int64  `json:"id"`
	Active bool   `json:"active"`
	Purged int64  `json:"purged_overrides"`
}

func parseKind(kind string) (repository.EntityKind, error) {
	k, ok := repository.ParseEntityKind(kind)
	if !ok {
		return "", invalid("kind", "Kind must be word, theme, set or card")
	}
	return k, nil
}

// ToggleForSelf hides a shared entity for the user, or restores the default
// when it is already overridden.
func (s *VisibilityService) ToggleForSelf(ctx context.Context, userID uuid.UUID, kind string, id int64) (*models.VisibilityChange, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}

	v, err := s.overrides.Entity(ctx, k, id)
	if err != nil {
		return nil, notFoundOr(err, "Content not found")
	}
	if !v.Global() {
		if v.OwnedBy(userID) {
			return nil, invalid("id", "Personal content is hidden by deactivating it")
		}
		return nil, &NotFoundError{Message: "Content not found"}
	}
	if !v.Active {
		return nil, invalid("id", "Inactive shared content cannot be toggled")
	}

	current, err := s.overrides.Get(ctx, userID, k, id)
	if err != nil {
		return nil, err
	}
	next := training.NextOverride(current)
	if err := s.overrides.Set(ctx, userID, k, id, next); err != nil {
		return nil, err
	}

	v.Override = next
	return &models.VisibilityChange{
		Kind:     string(k),
		ID:       id,
		Override: string(next),
		Visible:  training.EffectiveActive(v),
	}, nil
}

// SetActive flips the shared active flag of an entity. Shared entities are
// administered by admins, personal ones by their owner.
func (s *VisibilityService) SetActive(ctx context.Context, actor Actor, kind string, id int64, active bool) (*ActivationResult, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}

	v, err := s.overrides.Entity(ctx, k, id)
	if err != nil {
		return nil, notFoundOr(err, "Content not found")
	}
	if !visibleTo(v.OwnerID, actor.UserID) && !actor.IsAdmin() {
		return nil, &NotFoundError{Message: "Content not found"}
	}
	if !actor.canEdit(v.OwnerID) {
		return nil, &ForbiddenError{Message: "Only administrators can change shared content"}
	}

	purged, err := s.overrides.SetEntityActive(ctx, k, id, active)
	if err != nil {
		return nil, notFoundOr(err, "Content not found")
	}
	if purged > 0 {
		s.logger.Info("purged visibility overrides",
			zap.String("kind", string(k)),
			zap.Int64("id", id),
			zap.Int64("purged", purged),
		)
	}

	return &ActivationResult{Kind: string(k), ID: id, Active: active, Purged: purged}, nil
}
