package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
)

type overrideKey struct {
	user uuid.UUID
	kind repository.EntityKind
	id   int64
}

type memOverrides struct {
	entities map[int64]training.Visibility
	states   map[overrideKey]training.OverrideState
	writes   int
}

func newMemOverrides() *memOverrides {
	return &memOverrides{
		entities: map[int64]training.Visibility{},
		states:   map[overrideKey]training.OverrideState{},
	}
}

func (m *memOverrides) Entity(ctx context.Context, kind repository.EntityKind, id int64) (training.Visibility, error) {
	v, ok := m.entities[id]
	if !ok {
		return training.Visibility{}, repository.ErrNotFound
	}
	return v, nil
}

func (m *memOverrides) Get(ctx context.Context, userID uuid.UUID, kind repository.EntityKind, id int64) (training.OverrideState, error) {
	return m.states[overrideKey{userID, kind, id}], nil
}

func (m *memOverrides) Set(ctx context.Context, userID uuid.UUID, kind repository.EntityKind, id int64, state training.OverrideState) error {
	m.writes++
	if state == training.OverrideInherit {
		delete(m.states, overrideKey{userID, kind, id})
		return nil
	}
	m.states[overrideKey{userID, kind, id}] = state
	return nil
}

func (m *memOverrides) SetEntityActive(ctx context.Context, kind repository.EntityKind, id int64, active bool) (int64, error) {
	v := m.entities[id]
	v.Active = active
	m.entities[id] = v
	if active {
		return 0, nil
	}
	var purged int64
	for k := range m.states {
		if k.kind == kind && k.id == id {
			delete(m.states, k)
			purged++
		}
	}
	return purged, nil
}

func TestVisibilityService_ToggleForSelf(t *testing.T) {
	repo := newMemOverrides()
	repo.entities[1] = training.Visibility{Active: true}
	svc := NewVisibilityService(repo, zap.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	change, err := svc.ToggleForSelf(ctx, userID, "theme", 1)
	require.NoError(t, err)
	assert.Equal(t, "off", change.Override)
	assert.False(t, change.Visible)

	change, err = svc.ToggleForSelf(ctx, userID, "theme", 1)
	require.NoError(t, err)
	assert.Equal(t, "", change.Override)
	assert.True(t, change.Visible)
	assert.Empty(t, repo.states)
}

func TestVisibilityService_ToggleRejections(t *testing.T) {
	repo := newMemOverrides()
	userID := uuid.New()
	repo.entities[1] = training.Visibility{Active: false}
	repo.entities[2] = training.Visibility{OwnerID: &userID, Active: true}
	other := uuid.New()
	repo.entities[3] = training.Visibility{OwnerID: &other, Active: true}
	svc := NewVisibilityService(repo, zap.NewNop())
	ctx := context.Background()

	var verr *ValidationError
	_, err := svc.ToggleForSelf(ctx, userID, "word", 1)
	assert.ErrorAs(t, err, &verr)
	_, err = svc.ToggleForSelf(ctx, userID, "word", 2)
	assert.ErrorAs(t, err, &verr)
	_, err = svc.ToggleForSelf(ctx, userID, "users", 2)
	assert.ErrorAs(t, err, &verr)

	var notFound *NotFoundError
	_, err = svc.ToggleForSelf(ctx, userID, "word", 3)
	assert.ErrorAs(t, err, &notFound)
	_, err = svc.ToggleForSelf(ctx, userID, "word", 99)
	assert.ErrorAs(t, err, &notFound)

	assert.Zero(t, repo.writes)
}

func TestVisibilityService_DeactivationPurgesOverrides(t *testing.T) {
	repo := newMemOverrides()
	repo.entities[4] = training.Visibility{Active: true}
	svc := NewVisibilityService(repo, zap.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	_, err := svc.ToggleForSelf(ctx, userID, "set", 4)
	require.NoError(t, err)

	user := Actor{UserID: uuid.New(), Role: models.RoleUser}
	_, err = svc.SetActive(ctx, user, "set", 4, false)
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.True(t, repo.entities[4].Active)

	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	res, err := svc.SetActive(ctx, admin, "set", 4, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Purged)

	res, err = svc.SetActive(ctx, admin, "set", 4, true)
	require.NoError(t, err)
	assert.Zero(t, res.Purged)

	state, err := repo.Get(ctx, userID, repository.KindSet, 4)
	require.NoError(t, err)
	assert.Equal(t, training.OverrideInherit, state)
}

func TestVisibilityService_OwnerDeactivatesPersonal(t *testing.T) {
	repo := newMemOverrides()
	owner := uuid.New()
	repo.entities[5] = training.Visibility{OwnerID: &owner, Active: true}
	svc := NewVisibilityService(repo, zap.NewNop())

	res, err := svc.SetActive(context.Background(), Actor{UserID: owner}, "word", 5, false)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.False(t, repo.entities[5].Active)

	var notFound *NotFoundError
	_, err = svc.SetActive(context.Background(), Actor{UserID: uuid.New()}, "word", 5, true)
	assert.ErrorAs(t, err, &notFound)
}
