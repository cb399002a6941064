package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
)

type memThemes struct {
	themes map[int64]*models.Theme
	levels map[int64]*models.Level
	nextID int64
}

func newMemThemes() *memThemes {
	return &memThemes{themes: map[int64]*models.Theme{}, levels: map[int64]*models.Level{}}
}

func (m *memThemes) Create(ctx context.Context, t *models.Theme) error {
	m.nextID++
	t.ID, t.Active = m.nextID, true
	m.themes[t.ID] = t
	return nil
}

func (m *memThemes) GetByID(ctx context.Context, id int64) (*models.Theme, error) {
	t, ok := m.themes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memThemes) ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Theme, error) {
	var out []*models.Theme
	for _, t := range m.themes {
		if visibleTo(t.OwnerID, userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memThemes) Rename(ctx context.Context, id int64, name string) error {
	m.themes[id].Name = name
	return nil
}

func (m *memThemes) Delete(ctx context.Context, id int64) error {
	delete(m.themes, id)
	return nil
}

func (m *memThemes) CreateLevel(ctx context.Context, l *models.Level) error {
	m.nextID++
	l.ID, l.Active = m.nextID, true
	m.levels[l.ID] = l
	return nil
}

func (m *memThemes) GetLevel(ctx context.Context, id int64) (*models.Level, error) {
	l, ok := m.levels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return l, nil
}

func (m *memThemes) ListLevels(ctx context.Context, themeID int64) ([]*models.Level, error) {
	var out []*models.Level
	for _, l := range m.levels {
		if l.ThemeID == themeID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memThemes) SetLevelActive(ctx context.Context, id int64, active bool) error {
	m.levels[id].Active = active
	return nil
}

type memWords struct {
	words     map[int64]*models.Word
	favorites map[int64]bool
	nextID    int64
}

func newMemWords() *memWords {
	return &memWords{words: map[int64]*models.Word{}, favorites: map[int64]bool{}}
}

func (m *memWords) Create(ctx context.Context, w *models.Word) error {
	m.nextID++
	w.ID, w.Active = m.nextID, true
	m.words[w.ID] = w
	return nil
}

func (m *memWords) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	w, ok := m.words[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWords) ListByTheme(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Word, error) {
	var out []*models.Word
	for _, w := range m.words {
		if w.ThemeID == themeID && visibleTo(w.OwnerID, userID) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memWords) Update(ctx context.Context, w *models.Word) error {
	m.words[w.ID] = w
	return nil
}

func (m *memWords) Delete(ctx context.Context, id int64) error {
	delete(m.words, id)
	return nil
}

func (m *memWords) ToggleFavorite(ctx context.Context, userID uuid.UUID, wordID int64) (bool, error) {
	m.favorites[wordID] = !m.favorites[wordID]
	return m.favorites[wordID], nil
}

func (m *memWords) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Word, error) {
	return nil, nil
}

type memSets struct {
	sets   map[int64]*models.FlashcardSet
	cards  map[int64]*models.Card
	nextID int64
}

func newMemSets() *memSets {
	return &memSets{sets: map[int64]*models.FlashcardSet{}, cards: map[int64]*models.Card{}}
}

func (m *memSets) CreateSet(ctx context.Context, s *models.FlashcardSet) error {
	m.nextID++
	s.ID, s.Active = m.nextID, true
	m.sets[s.ID] = s
	return nil
}

func (m *memSets) GetSetByID(ctx context.Context, id int64) (*models.FlashcardSet, error) {
	s, ok := m.sets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSets) ListSets(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error) {
	return nil, nil
}

func (m *memSets) RenameSet(ctx context.Context, id int64, name string) error {
	m.sets[id].Name = name
	return nil
}

func (m *memSets) DeleteSet(ctx context.Context, id int64) error {
	delete(m.sets, id)
	return nil
}

func (m *memSets) CreateCard(ctx context.Context, c *models.Card, position *int) error {
	m.nextID++
	c.ID, c.Active = m.nextID, true
	if position != nil {
		c.Position = *position
	}
	m.cards[c.ID] = c
	return nil
}

func (m *memSets) GetCardByID(ctx context.Context, id int64) (*models.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memSets) ListCards(ctx context.Context, setID int64) ([]models.Card, error) {
	var out []models.Card
	for _, c := range m.cards {
		if c.SetID == setID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memSets) UpdateCard(ctx context.Context, c *models.Card) error {
	m.cards[c.ID] = c
	return nil
}

func (m *memSets) DeleteCard(ctx context.Context, id int64) error {
	delete(m.cards, id)
	return nil
}

func newTestContent() (*ContentService, *memThemes, *memWords, *memSets) {
	themes, words, sets := newMemThemes(), newMemWords(), newMemSets()
	return NewContentService(themes, words, sets), themes, words, sets
}

func TestContentService_SharedThemesAreAdminOnly(t *testing.T) {
	svc, _, _, _ := newTestContent()
	ctx := context.Background()
	user := Actor{UserID: uuid.New(), Role: models.RoleUser}
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	_, err := svc.CreateTheme(ctx, user, models.ThemeRequest{Name: "Famille", Global: true})
	var forbidden *ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	shared, err := svc.CreateTheme(ctx, admin, models.ThemeRequest{Name: "Famille", Global: true})
	require.NoError(t, err)
	assert.Nil(t, shared.OwnerID)

	_, err = svc.CreateWord(ctx, user, shared.ID, models.WordRequest{Hebrew: "אמא", French: "maman"})
	assert.ErrorAs(t, err, &forbidden)

	word, err := svc.CreateWord(ctx, admin, shared.ID, models.WordRequest{Hebrew: "אמא", French: "maman"})
	require.NoError(t, err)
	assert.Nil(t, word.OwnerID)
	assert.Equal(t, 1, word.Difficulty)

	assert.ErrorAs(t, svc.RenameTheme(ctx, user, shared.ID, "Mishpacha"), &forbidden)
	assert.NoError(t, svc.RenameTheme(ctx, admin, shared.ID, "Mishpacha"))
}

func TestContentService_PersonalContentIsPrivate(t *testing.T) {
	svc, _, _, _ := newTestContent()
	ctx := context.Background()
	owner := Actor{UserID: uuid.New()}
	stranger := Actor{UserID: uuid.New()}

	theme, err := svc.CreateTheme(ctx, owner, models.ThemeRequest{Name: "Cuisine"})
	require.NoError(t, err)
	require.NotNil(t, theme.OwnerID)

	word, err := svc.CreateWord(ctx, owner, theme.ID, models.WordRequest{Hebrew: "לחם", French: "pain", Difficulty: 2})
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, *word.OwnerID)

	var notFound *NotFoundError
	_, err = svc.ListWords(ctx, stranger.UserID, theme.ID)
	assert.ErrorAs(t, err, &notFound)
	assert.ErrorAs(t, svc.DeleteWord(ctx, stranger, word.ID), &notFound)
	_, err = svc.ToggleFavorite(ctx, stranger.UserID, word.ID)
	assert.ErrorAs(t, err, &notFound)

	on, err := svc.ToggleFavorite(ctx, owner.UserID, word.ID)
	require.NoError(t, err)
	assert.True(t, on)

	words, err := svc.ListWords(ctx, owner.UserID, theme.ID)
	require.NoError(t, err)
	assert.Len(t, words, 1)
}

func TestContentService_WordValidation(t *testing.T) {
	svc, _, _, _ := newTestContent()
	ctx := context.Background()
	owner := Actor{UserID: uuid.New()}

	theme, err := svc.CreateTheme(ctx, owner, models.ThemeRequest{Name: "Couleurs"})
	require.NoError(t, err)
	other, err := svc.CreateTheme(ctx, owner, models.ThemeRequest{Name: "Animaux"})
	require.NoError(t, err)
	level, err := svc.CreateLevel(ctx, owner, other.ID, models.LevelRequest{Name: "Débutant"})
	require.NoError(t, err)

	var verr *ValidationError
	_, err = svc.CreateWord(ctx, owner, theme.ID, models.WordRequest{Hebrew: " ", French: "rouge", Difficulty: 4})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "hebrew")
	assert.Contains(t, verr.Fields, "difficulty")

	_, err = svc.CreateWord(ctx, owner, theme.ID, models.WordRequest{Hebrew: "אדום", French: "rouge", LevelID: &level.ID})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "level_id")

	_, err = svc.CreateTheme(ctx, owner, models.ThemeRequest{Name: "  "})
	assert.ErrorAs(t, err, &verr)
}

func TestContentService_Cards(t *testing.T) {
	svc, _, _, _ := newTestContent()
	ctx := context.Background()
	owner := Actor{UserID: uuid.New()}
	stranger := Actor{UserID: uuid.New()}

	set, err := svc.CreateSet(ctx, owner, models.SetRequest{Name: "Verbes"})
	require.NoError(t, err)

	card, err := svc.CreateCard(ctx, owner, set.ID, models.CardRequest{Hebrew: "ללכת", French: "aller"})
	require.NoError(t, err)

	memorized := true
	updated, err := svc.UpdateCard(ctx, owner, card.ID, models.CardRequest{Hebrew: "ללכת", French: "marcher", Memorized: &memorized})
	require.NoError(t, err)
	assert.Equal(t, "marcher", updated.French)
	assert.True(t, updated.Memorized)

	var notFound *NotFoundError
	_, _, err = svc.GetSet(ctx, stranger.UserID, set.ID)
	assert.ErrorAs(t, err, &notFound)
	assert.ErrorAs(t, svc.DeleteCard(ctx, stranger, card.ID), &notFound)

	_, cards, err := svc.GetSet(ctx, owner.UserID, set.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	require.NoError(t, svc.DeleteSet(ctx, owner, set.ID))
}

func TestContentService_AuthorizeImport(t *testing.T) {
	svc, _, _, _ := newTestContent()
	ctx := context.Background()
	owner := Actor{UserID: uuid.New()}
	stranger := Actor{UserID: uuid.New()}

	theme, err := svc.CreateTheme(ctx, owner, models.ThemeRequest{Name: "Verbes"})
	require.NoError(t, err)
	other, err := svc.CreateTheme(ctx, owner, models.ThemeRequest{Name: "Nombres"})
	require.NoError(t, err)
	level, err := svc.CreateLevel(ctx, owner, other.ID, models.LevelRequest{Name: "1"})
	require.NoError(t, err)

	assert.NoError(t, svc.AuthorizeImport(ctx, owner, theme.ID, nil))

	var verr *ValidationError
	require.ErrorAs(t, svc.AuthorizeImport(ctx, owner, theme.ID, &level.ID), &verr)
	assert.Contains(t, verr.Fields, "level_id")

	var notFound *NotFoundError
	assert.ErrorAs(t, svc.AuthorizeImport(ctx, stranger, theme.ID, nil), &notFound)
	assert.ErrorAs(t, svc.AuthorizeImport(ctx, owner, 404, nil), &notFound)
}
