package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
)

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// canEdit reports whether the actor may mutate content owned by owner.
// Shared content (nil owner) belongs to administrators.
func (a Actor) canEdit(owner *uuid.UUID) bool {
	if owner == nil {
		return a.IsAdmin()
	}
	return *owner == a.UserID || a.IsAdmin()
}

func visibleTo(owner *uuid.UUID, userID uuid.UUID) bool {
	return owner == nil || *owner == userID
}

type themeRepository interface {
	Create(ctx context.Context, t *models.Theme) error
	GetByID(ctx context.Context, id int64) (*models.Theme, error)
	ListVisible(ctx context.Context, userID uuid.UUID) ([]*models.Theme, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	CreateLevel(ctx context.Context, l *models.Level) error
	GetLevel(ctx context.Context, id int64) (*models.Level, error)
	ListLevels(ctx context.Context, themeID int64) ([]*models.Level, error)
	SetLevelActive(ctx context.Context, id int64, active bool) error
}

type wordRepository interface {
	Create(ctx context.Context, w *models.Word) error
	GetByID(ctx context.Context, id int64) (*models.Word, error)
	ListByTheme(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Word, error)
	Update(ctx context.Context, w *models.Word) error
	Delete(ctx context.Context, id int64) error
	ToggleFavorite(ctx context.Context, userID uuid.UUID, wordID int64) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Word, error)
}

type setRepository interface {
	CreateSet(ctx context.Context, s *models.FlashcardSet) error
	GetSetByID(ctx context.Context, id int64) (*models.FlashcardSet, error)
	ListSets(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error)
	RenameSet(ctx context.Context, id int64, name string) error
	DeleteSet(ctx context.Context, id int64) error
	CreateCard(ctx context.Context, c *models.Card, position *int) error
	GetCardByID(ctx context.Context, id int64) (*models.Card, error)
	ListCards(ctx context.Context, setID int64) ([]models.Card, error)
	UpdateCard(ctx context.Context, c *models.Card) error
	DeleteCard(ctx context.Context, id int64) error
}

// ContentService manages themes, levels, words, sets and cards with the
// ownership rules shared by every content kind.
type ContentService struct {
	themes themeRepository
	words  wordRepository
	sets   setRepository
}

func NewContentService(themes themeRepository, words wordRepository, sets setRepository) *ContentService {
	return &ContentService{themes: themes, words: words, sets: sets}
}

func notFoundOr(err error, message string) error {
	if repository.IsNotFound(err) {
		return &NotFoundError{Message: message}
	}
	return err
}

func ownerFor(actor Actor, global bool) (*uuid.UUID, error) {
	if !global {
		id := actor.UserID
		return &id, nil
	}
	if !actor.IsAdmin() {
		return nil, &ForbiddenError{Message: "Only administrators can create shared content"}
	}
	return nil, nil
}

// Themes

func (s *ContentService) CreateTheme(ctx context.Context, actor Actor, req models.ThemeRequest) (*models.Theme, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	owner, err := ownerFor(actor, req.Global)
	if err != nil {
		return nil, err
	}

	theme := &models.Theme{OwnerID: owner, Name: name}
	if err := s.themes.Create(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

func (s *ContentService) ListThemes(ctx context.Context, userID uuid.UUID) ([]*models.Theme, error) {
	return s.themes.ListVisible(ctx, userID)
}

// editableTheme loads a theme and checks the actor may change it. Themes the
// actor cannot see read as missing.
func (s *ContentService) editableTheme(ctx context.Context, actor Actor, id int64) (*models.Theme, error) {
	theme, err := s.themes.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Theme not found")
	}
	if !visibleTo(theme.OwnerID, actor.UserID) && !actor.IsAdmin() {
		return nil, &NotFoundError{Message: "Theme not found"}
	}
	if !actor.canEdit(theme.OwnerID) {
		return nil, &ForbiddenError{Message: "You cannot modify this theme"}
	}
	return theme, nil
}

func (s *ContentService) RenameTheme(ctx context.Context, actor Actor, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "Name is required")
	}
	if _, err := s.editableTheme(ctx, actor, id); err != nil {
		return err
	}
	return notFoundOr(s.themes.Rename(ctx, id, name), "Theme not found")
}

func (s *ContentService) DeleteTheme(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.editableTheme(ctx, actor, id); err != nil {
		return err
	}
	return notFoundOr(s.themes.Delete(ctx, id), "Theme not found")
}

// Levels

func (s *ContentService) CreateLevel(ctx context.Context, actor Actor, themeID int64, req models.LevelRequest) (*models.Level, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	if _, err := s.editableTheme(ctx, actor, themeID); err != nil {
		return nil, err
	}

	level := &models.Level{ThemeID: themeID, Name: name, Order: req.Order}
	if err := s.themes.CreateLevel(ctx, level); err != nil {
		return nil, err
	}
	return level, nil
}

func (s *ContentService) ListLevels(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Level, error) {
	theme, err := s.themes.GetByID(ctx, themeID)
	if err != nil {
		return nil, notFoundOr(err, "Theme not found")
	}
	if !visibleTo(theme.OwnerID, userID) {
		return nil, &NotFoundError{Message: "Theme not found"}
	}
	return s.themes.ListLevels(ctx, themeID)
}

func (s *ContentService) SetLevelActive(ctx context.Context, actor Actor, levelID int64, active bool) error {
	level, err := s.themes.GetLevel(ctx, levelID)
	if err != nil {
		return notFoundOr(err, "Level not found")
	}
	if _, err := s.editableTheme(ctx, actor, level.ThemeID); err != nil {
		return err
	}
	return notFoundOr(s.themes.SetLevelActive(ctx, levelID, active), "Level not found")
}

// Words

func validateWord(req models.WordRequest) (models.WordRequest, error) {
	req.Hebrew = strings.TrimSpace(req.Hebrew)
	req.French = strings.TrimSpace(req.French)
	req.Transliteration = strings.TrimSpace(req.Transliteration)

	fields := make(map[string]string)
	if req.Hebrew == "" {
		fields["hebrew"] = "Hebrew is required"
	}
	if req.French == "" {
		fields["french"] = "French is required"
	}
	if req.Difficulty == 0 {
		req.Difficulty = 1
	}
	if req.Difficulty < 1 || req.Difficulty > 3 {
		fields["difficulty"] = "Difficulty must be 1, 2 or 3"
	}
	if len(fields) > 0 {
		return req, &ValidationError{Fields: fields}
	}
	return req, nil
}

func (s *ContentService) checkLevel(ctx context.Context, themeID int64, levelID *int64) error {
	if levelID == nil {
		return nil
	}
	level, err := s.themes.GetLevel(ctx, *levelID)
	if err != nil {
		if repository.IsNotFound(err) {
			return invalid("level_id", "Unknown level")
		}
		return err
	}
	if level.ThemeID != themeID {
		return invalid("level_id", "Level does not belong to this theme")
	}
	return nil
}

// AuthorizeImport checks that the actor may bulk-load words into the theme
// and level before an import job is queued.
func (s *ContentService) AuthorizeImport(ctx context.Context, actor Actor, themeID int64, levelID *int64) error {
	if _, err := s.editableTheme(ctx, actor, themeID); err != nil {
		return err
	}
	return s.checkLevel(ctx, themeID, levelID)
}

// CreateWord adds a word to a theme. The word takes the ownership of its
// theme.
func (s *ContentService) CreateWord(ctx context.Context, actor Actor, themeID int64, req models.WordRequest) (*models.Word, error) {
	req, err := validateWord(req)
	if err != nil {
		return nil, err
	}
	theme, err := s.editableTheme(ctx, actor, themeID)
	if err != nil {
		return nil, err
	}
	if err := s.checkLevel(ctx, themeID, req.LevelID); err != nil {
		return nil, err
	}

	word := &models.Word{
		ThemeID:         themeID,
		LevelID:         req.LevelID,
		OwnerID:         theme.OwnerID,
		Hebrew:          req.Hebrew,
		Transliteration: req.Transliteration,
		French:          req.French,
		Difficulty:      req.Difficulty,
	}
	if err := s.words.Create(ctx, word); err != nil {
		return nil, err
	}
	return word, nil
}

func (s *ContentService) ListWords(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Word, error) {
	theme, err := s.themes.GetByID(ctx, themeID)
	if err != nil {
		return nil, notFoundOr(err, "Theme not found")
	}
	if !visibleTo(theme.OwnerID, userID) {
		return nil, &NotFoundError{Message: "Theme not found"}
	}
	return s.words.ListByTheme(ctx, userID, themeID)
}

func (s *ContentService) editableWord(ctx context.Context, actor Actor, id int64) (*models.Word, error) {
	word, err := s.words.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Word not found")
	}
	if !visibleTo(word.OwnerID, actor.UserID) && !actor.IsAdmin() {
		return nil, &NotFoundError{Message: "Word not found"}
	}
	if !actor.canEdit(word.OwnerID) {
		return nil, &ForbiddenError{Message: "You cannot modify this word"}
	}
	return word, nil
}

func (s *ContentService) UpdateWord(ctx context.Context, actor Actor, id int64, req models.WordRequest) (*models.Word, error) {
	req, err := validateWord(req)
	if err != nil {
		return nil, err
	}
	word, err := s.editableWord(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkLevel(ctx, word.ThemeID, req.LevelID); err != nil {
		return nil, err
	}

	word.LevelID = req.LevelID
	word.Hebrew = req.Hebrew
	word.Transliteration = req.Transliteration
	word.French = req.French
	word.Difficulty = req.Difficulty
	if err := s.words.Update(ctx, word); err != nil {
		return nil, notFoundOr(err, "Word not found")
	}
	return word, nil
}

func (s *ContentService) DeleteWord(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.editableWord(ctx, actor, id); err != nil {
		return err
	}
	return notFoundOr(s.words.Delete(ctx, id), "Word not found")
}

// ToggleFavorite flips the user's favorite marker on a word they can see.
func (s *ContentService) ToggleFavorite(ctx context.Context, userID uuid.UUID, wordID int64) (bool, error) {
	word, err := s.words.GetByID(ctx, wordID)
	if err != nil {
		return false, notFoundOr(err, "Word not found")
	}
	if !visibleTo(word.OwnerID, userID) {
		return false, &NotFoundError{Message: "Word not found"}
	}
	return s.words.ToggleFavorite(ctx, userID, wordID)
}

func (s *ContentService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Word, error) {
	return s.words.ListFavorites(ctx, userID)
}

// Sets and cards

func (s *ContentService) CreateSet(ctx context.Context, actor Actor, req models.SetRequest) (*models.FlashcardSet, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}
	owner, err := ownerFor(actor, req.Global)
	if err != nil {
		return nil, err
	}

	set := &models.FlashcardSet{OwnerID: owner, Name: name}
	if err := s.sets.CreateSet(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *ContentService) ListSets(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error) {
	return s.sets.ListSets(ctx, userID)
}

func (s *ContentService) visibleSet(ctx context.Context, userID uuid.UUID, id int64) (*models.FlashcardSet, error) {
	set, err := s.sets.GetSetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Set not found")
	}
	if !visibleTo(set.OwnerID, userID) {
		return nil, &NotFoundError{Message: "Set not found"}
	}
	return set, nil
}

func (s *ContentService) editableSet(ctx context.Context, actor Actor, id int64) (*models.FlashcardSet, error) {
	set, err := s.sets.GetSetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Set not found")
	}
	if !visibleTo(set.OwnerID, actor.UserID) && !actor.IsAdmin() {
		return nil, &NotFoundError{Message: "Set not found"}
	}
	if !actor.canEdit(set.OwnerID) {
		return nil, &ForbiddenError{Message: "You cannot modify this set"}
	}
	return set, nil
}

// GetSet returns a set with its cards in position order.
func (s *ContentService) GetSet(ctx context.Context, userID uuid.UUID, id int64) (*models.FlashcardSet, []models.Card, error) {
	set, err := s.visibleSet(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	cards, err := s.sets.ListCards(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return set, cards, nil
}

func (s *ContentService) RenameSet(ctx context.Context, actor Actor, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "Name is required")
	}
	if _, err := s.editableSet(ctx, actor, id); err != nil {
		return err
	}
	return notFoundOr(s.sets.RenameSet(ctx, id, name), "Set not found")
}

func (s *ContentService) DeleteSet(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.editableSet(ctx, actor, id); err != nil {
		return err
	}
	return notFoundOr(s.sets.DeleteSet(ctx, id), "Set not found")
}

func validateCard(req models.CardRequest) (models.CardRequest, error) {
	req.Hebrew = strings.TrimSpace(req.Hebrew)
	req.French = strings.TrimSpace(req.French)
	req.Transliteration = strings.TrimSpace(req.Transliteration)

	fields := make(map[string]string)
	if req.Hebrew == "" {
		fields["hebrew"] = "Hebrew is required"
	}
	if req.French == "" {
		fields["french"] = "French is required"
	}
	if req.Position != nil && *req.Position < 0 {
		fields["position"] = "Position cannot be negative"
	}
	if len(fields) > 0 {
		return req, &ValidationError{Fields: fields}
	}
	return req, nil
}

func (s *ContentService) CreateCard(ctx context.Context, actor Actor, setID int64, req models.CardRequest) (*models.Card, error) {
	req, err := validateCard(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableSet(ctx, actor, setID); err != nil {
		return nil, err
	}

	card := &models.Card{
		SetID:           setID,
		Hebrew:          req.Hebrew,
		Transliteration: req.Transliteration,
		French:          req.French,
	}
	if err := s.sets.CreateCard(ctx, card, req.Position); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *ContentService) editableCard(ctx context.Context, actor Actor, id int64) (*models.Card, error) {
	card, err := s.sets.GetCardByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Card not found")
	}
	if _, err := s.editableSet(ctx, actor, card.SetID); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *ContentService) UpdateCard(ctx context.Context, actor Actor, id int64, req models.CardRequest) (*models.Card, error) {
	req, err := validateCard(req)
	if err != nil {
		return nil, err
	}
	card, err := s.editableCard(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	card.Hebrew = req.Hebrew
	card.Transliteration = req.Transliteration
	card.French = req.French
	if req.Position != nil {
		card.Position = *req.Position
	}
	if req.Favorite != nil {
		card.Favorite = *req.Favorite
	}
	if req.Memorized != nil {
		card.Memorized = *req.Memorized
	}
	if err := s.sets.UpdateCard(ctx, card); err != nil {
		return nil, notFoundOr(err, "Card not found")
	}
	return card, nil
}

func (s *ContentService) DeleteCard(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.editableCard(ctx, actor, id); err != nil {
		return err
	}
	return notFoundOr(s.sets.DeleteCard(ctx, id), "Card not found")
}
