package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/models"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/services"
)

type contentService interface {
	CreateTheme(ctx context.Context, actor services.Actor, req models.ThemeRequest) (*models.Theme, error)
	ListThemes(ctx context.Context, userID uuid.UUID) ([]*models.Theme, error)
	RenameTheme(ctx context.Context, actor services.Actor, id int64, name string) error
	DeleteTheme(ctx context.Context, actor services.Actor, id int64) error

	CreateLevel(ctx context.Context, actor services.Actor, themeID int64, req models.LevelRequest) (*models.Level, error)
	ListLevels(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Level, error)
	SetLevelActive(ctx context.Context, actor services.Actor, levelID int64, active bool) error

	CreateWord(ctx context.Context, actor services.Actor, themeID int64, req models.WordRequest) (*models.Word, error)
	ListWords(ctx context.Context, userID uuid.UUID, themeID int64) ([]*models.Word, error)
	UpdateWord(ctx context.Context, actor services.Actor, id int64, req models.WordRequest) (*models.Word, error)
	DeleteWord(ctx context.Context, actor services.Actor, id int64) error
	ToggleFavorite(ctx context.Context, userID uuid.UUID, wordID int64) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*models.Word, error)

	CreateSet(ctx context.Context, actor services.Actor, req models.SetRequest) (*models.FlashcardSet, error)
	ListSets(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardSet, error)
	GetSet(ctx context.Context, userID uuid.UUID, id int64) (*models.FlashcardSet, []models.Card, error)
	RenameSet(ctx context.Context, actor services.Actor, id int64, name string) error
	DeleteSet(ctx context.Context, actor services.Actor, id int64) error

	CreateCard(ctx context.Context, actor services.Actor, setID int64, req models.CardRequest) (*models.Card, error)
	UpdateCard(ctx context.Context, actor services.Actor, id int64, req models.CardRequest) (*models.Card, error)
	DeleteCard(ctx context.Context, actor services.Actor, id int64) error
}

type ContentHandler struct {
	content contentService
}

func NewContentHandler(content contentService) *ContentHandler {
	return &ContentHandler{content: content}
}

type renameRequest struct {
	Name string `json:"name"`
}

// Themes

func (h *ContentHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req models.ThemeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	theme, err := h.content.CreateTheme(r.Context(), actorFrom(r), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, theme)
}

func (h *ContentHandler) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.content.ListThemes(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if themes == nil {
		themes = []*models.Theme{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"themes": themes})
}

func (h *ContentHandler) RenameTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req renameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.content.RenameTheme(r.Context(), actorFrom(r), id, req.Name); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Theme renamed"})
}

func (h *ContentHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteTheme(r.Context(), actorFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Levels

func (h *ContentHandler) CreateLevel(w http.ResponseWriter, r *http.Request) {
	themeID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.LevelRequest
	if !decodeBody(w, r, &req) {
		return
	}

	level, err := h.content.CreateLevel(r.Context(), actorFrom(r), themeID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, level)
}

func (h *ContentHandler) ListLevels(w http.ResponseWriter, r *http.Request) {
	themeID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	levels, err := h.content.ListLevels(r.Context(), middleware.GetUserID(r.Context()), themeID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if levels == nil {
		levels = []*models.Level{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"levels": levels})
}

func (h *ContentHandler) SetLevelActive(w http.ResponseWriter, r *http.Request) {
	levelID, ok := idParam(w, r, "levelID")
	if !ok {
		return
	}
	var req models.ActiveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.content.SetLevelActive(r.Context(), actorFrom(r), levelID, req.Active); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": levelID, "active": req.Active})
}

// Words

func (h *ContentHandler) CreateWord(w http.ResponseWriter, r *http.Request) {
	themeID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.WordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	word, err := h.content.CreateWord(r.Context(), actorFrom(r), themeID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, word)
}

func (h *ContentHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	themeID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	words, err := h.content.ListWords(r.Context(), middleware.GetUserID(r.Context()), themeID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if words == nil {
		words = []*models.Word{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"words": words})
}

func (h *ContentHandler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.WordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	word, err := h.content.UpdateWord(r.Context(), actorFrom(r), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, word)
}

func (h *ContentHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteWord(r.Context(), actorFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	favorite, err := h.content.ToggleFavorite(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"word_id": id, "is_favorite": favorite})
}

func (h *ContentHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	words, err := h.content.ListFavorites(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if words == nil {
		words = []*models.Word{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"words": words})
}

// Sets and cards

func (h *ContentHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	var req models.SetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	set, err := h.content.CreateSet(r.Context(), actorFrom(r), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (h *ContentHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.content.ListSets(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if sets == nil {
		sets = []*models.FlashcardSet{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sets": sets})
}

func (h *ContentHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	set, cards, err := h.content.GetSet(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"set": set, "cards": cards})
}

func (h *ContentHandler) RenameSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req renameRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.content.RenameSet(r.Context(), actorFrom(r), id, req.Name); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Set renamed"})
}

func (h *ContentHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteSet(r.Context(), actorFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	setID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.CardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	card, err := h.content.CreateCard(r.Context(), actorFrom(r), setID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *ContentHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.CardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	card, err := h.content.UpdateCard(r.Context(), actorFrom(r), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *ContentHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.content.DeleteCard(r.Context(), actorFrom(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
