package training

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// WordCandidate is a word row joined with everything eligibility depends on.
type WordCandidate struct {
	ID              int64
	ThemeID         int64
	LevelID         *int64
	LevelActive     bool
	Difficulty      int
	Hebrew          string
	Transliteration string
	French          string
	CreatedAt       time.Time

	Word  Visibility
	Theme Visibility

	// Progress of the requesting user, nil when the word was never answered.
	Strength *int
	LastSeen *time.Time
}

// CardCandidate is a card row joined with its set.
type CardCandidate struct {
	ID              int64
	SetID           int64
	Position        int
	Hebrew          string
	Transliteration string
	French          string
	CreatedAt       time.Time

	Card Visibility
	Set  Visibility
}

// CandidateSource loads raw candidates from the content store.
type CandidateSource interface {
	WordCandidates(ctx context.Context, userID uuid.UUID, themeIDs []int64) ([]WordCandidate, error)
	CardCandidates(ctx context.Context, userID uuid.UUID, setIDs []int64) ([]CardCandidate, error)
	LevelThemeID(ctx context.Context, levelID int64) (themeID int64, found bool, err error)
}

// Item is one drillable entry of a pool.
type Item struct {
	ID              int64      `json:"id"`
	Hebrew          string     `json:"hebrew"`
	Transliteration string     `json:"transliteration"`
	French          string     `json:"french"`
	CreatedAt       time.Time  `json:"-"`
	Seen            bool       `json:"-"`
	Strength        int        `json:"-"`
	LastSeen        *time.Time `json:"-"`
}

// Pool is the ordered-by-id set of eligible items for a configuration.
type Pool struct {
	Source Source
	Items  []Item
}

// IDs returns the pool ids in order.
func (p *Pool) IDs() []int64 {
	ids := make([]int64, len(p.Items))
	for i, it := range p.Items {
		ids[i] = it.ID
	}
	return ids
}

// PoolBuilder resolves a configuration into the eligible item pool.
type PoolBuilder struct {
	source CandidateSource
}

func NewPoolBuilder(source CandidateSource) *PoolBuilder {
	return &PoolBuilder{source: source}
}

// Normalize drops a level that does not belong to one of the selected themes.
func (b *PoolBuilder) Normalize(ctx context.Context, cfg Config) (Config, error) {
	if cfg.LevelID == nil || cfg.Source() != SourceWords {
		return cfg, nil
	}
	themeID, found, err := b.source.LevelThemeID(ctx, *cfg.LevelID)
	if err != nil {
		return cfg, fmt.Errorf("failed to resolve level %d: %w", *cfg.LevelID, err)
	}
	if !found || !containsID(cfg.ThemeIDs, themeID) {
		cfg.LevelID = nil
	}
	return cfg, nil
}

// Build returns the eligible pool. An empty theme and set selection is a
// configuration error; an empty result is ErrNoEligibleItems.
func (b *PoolBuilder) Build(ctx context.Context, userID uuid.UUID, cfg Config) (*Pool, error) {
	if len(cfg.ThemeIDs) == 0 && len(cfg.SetIDs) == 0 {
		return nil, configError("", "select at least one theme or one set")
	}

	var pool *Pool
	var err error
	if cfg.Source() == SourceCards {
		pool, err = b.buildCards(ctx, userID, cfg)
	} else {
		pool, err = b.buildWords(ctx, userID, cfg)
	}
	if err != nil {
		return nil, err
	}
	if len(pool.Items) == 0 {
		return nil, ErrNoEligibleItems
	}
	return pool, nil
}

func (b *PoolBuilder) buildWords(ctx context.Context, userID uuid.UUID, cfg Config) (*Pool, error) {
	pool := &Pool{Source: SourceWords}
	if cfg.Scope == ScopeNone {
		return pool, nil
	}

	candidates, err := b.source.WordCandidates(ctx, userID, cfg.ThemeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load word candidates: %w", err)
	}

	for _, c := range candidates {
		if !wordEligible(c, userID, cfg) {
			continue
		}
		item := Item{
			ID:              c.ID,
			Hebrew:          c.Hebrew,
			Transliteration: c.Transliteration,
			French:          c.French,
			CreatedAt:       c.CreatedAt,
			LastSeen:        c.LastSeen,
		}
		if c.Strength != nil {
			item.Seen = true
			item.Strength = *c.Strength
		}
		pool.Items = append(pool.Items, item)
	}

	sortItems(pool.Items)
	return pool, nil
}

func wordEligible(c WordCandidate, userID uuid.UUID, cfg Config) bool {
	if !containsID(cfg.ThemeIDs, c.ThemeID) {
		return false
	}
	if !VisibleTo(c.Word, userID) || !VisibleTo(c.Theme, userID) {
		return false
	}
	if c.LevelID != nil && !c.LevelActive {
		return false
	}
	if cfg.LevelID != nil && (c.LevelID == nil || *c.LevelID != *cfg.LevelID) {
		return false
	}
	if cfg.Difficulty != nil && c.Difficulty != *cfg.Difficulty {
		return false
	}

	switch cfg.Scope {
	case ScopeMine:
		return c.Word.OwnedBy(userID)
	case ScopeGlobal:
		return c.Word.Global()
	case ScopeNone:
		return false
	default:
		return true
	}
}

func (b *PoolBuilder) buildCards(ctx context.Context, userID uuid.UUID, cfg Config) (*Pool, error) {
	candidates, err := b.source.CardCandidates(ctx, userID, cfg.SetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load card candidates: %w", err)
	}

	pool := &Pool{Source: SourceCards}
	for _, c := range candidates {
		if !containsID(cfg.SetIDs, c.SetID) {
			continue
		}
		if !VisibleTo(c.Set, userID) || !VisibleTo(c.Card, userID) {
			continue
		}
		pool.Items = append(pool.Items, Item{
			ID:              c.ID,
			Hebrew:          c.Hebrew,
			Transliteration: c.Transliteration,
			French:          c.French,
			CreatedAt:       c.CreatedAt,
		})
	}

	sortItems(pool.Items)
	return pool, nil
}

// DeclaredTotal is the session length for a size request against a pool.
func DeclaredTotal(size Size, pool *Pool) int {
	if size.All || size.Count <= 0 {
		return len(pool.Items)
	}
	return size.Count
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
