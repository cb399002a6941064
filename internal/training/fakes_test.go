package training

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type fakeSource struct {
	words      []WordCandidate
	cards      []CardCandidate
	levelTheme map[int64]int64
	err        error
}

func (f *fakeSource) WordCandidates(ctx context.Context, userID uuid.UUID, themeIDs []int64) ([]WordCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

func (f *fakeSource) CardCandidates(ctx context.Context, userID uuid.UUID, setIDs []int64) ([]CardCandidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cards, nil
}

func (f *fakeSource) LevelThemeID(ctx context.Context, levelID int64) (int64, bool, error) {
	themeID, ok := f.levelTheme[levelID]
	return themeID, ok, nil
}

type fakeProgress struct {
	mu        sync.Mutex
	strengths map[int64]int
	cards     map[int64][2]int
	purged    []int64
	err       error
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{strengths: map[int64]int{}, cards: map[int64][2]int{}}
}

func (f *fakeProgress) RecordWord(ctx context.Context, userID uuid.UUID, wordID int64, correct bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.strengths[wordID] = NextStrength(f.strengths[wordID], correct)
	return f.strengths[wordID], nil
}

func (f *fakeProgress) RecordCard(ctx context.Context, userID uuid.UUID, cardID int64, correct bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c := f.cards[cardID]
	if correct {
		c[0]++
	} else {
		c[1]++
	}
	f.cards[cardID] = c
	return nil
}

func (f *fakeProgress) DeleteWordProgress(ctx context.Context, userID uuid.UUID, themeIDs []int64) (int64, error) {
	f.purged = append(f.purged, themeIDs...)
	n := int64(len(f.strengths))
	f.strengths = map[int64]int{}
	return n, nil
}

func (f *fakeProgress) DeleteCardProgress(ctx context.Context, userID uuid.UUID, setIDs []int64) (int64, error) {
	f.purged = append(f.purged, setIDs...)
	n := int64(len(f.cards))
	f.cards = map[int64][2]int{}
	return n, nil
}

type memoryStore struct {
	mu      sync.Mutex
	states  map[uuid.UUID]*State
	locked  map[uuid.UUID]bool
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{states: map[uuid.UUID]*State{}, locked: map[uuid.UUID]bool{}}
}

func (m *memoryStore) Lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[userID] {
		return nil, ErrSessionBusy
	}
	m.locked[userID] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.locked, userID)
	}, nil
}

// gatedStore holds the first Load until release is closed, so a second
// request can arrive while the first is mid-transition.
type gatedStore struct {
	*memoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore(inner *memoryStore) *gatedStore {
	return &gatedStore{memoryStore: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) Load(ctx context.Context, userID uuid.UUID) (*State, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.memoryStore.Load(ctx, userID)
}

func (m *memoryStore) Load(ctx context.Context, userID uuid.UUID) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.UsedWordIDs = append([]int64{}, s.UsedWordIDs...)
	cp.UsedCardIDs = append([]int64{}, s.UsedCardIDs...)
	return &cp, nil
}

func (m *memoryStore) Save(ctx context.Context, userID uuid.UUID, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *state
	m.states[userID] = &cp
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

type fakeRuns struct {
	started  int
	finished map[uuid.UUID][2]int
}

func (f *fakeRuns) StartRun(ctx context.Context, userID uuid.UUID, source Source, total int) (uuid.UUID, error) {
	f.started++
	return uuid.New(), nil
}

func (f *fakeRuns) FinishRun(ctx context.Context, runID uuid.UUID, answered, correct int) error {
	if f.finished == nil {
		f.finished = map[uuid.UUID][2]int{}
	}
	f.finished[runID] = [2]int{answered, correct}
	return nil
}

type recordedEvent struct {
	userID    uuid.UUID
	eventType string
}

type fakeEvents struct {
	events []recordedEvent
}

func (f *fakeEvents) PublishEvent(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) error {
	f.events = append(f.events, recordedEvent{userID: userID, eventType: eventType})
	return nil
}

func globalVisible() Visibility {
	return Visibility{Active: true}
}

func ownedVisible(userID uuid.UUID) Visibility {
	id := userID
	return Visibility{OwnerID: &id, Active: true}
}

// themeWords returns n active global words in themeID, ids starting at first.
func themeWords(themeID int64, first int64, n int) []WordCandidate {
	words := make([]WordCandidate, 0, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := first + int64(i)
		words = append(words, WordCandidate{
			ID:              id,
			ThemeID:         themeID,
			Difficulty:      1,
			Hebrew:          "hebrew-" + strconv.FormatInt(id, 10),
			Transliteration: "translit-" + strconv.FormatInt(id, 10),
			French:          "french-" + strconv.FormatInt(id, 10),
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
			Word:            globalVisible(),
			Theme:           globalVisible(),
		})
	}
	return words
}

func setCards(setID int64, owner uuid.UUID, first int64, n int) []CardCandidate {
	cards := make([]CardCandidate, 0, n)
	for i := 0; i < n; i++ {
		id := first + int64(i)
		cards = append(cards, CardCandidate{
			ID:       id,
			SetID:    setID,
			Position: i,
			Hebrew:   "card-he-" + strconv.FormatInt(id, 10),
			French:   "card-fr-" + strconv.FormatInt(id, 10),
			Card:     ownedVisible(owner),
			Set:      ownedVisible(owner),
		})
	}
	return cards
}

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }
