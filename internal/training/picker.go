package training

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// DistractorCount is the number of wrong options in a multiple-choice round.
const DistractorCount = 3

// Randomizer is the single randomness source of the engine.
type Randomizer interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomizer returns a goroutine-safe source. A zero seed uses the clock.
func NewRandomizer(seed int64) Randomizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Option is one answer choice. ID is the item id the label belongs to.
type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Question is a dealt round.
type Question struct {
	Source  Source   `json:"source"`
	Mode    Mode     `json:"mode"`
	Item    Item     `json:"item"`
	Options []Option `json:"options,omitempty"`
}

// Pick is the outcome of selecting the next item.
type Pick struct {
	Question Question
	// UsedReset is set when every pool item had been used and the history was
	// cleared to allow repeats.
	UsedReset bool
}

// Picker selects items and builds answer options.
type Picker struct {
	rand Randomizer
}

func NewPicker(r Randomizer) *Picker {
	return &Picker{rand: r}
}

// Pick chooses the next item of pool avoiding used ids, and builds options
// for multiple-choice modes.
func (p *Picker) Pick(pool *Pool, used []int64, mode Mode, order FetchOrder) (Pick, error) {
	if pool == nil || len(pool.Items) == 0 {
		return Pick{}, ErrNoEligibleItems
	}

	usedSet := make(map[int64]bool, len(used))
	for _, id := range used {
		usedSet[id] = true
	}

	available := make([]Item, 0, len(pool.Items))
	for _, it := range pool.Items {
		if !usedSet[it.ID] {
			available = append(available, it)
		}
	}

	var result Pick
	if len(available) == 0 {
		available = append(available, pool.Items...)
		result.UsedReset = true
	}

	var chosen Item
	switch {
	case pool.Source == SourceWords && order == FetchNew:
		chosen = newestUnseen(available)
	case pool.Source == SourceWords && order == FetchWeak:
		chosen = weakest(available)
	default:
		chosen = available[p.rand.Intn(len(available))]
	}

	result.Question = Question{
		Source: pool.Source,
		Mode:   mode,
		Item:   chosen,
	}
	if mode.MultipleChoice() {
		result.Question.Options = p.options(pool.Items, chosen, mode)
	}
	return result, nil
}

// ChooseMode picks the mode of one round among the session's modes.
func (p *Picker) ChooseMode(modes []Mode) Mode {
	if len(modes) == 0 {
		return DefaultMode
	}
	if len(modes) == 1 {
		return modes[0]
	}
	return modes[p.rand.Intn(len(modes))]
}

func (p *Picker) options(all []Item, chosen Item, mode Mode) []Option {
	others := make([]Item, 0, len(all))
	for _, it := range all {
		if it.ID != chosen.ID {
			others = append(others, it)
		}
	}
	p.shuffleItems(others)

	correct := Option{ID: chosen.ID, Label: optionLabel(chosen, mode)}
	labels := map[string]bool{normalizeAnswer(correct.Label): true}

	options := make([]Option, 0, DistractorCount+1)
	for _, it := range others {
		if len(options) == DistractorCount {
			break
		}
		label := optionLabel(it, mode)
		key := normalizeAnswer(label)
		if labels[key] {
			continue
		}
		labels[key] = true
		options = append(options, Option{ID: it.ID, Label: label})
	}
	options = append(options, correct)

	p.shuffleOptions(options)
	return options
}

func optionLabel(it Item, mode Mode) string {
	if mode == ModeFlashcardsReverse {
		return it.Hebrew
	}
	return it.French
}

// Fisher-Yates, driven by the injectable source.
func (p *Picker) shuffleOptions(opts []Option) {
	for i := len(opts) - 1; i > 0; i-- {
		j := p.rand.Intn(i + 1)
		opts[i], opts[j] = opts[j], opts[i]
	}
}

func (p *Picker) shuffleItems(items []Item) {
	for i := len(items) - 1; i > 0; i-- {
		j := p.rand.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// newestUnseen prefers items without progress, most recently created first.
func newestUnseen(items []Item) Item {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Seen != b.Seen {
			return !a.Seen
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return sorted[0]
}

// weakest orders by strength, then never-seen first, then oldest last_seen.
func weakest(items []Item) Item {
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Strength != b.Strength {
			return a.Strength < b.Strength
		}
		switch {
		case a.LastSeen == nil && b.LastSeen != nil:
			return true
		case a.LastSeen != nil && b.LastSeen == nil:
			return false
		case a.LastSeen != nil && b.LastSeen != nil && !a.LastSeen.Equal(*b.LastSeen):
			return a.LastSeen.Before(*b.LastSeen)
		}
		return a.ID < b.ID
	})
	return sorted[0]
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CheckWritten compares a free-text answer with the expected text, ignoring
// case and surrounding or repeated whitespace.
func CheckWritten(response, expected string) bool {
	return normalizeAnswer(response) == normalizeAnswer(expected)
}
