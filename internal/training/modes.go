package training

import (
	"sort"
	"strconv"
	"strings"
)

// Mode is a question style dealt during a session.
type Mode string

const (
	ModeFlashcards        Mode = "flashcards"
	ModeFlashcardsReverse Mode = "flashcards_reverse"
	ModeWritten           Mode = "written"
)

// DefaultMode is used when the setup form sends no mode at all.
const DefaultMode = ModeFlashcards

var modeAliases = map[string]Mode{
	"flashcards":         ModeFlashcards,
	"flashcard":          ModeFlashcards,
	"cards":              ModeFlashcards,
	"qcm":                ModeFlashcards,
	"mcq":                ModeFlashcards,
	"flashcards_reverse": ModeFlashcardsReverse,
	"flashcards-reverse": ModeFlashcardsReverse,
	"reverse_flashcards": ModeFlashcardsReverse,
	"reverse":            ModeFlashcardsReverse,
	"inverse":            ModeFlashcardsReverse,
	"written":            ModeWritten,
	"write":              ModeWritten,
	"typing":             ModeWritten,
	"ecrit":              ModeWritten,
}

var modeRank = map[Mode]int{
	ModeFlashcards:        0,
	ModeFlashcardsReverse: 1,
	ModeWritten:           2,
}

// MultipleChoice reports whether the mode deals answer options.
func (m Mode) MultipleChoice() bool {
	return m == ModeFlashcards || m == ModeFlashcardsReverse
}

// ParseModes normalises the raw mode field of a setup form. Each raw value
// may itself be a comma separated list. Legacy names map onto the canonical
// modes; anything else is rejected.
func ParseModes(raw []string) ([]Mode, error) {
	seen := make(map[Mode]bool)
	var modes []Mode

	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			key := strings.ToLower(strings.TrimSpace(part))
			if key == "" {
				continue
			}
			mode, ok := modeAliases[key]
			if !ok {
				return nil, configError("modes", "unknown training mode "+strconv.Quote(part))
			}
			if !seen[mode] {
				seen[mode] = true
				modes = append(modes, mode)
			}
		}
	}

	if len(modes) == 0 {
		return []Mode{DefaultMode}, nil
	}

	sort.Slice(modes, func(i, j int) bool { return modeRank[modes[i]] < modeRank[modes[j]] })
	return modes, nil
}

// FetchOrder controls how the next word is chosen among available ones.
type FetchOrder string

const (
	FetchRandom FetchOrder = "random"
	FetchNew    FetchOrder = "new"
	FetchWeak   FetchOrder = "weak"
)

func ParseFetchOrder(raw string) (FetchOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "random", "shuffle":
		return FetchRandom, nil
	case "new", "newest":
		return FetchNew, nil
	case "weak", "weak_first", "review":
		return FetchWeak, nil
	default:
		return "", configError("review_mode", "unknown review mode "+strconv.Quote(raw))
	}
}

// Scope restricts word ownership in themed sessions.
type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeMine   Scope = "mine"
	ScopeGlobal Scope = "global"
	ScopeNone   Scope = "none"
)

func ParseScope(raw string) (Scope, error) {
	switch s := Scope(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return ScopeAll, nil
	case ScopeAll, ScopeMine, ScopeGlobal, ScopeNone:
		return s, nil
	default:
		return "", configError("scope", "unknown scope "+strconv.Quote(raw))
	}
}

// Size is the requested session length. All means "every eligible item".
type Size struct {
	All   bool `json:"all"`
	Count int  `json:"count"`
}

// ParseSize accepts "all" or a positive integer.
func ParseSize(raw string) (Size, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "all" || raw == "" {
		return Size{All: true}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return Size{}, configError("size", "size must be a positive number or \"all\"")
	}
	return Size{Count: n}, nil
}
