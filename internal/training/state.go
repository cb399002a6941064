package training

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the position of a session in its lifecycle.
type Phase string

const (
	PhaseNone      Phase = "none"
	PhaseReady     Phase = "ready"
	PhaseAnswering Phase = "answering"
	PhaseDone      Phase = "done"
)

// State is the persisted drill session of one user. All mutation goes through
// the named transitions below.
type State struct {
	Phase  Phase     `json:"phase"`
	RunID  uuid.UUID `json:"run_id"`
	Config Config    `json:"config"`

	Total     int `json:"total"`
	Remaining int `json:"remaining"`
	Answered  int `json:"answered"`
	Correct   int `json:"correct"`

	UsedWordIDs []int64 `json:"used_word_ids"`
	UsedCardIDs []int64 `json:"used_card_ids"`

	Pending   *Question `json:"pending,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewState opens a session in the ready phase.
func NewState(cfg Config, total int) *State {
	if len(cfg.Modes) == 0 {
		cfg.Modes = []Mode{DefaultMode}
	}
	now := time.Now().UTC()
	return &State{
		Phase:       PhaseReady,
		Config:      cfg,
		Total:       total,
		Remaining:   total,
		UsedWordIDs: []int64{},
		UsedCardIDs: []int64{},
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// Used returns the used-id list of the session's source.
func (s *State) Used() []int64 {
	if s.Config.Source() == SourceCards {
		return s.UsedCardIDs
	}
	return s.UsedWordIDs
}

func (s *State) setUsed(ids []int64) {
	if s.Config.Source() == SourceCards {
		s.UsedCardIDs = ids
	} else {
		s.UsedWordIDs = ids
	}
}

// Exhausted reports whether no answer is left to score.
func (s *State) Exhausted() bool {
	return s.Remaining <= 0
}

// Finish moves an exhausted session to done.
func (s *State) Finish() {
	s.Phase = PhaseDone
	s.Pending = nil
	s.touch()
}

// Deal records the dealt question and waits for its answer. usedReset clears
// the history first, as the picker does when the pool is exhausted.
func (s *State) Deal(q Question, usedReset bool) error {
	if s.Phase != PhaseReady {
		return staleSession("no question can be dealt in phase " + string(s.Phase))
	}
	if s.Exhausted() {
		return staleSession("session has no remaining items")
	}

	used := s.Used()
	if usedReset {
		used = []int64{}
	}
	if !containsID(used, q.Item.ID) {
		used = append(used, q.Item.ID)
	}
	s.setUsed(used)

	s.Pending = &q
	s.Phase = PhaseAnswering
	s.touch()
	return nil
}

// Score applies the answer of the pending question.
func (s *State) Score(itemID int64, correct bool) error {
	if s.Phase != PhaseAnswering || s.Pending == nil {
		return staleSession("no question is awaiting an answer")
	}
	if s.Pending.Item.ID != itemID {
		return staleSession("answer does not match the dealt item")
	}

	s.Answered++
	if correct {
		s.Correct++
	}
	s.Remaining--
	s.Pending = nil

	if s.Remaining > 0 {
		s.Phase = PhaseReady
	} else {
		s.Phase = PhaseDone
	}
	s.touch()
	return nil
}

// Restart keeps the configuration and starts counting again.
func (s *State) Restart() {
	s.Remaining = s.Total
	s.Answered = 0
	s.Correct = 0
	s.UsedWordIDs = []int64{}
	s.UsedCardIDs = []int64{}
	s.Pending = nil
	s.Phase = PhaseReady
	s.touch()
}

// Resume drops an unanswered question so the next deal starts fresh.
func (s *State) Resume() {
	s.Pending = nil
	if s.Exhausted() {
		s.Phase = PhaseDone
	} else {
		s.Phase = PhaseReady
	}
	s.touch()
}

func (s *State) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Counters is the progress part of a state as shown to clients.
type Counters struct {
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
	Answered  int `json:"answered"`
	Correct   int `json:"correct"`
}

func (s *State) Counters() Counters {
	return Counters{
		Total:     s.Total,
		Remaining: s.Remaining,
		Answered:  s.Answered,
		Correct:   s.Correct,
	}
}
