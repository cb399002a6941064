package training

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Live event types pushed to the user's sockets.
const (
	EventAnswered  = "training_answered"
	EventCompleted = "training_completed"
)

// RunRecorder keeps the history of drill runs.
type RunRecorder interface {
	StartRun(ctx context.Context, userID uuid.UUID, source Source, total int) (uuid.UUID, error)
	FinishRun(ctx context.Context, runID uuid.UUID, answered, correct int) error
}

// EventPublisher fans events out to the user's live connections.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) error
}

// QuestionView is a dealt question as sent to the client, without the answer.
type QuestionView struct {
	ItemID  int64    `json:"item_id"`
	Source  Source   `json:"source"`
	Mode    Mode     `json:"mode"`
	Prompt  string   `json:"prompt"`
	Hint    string   `json:"hint,omitempty"`
	Options []Option `json:"options,omitempty"`
}

// DealResult is either a question or the completion of the session.
type DealResult struct {
	Completed bool          `json:"completed"`
	Question  *QuestionView `json:"question,omitempty"`
	Counters  Counters      `json:"counters"`
}

// AnswerRequest carries a chosen option id for multiple choice or a free text
// response for written mode.
type AnswerRequest struct {
	ItemID   int64  `json:"item_id"`
	ChoiceID *int64 `json:"choice_id"`
	Response string `json:"response"`
}

// AnswerResult reveals the item and the updated counters.
type AnswerResult struct {
	Correct   bool     `json:"correct"`
	Item      Item     `json:"item"`
	Strength  *int     `json:"strength,omitempty"`
	Counters  Counters `json:"counters"`
	Completed bool     `json:"completed"`
}

// ClearResult reports how many progress rows a purge removed.
type ClearResult struct {
	Purged int64 `json:"purged"`
}

// Engine drives drill sessions on top of the stores.
type Engine struct {
	pools    *PoolBuilder
	picker   *Picker
	progress *ProgressUpdater
	sessions SessionStore
	runs     RunRecorder
	events   EventPublisher
	logger   *zap.Logger
}

// NewEngine wires an engine. runs and events may be nil.
func NewEngine(
	source CandidateSource,
	progress ProgressStore,
	sessions SessionStore,
	runs RunRecorder,
	events EventPublisher,
	rnd Randomizer,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		pools:    NewPoolBuilder(source),
		picker:   NewPicker(rnd),
		progress: NewProgressUpdater(progress),
		sessions: sessions,
		runs:     runs,
		events:   events,
		logger:   logger,
	}
}

// Setup validates the form, resolves the pool and opens a ready session,
// replacing any previous one.
func (e *Engine) Setup(ctx context.Context, userID uuid.UUID, req SetupRequest) (*State, error) {
	cfg, err := ParseSetup(req)
	if err != nil {
		return nil, err
	}
	cfg, err = e.pools.Normalize(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pool, err := e.pools.Build(ctx, userID, cfg)
	if err != nil {
		return nil, err
	}

	unlock, err := e.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	previous, err := e.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		e.finishRun(ctx, previous)
	}

	state := NewState(cfg, DeclaredTotal(cfg.Size, pool))
	if e.runs != nil {
		runID, err := e.runs.StartRun(ctx, userID, cfg.Source(), state.Total)
		if err != nil {
			return nil, fmt.Errorf("failed to start training run: %w", err)
		}
		state.RunID = runID
	}

	if err := e.sessions.Save(ctx, userID, state); err != nil {
		return nil, err
	}

	e.logger.Info("training session started",
		zap.String("user_id", userID.String()),
		zap.String("source", string(cfg.Source())),
		zap.Int("pool_size", len(pool.Items)),
		zap.Int("total", state.Total),
	)
	return state, nil
}

// Next deals the next question. A question still awaiting its answer is
// served again unchanged.
func (e *Engine) Next(ctx context.Context, userID uuid.UUID) (*DealResult, error) {
	unlock, err := e.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return e.next(ctx, userID)
}

func (e *Engine) next(ctx context.Context, userID uuid.UUID) (*DealResult, error) {
	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch state.Phase {
	case PhaseAnswering:
		if state.Pending != nil {
			return &DealResult{Question: viewOf(*state.Pending), Counters: state.Counters()}, nil
		}
		state.Resume()
	case PhaseDone:
		return e.complete(ctx, userID, state)
	}
	if state.Exhausted() {
		state.Finish()
		return e.complete(ctx, userID, state)
	}

	pool, err := e.pools.Build(ctx, userID, state.Config)
	if err != nil {
		if errors.Is(err, ErrNoEligibleItems) {
			e.discard(ctx, userID, state)
		}
		return nil, err
	}

	mode := e.picker.ChooseMode(state.Config.Modes)
	pick, err := e.picker.Pick(pool, state.Used(), mode, state.Config.Order)
	if err != nil {
		return nil, err
	}
	if err := state.Deal(pick.Question, pick.UsedReset); err != nil {
		return nil, err
	}
	if err := e.sessions.Save(ctx, userID, state); err != nil {
		return nil, err
	}

	return &DealResult{Question: viewOf(pick.Question), Counters: state.Counters()}, nil
}

// Answer scores the pending question and records progress.
func (e *Engine) Answer(ctx context.Context, userID uuid.UUID, req AnswerRequest) (*AnswerResult, error) {
	unlock, err := e.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state.Phase != PhaseAnswering || state.Pending == nil {
		return nil, staleSession("no question is awaiting an answer")
	}
	pending := *state.Pending
	if pending.Item.ID != req.ItemID {
		return nil, staleSession("answer does not match the dealt item")
	}

	correct := evaluate(pending, req)

	// Progress first: a failing store leaves the session untouched for a retry.
	strength, err := e.progress.Update(ctx, userID, pending.Source, pending.Item.ID, correct)
	if err != nil {
		return nil, err
	}
	if err := state.Score(req.ItemID, correct); err != nil {
		return nil, err
	}

	result := &AnswerResult{
		Correct:   correct,
		Item:      pending.Item,
		Strength:  strength,
		Counters:  state.Counters(),
		Completed: state.Phase == PhaseDone,
	}

	if result.Completed {
		e.finishRun(ctx, state)
		if err := e.sessions.Delete(ctx, userID); err != nil {
			return nil, err
		}
	} else if err := e.sessions.Save(ctx, userID, state); err != nil {
		return nil, err
	}

	e.publish(ctx, userID, EventAnswered, result)
	if result.Completed {
		e.publish(ctx, userID, EventCompleted, result.Counters)
	}
	return result, nil
}

// Resume continues the current session, or restarts its counters with the
// same configuration, then deals.
func (e *Engine) Resume(ctx context.Context, userID uuid.UUID, restart bool) (*DealResult, error) {
	unlock, err := e.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if restart {
		e.finishRun(ctx, state)
		state.Restart()
		if e.runs != nil {
			runID, err := e.runs.StartRun(ctx, userID, state.Config.Source(), state.Total)
			if err != nil {
				return nil, fmt.Errorf("failed to start training run: %w", err)
			}
			state.RunID = runID
		}
	} else {
		state.Resume()
	}

	if err := e.sessions.Save(ctx, userID, state); err != nil {
		return nil, err
	}
	return e.next(ctx, userID)
}

// Clear discards the session. With purge the user's progress on the
// session's themes or sets is deleted too.
func (e *Engine) Clear(ctx context.Context, userID uuid.UUID, purge bool) (*ClearResult, error) {
	unlock, err := e.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := e.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ClearResult{}

	if purge {
		n, err := e.progress.Purge(ctx, userID, state.Config)
		if err != nil {
			return nil, err
		}
		result.Purged = n
	}

	e.finishRun(ctx, state)
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}

	e.logger.Info("training session cleared",
		zap.String("user_id", userID.String()),
		zap.Bool("purge", purge),
		zap.Int64("purged_rows", result.Purged),
	)
	return result, nil
}

// SessionView is what clients see of a session: the pending question never
// carries its answer.
type SessionView struct {
	Phase    Phase         `json:"phase"`
	Config   Config        `json:"config"`
	Counters Counters      `json:"counters"`
	Question *QuestionView `json:"question,omitempty"`
}

func (s *State) View() *SessionView {
	v := &SessionView{Phase: s.Phase, Config: s.Config, Counters: s.Counters()}
	if s.Pending != nil {
		v.Question = viewOf(*s.Pending)
	}
	return v
}

// Current returns the active session.
func (e *Engine) Current(ctx context.Context, userID uuid.UUID) (*State, error) {
	return e.load(ctx, userID)
}

// lock reports a concurrent transition for the same user as a stale session.
func (e *Engine) lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	unlock, err := e.sessions.Lock(ctx, userID)
	if errors.Is(err, ErrSessionBusy) {
		return nil, staleSession("another request is updating this session")
	}
	if err != nil {
		return nil, err
	}
	return unlock, nil
}

func (e *Engine) load(ctx context.Context, userID uuid.UUID) (*State, error) {
	state, err := e.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Phase == PhaseNone {
		return nil, staleSession("no active training session")
	}
	return state, nil
}

func (e *Engine) complete(ctx context.Context, userID uuid.UUID, state *State) (*DealResult, error) {
	e.finishRun(ctx, state)
	if err := e.sessions.Delete(ctx, userID); err != nil {
		return nil, err
	}
	e.publish(ctx, userID, EventCompleted, state.Counters())
	return &DealResult{Completed: true, Counters: state.Counters()}, nil
}

func (e *Engine) discard(ctx context.Context, userID uuid.UUID, state *State) {
	e.finishRun(ctx, state)
	if err := e.sessions.Delete(ctx, userID); err != nil {
		e.logger.Warn("failed to discard training session", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (e *Engine) finishRun(ctx context.Context, state *State) {
	if e.runs == nil || state.RunID == uuid.Nil {
		return
	}
	if err := e.runs.FinishRun(ctx, state.RunID, state.Answered, state.Correct); err != nil {
		e.logger.Warn("failed to close training run", zap.String("run_id", state.RunID.String()), zap.Error(err))
	}
}

func (e *Engine) publish(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishEvent(ctx, userID, eventType, payload); err != nil {
		e.logger.Warn("failed to publish training event", zap.String("type", eventType), zap.Error(err))
	}
}

func evaluate(q Question, req AnswerRequest) bool {
	if q.Mode.MultipleChoice() {
		return req.ChoiceID != nil && *req.ChoiceID == q.Item.ID
	}
	return CheckWritten(req.Response, q.Item.French)
}

func viewOf(q Question) *QuestionView {
	view := &QuestionView{
		ItemID:  q.Item.ID,
		Source:  q.Source,
		Mode:    q.Mode,
		Options: q.Options,
	}
	if q.Mode == ModeFlashcardsReverse {
		view.Prompt = q.Item.French
	} else {
		view.Prompt = q.Item.Hebrew
		view.Hint = q.Item.Transliteration
	}
	return view
}
