package models

import (
	"time"

	"github.com/google/uuid"
)

// TrainingRun is the durable record of one drill session.
type TrainingRun struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Source    string     `json:"source"` // "words" | "cards"
	Total     int        `json:"total"`
	Answered  int        `json:"answered"`
	Correct   int        `json:"correct"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Stats is the per-user aggregate shown on the dashboard.
type Stats struct {
	WordsSeen       int `json:"words_seen"`
	WordsMastered   int `json:"words_mastered"`
	WordSuccesses   int `json:"word_successes"`
	WordFailures    int `json:"word_failures"`
	CardsSeen       int `json:"cards_seen"`
	CardSuccesses   int `json:"card_successes"`
	CardFailures    int `json:"card_failures"`
	Favorites       int `json:"favorites"`
	RunsCompleted   int `json:"runs_completed"`
	AnswersRecorded int `json:"answers_recorded"`
}
