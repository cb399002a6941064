package models

import (
	"time"

	"github.com/google/uuid"
)

// FlashcardSet is a collection of cards independent from themes. Sets are
// personal; admins may publish shared ones (nil OwnerID).
type FlashcardSet struct {
	ID        int64      `json:"id"`
	OwnerID   *uuid.UUID `json:"owner_id"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	Override  string     `json:"override,omitempty"`
	CardCount int        `json:"card_count"`
	CreatedAt time.Time  `json:"created_at"`
}

type Card struct {
	ID              int64     `json:"id"`
	SetID           int64     `json:"set_id"`
	Hebrew          string    `json:"hebrew"`
	Transliteration string    `json:"transliteration"`
	French          string    `json:"french"`
	Position        int       `json:"position"`
	Active          bool      `json:"active"`
	Favorite        bool      `json:"favorite"`
	Memorized       bool      `json:"memorized"`
	CreatedAt       time.Time `json:"created_at"`
}

type SetRequest struct {
	Name   string `json:"name"`
	Global bool   `json:"global"`
}

type CardRequest struct {
	Hebrew          string `json:"hebrew"`
	Transliteration string `json:"transliteration"`
	French          string `json:"french"`
	Position        *int   `json:"position"`
	Favorite        *bool  `json:"favorite"`
	Memorized       *bool  `json:"memorized"`
}
