package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is a named group of words. A nil OwnerID marks shared content.
type Theme struct {
	ID        int64      `json:"id"`
	OwnerID   *uuid.UUID `json:"owner_id"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	Override  string     `json:"override,omitempty"` // "" | "on" | "off", for the requesting user
	WordCount int        `json:"word_count"`
	CreatedAt time.Time  `json:"created_at"`
}

type Level struct {
	ID      int64  `json:"id"`
	ThemeID int64  `json:"theme_id"`
	Name    string `json:"name"`
	Order   int    `json:"order"`
	Active  bool   `json:"active"`
}

type Word struct {
	ID              int64      `json:"id"`
	ThemeID         int64      `json:"theme_id"`
	LevelID         *int64     `json:"level_id"`
	OwnerID         *uuid.UUID `json:"owner_id"`
	Hebrew          string     `json:"hebrew"`
	Transliteration string     `json:"transliteration"`
	French          string     `json:"french"`
	Difficulty      int        `json:"difficulty"` // 1=easy, 2=medium, 3=hard
	Active          bool       `json:"active"`
	Override        string     `json:"override,omitempty"`
	IsFavorite      bool       `json:"is_favorite"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ThemeRequest struct {
	Name   string `json:"name"`
	Global bool   `json:"global"` // admins only
}

type LevelRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type WordRequest struct {
	LevelID         *int64 `json:"level_id"`
	Hebrew          string `json:"hebrew"`
	Transliteration string `json:"transliteration"`
	French          string `json:"french"`
	Difficulty      int    `json:"difficulty"`
}

type ActiveRequest struct {
	Active bool `json:"active"`
}

// VisibilityChange is the outcome of a visibility toggle.
type VisibilityChange struct {
	Kind     string `json:"kind"`
	ID       int64  `json:"id"`
	Override string `json:"override"`
	Visible  bool   `json:"visible"`
}
