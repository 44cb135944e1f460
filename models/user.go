package models

import (
	"time"
)

// UserProfile is the per-user record this service maintains. The user itself
// lives in the profile service; we key on its external UUID. Nickname is a
// cached copy for the lobby UI.
type UserProfile struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Nickname       string `json:"nickname,omitempty"`

	// Incremented atomically whenever a game involving the user starts
	GamesPlayed int64 `json:"games_played" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserGame maps a user to a session they participate in, with the moment the
// game started for them. One row per (user, session).
type UserGame struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	SessionID string    `gorm:"primaryKey;type:uuid;index" json:"session_id"`
	JoinedAt  time.Time `json:"joined_at"`
}
