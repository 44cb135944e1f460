package models

import "time"

// Invitation is written by the lobby UI when a player invites someone to a
// waiting session, and consumed by the invitee's client. This service only
// migrates the table, serves reads, and clears rows whose session the reaper
// deleted.
type Invitation struct {
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	SessionID string    `gorm:"primaryKey;type:uuid;index" json:"session_id"`
	FromUser  string    `json:"from_user,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
