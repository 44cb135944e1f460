package models

import (
	"encoding/json"
	"time"
)

// Session lifecycle states
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

// OpenSeat marks an unassigned color slot. Deployed clients compare seats
// against the literal "0", so the sentinel is kept as-is.
const OpenSeat = "0"

const (
	ColorWhite = "white"
	ColorBlack = "black"
)

// WaitingTTL is the claim window for a waiting session. Sessions nobody
// joins within this window become ghost games and are reaped.
const WaitingTTL = 5 * time.Minute

// GameSettings holds the per-session rules chosen at creation time.
type GameSettings struct {
	BoardSize          int  `json:"board_size"`
	MaxSummons         int  `json:"max_summons"`
	TimeControlEnabled bool `json:"time_control_enabled"`
	TimeLimitSec       int  `json:"time_limit_sec"`
	DelaySec           int  `json:"delay_sec"`
}

// GameSession is one game instance. Seats (White/Black) hold external user
// IDs, or OpenSeat while unclaimed. Creator is set only while waiting and
// cleared when the session goes in_progress. ExpiresAt is non-nil iff the
// session is waiting.
type GameSession struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Status string `gorm:"type:varchar(16);index;not null" json:"status"`

	Creator string `json:"creator,omitempty"`
	White   string `gorm:"not null" json:"white"`
	Black   string `gorm:"not null" json:"black"`

	// Set by gameplay logic, never by this service
	Winner    *string `json:"winner"`
	WinReason *string `json:"win_reason"`

	Settings GameSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	ExpiresAt  *time.Time `gorm:"index" json:"expires_at,omitempty"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Full move log, serialized. Index 0 is the initial state. Kept on the
	// session row so the join commit updates timers and status in one
	// conditional write.
	MovesJSON string `json:"-"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Move is a single entry of the move log.
type Move struct {
	TurnNumber    int         `json:"turn_number"`
	CurrentPlayer string      `json:"current_player"`
	Board         [][]int     `json:"board"`
	SummonCounts  ColorCounts `json:"summon_counts"`
	Timers        ColorCounts `json:"timers"`
	Timestamp     time.Time   `json:"timestamp"`
}

// ColorCounts holds one integer per color.
type ColorCounts struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// MaxSummonsFor derives the summon cap from the board size.
func MaxSummonsFor(boardSize int) int {
	return boardSize * boardSize / 2
}

// NewInitialMoves builds the move log with its turn-0 entry: zeroed board,
// white to move, both timers at the full time limit.
func NewInitialMoves(boardSize, timeLimitSec int, now time.Time) []Move {
	board := make([][]int, boardSize)
	for i := range board {
		board[i] = make([]int, boardSize)
	}
	return []Move{{
		TurnNumber:    0,
		CurrentPlayer: ColorWhite,
		Board:         board,
		SummonCounts:  ColorCounts{},
		Timers:        ColorCounts{White: timeLimitSec, Black: timeLimitSec},
		Timestamp:     now,
	}}
}

// Moves deserializes the move log.
func (s *GameSession) Moves() ([]Move, error) {
	if s.MovesJSON == "" {
		return nil, nil
	}
	var moves []Move
	if err := json.Unmarshal([]byte(s.MovesJSON), &moves); err != nil {
		return nil, err
	}
	return moves, nil
}

// SetMoves serializes the move log back onto the row.
func (s *GameSession) SetMoves(moves []Move) error {
	data, err := json.Marshal(moves)
	if err != nil {
		return err
	}
	s.MovesJSON = string(data)
	return nil
}

// HasOpenSeat reports whether at least one color is still unassigned.
func (s *GameSession) HasOpenSeat() bool {
	return s.White == OpenSeat || s.Black == OpenSeat
}

// HasPlayer reports whether uid already occupies any role on the session.
func (s *GameSession) HasPlayer(uid string) bool {
	return s.Creator == uid || s.White == uid || s.Black == uid
}
