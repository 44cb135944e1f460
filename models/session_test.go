package models

import (
	"testing"
	"time"
)

func TestMaxSummonsFor(t *testing.T) {
	cases := map[int]int{3: 4, 4: 8, 6: 18, 8: 32}
	for boardSize, want := range cases {
		if got := MaxSummonsFor(boardSize); got != want {
			t.Fatalf("MaxSummonsFor(%d) = %d, want %d", boardSize, got, want)
		}
	}
}

// TestNewInitialMoves checks the turn-0 shape: zeroed board, white to move,
// both timers at the full limit.
func TestNewInitialMoves(t *testing.T) {
	now := time.Now().UTC()
	moves := NewInitialMoves(6, 600, now)

	if len(moves) != 1 {
		t.Fatalf("expected 1 initial move, got %d", len(moves))
	}
	m := moves[0]
	if m.TurnNumber != 0 {
		t.Fatalf("expected turn 0, got %d", m.TurnNumber)
	}
	if m.CurrentPlayer != ColorWhite {
		t.Fatalf("expected white to move, got %q", m.CurrentPlayer)
	}
	if len(m.Board) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(m.Board))
	}
	for i, row := range m.Board {
		if len(row) != 6 {
			t.Fatalf("row %d has %d cells, want 6", i, len(row))
		}
		for j, cell := range row {
			if cell != 0 {
				t.Fatalf("cell (%d,%d) = %d, want 0", i, j, cell)
			}
		}
	}
	if m.SummonCounts.White != 0 || m.SummonCounts.Black != 0 {
		t.Fatalf("expected zero summon counts, got %+v", m.SummonCounts)
	}
	if m.Timers.White != 600 || m.Timers.Black != 600 {
		t.Fatalf("expected full timers, got %+v", m.Timers)
	}
}

func TestMovesRoundTrip(t *testing.T) {
	s := &GameSession{}
	if err := s.SetMoves(NewInitialMoves(3, 60, time.Now().UTC())); err != nil {
		t.Fatalf("SetMoves returned error: %v", err)
	}
	moves, err := s.Moves()
	if err != nil {
		t.Fatalf("Moves returned error: %v", err)
	}
	if len(moves) != 1 || moves[0].Timers.White != 60 {
		t.Fatalf("unexpected move log after round trip: %+v", moves)
	}
}

func TestSeatHelpers(t *testing.T) {
	s := &GameSession{Creator: "u1", White: "u1", Black: OpenSeat}
	if !s.HasOpenSeat() {
		t.Fatal("expected an open seat")
	}
	if !s.HasPlayer("u1") {
		t.Fatal("expected u1 to be on the session")
	}
	if s.HasPlayer("u2") {
		t.Fatal("u2 should not be on the session")
	}

	s.Black = "u2"
	if s.HasOpenSeat() {
		t.Fatal("expected no open seat once both filled")
	}
}
