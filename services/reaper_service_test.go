package services

import (
	"testing"
	"time"

	"game-session-system/models"

	"github.com/google/uuid"
)

// seedSession inserts a session row directly, bypassing the handlers, so
// tests can construct states the API would not normally produce.
func seedSession(t *testing.T, svc *SessionService, status string, expiresAt *time.Time) string {
	t.Helper()
	session := &models.GameSession{
		ID:        uuid.NewString(),
		Status:    status,
		White:     "u1",
		Black:     "u2",
		ExpiresAt: expiresAt,
		Settings:  models.GameSettings{BoardSize: 6, MaxSummons: 18, TimeLimitSec: 600},
	}
	if err := session.SetMoves(models.NewInitialMoves(6, 600, time.Now().UTC())); err != nil {
		t.Fatalf("failed to build moves: %v", err)
	}
	if err := svc.DB.Create(session).Error; err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session.ID
}

func sessionExists(t *testing.T, svc *SessionService, id string) bool {
	t.Helper()
	var count int64
	if err := svc.DB.Model(&models.GameSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		t.Fatalf("failed to count sessions: %v", err)
	}
	return count > 0
}

// TestCleanupGhostGames checks the sweep's selectivity: only waiting
// sessions past their expiry go; everything else stays, including a
// non-waiting session carrying a stale expiry.
func TestCleanupGhostGames(t *testing.T) {
	svc := NewSessionService(newTestDB(t))

	past := time.Now().UTC().Add(-time.Minute)
	future := time.Now().UTC().Add(4 * time.Minute)

	ghost := seedSession(t, svc, models.StatusWaiting, &past)
	fresh := seedSession(t, svc, models.StatusWaiting, &future)
	live := seedSession(t, svc, models.StatusInProgress, nil)
	done := seedSession(t, svc, models.StatusFinished, nil)
	staleButLive := seedSession(t, svc, models.StatusInProgress, &past)

	if err := svc.CleanupGhostGames(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if sessionExists(t, svc, ghost) {
		t.Fatal("expired waiting session must be deleted")
	}
	for name, id := range map[string]string{
		"unexpired waiting": fresh,
		"in_progress":       live,
		"finished":          done,
		"stale in_progress": staleButLive,
	} {
		if !sessionExists(t, svc, id) {
			t.Fatalf("%s session must survive the sweep", name)
		}
	}
}

func TestCleanupGhostGamesEmptyRunIsSilent(t *testing.T) {
	svc := NewSessionService(newTestDB(t))

	if err := svc.CleanupGhostGames(); err != nil {
		t.Fatalf("sweep with nothing to do must succeed: %v", err)
	}
	// Running again immediately is a no-op, not an error
	if err := svc.CleanupGhostGames(); err != nil {
		t.Fatalf("repeat sweep failed: %v", err)
	}
}

func TestCleanupGhostGamesClearsInvitations(t *testing.T) {
	svc := NewSessionService(newTestDB(t))

	past := time.Now().UTC().Add(-time.Minute)
	ghost := seedSession(t, svc, models.StatusWaiting, &past)
	live := seedSession(t, svc, models.StatusInProgress, nil)

	invitations := []models.Invitation{
		{UserID: "u3", SessionID: ghost, FromUser: "u1"},
		{UserID: "u4", SessionID: live, FromUser: "u1"},
	}
	if err := svc.DB.Create(&invitations).Error; err != nil {
		t.Fatalf("failed to seed invitations: %v", err)
	}

	if err := svc.CleanupGhostGames(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	var count int64
	svc.DB.Model(&models.Invitation{}).Where("session_id = ?", ghost).Count(&count)
	if count != 0 {
		t.Fatal("invitations for a reaped session must be cleared")
	}
	svc.DB.Model(&models.Invitation{}).Where("session_id = ?", live).Count(&count)
	if count != 1 {
		t.Fatal("invitations for surviving sessions must stay")
	}
}
