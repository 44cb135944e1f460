// services/reaper_service.go
package services

import (
	"log"
	"time"

	"game-session-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// ReapInterval is how often the ghost-game sweep runs.
const ReapInterval = 5 * time.Minute

// StartReaperScheduler runs CleanupGhostGames on a fixed interval. The job
// carries no state between runs; a failed run is simply retried by the next
// tick, since expired-and-still-waiting is a stable condition.
func (s *SessionService) StartReaperScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(ReapInterval),
		gocron.NewTask(func() {
			if err := s.CleanupGhostGames(); err != nil {
				log.Printf("[Reaper] Sweep failed: %v", err)
			}
		}),
	)
}

// CleanupGhostGames deletes waiting sessions whose claim window has elapsed.
// The delete re-asserts status = waiting so a session that went in_progress
// between scan and delete is left alone. Deleting an id that is already gone
// matches zero rows and is not an error.
func (s *SessionService) CleanupGhostGames() error {
	now := time.Now().UTC()

	var expired []models.GameSession
	if err := s.DB.Select("id").
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.StatusWaiting, now).
		Find(&expired).Error; err != nil {
		return err
	}
	if len(expired) == 0 {
		return nil
	}

	ids := make([]string, 0, len(expired))
	for _, g := range expired {
		ids = append(ids, g.ID)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id IN ? AND status = ?", ids, models.StatusWaiting).
			Delete(&models.GameSession{})
		if res.Error != nil {
			return res.Error
		}
		// Invitations pointing at reaped sessions are dead weight for the
		// lobby UI; clear them in the same transaction.
		if err := tx.Where("session_id IN ?", ids).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		log.Printf("[Reaper] Deleted %d ghost game(s)", res.RowsAffected)
		return nil
	})
}
