package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"game-session-system/models"
	"game-session-system/utils"

	"gorm.io/gorm"
)

// ArchiveWorker exports finished sessions to the R2 archive bucket. It never
// deletes rows — the reaper is the only component that destroys sessions,
// and only waiting ones past their claim window.
type ArchiveWorker struct {
	DB     *gorm.DB
	MinAge time.Duration // how long a session must be finished before export

	// Upload is swappable in tests; defaults to the R2 client.
	Upload func(ctx context.Context, key string, v interface{}) error
}

func NewArchiveWorker(db *gorm.DB, minAge time.Duration) *ArchiveWorker {
	return &ArchiveWorker{
		DB:     db,
		MinAge: minAge,
		Upload: utils.UploadJSONToR2,
	}
}

// archiveObject is the JSON document stored per session.
type archiveObject struct {
	Session models.GameSession `json:"session"`
	Moves   []models.Move      `json:"moves"`
}

// PollFinishedGames runs the archive pass on a fixed interval until ctx is
// cancelled.
func (w *ArchiveWorker) PollFinishedGames(ctx context.Context, pollInterval time.Duration) {
	log.Println("Starting finished-game archival...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Finished-game archival stopped.")
			return
		case <-ticker.C:
			count, err := w.ArchiveBatch(ctx)
			if err != nil {
				log.Printf("[Archive] Pass failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("[Archive] Exported %d finished game(s)", count)
			}
		}
	}
}

// ArchiveBatch exports finished, not-yet-archived sessions older than MinAge.
// A session counts as archived only after its upload succeeded; a failed
// upload leaves the row untouched for the next pass.
func (w *ArchiveWorker) ArchiveBatch(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-w.MinAge)

	var sessions []models.GameSession
	if err := w.DB.
		Where("status = ? AND archived_at IS NULL AND updated_at < ?", models.StatusFinished, cutoff).
		Limit(100).
		Find(&sessions).Error; err != nil {
		return 0, err
	}

	archived := 0
	for _, session := range sessions {
		moves, err := session.Moves()
		if err != nil {
			log.Printf("[Archive] Skipping session %s, corrupt move log: %v", session.ID, err)
			continue
		}

		key := fmt.Sprintf("archives/%s.json", session.ID)
		if err := w.Upload(ctx, key, archiveObject{Session: session, Moves: moves}); err != nil {
			log.Printf("[Archive] Upload failed for session %s: %v", session.ID, err)
			continue
		}

		now := time.Now().UTC()
		if err := w.DB.Model(&models.GameSession{}).
			Where("id = ? AND archived_at IS NULL", session.ID).
			Update("archived_at", now).Error; err != nil {
			log.Printf("[Archive] Failed to stamp session %s: %v", session.ID, err)
			continue
		}
		archived++
	}
	return archived, nil
}
