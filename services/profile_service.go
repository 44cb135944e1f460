package services

import (
	"errors"

	"game-session-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileService serves the per-user views: profile, game history and
// pending invitations.
type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// EnsureProfileRecord fetches the profile for externalUserID, creating an
// empty one if the user has never played.
func (s *ProfileService) EnsureProfileRecord(externalUserID string) (*models.UserProfile, error) {
	var prof models.UserProfile
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&prof).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prof = models.UserProfile{
			ID:             uuid.NewString(),
			ExternalUserID: externalUserID,
		}
		if err := s.DB.Create(&prof).Error; err != nil {
			return nil, err
		}
		return &prof, nil
	}
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

// GetMyProfile returns the caller's profile.
func (s *ProfileService) GetMyProfile(c *fiber.Ctx) error {
	uid, ok := c.Locals("user_id").(string)
	if !ok || uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication is required", "code": "unauthenticated",
		})
	}

	prof, err := s.EnsureProfileRecord(uid)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch profile"})
	}
	return c.JSON(prof)
}

// GetMyGames returns the caller's game history, most recent first.
func (s *ProfileService) GetMyGames(c *fiber.Ctx) error {
	uid, ok := c.Locals("user_id").(string)
	if !ok || uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication is required", "code": "unauthenticated",
		})
	}

	var history []models.UserGame
	if err := s.DB.Where("user_id = ?", uid).
		Order("joined_at DESC").
		Limit(100).
		Find(&history).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch history"})
	}

	ids := make([]string, 0, len(history))
	for _, h := range history {
		ids = append(ids, h.SessionID)
	}
	var sessions []models.GameSession
	if len(ids) > 0 {
		if err := s.DB.Where("id IN ?", ids).Find(&sessions).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch sessions"})
		}
	}

	return c.JSON(fiber.Map{
		"history":  history,
		"sessions": sessions,
	})
}

// GetMyInvitations returns the invitation rows pending for the caller. The
// rows themselves are written by the lobby collaborators, not by this
// service.
func (s *ProfileService) GetMyInvitations(c *fiber.Ctx) error {
	uid, ok := c.Locals("user_id").(string)
	if !ok || uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication is required", "code": "unauthenticated",
		})
	}

	var invitations []models.Invitation
	if err := s.DB.Where("user_id = ?", uid).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch invitations"})
	}
	return c.JSON(invitations)
}
