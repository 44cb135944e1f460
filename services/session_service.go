package services

import (
	"errors"
	"log"
	"math/rand"
	"strconv"
	"time"

	"game-session-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionService owns session creation and matchmaking
type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

// errLostRace signals that the conditional commit matched zero rows: the
// session was claimed, finished, or reaped between our snapshot read and the
// commit. Indistinguishable from a plain "already full" by design.
var errLostRace = errors.New("session state changed since read")

// createGameInput mirrors the payload existing clients send. Numeric fields
// arrive as strings and are parsed here.
type createGameInput struct {
	GameType           string `json:"gameType"`
	BoardSize          string `json:"boardSize"`
	TimeLimit          string `json:"timeLimit"`
	Delay              string `json:"delay"`
	TimeControlEnabled string `json:"time-control-enabled"`
	PlayerColor        string `json:"playerColor"`
}

// CreateGame creates a new session from validated settings.
// Offline games start immediately with the caller in both seats; online games
// wait for a second player and expire if nobody joins within the claim window.
func (s *SessionService) CreateGame(c *fiber.Ctx) error {
	uid, ok := c.Locals("user_id").(string)
	if !ok || uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication is required", "code": "unauthenticated",
		})
	}

	var input createGameInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body", "code": "invalid-argument",
		})
	}

	boardSize, err := strconv.Atoi(input.BoardSize)
	if err != nil || boardSize < 3 || boardSize > 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "board size must be between 3 and 8", "code": "invalid-argument",
		})
	}
	timeLimitMin, err := strconv.Atoi(input.TimeLimit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "time limit must be an integer number of minutes", "code": "invalid-argument",
		})
	}
	delaySec, err := strconv.Atoi(input.Delay)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "delay must be an integer number of seconds", "code": "invalid-argument",
		})
	}

	now := time.Now().UTC()
	timeLimitSec := timeLimitMin * 60

	session := &models.GameSession{
		ID: uuid.NewString(),
		Settings: models.GameSettings{
			BoardSize:          boardSize,
			MaxSummons:         models.MaxSummonsFor(boardSize),
			TimeControlEnabled: input.TimeControlEnabled == "on",
			TimeLimitSec:       timeLimitSec,
			DelaySec:           delaySec,
		},
	}
	if err := session.SetMoves(models.NewInitialMoves(boardSize, timeLimitSec, now)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build initial state"})
	}

	if input.GameType == "offline" {
		// Solo play against the same device: both seats are the caller and
		// the game is live immediately, so the history updates happen now.
		session.Status = models.StatusInProgress
		session.White = uid
		session.Black = uid
	} else {
		session.Status = models.StatusWaiting
		session.Creator = uid
		expiresAt := now.Add(models.WaitingTTL)
		session.ExpiresAt = &expiresAt
		switch input.PlayerColor {
		case models.ColorWhite:
			session.White = uid
			session.Black = models.OpenSeat
		case models.ColorBlack:
			session.White = models.OpenSeat
			session.Black = uid
		default:
			// "random": leave both seats open, the draw happens at join time
			session.White = models.OpenSeat
			session.Black = models.OpenSeat
		}
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		if session.Status == models.StatusInProgress {
			return recordGameStart(tx, uid, session.ID, now)
		}
		return nil
	})
	if err != nil {
		log.Printf("[SESSION] Failed to create game for user %s: %v", uid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create game"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"gameId": session.ID})
}

// JoinGame seats the caller in a waiting session and flips it to in_progress.
// The commit is a single conditional write that re-asserts the status and both
// seats as read, so two racing joins can never both succeed.
func (s *SessionService) JoinGame(c *fiber.Ctx) error {
	uid, ok := c.Locals("user_id").(string)
	if !ok || uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication is required", "code": "unauthenticated",
		})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "gameId is required", "code": "invalid-argument",
		})
	}

	var session models.GameSession
	if err := s.DB.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "the specified game does not exist", "code": "not-found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if session.Status != models.StatusWaiting {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "this game is not waiting for players", "code": "failed-precondition",
		})
	}
	if !session.HasOpenSeat() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "this game is already full", "code": "failed-precondition",
		})
	}
	if session.HasPlayer(uid) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "you have already joined this game", "code": "failed-precondition",
		})
	}

	white, black := resolveSeats(&session, uid)

	now := time.Now().UTC()
	moves, err := session.Moves()
	if err != nil || len(moves) == 0 {
		log.Printf("[SESSION] Corrupt move log on session %s: %v", session.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "corrupt session state"})
	}
	moves[0].Timers = models.ColorCounts{
		White: session.Settings.TimeLimitSec,
		Black: session.Settings.TimeLimitSec,
	}
	moves[0].Timestamp = now
	if err := session.SetMoves(moves); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to encode session state"})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.GameSession{}).
			Where("id = ? AND status = ? AND white = ? AND black = ?",
				session.ID, models.StatusWaiting, session.White, session.Black).
			Updates(map[string]interface{}{
				"status":     models.StatusInProgress,
				"white":      white,
				"black":      black,
				"creator":    "",
				"expires_at": nil,
				"updated_at": now,
				"moves_json": session.MovesJSON,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errLostRace
		}

		// Both participants get a history row and a games_played bump
		if err := recordGameStart(tx, white, session.ID, now); err != nil {
			return err
		}
		return recordGameStart(tx, black, session.ID, now)
	})
	if err != nil {
		if errors.Is(err, errLostRace) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "this game is already full", "code": "failed-precondition",
			})
		}
		log.Printf("[SESSION] Failed to join game %s for user %s: %v", session.ID, uid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join game"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// resolveSeats decides the final seating given the snapshot. When both seats
// are open the creator deferred the color choice, so a fair coin decides.
func resolveSeats(session *models.GameSession, joiner string) (white, black string) {
	if session.White == models.OpenSeat && session.Black == models.OpenSeat {
		if rand.Intn(2) == 0 {
			return session.Creator, joiner
		}
		return joiner, session.Creator
	}
	if session.White == models.OpenSeat {
		return joiner, session.Black
	}
	return session.White, joiner
}

// recordGameStart adds the session to uid's history and bumps the
// games_played counter, creating the profile row on first contact. The
// increment happens in the database so concurrent bumps never lose updates.
func recordGameStart(tx *gorm.DB, uid, sessionID string, now time.Time) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserGame{UserID: uid, SessionID: sessionID, JoinedAt: now}).Error; err != nil {
		return err
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"games_played": gorm.Expr("games_played + ?", 1),
			"updated_at":   now,
		}),
	}).Create(&models.UserProfile{
		ID:             uuid.NewString(),
		ExternalUserID: uid,
		GamesPlayed:    1,
	}).Error
}

// GetGame returns a single session with its move log.
func (s *SessionService) GetGame(c *fiber.Ctx) error {
	id := c.Params("id")

	var session models.GameSession
	if err := s.DB.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "game not found", "code": "not-found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	moves, err := session.Moves()
	if err != nil {
		log.Printf("[SESSION] Corrupt move log on session %s: %v", session.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "corrupt session state"})
	}
	return c.JSON(fiber.Map{"session": session, "moves": moves})
}

// GetOpenGames lists waiting sessions for the lobby, newest first. Sessions
// past their claim window are filtered out even if the reaper has not run yet.
func (s *SessionService) GetOpenGames(c *fiber.Ctx) error {
	var sessions []models.GameSession
	if err := s.DB.
		Where("status = ? AND expires_at > ?", models.StatusWaiting, time.Now().UTC()).
		Order("created_at DESC").
		Limit(50).
		Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch open games"})
	}
	return c.JSON(sessions)
}
