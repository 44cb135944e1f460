package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"game-session-system/middleware"
	"game-session-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.GameSession{},
		&models.UserProfile{},
		&models.UserGame{},
		&models.Invitation{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestApp(t *testing.T) (*SessionService, *fiber.App) {
	t.Helper()
	svc := NewSessionService(newTestDB(t))

	app := fiber.New()
	app.Get("/games/open", svc.GetOpenGames)
	app.Get("/games/:id", svc.GetGame)
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/games", svc.CreateGame)
	secured.Post("/games/:id/join", svc.JoinGame)

	return svc, app
}

// doJSON issues a request against the app with uid as the gateway-forwarded
// identity (empty uid omits the header) and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path, uid string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response for %s %s: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

// defaultSettings is a valid online createGame payload; tests override fields.
func defaultSettings(overrides map[string]string) map[string]string {
	settings := map[string]string{
		"gameType":             "online",
		"boardSize":            "6",
		"timeLimit":            "10",
		"delay":                "5",
		"time-control-enabled": "on",
		"playerColor":          "white",
	}
	for k, v := range overrides {
		settings[k] = v
	}
	return settings
}

// createTestGame creates a game through the handler and returns its id.
func createTestGame(t *testing.T, app *fiber.App, uid string, overrides map[string]string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/games", uid, defaultSettings(overrides))
	if status != http.StatusCreated {
		t.Fatalf("createGame returned status %d: %v", status, body)
	}
	id, ok := body["gameId"].(string)
	if !ok || id == "" {
		t.Fatalf("createGame returned no gameId: %v", body)
	}
	return id
}

func loadSession(t *testing.T, db *gorm.DB, id string) *models.GameSession {
	t.Helper()
	var session models.GameSession
	if err := db.First(&session, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load session %s: %v", id, err)
	}
	return &session
}
