// handlers/session.go
package handlers

import (
	"game-session-system/middleware"
	"game-session-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoutes(app *fiber.App, sessionService *services.SessionService) {
	// Public routes — no user context, but still behind Gateway auth
	app.Get("/games/open", sessionService.GetOpenGames)
	app.Get("/games/:id", sessionService.GetGame)

	// Secured routes — require user context forwarded by the Gateway
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/games", sessionService.CreateGame)
	secured.Post("/games/:id/join", sessionService.JoinGame)
}
