// handlers/profile.go
package handlers

import (
	"game-session-system/middleware"
	"game-session-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profileService *services.ProfileService) {
	secured := app.Group("/me", middleware.UserContextMiddleware())

	secured.Get("/profile", profileService.GetMyProfile)
	secured.Get("/games", profileService.GetMyGames)
	secured.Get("/invitations", profileService.GetMyInvitations)
}
