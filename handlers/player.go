// handlers/player.go
package handlers

import (
	"slapcircle-league-system/middleware"
	"slapcircle-league-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app *fiber.App, playerService *services.PlayerService) {
	// 🔓 Public routes
	app.Get("/players/:id", playerService.GetPlayer)

	// 🔐 Secured routes — require user context from the gateway. The
	// middleware is attached per route; a "/"-prefixed group would swallow
	// every route registered after it.
	auth := middleware.UserContextMiddleware()

	app.Get("/players", auth, playerService.ListPlayers)
	app.Post("/players", auth, playerService.CreatePlayer)
}
