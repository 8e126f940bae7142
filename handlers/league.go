// handlers/league.go
package handlers

import (
	"slapcircle-league-system/middleware"
	"slapcircle-league-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeagueRoutes(app *fiber.App, leagueService *services.LeagueService) {
	// 🔓 Public routes
	app.Get("/leagues", leagueService.ListLeagues)
	app.Get("/leagues/:id", leagueService.GetLeague)
	app.Get("/leagues/:id/table", leagueService.GetLeagueTable)
	app.Get("/leagues/:id/heats", leagueService.GetHeats)

	// 🔐 Secured routes
	auth := middleware.UserContextMiddleware()

	app.Post("/leagues", auth, leagueService.CreateLeague)
	app.Post("/leagues/:id/heats", auth, leagueService.GenerateHeats)
}
