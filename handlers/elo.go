// handlers/elo.go
package handlers

import (
	"slapcircle-league-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEloRoutes(app *fiber.App, eloService *services.EloService) {
	// Ratings are read-only over HTTP; they change only through game completion.
	app.Get("/elo/leaderboard", eloService.GetEloLeaderboard)
	app.Get("/elo/players/:player_id", eloService.GetPlayerEloRating)
	app.Get("/elo/players/:player_id/history", eloService.GetPlayerEloHistory)
}
