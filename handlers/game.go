// handlers/game.go
package handlers

import (
	"slapcircle-league-system/middleware"
	"slapcircle-league-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGameRoutes(app *fiber.App, gameService *services.GameService, roundService *services.RoundService) {
	// 🔓 Public routes
	app.Get("/games/:id", gameService.GetGame)
	app.Get("/games/:id/rounds/current", roundService.GetCurrentRound)

	// 🔐 Secured routes — game lifecycle and live play both mutate state
	auth := middleware.UserContextMiddleware()

	app.Get("/games", auth, gameService.ListGames)
	app.Post("/games", auth, gameService.CreateGame)
	app.Post("/games/:id/start", auth, gameService.StartGame)
	app.Post("/games/:id/complete", auth, gameService.CompleteGame)
	app.Post("/games/:id/cancel", auth, gameService.CancelGame)

	app.Post("/games/:id/rounds", auth, roundService.StartRound)
	app.Post("/games/:game_id/rounds/:round_id/eliminations", auth, roundService.EliminatePlayer)
	app.Post("/rounds/:round_id/eliminations/revert", auth, roundService.RevertLastElimination)
}
