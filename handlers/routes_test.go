package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"slapcircle-league-system/models"
	"slapcircle-league-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testApp wires every route group in the same order as main.go against an
// in-memory store.
func testApp(t *testing.T) *fiber.App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Player{},
		&models.Game{},
		&models.GameParticipant{},
		&models.Round{},
		&models.Elimination{},
		&models.League{},
		&models.LeagueParticipant{},
		&models.GameAnalytics{},
		&models.LeagueAnalytics{},
		&models.PlayerEloRating{},
		&models.EloHistory{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	playerService := services.NewPlayerService(db)
	eloService := services.NewEloService(db)
	gameService := services.NewGameService(db, eloService)
	roundService := services.NewRoundService(db, gameService)
	leagueService := services.NewLeagueService(db, gameService)

	app := fiber.New()
	SetupPlayerRoutes(app, playerService)
	SetupGameRoutes(app, gameService, roundService)
	SetupLeagueRoutes(app, leagueService)
	SetupEloRoutes(app, eloService)
	return app
}

// Read endpoints must answer without a user context, no matter how early or
// late their route group is registered.
func TestPublicRoutesNeedNoUserContext(t *testing.T) {
	app := testApp(t)

	tests := []struct {
		path string
		want int
	}{
		{path: "/players/nope", want: http.StatusNotFound},
		{path: "/games/nope", want: http.StatusNotFound},
		{path: "/games/nope/rounds/current", want: http.StatusOK},
		{path: "/leagues", want: http.StatusOK},
		{path: "/leagues/nope", want: http.StatusNotFound},
		{path: "/leagues/nope/table", want: http.StatusNotFound},
		{path: "/leagues/nope/heats", want: http.StatusOK},
		{path: "/elo/leaderboard", want: http.StatusOK},
		{path: "/elo/players/nope", want: http.StatusOK}, // unrated resolves to null, not 404
		{path: "/elo/players/nope/history", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode == http.StatusUnauthorized {
				t.Fatalf("public endpoint %s demands a user context", tt.path)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestSecuredRoutesRequireUserContext(t *testing.T) {
	app := testApp(t)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/players"},
		{method: http.MethodPost, path: "/players"},
		{method: http.MethodGet, path: "/games"},
		{method: http.MethodPost, path: "/games"},
		{method: http.MethodPost, path: "/games/nope/start"},
		{method: http.MethodPost, path: "/games/nope/rounds"},
		{method: http.MethodPost, path: "/rounds/nope/eliminations/revert"},
		{method: http.MethodPost, path: "/leagues"},
		{method: http.MethodPost, path: "/leagues/nope/heats"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401 without user context, got %d", resp.StatusCode)
			}
		})
	}
}

func TestUserContextUnlocksSecuredRoute(t *testing.T) {
	app := testApp(t)

	req, _ := http.NewRequest(http.MethodPost, "/players", strings.NewReader(`{"name":"Alice"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 with user context, got %d", resp.StatusCode)
	}
}
