package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"slapcircle-league-system/handlers"
	"slapcircle-league-system/models"
	"slapcircle-league-system/services"
	"slapcircle-league-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
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
		log.Fatal("failed to migrate database:", err)
	}

	playerService := services.NewPlayerService(db)
	eloService := services.NewEloService(db)
	gameService := services.NewGameService(db, eloService)
	roundService := services.NewRoundService(db, gameService)
	leagueService := services.NewLeagueService(db, gameService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Profile sync is optional; the player pool works standalone without it.
	syncServiceURL := os.Getenv("SYNC_SERVICE_URL")
	serviceToken := os.Getenv("LEAGUE_SERVICE_TOKEN")
	if syncServiceURL != "" && serviceToken != "" {
		syncWorker := workers.NewPlayerSyncWorker(db, syncServiceURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  SYNC_SERVICE_URL / LEAGUE_SERVICE_TOKEN not set, player sync disabled")
	}

	setupTTL := 24 * time.Hour
	if raw := os.Getenv("SETUP_GAME_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			setupTTL = parsed
		} else {
			log.Printf("⚠️  Invalid SETUP_GAME_TTL %q, using default %s", raw, setupTTL)
		}
	}
	gameService.StartCleanupScheduler(setupTTL)

	handlers.SetupPlayerRoutes(app, playerService)
	handlers.SetupGameRoutes(app, gameService, roundService)
	handlers.SetupLeagueRoutes(app, leagueService)
	handlers.SetupEloRoutes(app, eloService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
