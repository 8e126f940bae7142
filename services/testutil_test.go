package services

import (
	"fmt"
	"testing"

	"slapcircle-league-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an isolated in-memory database and migrates the full schema.
func testDB(t *testing.T) *gorm.DB {
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
	return db
}

// seedPlayers inserts named players and returns their IDs in the same order.
func seedPlayers(t *testing.T, db *gorm.DB, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for _, name := range names {
		player := models.Player{
			ID:        uuid.NewString(),
			Name:      name,
			Initials:  initialsFor(name),
			CreatedBy: "test-user",
		}
		if err := db.Create(&player).Error; err != nil {
			t.Fatalf("failed to seed player %s: %v", name, err)
		}
		ids = append(ids, player.ID)
	}
	return ids
}

// fullStack wires the service chain against one test database.
func fullStack(db *gorm.DB) (*GameService, *RoundService, *LeagueService, *EloService) {
	elo := NewEloService(db)
	games := NewGameService(db, elo)
	rounds := NewRoundService(db, games)
	leagues := NewLeagueService(db, games)
	return games, rounds, leagues, elo
}

// activeRound fetches the single active round of a game.
func activeRound(t *testing.T, db *gorm.DB, gameID string) *models.Round {
	t.Helper()
	var round models.Round
	if err := db.Where("game_id = ? AND status = ?", gameID, models.RoundStatusActive).
		First(&round).Error; err != nil {
		t.Fatalf("no active round for game %s: %v", gameID, err)
	}
	return &round
}
