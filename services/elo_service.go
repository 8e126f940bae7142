package services

import (
	"fmt"
	"time"

	"slapcircle-league-system/engine"
	"slapcircle-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EloService maintains per-player ratings using a pairwise multiplayer
// extension of the classic ELO formula (math in the engine package).
type EloService struct {
	DB *gorm.DB
}

func NewEloService(db *gorm.DB) *EloService {
	return &EloService{DB: db}
}

// getOrCreateRating lazily creates a rating row at the default 1200.
func getOrCreateRating(tx *gorm.DB, playerID, createdBy string) (*models.PlayerEloRating, error) {
	var rating models.PlayerEloRating
	err := tx.Where("player_id = ?", playerID).First(&rating).Error
	if err == gorm.ErrRecordNotFound {
		rating = models.PlayerEloRating{
			ID:            uuid.NewString(),
			PlayerID:      playerID,
			CurrentRating: engine.DefaultEloRating,
			GamesPlayed:   0,
			PeakRating:    engine.DefaultEloRating,
			LastUpdated:   time.Now(),
			CreatedBy:     createdBy,
		}
		if err := tx.Create(&rating).Error; err != nil {
			return nil, err
		}
		return &rating, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// applyGameResult snapshots all participant ratings, computes the pairwise
// changes for a single-winner game and persists new ratings plus history rows.
func (s *EloService) applyGameResult(tx *gorm.DB, gameID, winnerID string, participantIDs []string, createdBy string) error {
	ratings := make(map[string]int, len(participantIDs))
	rows := make(map[string]*models.PlayerEloRating, len(participantIDs))
	for _, playerID := range participantIDs {
		rating, err := getOrCreateRating(tx, playerID, createdBy)
		if err != nil {
			return err
		}
		ratings[playerID] = rating.CurrentRating
		rows[playerID] = rating
	}

	if _, ok := ratings[winnerID]; !ok {
		return fmt.Errorf("%w: winner %s is not a participant", ErrInvalidState, winnerID)
	}

	changes := engine.MultiplayerChanges(ratings, winnerID)
	for playerID, change := range changes {
		row := rows[playerID]
		peak := row.PeakRating
		if change.After > peak {
			peak = change.After
		}
		if err := tx.Model(row).Updates(map[string]interface{}{
			"current_rating": change.After,
			"games_played":   row.GamesPlayed + 1,
			"peak_rating":    peak,
			"last_updated":   time.Now(),
		}).Error; err != nil {
			return err
		}
		history := models.EloHistory{
			ID:           uuid.NewString(),
			GameID:       gameID,
			PlayerID:     playerID,
			RatingBefore: change.Before,
			RatingAfter:  change.After,
			RatingChange: change.Change,
			CreatedBy:    createdBy,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
	}
	return nil
}

// playerRating returns the rating row, or nil when the player has never been rated.
func (s *EloService) playerRating(playerID string) (*models.PlayerEloRating, error) {
	var rating models.PlayerEloRating
	err := s.DB.Where("player_id = ?", playerID).First(&rating).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// leaderboard returns all ratings sorted by current rating, highest first,
// with player display data joined in.
func (s *EloService) leaderboard() ([]models.PlayerEloRating, error) {
	var ratings []models.PlayerEloRating
	if err := s.DB.Order("current_rating DESC").Find(&ratings).Error; err != nil {
		return nil, err
	}
	for i := range ratings {
		var player models.Player
		if err := s.DB.First(&player, "id = ?", ratings[i].PlayerID).Error; err == nil {
			ratings[i].PlayerName = player.Name
			ratings[i].PlayerInitials = player.Initials
		} else {
			ratings[i].PlayerName = "Unknown"
		}
	}
	return ratings, nil
}

// playerHistory returns the player's most recent rating updates, capped at 50.
func (s *EloService) playerHistory(playerID string) ([]models.EloHistory, error) {
	var history []models.EloHistory
	err := s.DB.Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(50).
		Find(&history).Error
	return history, err
}

func (s *EloService) GetPlayerEloRating(c *fiber.Ctx) error {
	rating, err := s.playerRating(c.Params("player_id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if rating == nil {
		return c.JSON(nil)
	}
	return c.JSON(rating)
}

func (s *EloService) GetEloLeaderboard(c *fiber.Ctx) error {
	ratings, err := s.leaderboard()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}
	return c.JSON(ratings)
}

func (s *EloService) GetPlayerEloHistory(c *fiber.Ctx) error {
	history, err := s.playerHistory(c.Params("player_id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch history"})
	}
	return c.JSON(history)
}
