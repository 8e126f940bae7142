package services

import (
	"fmt"
	"strings"

	"slapcircle-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

var nameCaser = cases.Title(language.English, cases.NoLower)

// normalizePlayerName trims and title-cases a raw display name.
func normalizePlayerName(raw string) string {
	return nameCaser.String(strings.Join(strings.Fields(raw), " "))
}

// initialsFor builds up to two-letter initials from a normalized name.
func initialsFor(name string) string {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		r := []rune(parts[0])
		return strings.ToUpper(string(r[0]))
	default:
		first := []rune(parts[0])
		last := []rune(parts[len(parts)-1])
		return strings.ToUpper(string(first[0]) + string(last[0]))
	}
}

// createPlayer inserts a new player with zeroed lifetime totals.
func (s *PlayerService) createPlayer(name, createdBy string) (*models.Player, error) {
	name = normalizePlayerName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidation)
	}
	player := &models.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Initials:  initialsFor(name),
		CreatedBy: createdBy,
	}
	if err := s.DB.Create(player).Error; err != nil {
		return nil, err
	}
	return player, nil
}

// applyPlayerDeltas adds deltas to a player's lifetime totals, flooring each
// counter at zero so reversions never drive totals negative.
func applyPlayerDeltas(tx *gorm.DB, playerID string, wins, points, eliminations, gamesPlayed int) error {
	var player models.Player
	if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
		}
		return err
	}
	return tx.Model(&player).Updates(map[string]interface{}{
		"total_wins":         floorZero(player.TotalWins + wins),
		"total_points":       floorZero(player.TotalPoints + points),
		"total_eliminations": floorZero(player.TotalEliminations + eliminations),
		"total_games_played": floorZero(player.TotalGamesPlayed + gamesPlayed),
	}).Error
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (s *PlayerService) CreatePlayer(c *fiber.Ctx) error {
	type Req struct {
		Name string `json:"name" validate:"required"`
	}
	userID, err := callerID(c)
	if err != nil {
		return HTTPError(c, err)
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	player, err := s.createPlayer(req.Name, userID)
	if err != nil {
		return HTTPError(c, err)
	}
	return c.Status(201).JSON(player)
}

func (s *PlayerService) ListPlayers(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return HTTPError(c, err)
	}
	var players []models.Player
	if err := s.DB.Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&players).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch players"})
	}
	return c.JSON(players)
}

func (s *PlayerService) GetPlayer(c *fiber.Ctx) error {
	var player models.Player
	if err := s.DB.First(&player, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return HTTPError(c, fmt.Errorf("%w: player", ErrNotFound))
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(player)
}
