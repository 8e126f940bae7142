package services

import (
	"fmt"
	"log"

	"slapcircle-league-system/engine"
	"slapcircle-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type GameService struct {
	DB  *gorm.DB
	Elo *EloService
}

func NewGameService(db *gorm.DB, elo *EloService) *GameService {
	return &GameService{DB: db, Elo: elo}
}

// createGameParams is the validated input for createGame; league heats come
// through the same path with the league fields set.
type createGameParams struct {
	Name                 string
	GameMode             string
	WinningPoints        int
	SetsPerGame          int
	PlayerIDs            []string
	LeagueID             *string
	LeagueRound          int
	LeagueHeatNumber     int
	TrackAnalytics       bool
	TrackLeagueAnalytics bool
	Status               string
	CreatedBy            string
}

// createGame validates mode configuration and player count, then inserts the
// game and its participants at zero points.
func (s *GameService) createGame(tx *gorm.DB, p createGameParams) (*models.Game, error) {
	switch p.GameMode {
	case engine.GameModeFirstToX:
		if p.WinningPoints <= 0 {
			return nil, fmt.Errorf("%w: winningPoints is required for firstToX games", ErrValidation)
		}
		p.SetsPerGame = 0
	case engine.GameModeFixedSets:
		if p.SetsPerGame <= 0 {
			return nil, fmt.Errorf("%w: setsPerGame is required for fixedSets games", ErrValidation)
		}
		p.WinningPoints = 0
	default:
		return nil, fmt.Errorf("%w: gameMode must be firstToX or fixedSets", ErrValidation)
	}
	if len(p.PlayerIDs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players", ErrValidation)
	}
	seen := make(map[string]bool, len(p.PlayerIDs))
	for _, playerID := range p.PlayerIDs {
		if seen[playerID] {
			return nil, fmt.Errorf("%w: duplicate player %s", ErrValidation, playerID)
		}
		seen[playerID] = true
		var player models.Player
		if err := tx.First(&player, "id = ?", playerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
			}
			return nil, err
		}
	}
	if p.Status == "" {
		p.Status = models.GameStatusSetup
	}

	game := &models.Game{
		ID:                   uuid.NewString(),
		Name:                 p.Name,
		Slug:                 slug.Make(p.Name),
		GameMode:             p.GameMode,
		WinningPoints:        p.WinningPoints,
		SetsPerGame:          p.SetsPerGame,
		Status:               p.Status,
		LeagueID:             p.LeagueID,
		LeagueRound:          p.LeagueRound,
		LeagueHeatNumber:     p.LeagueHeatNumber,
		TrackAnalytics:       p.TrackAnalytics,
		TrackLeagueAnalytics: p.TrackLeagueAnalytics,
		CreatedBy:            p.CreatedBy,
	}
	if err := tx.Create(game).Error; err != nil {
		return nil, err
	}
	for _, playerID := range p.PlayerIDs {
		participant := models.GameParticipant{
			ID:            uuid.NewString(),
			GameID:        game.ID,
			PlayerID:      playerID,
			CurrentPoints: 0,
			IsEliminated:  false,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return nil, err
		}
	}
	return game, nil
}

// completeGameTx marks the game completed and runs the scoring cascade in the
// caller's transaction: per-game analytics, global player totals, league
// rollups, and for standalone multiplayer games the ELO update.
func (s *GameService) completeGameTx(tx *gorm.DB, game *models.Game, winnerID string) error {
	if game.Status == models.GameStatusCompleted {
		return fmt.Errorf("%w: game already completed", ErrInvalidState)
	}

	var participants []models.GameParticipant
	if err := tx.Where("game_id = ?", game.ID).Find(&participants).Error; err != nil {
		return err
	}
	winnerIsParticipant := false
	for _, p := range participants {
		if p.PlayerID == winnerID {
			winnerIsParticipant = true
			break
		}
	}
	if !winnerIsParticipant {
		return fmt.Errorf("%w: winner is not a participant of this game", ErrValidation)
	}

	if err := tx.Model(game).Updates(map[string]interface{}{
		"status":    models.GameStatusCompleted,
		"winner_id": winnerID,
	}).Error; err != nil {
		return err
	}
	game.Status = models.GameStatusCompleted
	game.WinnerID = &winnerID

	tallies, err := eliminationTallies(tx, game.ID)
	if err != nil {
		return err
	}

	for _, participant := range participants {
		wins := 0
		if participant.PlayerID == winnerID {
			wins = 1
		}
		deltas := statDeltas{
			Points:       participant.CurrentPoints,
			Eliminations: tallies[participant.PlayerID],
			Wins:         wins,
			GamesPlayed:  1,
		}

		if game.TrackAnalytics {
			if err := upsertGameAnalytics(tx, game.ID, participant.PlayerID, deltas); err != nil {
				return err
			}
			if err := applyPlayerDeltas(tx, participant.PlayerID,
				deltas.Wins, deltas.Points, deltas.Eliminations, deltas.GamesPlayed); err != nil {
				return err
			}
		}

		if game.TrackLeagueAnalytics && game.LeagueID != nil {
			if err := upsertLeagueAnalytics(tx, *game.LeagueID, game.ID, participant.PlayerID, deltas); err != nil {
				return err
			}
			// League points and eliminations are credited live during heat
			// play; only the games-played counter moves on completion.
			if err := applyLeagueParticipantDeltas(tx, *game.LeagueID, participant.PlayerID, 0, 0, 1); err != nil {
				return err
			}
		}
	}

	// Ratings are only kept for standalone multiplayer games; league heats
	// do not move ELO.
	if game.LeagueID == nil && len(participants) >= 2 {
		playerIDs := make([]string, 0, len(participants))
		for _, p := range participants {
			playerIDs = append(playerIDs, p.PlayerID)
		}
		if err := s.Elo.applyGameResult(tx, game.ID, winnerID, playerIDs, game.CreatedBy); err != nil {
			return err
		}
	}

	log.Printf("✅ Game %s completed, winner %s", game.ID, winnerID)
	return nil
}

// completeGame is the transactional wrapper used by the public endpoint.
func (s *GameService) completeGame(gameID, winnerID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: game", ErrNotFound)
			}
			return err
		}
		return s.completeGameTx(tx, &game, winnerID)
	})
}

// startGame moves a game from setup to active.
func (s *GameService) startGame(gameID string) error {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", gameID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: game", ErrNotFound)
		}
		return err
	}
	if game.Status != models.GameStatusSetup {
		return fmt.Errorf("%w: game is not in setup", ErrInvalidState)
	}
	return s.DB.Model(&game).Update("status", models.GameStatusActive).Error
}

// cancelGame abandons a game that never finished.
func (s *GameService) cancelGame(gameID string) error {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", gameID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: game", ErrNotFound)
		}
		return err
	}
	if game.Status == models.GameStatusCompleted || game.Status == models.GameStatusCancelled {
		return fmt.Errorf("%w: game already %s", ErrInvalidState, game.Status)
	}
	return s.DB.Model(&game).Update("status", models.GameStatusCancelled).Error
}

func (s *GameService) CreateGame(c *fiber.Ctx) error {
	type Req struct {
		Name           string   `json:"name" validate:"required"`
		GameMode       string   `json:"game_mode" validate:"oneof=firstToX fixedSets"`
		WinningPoints  int      `json:"winning_points,omitempty"`
		SetsPerGame    int      `json:"sets_per_game,omitempty"`
		PlayerIDs      []string `json:"player_ids" validate:"required"`
		TrackAnalytics *bool    `json:"track_analytics,omitempty"`
	}
	userID, err := callerID(c)
	if err != nil {
		return HTTPError(c, err)
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name is required"})
	}

	trackAnalytics := true
	if req.TrackAnalytics != nil {
		trackAnalytics = *req.TrackAnalytics
	}

	var game *models.Game
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		game, err = s.createGame(tx, createGameParams{
			Name:           req.Name,
			GameMode:       req.GameMode,
			WinningPoints:  req.WinningPoints,
			SetsPerGame:    req.SetsPerGame,
			PlayerIDs:      req.PlayerIDs,
			TrackAnalytics: trackAnalytics,
			CreatedBy:      userID,
		})
		return err
	})
	if err != nil {
		return HTTPError(c, err)
	}
	return c.Status(201).JSON(game)
}

func (s *GameService) StartGame(c *fiber.Ctx) error {
	if err := s.startGame(c.Params("id")); err != nil {
		return HTTPError(c, err)
	}
	return c.JSON(fiber.Map{"message": "game started"})
}

func (s *GameService) CompleteGame(c *fiber.Ctx) error {
	type Req struct {
		WinnerID string `json:"winner_id" validate:"required"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.WinnerID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "winner_id is required"})
	}
	if err := s.completeGame(c.Params("id"), req.WinnerID); err != nil {
		return HTTPError(c, err)
	}
	return c.JSON(fiber.Map{"message": "game completed"})
}

func (s *GameService) CancelGame(c *fiber.Ctx) error {
	if err := s.cancelGame(c.Params("id")); err != nil {
		return HTTPError(c, err)
	}
	return c.JSON(fiber.Map{"message": "game cancelled"})
}

func (s *GameService) GetGame(c *fiber.Ctx) error {
	var game models.Game
	if err := s.DB.Preload("Participants.Player").
		First(&game, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return HTTPError(c, fmt.Errorf("%w: game", ErrNotFound))
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	tallies, err := eliminationTallies(s.DB, game.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	type participantView struct {
		models.GameParticipant
		TotalEliminations int `json:"total_eliminations"`
	}
	views := make([]participantView, 0, len(game.Participants))
	for _, p := range game.Participants {
		views = append(views, participantView{
			GameParticipant:   p,
			TotalEliminations: tallies[p.PlayerID],
		})
	}
	return c.JSON(fiber.Map{
		"game":         game,
		"participants": views,
	})
}

func (s *GameService) ListGames(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return HTTPError(c, err)
	}
	var games []models.Game
	if err := s.DB.Where("created_by = ?", userID).
		Order("created_at DESC").
		Find(&games).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch games"})
	}
	return c.JSON(games)
}
