package services

import (
	"errors"
	"fmt"
	"sort"

	"slapcircle-league-system/engine"
	"slapcircle-league-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// LeagueService manages leagues and heat generation. Heats are regular games
// created through GameService with league linkage set, so heat play reuses the
// whole round machinery.
type LeagueService struct {
	DB    *gorm.DB
	Games *GameService
}

func NewLeagueService(db *gorm.DB, games *GameService) *LeagueService {
	return &LeagueService{DB: db, Games: games}
}

// createLeague validates the heat configuration and registers every player as
// a league participant with zeroed tallies.
func (s *LeagueService) createLeague(name string, playersPerHeat, setsPerHeat int, playerIDs []string, createdBy string) (*models.League, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if playersPerHeat < 2 {
		return nil, fmt.Errorf("%w: playersPerHeat must be at least 2", ErrValidation)
	}
	if setsPerHeat < 1 {
		return nil, fmt.Errorf("%w: setsPerHeat must be at least 1", ErrValidation)
	}
	if len(playerIDs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 players", ErrValidation)
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate player %s", ErrValidation, id)
		}
		seen[id] = true
	}

	var league *models.League
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Player{}).Where("id IN ?", playerIDs).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(playerIDs) {
			return fmt.Errorf("%w: one or more players do not exist", ErrValidation)
		}

		league = &models.League{
			ID:             uuid.NewString(),
			Name:           name,
			Slug:           slug.Make(name),
			PlayersPerHeat: playersPerHeat,
			SetsPerHeat:    setsPerHeat,
			Status:         models.LeagueStatusSetup,
			CurrentRound:   0,
			CreatedBy:      createdBy,
		}
		if err := tx.Create(league).Error; err != nil {
			return err
		}
		for _, playerID := range playerIDs {
			participant := models.LeagueParticipant{
				ID:       uuid.NewString(),
				LeagueID: league.ID,
				PlayerID: playerID,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return league, nil
}

// generateHeats shuffles the league's players and chunks them into heats of
// PlayersPerHeat. A leftover group smaller than 2 is merged into the last heat
// instead of forming an unplayable one. Each heat is a fixedSets game that
// starts active immediately.
func (s *LeagueService) generateHeats(leagueID string) ([]models.Game, error) {
	var heats []models.Game
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var league models.League
		if err := tx.First(&league, "id = ?", leagueID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: league", ErrNotFound)
			}
			return err
		}
		if league.Status == models.LeagueStatusCompleted {
			return fmt.Errorf("%w: league is completed", ErrInvalidState)
		}

		var openHeats int64
		if err := tx.Model(&models.Game{}).
			Where("league_id = ? AND status IN ?", leagueID,
				[]string{models.GameStatusSetup, models.GameStatusActive}).
			Count(&openHeats).Error; err != nil {
			return err
		}
		if openHeats > 0 {
			return fmt.Errorf("%w: previous round still has open heats", ErrInvalidState)
		}

		var participants []models.LeagueParticipant
		if err := tx.Where("league_id = ?", leagueID).Find(&participants).Error; err != nil {
			return err
		}
		if len(participants) < 2 {
			return fmt.Errorf("%w: need at least 2 players to generate heats", ErrInvalidState)
		}

		playerIDs := make([]string, 0, len(participants))
		for _, p := range participants {
			playerIDs = append(playerIDs, p.PlayerID)
		}
		shuffled := engine.Shuffle(playerIDs)

		var groups [][]string
		for i := 0; i < len(shuffled); i += league.PlayersPerHeat {
			end := i + league.PlayersPerHeat
			if end > len(shuffled) {
				end = len(shuffled)
			}
			groups = append(groups, shuffled[i:end])
		}
		if len(groups) > 1 && len(groups[len(groups)-1]) < 2 {
			last := len(groups) - 1
			groups[last-1] = append(groups[last-1], groups[last]...)
			groups = groups[:last]
		}

		round := league.CurrentRound + 1
		for i, group := range groups {
			heat, err := s.Games.createGame(tx, createGameParams{
				Name:                 fmt.Sprintf("%s - Round %d Heat %d", league.Name, round, i+1),
				GameMode:             engine.GameModeFixedSets,
				SetsPerGame:          league.SetsPerHeat,
				PlayerIDs:            group,
				LeagueID:             &league.ID,
				LeagueRound:          round,
				LeagueHeatNumber:     i + 1,
				TrackLeagueAnalytics: true,
				Status:               models.GameStatusActive,
				CreatedBy:            league.CreatedBy,
			})
			if err != nil {
				return err
			}
			heats = append(heats, *heat)
		}

		return tx.Model(&league).Updates(map[string]interface{}{
			"current_round": round,
			"status":        models.LeagueStatusActive,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return heats, nil
}

// leagueTable returns the league's standings: points descending, eliminations
// as the tiebreak.
func (s *LeagueService) leagueTable(leagueID string) ([]models.LeagueParticipant, error) {
	var league models.League
	if err := s.DB.First(&league, "id = ?", leagueID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: league", ErrNotFound)
		}
		return nil, err
	}
	var participants []models.LeagueParticipant
	if err := s.DB.Preload("Player").
		Where("league_id = ?", leagueID).
		Find(&participants).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].TotalPoints != participants[j].TotalPoints {
			return participants[i].TotalPoints > participants[j].TotalPoints
		}
		return participants[i].TotalEliminations > participants[j].TotalEliminations
	})
	return participants, nil
}

// leagueHeats lists a league's heats, optionally filtered to one round.
func (s *LeagueService) leagueHeats(leagueID string, round int) ([]models.Game, error) {
	q := s.DB.Preload("Participants.Player").Where("league_id = ?", leagueID)
	if round > 0 {
		q = q.Where("league_round = ?", round)
	}
	var heats []models.Game
	if err := q.Order("league_round ASC, league_heat_number ASC").Find(&heats).Error; err != nil {
		return nil, err
	}
	return heats, nil
}

func (s *LeagueService) CreateLeague(c *fiber.Ctx) error {
	type Req struct {
		Name           string   `json:"name" validate:"required"`
		PlayersPerHeat int      `json:"players_per_heat" validate:"required"`
		SetsPerHeat    int      `json:"sets_per_heat" validate:"required"`
		PlayerIDs      []string `json:"player_ids" validate:"required"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	userID, err := callerID(c)
	if err != nil {
		return HTTPError(c, err)
	}
	league, err := s.createLeague(req.Name, req.PlayersPerHeat, req.SetsPerHeat, req.PlayerIDs, userID)
	if err != nil {
		return HTTPError(c, err)
	}
	return c.Status(201).JSON(league)
}

func (s *LeagueService) GenerateHeats(c *fiber.Ctx) error {
	heats, err := s.generateHeats(c.Params("id"))
	if err != nil {
		return HTTPError(c, err)
	}
	return c.Status(201).JSON(heats)
}

func (s *LeagueService) GetLeague(c *fiber.Ctx) error {
	var league models.League
	err := s.DB.Preload("Participants.Player").First(&league, "id = ?", c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "League not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(league)
}

func (s *LeagueService) ListLeagues(c *fiber.Ctx) error {
	var leagues []models.League
	q := s.DB.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&leagues).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(leagues)
}

func (s *LeagueService) GetLeagueTable(c *fiber.Ctx) error {
	table, err := s.leagueTable(c.Params("id"))
	if err != nil {
		return HTTPError(c, err)
	}
	return c.JSON(table)
}

func (s *LeagueService) GetHeats(c *fiber.Ctx) error {
	heats, err := s.leagueHeats(c.Params("id"), c.QueryInt("round"))
	if err != nil {
		return HTTPError(c, err)
	}
	return c.JSON(heats)
}
