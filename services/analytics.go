package services

import (
	"fmt"

	"slapcircle-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// statDeltas is one participant's contribution for a completed game.
type statDeltas struct {
	Points       int
	Eliminations int
	Wins         int
	GamesPlayed  int
}

// upsertGameAnalytics creates the per-(game,player) rollup row if absent,
// otherwise adds the deltas onto the existing counters.
func upsertGameAnalytics(tx *gorm.DB, gameID, playerID string, d statDeltas) error {
	var row models.GameAnalytics
	err := tx.Where("game_id = ? AND player_id = ?", gameID, playerID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		row = models.GameAnalytics{
			ID:           uuid.NewString(),
			GameID:       gameID,
			PlayerID:     playerID,
			Points:       floorZero(d.Points),
			Eliminations: floorZero(d.Eliminations),
			Wins:         floorZero(d.Wins),
			GamesPlayed:  floorZero(d.GamesPlayed),
		}
		return tx.Create(&row).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&row).Updates(map[string]interface{}{
		"points":       floorZero(row.Points + d.Points),
		"eliminations": floorZero(row.Eliminations + d.Eliminations),
		"wins":         floorZero(row.Wins + d.Wins),
		"games_played": floorZero(row.GamesPlayed + d.GamesPlayed),
	}).Error
}

// upsertLeagueAnalytics mirrors upsertGameAnalytics for the league rollup.
func upsertLeagueAnalytics(tx *gorm.DB, leagueID, gameID, playerID string, d statDeltas) error {
	var row models.LeagueAnalytics
	err := tx.Where("league_id = ? AND game_id = ? AND player_id = ?", leagueID, gameID, playerID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		row = models.LeagueAnalytics{
			ID:           uuid.NewString(),
			LeagueID:     leagueID,
			GameID:       gameID,
			PlayerID:     playerID,
			Points:       floorZero(d.Points),
			Eliminations: floorZero(d.Eliminations),
			Wins:         floorZero(d.Wins),
			GamesPlayed:  floorZero(d.GamesPlayed),
		}
		return tx.Create(&row).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&row).Updates(map[string]interface{}{
		"points":       floorZero(row.Points + d.Points),
		"eliminations": floorZero(row.Eliminations + d.Eliminations),
		"wins":         floorZero(row.Wins + d.Wins),
		"games_played": floorZero(row.GamesPlayed + d.GamesPlayed),
	}).Error
}

// applyLeagueParticipantDeltas adds deltas to one league-participant row,
// flooring every counter at zero.
func applyLeagueParticipantDeltas(tx *gorm.DB, leagueID, playerID string, points, eliminations, gamesPlayed int) error {
	var participant models.LeagueParticipant
	err := tx.Where("league_id = ? AND player_id = ?", leagueID, playerID).First(&participant).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("%w: league participant %s", ErrNotFound, playerID)
	}
	if err != nil {
		return err
	}
	return tx.Model(&participant).Updates(map[string]interface{}{
		"total_points":       floorZero(participant.TotalPoints + points),
		"total_eliminations": floorZero(participant.TotalEliminations + eliminations),
		"games_played":       floorZero(participant.GamesPlayed + gamesPlayed),
	}).Error
}

// eliminationTallies counts non-reverted eliminations per eliminator across a game.
func eliminationTallies(tx *gorm.DB, gameID string) (map[string]int, error) {
	var eliminations []models.Elimination
	if err := tx.Where("game_id = ? AND is_reverted = ?", gameID, false).
		Find(&eliminations).Error; err != nil {
		return nil, err
	}
	tallies := make(map[string]int, len(eliminations))
	for _, e := range eliminations {
		tallies[e.EliminatorPlayerID]++
	}
	return tallies, nil
}
