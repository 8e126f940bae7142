package models

import "time"

// League statuses.
const (
	LeagueStatusSetup     = "setup"
	LeagueStatusActive    = "active"
	LeagueStatusCompleted = "completed"
)

// League groups players across multiple rounds of heats.
type League struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"index"`

	PlayersPerHeat int `json:"players_per_heat" gorm:"not null"`
	SetsPerHeat    int `json:"sets_per_heat" gorm:"not null"`

	Status       string `json:"status" gorm:"default:'setup';index"`
	CurrentRound int    `json:"current_round" gorm:"default:0"`

	CreatedBy string `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Participants []LeagueParticipant `json:"participants,omitempty" gorm:"foreignKey:LeagueID"`
}

// LeagueParticipant carries a player's cross-game tallies inside one league.
// TotalPoints and TotalEliminations are bumped live during heat play;
// GamesPlayed on heat completion.
type LeagueParticipant struct {
	ID       string `json:"id" gorm:"primaryKey"`
	LeagueID string `json:"league_id" gorm:"not null;index"`
	PlayerID string `json:"player_id" gorm:"not null;index"`

	TotalPoints       int `json:"total_points" gorm:"default:0"`
	TotalEliminations int `json:"total_eliminations" gorm:"default:0"`
	GamesPlayed       int `json:"games_played" gorm:"default:0"`

	Player Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
