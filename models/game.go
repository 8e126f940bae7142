package models

import "time"

// Game statuses. A game moves setup → active → completed; cancelled is a
// terminal state the janitor applies to abandoned setups. Completed games can
// be reopened to active by reverting their final elimination.
const (
	GameStatusSetup     = "setup"
	GameStatusActive    = "active"
	GameStatusCompleted = "completed"
	GameStatusCancelled = "cancelled"
)

// Game is one match instance. League heats are plain games carrying league
// linkage fields, so a single round state machine drives both flows.
type Game struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"index"`

	// Exactly one of WinningPoints/SetsPerGame is meaningful, matching GameMode.
	GameMode      string `json:"game_mode" gorm:"not null"`
	WinningPoints int    `json:"winning_points,omitempty" gorm:"default:0"`
	SetsPerGame   int    `json:"sets_per_game,omitempty" gorm:"default:0"`

	Status        string  `json:"status" gorm:"default:'setup';index"`
	WinnerID      *string `json:"winner_id,omitempty"`
	SetsCompleted int     `json:"sets_completed" gorm:"default:0"`

	// League linkage (nil/zero for standalone games).
	LeagueID         *string `json:"league_id,omitempty" gorm:"index"`
	LeagueRound      int     `json:"league_round,omitempty" gorm:"default:0"`
	LeagueHeatNumber int     `json:"league_heat_number,omitempty" gorm:"default:0"`

	// Which cascades fire on completion.
	TrackAnalytics       bool `json:"track_analytics" gorm:"default:false"`
	TrackLeagueAnalytics bool `json:"track_league_analytics" gorm:"default:false"`

	CreatedBy string `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Participants []GameParticipant `json:"participants,omitempty" gorm:"foreignKey:GameID"`
	Rounds       []Round           `json:"rounds,omitempty" gorm:"foreignKey:GameID"`
}

// GameParticipant joins a player into a game. CurrentPoints is the running
// per-game score; IsEliminated is game-level (distinct from per-round knockouts).
type GameParticipant struct {
	ID            string `json:"id" gorm:"primaryKey"`
	GameID        string `json:"game_id" gorm:"not null;index"`
	PlayerID      string `json:"player_id" gorm:"not null;index"`
	CurrentPoints int    `json:"current_points" gorm:"default:0"`
	IsEliminated  bool   `json:"is_eliminated" gorm:"default:false"`

	Player Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
