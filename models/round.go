package models

import "time"

// Round statuses.
const (
	RoundStatusActive    = "active"
	RoundStatusCompleted = "completed"
)

// Round is one unit of elimination play inside a game (a "set" when the game
// is a league heat). PlayerOrder keeps the original seating for reversal math;
// CurrentPlayerOrder is the live circle, reshuffled after each elimination.
// The server is always the head of CurrentPlayerOrder.
type Round struct {
	ID          string `json:"id" gorm:"primaryKey"`
	GameID      string `json:"game_id" gorm:"not null;index"`
	RoundNumber int    `json:"round_number" gorm:"not null"`

	PlayerOrder        StringSlice `json:"player_order" gorm:"type:text"`
	CurrentPlayerOrder StringSlice `json:"current_player_order" gorm:"type:text"`
	ServerID           string      `json:"server_id" gorm:"not null"`

	Status   string  `json:"status" gorm:"default:'active';index"`
	WinnerID *string `json:"winner_id,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Elimination is an append-only log entry. Reversal flips IsReverted instead
// of deleting the row, so the full history stays replayable.
type Elimination struct {
	ID                 string `json:"id" gorm:"primaryKey"`
	GameID             string `json:"game_id" gorm:"not null;index"`
	RoundID            string `json:"round_id" gorm:"not null;index"`
	EliminatedPlayerID string `json:"eliminated_player_id" gorm:"not null"`
	EliminatorPlayerID string `json:"eliminator_player_id" gorm:"not null"`
	EliminationOrder   int    `json:"elimination_order" gorm:"not null"`
	IsReverted         bool   `json:"is_reverted" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
