package models

import "time"

// Player is a person in the local player pool. Cumulative counters are owned
// by the analytics cascade; nothing in the game flow ever deletes a player.
type Player struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Name     string `json:"name" gorm:"not null;index"`
	Initials string `json:"initials,omitempty"`

	// ExternalID links the player to a profile-service account when one
	// exists; the sync worker refreshes display data through it.
	ExternalID string `json:"external_id,omitempty" gorm:"index"`
	AvatarURL  *string `json:"avatar_url,omitempty"`

	// Lifetime totals, maintained by the scoring cascade.
	TotalWins         int `json:"total_wins" gorm:"default:0"`
	TotalPoints       int `json:"total_points" gorm:"default:0"`
	TotalEliminations int `json:"total_eliminations" gorm:"default:0"`
	TotalGamesPlayed  int `json:"total_games_played" gorm:"default:0"`

	CreatedBy string `json:"created_by" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
