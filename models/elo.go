package models

import "time"

// PlayerEloRating is one row per player, lazily created at 1200 on first use.
type PlayerEloRating struct {
	ID       string `json:"id" gorm:"primaryKey"`
	PlayerID string `json:"player_id" gorm:"not null;uniqueIndex"`

	CurrentRating int `json:"current_rating" gorm:"not null"`
	GamesPlayed   int `json:"games_played" gorm:"default:0"`
	PeakRating    int `json:"peak_rating" gorm:"not null"`

	LastUpdated time.Time `json:"last_updated"`
	CreatedBy   string    `json:"created_by" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Joined for leaderboard responses, never stored.
	PlayerName     string `json:"player_name,omitempty" gorm:"-"`
	PlayerInitials string `json:"player_initials,omitempty" gorm:"-"`
}

// EloHistory is an append-only record of one rating update for one game.
type EloHistory struct {
	ID       string `json:"id" gorm:"primaryKey"`
	GameID   string `json:"game_id" gorm:"not null;index"`
	PlayerID string `json:"player_id" gorm:"not null;index"`

	RatingBefore int `json:"rating_before"`
	RatingAfter  int `json:"rating_after"`
	RatingChange int `json:"rating_change"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
