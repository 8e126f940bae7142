package models

import "time"

// GameAnalytics is the denormalized per-(game,player) rollup written when a
// game completes. Rows are upserted: created if absent, otherwise incremented.
type GameAnalytics struct {
	ID       string `json:"id" gorm:"primaryKey"`
	GameID   string `json:"game_id" gorm:"not null;index"`
	PlayerID string `json:"player_id" gorm:"not null;index"`

	Points       int `json:"points" gorm:"default:0"`
	Eliminations int `json:"eliminations" gorm:"default:0"`
	Wins         int `json:"wins" gorm:"default:0"`
	GamesPlayed  int `json:"games_played" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// LeagueAnalytics mirrors GameAnalytics but scoped to a league.
type LeagueAnalytics struct {
	ID       string `json:"id" gorm:"primaryKey"`
	LeagueID string `json:"league_id" gorm:"not null;index"`
	GameID   string `json:"game_id" gorm:"not null;index"`
	PlayerID string `json:"player_id" gorm:"not null;index"`

	Points       int `json:"points" gorm:"default:0"`
	Eliminations int `json:"eliminations" gorm:"default:0"`
	Wins         int `json:"wins" gorm:"default:0"`
	GamesPlayed  int `json:"games_played" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
