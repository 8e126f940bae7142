package services

import (
	"errors"
	"testing"

	"slapcircle-league-system/models"
)

func TestCreatePlayerNormalization(t *testing.T) {
	db := testDB(t)
	svc := NewPlayerService(db)

	player, err := svc.createPlayer("  jan de  vries ", "test-user")
	if err != nil {
		t.Fatalf("createPlayer failed: %v", err)
	}
	if player.Name != "Jan De Vries" {
		t.Fatalf("expected normalized name, got %q", player.Name)
	}
	if player.Initials != "JV" {
		t.Fatalf("expected initials JV, got %q", player.Initials)
	}
	if player.TotalWins != 0 || player.TotalGamesPlayed != 0 {
		t.Fatalf("expected zeroed counters, got %+v", player)
	}
}

func TestCreatePlayerRejectsEmptyName(t *testing.T) {
	db := testDB(t)
	svc := NewPlayerService(db)

	if _, err := svc.createPlayer("   ", "test-user"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyPlayerDeltasFloorsAtZero(t *testing.T) {
	db := testDB(t)
	players := seedPlayers(t, db, "Alice")

	if err := applyPlayerDeltas(db, players[0], 1, 3, 2, 1); err != nil {
		t.Fatalf("applyPlayerDeltas failed: %v", err)
	}
	// Over-subtract; counters must clamp instead of going negative.
	if err := applyPlayerDeltas(db, players[0], -5, -5, -5, -5); err != nil {
		t.Fatalf("applyPlayerDeltas failed: %v", err)
	}

	var player models.Player
	db.First(&player, "id = ?", players[0])
	if player.TotalWins != 0 || player.TotalPoints != 0 ||
		player.TotalEliminations != 0 || player.TotalGamesPlayed != 0 {
		t.Fatalf("expected clamped counters, got %+v", player)
	}
}
