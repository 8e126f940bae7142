package engine

import (
	"math"
	"testing"
)

func TestExpectedScore(t *testing.T) {
	if got := ExpectedScore(1200, 1200); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("equal ratings should give 0.5, got %f", got)
	}

	strong := ExpectedScore(1400, 1200)
	weak := ExpectedScore(1200, 1400)
	if strong <= 0.5 {
		t.Fatalf("higher rating should expect more than 0.5, got %f", strong)
	}
	if math.Abs(strong+weak-1) > 1e-9 {
		t.Fatalf("expected scores should sum to 1, got %f", strong+weak)
	}
}

func TestNewRating(t *testing.T) {
	// Win against an equal opponent: 1200 + 32*(1-0.5) = 1216.
	if got := NewRating(1200, 0.5, 1); got != 1216 {
		t.Fatalf("expected 1216, got %d", got)
	}
	// Loss against an equal opponent: 1200 + 32*(0-0.5) = 1184.
	if got := NewRating(1200, 0.5, 0); got != 1184 {
		t.Fatalf("expected 1184, got %d", got)
	}
}

func TestMultiplayerChangesHeadToHead(t *testing.T) {
	ratings := map[string]int{"winner": 1200, "loser": 1200}
	changes := MultiplayerChanges(ratings, "winner")

	if changes["winner"].After != 1216 {
		t.Fatalf("expected winner at 1216, got %d", changes["winner"].After)
	}
	if changes["loser"].After != 1184 {
		t.Fatalf("expected loser at 1184, got %d", changes["loser"].After)
	}
	if changes["winner"].Change != 16 || changes["loser"].Change != -16 {
		t.Fatalf("expected +16/-16, got %+d/%+d", changes["winner"].Change, changes["loser"].Change)
	}
}

func TestMultiplayerChangesThreePlayers(t *testing.T) {
	ratings := map[string]int{"a": 1200, "b": 1200, "c": 1200}
	changes := MultiplayerChanges(ratings, "a")

	// Winner plays two equal opponents: expected 1.0 against actual 2.0.
	if changes["a"].Change != 32 {
		t.Fatalf("expected winner +32, got %+d", changes["a"].Change)
	}
	if changes["b"].Change != -16 || changes["c"].Change != -16 {
		t.Fatalf("expected both losers -16, got %+d/%+d", changes["b"].Change, changes["c"].Change)
	}

	sum := 0
	for _, ch := range changes {
		sum += ch.Change
	}
	if sum != 0 {
		t.Fatalf("expected zero-sum changes for equal ratings, got %d", sum)
	}
}

func TestMultiplayerChangesUsesSnapshot(t *testing.T) {
	// The underdog beats two stronger players; every delta must come from the
	// pre-game snapshot, not from partially updated ratings.
	ratings := map[string]int{"underdog": 1000, "strong": 1400, "stronger": 1600}
	changes := MultiplayerChanges(ratings, "underdog")

	if changes["underdog"].Change <= 32 {
		t.Fatalf("underdog beating two stronger players should gain more than one-game K, got %+d", changes["underdog"].Change)
	}
	if changes["strong"].Change >= 0 || changes["stronger"].Change >= 0 {
		t.Fatalf("losers must lose rating, got %+d/%+d", changes["strong"].Change, changes["stronger"].Change)
	}
	// The stronger the loser, the bigger the upset penalty.
	if changes["stronger"].Change >= changes["strong"].Change {
		t.Fatalf("higher-rated loser should lose more: strong %+d, stronger %+d",
			changes["strong"].Change, changes["stronger"].Change)
	}
	if changes["underdog"].Before != 1000 {
		t.Fatalf("expected snapshot before of 1000, got %d", changes["underdog"].Before)
	}
}

func TestMultiplayerChangesDegenerate(t *testing.T) {
	if got := MultiplayerChanges(map[string]int{"solo": 1200}, "solo"); len(got) != 0 {
		t.Fatalf("single player game should produce no changes, got %v", got)
	}
	if got := MultiplayerChanges(map[string]int{"a": 1200, "b": 1200}, "ghost"); len(got) != 0 {
		t.Fatalf("unknown winner should produce no changes, got %v", got)
	}
}
