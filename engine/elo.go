package engine

import "math"

// ELO constants shared by the rating service.
const (
	DefaultEloRating = 1200
	KFactor          = 32
)

// RatingChange is one player's rating delta from a single game resolution.
type RatingChange struct {
	Before int
	After  int
	Change int
}

// ExpectedScore returns the probability of the first rating beating the second.
func ExpectedScore(rating, opponentRating float64) float64 {
	return 1 / (1 + math.Pow(10, (opponentRating-rating)/400))
}

// NewRating applies the classic ELO update: rating + K * (actual - expected).
func NewRating(currentRating int, expectedScore, actualScore float64) int {
	return int(math.Round(float64(currentRating) + KFactor*(actualScore-expectedScore)))
}

// MultiplayerChanges computes rating deltas for a game with one winner and any
// number of losers. The winner is scored pairwise against every opponent; each
// loser is scored against the winner only. All "before" ratings come from the
// snapshot passed in, so updates never contaminate each other within one pass.
func MultiplayerChanges(ratings map[string]int, winnerID string) map[string]RatingChange {
	changes := make(map[string]RatingChange, len(ratings))
	winnerRating, ok := ratings[winnerID]
	if !ok || len(ratings) < 2 {
		return changes
	}

	for playerID, rating := range ratings {
		if playerID == winnerID {
			totalExpected := 0.0
			for opponentID, opponentRating := range ratings {
				if opponentID != winnerID {
					totalExpected += ExpectedScore(float64(winnerRating), float64(opponentRating))
				}
			}
			actual := float64(len(ratings) - 1)
			after := NewRating(winnerRating, totalExpected, actual)
			changes[winnerID] = RatingChange{Before: winnerRating, After: after, Change: after - winnerRating}
			continue
		}
		expected := ExpectedScore(float64(rating), float64(winnerRating))
		after := NewRating(rating, expected, 0)
		changes[playerID] = RatingChange{Before: rating, After: after, Change: after - rating}
	}
	return changes
}
