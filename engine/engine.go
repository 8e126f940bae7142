// Package engine holds the pure game logic for circle-slam play: seating
// shuffles, server rotation, eliminator resolution and end-of-game checks.
// Everything here is side-effect free; persistence lives in services.
package engine

import (
	crand "crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand"
)

// Game modes supported by games and league heats.
const (
	GameModeFirstToX  = "firstToX"
	GameModeFixedSets = "fixedSets"
)

var (
	// ErrNotInOrder is returned when the eliminated player is missing from the seating order.
	ErrNotInOrder = errors.New("player not in current order")
	// ErrNoEliminator is returned when the backward walk wraps all the way around,
	// which means the seating order and elimination set are inconsistent.
	ErrNoEliminator = errors.New("cannot determine eliminator: invalid game state")
)

// maxServerRetries bounds the reshuffle loop before the deterministic swap kicks in.
const maxServerRetries = 10

// randomInt returns a uniform integer in [0, n). It draws from crypto/rand
// and falls back to math/rand if the system source is unavailable.
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	if v, err := crand.Int(crand.Reader, big.NewInt(int64(n))); err == nil {
		return int(v.Int64())
	}
	return mrand.Intn(n)
}

// Shuffle returns a uniformly random permutation of items (Fisher–Yates).
// The input slice is never modified.
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := randomInt(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// PickOrderAvoidingServer shuffles remaining and guarantees the new head differs
// from previousServer whenever more than one player remains. It retries the
// shuffle a bounded number of times, then swaps the first two positions so the
// guarantee holds deterministically. An empty previousServer disables avoidance.
func PickOrderAvoidingServer(remaining []string, previousServer string) []string {
	order := Shuffle(remaining)
	if previousServer == "" || len(order) < 2 || order[0] != previousServer {
		return order
	}
	for attempts := 0; order[0] == previousServer && attempts < maxServerRetries; attempts++ {
		order = Shuffle(remaining)
	}
	if order[0] == previousServer {
		order[0], order[1] = order[1], order[0]
	}
	return order
}

// ResolveEliminator finds the player credited with an elimination: the nearest
// still-active player immediately preceding the eliminated player in the circle,
// walking backward and wrapping past already-eliminated seats.
func ResolveEliminator(eliminated string, order []string, alreadyEliminated []string) (string, error) {
	playerIndex := -1
	for i, id := range order {
		if id == eliminated {
			playerIndex = i
			break
		}
	}
	if playerIndex == -1 {
		return "", ErrNotInOrder
	}

	out := make(map[string]bool, len(alreadyEliminated))
	for _, id := range alreadyEliminated {
		out[id] = true
	}

	idx := playerIndex
	for {
		if idx == 0 {
			idx = len(order) - 1
		} else {
			idx--
		}
		candidate := order[idx]
		if candidate == eliminated {
			return "", ErrNoEliminator
		}
		if !out[candidate] {
			return candidate, nil
		}
	}
}

// EndConfig carries the mode-specific game configuration.
type EndConfig struct {
	WinningPoints int
	SetsPerGame   int
}

// EndState carries the counters the end check looks at.
type EndState struct {
	MaxPoints     int
	SetsCompleted int
}

// ShouldEnd reports whether a game is over for the given mode. Unset config
// values behave as zero, which never ends a game.
func ShouldEnd(mode string, cfg EndConfig, state EndState) bool {
	switch mode {
	case GameModeFirstToX:
		return cfg.WinningPoints > 0 && state.MaxPoints >= cfg.WinningPoints
	case GameModeFixedSets:
		return cfg.SetsPerGame > 0 && state.SetsCompleted >= cfg.SetsPerGame
	default:
		return false
	}
}
