package engine

import (
	"sort"
	"testing"
)

func TestShufflePreservesElements(t *testing.T) {
	original := []string{"a", "b", "c", "d", "e"}
	input := append([]string{}, original...)

	shuffled := Shuffle(input)

	if len(shuffled) != len(original) {
		t.Fatalf("expected %d elements, got %d", len(original), len(shuffled))
	}
	for i, id := range original {
		if input[i] != id {
			t.Fatalf("input slice was modified at index %d", i)
		}
	}
	sorted := append([]string{}, shuffled...)
	sort.Strings(sorted)
	for i, id := range original {
		if sorted[i] != id {
			t.Fatalf("shuffle lost element %q", id)
		}
	}
}

func TestShuffleProducesDifferentOrders(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		shuffled := Shuffle(input)
		key := ""
		for _, id := range shuffled {
			key += id
		}
		seen[key] = true
	}
	// 50 draws from 8! permutations landing on a single order means the
	// randomness is broken.
	if len(seen) < 2 {
		t.Fatal("shuffle produced the same order 50 times in a row")
	}
}

func TestShuffleIsUniformOverPermutations(t *testing.T) {
	// With 3 elements there are exactly 6 permutations. A fair shuffle puts
	// each near draws/6; a biased swap-index choice skews some buckets by a
	// factor large enough to blow well past the tolerance below.
	const draws = 6000
	const expected = draws / 6

	counts := make(map[string]int, 6)
	for i := 0; i < draws; i++ {
		shuffled := Shuffle([]string{"a", "b", "c"})
		counts[shuffled[0]+shuffled[1]+shuffled[2]]++
	}

	if len(counts) != 6 {
		t.Fatalf("expected all 6 permutations to occur, got %d: %v", len(counts), counts)
	}
	// ~5 standard deviations around expected; a uniform shuffle fails this
	// less than once in a million runs.
	const tolerance = 150
	for perm, n := range counts {
		if n < expected-tolerance || n > expected+tolerance {
			t.Fatalf("permutation %s drawn %d times, expected %d±%d", perm, n, expected, tolerance)
		}
	}
}

func TestShuffleEdgeSizes(t *testing.T) {
	if got := Shuffle([]string{}); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := Shuffle([]string{"solo"}); len(got) != 1 || got[0] != "solo" {
		t.Fatalf("expected [solo], got %v", got)
	}
}

func TestPickOrderAvoidingServer(t *testing.T) {
	remaining := []string{"a", "b", "c", "d"}

	for i := 0; i < 200; i++ {
		order := PickOrderAvoidingServer(remaining, "a")
		if order[0] == "a" {
			t.Fatalf("iteration %d: previous server %q is serving again", i, order[0])
		}
		if len(order) != len(remaining) {
			t.Fatalf("expected %d players, got %d", len(remaining), len(order))
		}
	}
}

func TestPickOrderAvoidingServerTwoPlayers(t *testing.T) {
	// With two players the non-server must always end up at the head.
	for i := 0; i < 50; i++ {
		order := PickOrderAvoidingServer([]string{"a", "b"}, "a")
		if order[0] != "b" {
			t.Fatalf("iteration %d: expected b to serve, got %q", i, order[0])
		}
	}
}

func TestPickOrderAvoidingServerNoPrevious(t *testing.T) {
	order := PickOrderAvoidingServer([]string{"a", "b", "c"}, "")
	if len(order) != 3 {
		t.Fatalf("expected 3 players, got %d", len(order))
	}
}

func TestPickOrderSingleRemaining(t *testing.T) {
	order := PickOrderAvoidingServer([]string{"a"}, "a")
	if len(order) != 1 || order[0] != "a" {
		t.Fatalf("expected [a], got %v", order)
	}
}

func TestResolveEliminator(t *testing.T) {
	order := []string{"a", "b", "c", "d"}

	tests := []struct {
		name              string
		eliminated        string
		alreadyEliminated []string
		want              string
		wantErr           error
	}{
		{name: "direct predecessor", eliminated: "c", want: "b"},
		{name: "wraps to end of circle", eliminated: "a", want: "d"},
		{name: "skips eliminated predecessor", eliminated: "c", alreadyEliminated: []string{"b"}, want: "a"},
		{name: "skips multiple and wraps", eliminated: "b", alreadyEliminated: []string{"a"}, want: "d"},
		{name: "unknown player", eliminated: "x", wantErr: ErrNotInOrder},
		{name: "everyone else already out", eliminated: "b", alreadyEliminated: []string{"a", "c", "d"}, wantErr: ErrNoEliminator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveEliminator(tt.eliminated, order, tt.alreadyEliminated)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected eliminator %q, got %q", tt.want, got)
			}
		})
	}
}

func TestShouldEnd(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		cfg   EndConfig
		state EndState
		want  bool
	}{
		{name: "firstToX reached", mode: GameModeFirstToX, cfg: EndConfig{WinningPoints: 3}, state: EndState{MaxPoints: 3}, want: true},
		{name: "firstToX exceeded", mode: GameModeFirstToX, cfg: EndConfig{WinningPoints: 3}, state: EndState{MaxPoints: 5}, want: true},
		{name: "firstToX not reached", mode: GameModeFirstToX, cfg: EndConfig{WinningPoints: 3}, state: EndState{MaxPoints: 2}, want: false},
		{name: "firstToX unset config never ends", mode: GameModeFirstToX, cfg: EndConfig{}, state: EndState{MaxPoints: 10}, want: false},
		{name: "fixedSets reached", mode: GameModeFixedSets, cfg: EndConfig{SetsPerGame: 2}, state: EndState{SetsCompleted: 2}, want: true},
		{name: "fixedSets not reached", mode: GameModeFixedSets, cfg: EndConfig{SetsPerGame: 2}, state: EndState{SetsCompleted: 1}, want: false},
		{name: "fixedSets unset config never ends", mode: GameModeFixedSets, cfg: EndConfig{}, state: EndState{SetsCompleted: 4}, want: false},
		{name: "unknown mode never ends", mode: "bestOfThree", cfg: EndConfig{WinningPoints: 1}, state: EndState{MaxPoints: 9}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldEnd(tt.mode, tt.cfg, tt.state); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
