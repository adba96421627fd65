package engine

import "github.com/ericogr/dew-duel/internal/game"

// Intner is the random source for stat generation.
type Intner interface {
	Intn(n int) int
}

const (
	minStatTotal = 16
	maxStatTotal = 20
	statSpread   = 2
)

// RollStats generates a fresh stat line for a flavor: the total lands in
// [16,20] and attack sits within two points of half of it, leaving at
// least one point on each side.
func RollStats(r Intner) game.CombatStats {
	total := minStatTotal + r.Intn(maxStatTotal-minStatTotal+1)
	atk := total/2 + r.Intn(2*statSpread+1) - statSpread
	if atk < 1 {
		atk = 1
	}
	if atk > total-1 {
		atk = total - 1
	}
	return game.CombatStats{Attack: atk, Defense: total - atk}
}
