package engine

import (
	"math"

	"github.com/ericogr/dew-duel/internal/game"
)

// Roller is the random source for critical hit rolls. *rand.Rand
// satisfies it; tests inject fixed sequences.
type Roller interface {
	Float64() float64
}

// Resolver holds the combat constants applied to every round.
type Resolver struct {
	CritChance     float64
	CritMultiplier float64
	DefendBonus    int
}

// Default is the rule set the bot has always used: 10% crits at 1.5x and
// a +1 defense bonus after defending.
var Default = Resolver{CritChance: 0.1, CritMultiplier: 1.5, DefendBonus: 1}

// Result is the outcome of one round. BonusA and BonusB are the defense
// bonuses each side carries into the next round. CritA and CritB report
// whether the hit taken by that side was critical.
type Result struct {
	DamageToA int
	DamageToB int
	BonusA    int
	BonusB    int
	CritA     bool
	CritB     bool
}

// Resolve applies the Default rules. defA and defB are total defense
// (base plus the bonus carried in from the previous round).
func Resolve(moveA, moveB game.MoveChoice, atkA, defA, atkB, defB int, r Roller) Result {
	return Default.Resolve(moveA, moveB, atkA, defA, atkB, defB, r)
}

// Resolve computes damage and next-round bonuses for a pair of moves.
// It has no side effects besides consuming rolls from r.
func (rv Resolver) Resolve(moveA, moveB game.MoveChoice, atkA, defA, atkB, defB int, r Roller) Result {
	var res Result
	switch {
	case moveA == game.MoveAttack && moveB == game.MoveAttack:
		// raw attack on both sides, defense is ignored in a clash
		res.DamageToA, res.CritA = rv.hit(atkB, r)
		res.DamageToB, res.CritB = rv.hit(atkA, r)
	case moveA == game.MoveAttack && moveB == game.MoveDefend:
		res.DamageToB, res.CritB = rv.hit(atkA-defB, r)
		res.BonusB = rv.DefendBonus
	case moveA == game.MoveDefend && moveB == game.MoveAttack:
		res.DamageToA, res.CritA = rv.hit(atkB-defA, r)
		res.BonusA = rv.DefendBonus
	case moveA == game.MoveDefend && moveB == game.MoveDefend:
		res.BonusA = rv.DefendBonus
		res.BonusB = rv.DefendBonus
	}
	return res
}

// hit clamps raw damage at zero, then rolls for a critical hit. A roll is
// always consumed so the sequence of rolls does not depend on damage.
func (rv Resolver) hit(raw int, r Roller) (int, bool) {
	if raw < 0 {
		raw = 0
	}
	if r.Float64() >= rv.CritChance {
		return raw, false
	}
	dmg := int(math.RoundToEven(float64(raw) * rv.CritMultiplier))
	return dmg, dmg > 0
}

// Summarize packs a resolved round into the summary shown to players.
func Summarize(round int, moveA, moveB game.MoveChoice, res Result) game.RoundSummary {
	return game.RoundSummary{
		Round:     round,
		MoveA:     moveA,
		MoveB:     moveB,
		DamageToA: res.DamageToA,
		DamageToB: res.DamageToB,
		CritA:     res.CritA,
		CritB:     res.CritB,
	}
}
