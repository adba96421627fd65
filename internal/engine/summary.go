package engine

import (
	"fmt"
	"strings"

	"github.com/ericogr/dew-duel/internal/game"
)

// --- Round summary text ------------------------------------------------
type summaryBuilder struct {
	parts []string
}

func (sb *summaryBuilder) add(format string, args ...interface{}) {
	sb.parts = append(sb.parts, fmt.Sprintf(format, args...))
}

func (sb *summaryBuilder) join() string {
	return strings.Join(sb.parts, " ")
}

// Describe returns the one-line recap of a resolved round, e.g.
// "Last round: Ana chose **attack**, Bo chose **defend**. Bo took 4 dmg."
func Describe(s game.RoundSummary, nameA, nameB string) string {
	sb := &summaryBuilder{parts: make([]string, 0, 4)}
	sb.add("Last round: %s chose **%s**, %s chose **%s**.", nameA, s.MoveA.Label(), nameB, s.MoveB.Label())
	if s.DamageToA > 0 {
		sb.add("%s took %d dmg%s.", nameA, s.DamageToA, critTag(s.CritA))
	}
	if s.DamageToB > 0 {
		sb.add("%s took %d dmg%s.", nameB, s.DamageToB, critTag(s.CritB))
	}
	if s.DamageToA == 0 && s.DamageToB == 0 {
		sb.add("No damage dealt.")
	}
	return sb.join()
}

func critTag(crit bool) string {
	if crit {
		return " (critical hit!)"
	}
	return ""
}
