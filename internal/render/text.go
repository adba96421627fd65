package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/ericogr/dew-duel/internal/config"
	"github.com/ericogr/dew-duel/internal/engine"
	"github.com/ericogr/dew-duel/internal/game"
)

const arenaTitle = "Dew Duel - Arena"

// StatusText lists both fighters with HP clamped at zero and defense
// including the carried bonus.
func StatusText(st game.MatchState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round: %d\n\n", st.Round)
	writeFighter(&b, st.PlayerA)
	b.WriteString("\n")
	writeFighter(&b, st.PlayerB)
	return b.String()
}

func writeFighter(b *strings.Builder, f game.Fighter) {
	fmt.Fprintf(b, "**%s** (%s) - HP: %d\n", f.Name, f.Stats.Category, f.DisplayHP())
	fmt.Fprintf(b, "ATK %d / DEF %d\n", f.Stats.Attack, f.TotalDefense())
}

// Challenge is shown while the target has not answered.
func Challenge(st game.MatchState) string {
	return fmt.Sprintf("%s challenges %s!\n\nWaiting for acceptance...", st.PlayerA.Name, st.PlayerB.Name)
}

// RoundLine recaps the last resolved round, or is empty before round 1
// resolves.
func RoundLine(st game.MatchState) string {
	if st.LastRound == nil {
		return ""
	}
	return engine.Describe(*st.LastRound, st.PlayerA.Name, st.PlayerB.Name)
}

// Final announces the winner, or the draw, with the reason.
func Final(st game.MatchState) string {
	switch st.Outcome.Winner() {
	case game.SideA, game.SideB:
		return fmt.Sprintf("Winner: %s. %s", st.Name(st.Outcome.Winner()), st.Reason)
	}
	switch st.Outcome {
	case game.OutcomeDraw:
		return "Result: Draw. " + st.Reason
	case game.OutcomeDeclined:
		return "Duel declined. " + st.Reason
	case game.OutcomeAcceptanceTimedOut:
		return "Challenge expired. " + st.Reason
	default:
		return "Duel aborted. " + st.Reason
	}
}

// Text renders the full board for the current phase.
func Text(st game.MatchState) string {
	switch st.Phase {
	case game.PhaseAwaitingAcceptance:
		return Challenge(st)
	case game.PhaseInProgress:
		parts := []string{arenaTitle, StatusText(st)}
		if line := RoundLine(st); line != "" {
			parts = append(parts, line)
		}
		parts = append(parts, fmt.Sprintf("Round %d - waiting for both choices", st.Round))
		return strings.Join(parts, "\n\n")
	default:
		parts := []string{Final(st)}
		if st.Outcome.Started() {
			parts = append(parts, StatusText(st))
			if line := RoundLine(st); line != "" {
				parts = append(parts, line)
			}
		}
		return strings.Join(parts, "\n\n")
	}
}

// Rules explains the duel mechanics with the configured numbers.
func Rules(r config.DuelRules) string {
	var b strings.Builder
	b.WriteString("Welcome to Dew Duel! Here's how it works:\n\n")
	b.WriteString("**1. HP, ATK, DEF**\n")
	fmt.Fprintf(&b, "- Each player starts with **%d HP**.\n", r.MaxHP)
	b.WriteString("- Attack (ATK) determines damage dealt.\n")
	b.WriteString("- Defense (DEF) reduces incoming damage.\n\n")
	b.WriteString("**2. Moves**\n")
	b.WriteString("- **Attack**: deal damage based on your ATK vs opponent DEF.\n")
	b.WriteString("- **Defend**: take no damage this round and gain +1 DEF next round.\n")
	fmt.Fprintf(&b, "- Both players choose simultaneously, within %d seconds.\n\n", int(r.RoundTimeout.Seconds()))
	b.WriteString("**3. Critical Hits**\n")
	fmt.Fprintf(&b, "- %d%% chance to deal **%gx damage**.\n\n", int(math.Round(r.CritChance*100)), r.CritMultiplier)
	b.WriteString("**4. Winning**\n")
	b.WriteString("- Reduce your opponent's HP to 0 to win.\n")
	b.WriteString("- If both reach 0 HP in the same round, it's a draw.\n")
	b.WriteString("- A player who does not choose in time forfeits.\n")
	return b.String()
}
