package render

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/dew-duel/internal/config"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() game.MatchState {
	return game.MatchState{
		MatchID: "m1",
		PlayerA: game.Fighter{
			Participant:  game.Participant{ID: "a", Name: "Ana"},
			Stats:        game.CombatStats{Category: "Voltage", Attack: 10, Defense: 5},
			HP:           22,
			BonusDefense: 1,
		},
		PlayerB: game.Fighter{
			Participant: game.Participant{ID: "b", Name: "Bo"},
			Stats:       game.CombatStats{Category: "Code Red", Attack: 8, Defense: 6},
			HP:          -3,
		},
		Round: 3,
		Phase: game.PhaseInProgress,
	}
}

func TestStatusText(t *testing.T) {
	got := StatusText(sampleState())
	want := "Round: 3\n\n" +
		"**Ana** (Voltage) - HP: 22\nATK 10 / DEF 6\n\n" +
		"**Bo** (Code Red) - HP: 0\nATK 8 / DEF 6\n"
	assert.Equal(t, want, got)
}

func TestTextPerPhase(t *testing.T) {
	st := sampleState()
	st.Phase = game.PhaseAwaitingAcceptance
	assert.Equal(t, "Ana challenges Bo!\n\nWaiting for acceptance...", Text(st))

	st.Phase = game.PhaseInProgress
	st.LastRound = &game.RoundSummary{Round: 2, MoveA: game.MoveAttack, MoveB: game.MoveAttack, DamageToA: 8, DamageToB: 10}
	text := Text(st)
	assert.True(t, strings.HasPrefix(text, arenaTitle))
	assert.Contains(t, text, "Last round: Ana chose **attack**, Bo chose **attack**. Ana took 8 dmg. Bo took 10 dmg.")
	assert.True(t, strings.HasSuffix(text, "Round 3 - waiting for both choices"))

	st.Phase = game.PhaseFinished
	st.Outcome = game.OutcomeWinA
	st.Reason = "Bo was knocked out"
	text = Text(st)
	assert.True(t, strings.HasPrefix(text, "Winner: Ana. Bo was knocked out"))
	assert.Contains(t, text, "HP: 0")
}

func TestFinal(t *testing.T) {
	st := sampleState()
	st.Phase = game.PhaseFinished

	st.Outcome, st.Reason = game.OutcomeForfeitB, "Ana failed to choose in time"
	assert.Equal(t, "Winner: Bo. Ana failed to choose in time", Final(st))

	st.Outcome, st.Reason = game.OutcomeDraw, "both players failed to choose in time"
	assert.Equal(t, "Result: Draw. both players failed to choose in time", Final(st))

	st.Outcome, st.Reason = game.OutcomeDeclined, "Bo declined the duel"
	assert.Equal(t, "Duel declined. Bo declined the duel", Final(st))
	assert.NotContains(t, Text(st), "ATK", "unstarted duels show no stats")
}

func TestRules(t *testing.T) {
	text := Rules(config.DefaultDuelRules())
	assert.Contains(t, text, "**30 HP**")
	assert.Contains(t, text, "10% chance to deal **1.5x damage**")
	assert.Contains(t, text, "within 60 seconds")
}

func TestBoardStoresAndPrunes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := NewBoard(clock)
	ctx := context.Background()

	live := sampleState()
	require.NoError(t, b.Render(ctx, live))
	done := sampleState()
	done.MatchID = "m2"
	done.Phase = game.PhaseFinished
	done.Outcome = game.OutcomeWinA
	require.NoError(t, b.Render(ctx, done))

	f, ok := b.Frame("m1")
	require.True(t, ok)
	assert.Equal(t, clock.Now(), f.UpdatedAt)
	assert.Equal(t, Text(live), f.Text)

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, b.Prune(10*time.Minute))
	_, ok = b.Frame("m2")
	assert.False(t, ok)
	_, ok = b.Frame("m1")
	assert.True(t, ok, "live frames are kept")
}

func TestBoardRespectsCanceledContext(t *testing.T) {
	b := NewBoard(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Render(ctx, sampleState()), context.Canceled)
	_, ok := b.Frame("m1")
	assert.False(t, ok)
}
