package service

import (
	"context"

	"github.com/ericogr/dew-duel/internal/game"
)

// StatSource is the read-only view of the flavor stat store.
type StatSource interface {
	// Eligible returns ErrNotEligible when the player has no category.
	Eligible(ctx context.Context, playerID string) error
	// LookupStats is called exactly once per player, at acceptance.
	LookupStats(ctx context.Context, playerID string) (game.CombatStats, error)
}

// Renderer shows the visible match state. It is called after every state
// change; failures are logged and never reach the session.
type Renderer interface {
	Render(ctx context.Context, state game.MatchState) error
}

// MatchObserver receives the terminal notification, exactly once per match.
type MatchObserver interface {
	OnFinished(matchID string, outcome game.Outcome, reason string)
}

// ObserverFunc adapts a plain function to MatchObserver.
type ObserverFunc func(matchID string, outcome game.Outcome, reason string)

func (f ObserverFunc) OnFinished(matchID string, outcome game.Outcome, reason string) {
	f(matchID, outcome, reason)
}

type nopRenderer struct{}

func (nopRenderer) Render(context.Context, game.MatchState) error { return nil }

type nopObserver struct{}

func (nopObserver) OnFinished(string, game.Outcome, string) {}
