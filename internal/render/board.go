package render

import (
	"context"
	"sync"
	"time"

	"github.com/ericogr/dew-duel/internal/game"
	"github.com/jonboulle/clockwork"
)

// Frame is the latest rendering of a match.
type Frame struct {
	State     game.MatchState `json:"state"`
	Text      string          `json:"text"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Board keeps the latest frame per match so clients can poll it. It
// satisfies service.Renderer.
type Board struct {
	clock clockwork.Clock

	mu     sync.RWMutex
	frames map[string]Frame
}

func NewBoard(clock clockwork.Clock) *Board {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Board{clock: clock, frames: make(map[string]Frame)}
}

func (b *Board) Render(ctx context.Context, st game.MatchState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := Frame{State: st.Clone(), Text: Text(st), UpdatedAt: b.clock.Now()}
	b.mu.Lock()
	b.frames[st.MatchID] = f
	b.mu.Unlock()
	return nil
}

func (b *Board) Frame(matchID string) (Frame, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.frames[matchID]
	return f, ok
}

// Prune drops frames of finished matches last updated before the
// retention window.
func (b *Board) Prune(olderThan time.Duration) int {
	cutoff := b.clock.Now().Add(-olderThan)
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for id, f := range b.frames {
		if f.State.Phase == game.PhaseFinished && f.UpdatedAt.Before(cutoff) {
			delete(b.frames, id)
			n++
		}
	}
	return n
}
