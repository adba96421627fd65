package api

import (
	"sync"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/logging"
)

// PairRegistry keeps at most one live duel per ordered pair and channel.
// It is the match observer: a pair is freed when its duel finishes.
type PairRegistry struct {
	mu      sync.Mutex
	byPair  map[string]string
	byMatch map[string]string
}

func NewPairRegistry() *PairRegistry {
	return &PairRegistry{byPair: make(map[string]string), byMatch: make(map[string]string)}
}

// Reserve claims key; it returns false when a duel already holds it.
func (p *PairRegistry) Reserve(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.byPair[key]; busy {
		return false
	}
	p.byPair[key] = ""
	return true
}

// Bind attaches the created match to a reserved key.
func (p *PairRegistry) Bind(key, matchID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byPair[key] = matchID
	p.byMatch[matchID] = key
}

// Release frees a key whose duel was never created.
func (p *PairRegistry) Release(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id := p.byPair[key]; id != "" {
		delete(p.byMatch, id)
	}
	delete(p.byPair, key)
}

func (p *PairRegistry) releaseMatch(matchID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if key, ok := p.byMatch[matchID]; ok {
		delete(p.byMatch, matchID)
		delete(p.byPair, key)
	}
}

func (p *PairRegistry) OnFinished(matchID string, outcome game.Outcome, reason string) {
	p.releaseMatch(matchID)
	logging.Debug("duel pair released", logging.Fields{
		constants.LogFieldMatchID: matchID,
		constants.LogFieldOutcome: string(outcome),
		constants.LogFieldReason:  reason,
	})
}
