package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ericogr/dew-duel/internal/config"
	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/engine"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Options configures a Manager. Stats is required; everything else has a
// usable default.
type Options struct {
	Rules    config.DuelRules
	Stats    StatSource
	Renderer Renderer
	Observer MatchObserver
	Clock    clockwork.Clock
	Roller   engine.Roller
	// NewID generates match ids. Defaults to uuid.NewString.
	NewID func() string
}

// CreateRequest describes a challenge issued by Challenger to Target.
type CreateRequest struct {
	Challenger game.Participant
	Target     game.Participant
	ChannelID  string
}

type tombstone struct {
	state   game.MatchState
	endedAt time.Time
}

// Manager is the registry of live matches. It routes inbound operations to
// the owning session and remembers recently finished matches.
type Manager struct {
	rules    config.DuelRules
	resolver engine.Resolver
	stats    StatSource
	renderer Renderer
	observer MatchObserver
	clock    clockwork.Clock
	roller   engine.Roller
	newID    func() string

	mu       sync.Mutex
	sessions map[string]*session
	finished map[string]tombstone
}

func NewManager(opts Options) *Manager {
	rules := withDefaults(opts.Rules)
	m := &Manager{
		rules:    rules,
		resolver: engine.Resolver{CritChance: rules.CritChance, CritMultiplier: rules.CritMultiplier, DefendBonus: engine.Default.DefendBonus},
		stats:    opts.Stats,
		renderer: opts.Renderer,
		observer: opts.Observer,
		clock:    opts.Clock,
		roller:   opts.Roller,
		newID:    opts.NewID,
		sessions: make(map[string]*session),
		finished: make(map[string]tombstone),
	}
	if m.renderer == nil {
		m.renderer = nopRenderer{}
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.roller == nil {
		m.roller = &lockedRoller{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
	} else {
		m.roller = &lockedRoller{r: m.roller}
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

func withDefaults(r config.DuelRules) config.DuelRules {
	d := config.DefaultDuelRules()
	if r == (config.DuelRules{}) {
		return d
	}
	if r.MaxHP <= 0 {
		r.MaxHP = d.MaxHP
	}
	if r.AcceptTimeout <= 0 {
		r.AcceptTimeout = d.AcceptTimeout
	}
	if r.RoundTimeout <= 0 {
		r.RoundTimeout = d.RoundTimeout
	}
	if r.RenderTimeout <= 0 {
		r.RenderTimeout = d.RenderTimeout
	}
	if r.CritMultiplier < 1 {
		r.CritMultiplier = d.CritMultiplier
	}
	return r
}

// lockedRoller serializes rolls; sessions resolve rounds concurrently.
type lockedRoller struct {
	mu sync.Mutex
	r  engine.Roller
}

func (l *lockedRoller) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// CreateMatch validates the challenge, registers a new session and starts
// it. The challenge is rendered before CreateMatch returns.
func (m *Manager) CreateMatch(ctx context.Context, req CreateRequest) (string, error) {
	if req.Challenger.ID == req.Target.ID {
		return "", ErrSelfChallenge
	}
	for _, id := range []string{req.Challenger.ID, req.Target.ID} {
		if err := m.stats.Eligible(ctx, id); err != nil {
			return "", err
		}
	}

	now := m.clock.Now()
	state := game.MatchState{
		ChannelID: req.ChannelID,
		PlayerA:   game.Fighter{Participant: req.Challenger},
		PlayerB:   game.Fighter{Participant: req.Target},
		Phase:     game.PhaseAwaitingAcceptance,
		CreatedAt: now,
		Deadline:  now.Add(m.rules.AcceptTimeout),
	}

	m.mu.Lock()
	id, err := m.uniqueIDLocked()
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	state.MatchID = id
	s := newSession(m, state)
	m.sessions[id] = s
	m.mu.Unlock()

	logging.Info("duel created", logging.Fields{
		constants.LogFieldMatchID:   id,
		constants.LogFieldPlayerID:  req.Challenger.ID,
		constants.LogFieldTargetID:  req.Target.ID,
		constants.LogFieldChannelID: req.ChannelID,
	})
	m.render(state.Clone())
	go s.run()
	return id, nil
}

func (m *Manager) uniqueIDLocked() (string, error) {
	for i := 0; i < 3; i++ {
		id := m.newID()
		_, live := m.sessions[id]
		_, ended := m.finished[id]
		if !live && !ended {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique match id")
}

// lookup returns the live session or, for a recently finished match, its
// final state.
func (m *Manager) lookup(matchID string) (*session, *game.MatchState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[matchID]; ok {
		return s, nil
	}
	if t, ok := m.finished[matchID]; ok {
		st := t.state.Clone()
		return nil, &st
	}
	return nil, nil
}

// RespondToChallenge records the target's accept or decline.
func (m *Manager) RespondToChallenge(matchID, responderID string, accept bool) error {
	s, ended := m.lookup(matchID)
	switch {
	case s != nil:
		return s.respond(responderID, accept)
	case ended != nil && ended.PlayerB.ID != responderID:
		return ErrNotYourChallenge
	case ended != nil:
		return ErrAlreadyResolved
	}
	return ErrUnknownMatch
}

// SubmitMove stores a hidden move for the current round. The round
// resolves as soon as both moves are in.
func (m *Manager) SubmitMove(matchID, playerID string, move game.MoveChoice) error {
	s, ended := m.lookup(matchID)
	switch {
	case s != nil:
		return s.submitMove(playerID, move)
	case ended != nil:
		if f, _ := ended.Fighter(playerID); f == nil {
			return ErrNotAParticipant
		}
		return ErrMatchFinished
	}
	return ErrUnknownMatch
}

// AbortMatch forces the match to Finished with outcome aborted and waits
// until the terminal notification has been delivered.
func (m *Manager) AbortMatch(matchID, reason string) error {
	s, ended := m.lookup(matchID)
	switch {
	case s != nil:
		return s.abort(reason)
	case ended != nil:
		return ErrMatchFinished
	}
	return ErrUnknownMatch
}

// AbortAll aborts every live match. Used at shutdown.
func (m *Manager) AbortAll(reason string) int {
	m.mu.Lock()
	live := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range live {
		wg.Add(1)
		go func(s *session) {
			defer wg.Done()
			_ = s.abort(reason)
		}(s)
	}
	wg.Wait()
	return len(live)
}

// Snapshot returns a copy of the match state, live or recently finished.
func (m *Manager) Snapshot(matchID string) (game.MatchState, error) {
	s, ended := m.lookup(matchID)
	switch {
	case s != nil:
		return s.snapshot(), nil
	case ended != nil:
		return *ended, nil
	}
	return game.MatchState{}, ErrUnknownMatch
}

// Active lists the live matches ordered by creation time.
func (m *Manager) Active() []game.MatchState {
	m.mu.Lock()
	live := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	out := make([]game.MatchState, 0, len(live))
	for _, s := range live {
		out = append(out, s.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// PruneFinished forgets matches that ended more than olderThan ago.
func (m *Manager) PruneFinished(olderThan time.Duration) int {
	cutoff := m.clock.Now().Add(-olderThan)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, t := range m.finished {
		if t.endedAt.Before(cutoff) {
			delete(m.finished, id)
			n++
		}
	}
	return n
}

// retire removes a finished session from the registry and leaves a
// tombstone behind.
func (m *Manager) retire(state game.MatchState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, state.MatchID)
	m.finished[state.MatchID] = tombstone{state: state, endedAt: m.clock.Now()}
}

func (m *Manager) render(state game.MatchState) {
	ctx, cancel := context.WithTimeout(context.Background(), m.rules.RenderTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			logging.Error("renderer panicked", fmt.Errorf("%v", r), logging.Fields{constants.LogFieldMatchID: state.MatchID})
		}
	}()
	if err := m.renderer.Render(ctx, state); err != nil {
		logging.Error("render failed", err, logging.Fields{
			constants.LogFieldMatchID: state.MatchID,
			constants.LogFieldPhase:   string(state.Phase),
		})
	}
}

func (m *Manager) notify(state game.MatchState) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("match observer panicked", fmt.Errorf("%v", r), logging.Fields{constants.LogFieldMatchID: state.MatchID})
		}
	}()
	m.observer.OnFinished(state.MatchID, state.Outcome, state.Reason)
}
