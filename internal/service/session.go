package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/engine"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/logging"
)

const (
	reasonBothMissed  = "both players failed to choose in time"
	reasonStatsFailed = "could not load combat stats"
	reasonAborted     = "duel aborted"
)

// session drives a single match. Inbound calls mutate state under mu and
// poke wake; the run goroutine is the only one that advances the phase.
type session struct {
	m *Manager

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       game.MatchState
	responded   bool
	accepted    bool
	abortReason string

	wake chan struct{}
	done chan struct{}
}

func newSession(m *Manager, state game.MatchState) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		m:      m,
		ctx:    ctx,
		cancel: cancel,
		state:  state,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (s *session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *session) snapshot() game.MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *session) respond(responderID string, accept bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if responderID != s.state.PlayerB.ID {
		return ErrNotYourChallenge
	}
	if s.state.Phase != game.PhaseAwaitingAcceptance || s.responded {
		return ErrAlreadyResolved
	}
	if s.m.clock.Now().After(s.state.Deadline) {
		return ErrAlreadyResolved
	}
	s.responded = true
	s.accepted = accept
	s.signal()
	return nil
}

func (s *session) submitMove(playerID string, move game.MoveChoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.state.Fighter(playerID)
	if f == nil {
		return ErrNotAParticipant
	}
	switch s.state.Phase {
	case game.PhaseFinished:
		return ErrMatchFinished
	case game.PhaseAwaitingAcceptance:
		return ErrNotStarted
	}
	if move != game.MoveAttack && move != game.MoveDefend {
		return ErrInvalidMove
	}
	if f.HasChosen() {
		return ErrAlreadyChosen
	}
	f.Pending = move
	if s.state.PlayerA.HasChosen() && s.state.PlayerB.HasChosen() {
		s.signal()
	}
	return nil
}

func (s *session) abort(reason string) error {
	s.mu.Lock()
	if s.state.Phase == game.PhaseFinished {
		s.mu.Unlock()
		return ErrMatchFinished
	}
	if s.abortReason == "" {
		s.abortReason = reason
	}
	s.mu.Unlock()
	s.cancel()
	<-s.done
	return nil
}

func (s *session) run() {
	defer close(s.done)
	defer s.cancel()
	s.play()
	s.finish()
}

// play returns once state.Phase is Finished.
func (s *session) play() {
	if !s.awaitAcceptance() {
		return
	}
	if !s.start() {
		return
	}
	for s.playRound() {
	}
}

// closeLocked moves the match to Finished. The caller holds mu.
func (s *session) closeLocked(outcome game.Outcome, reason string) {
	s.state.Phase = game.PhaseFinished
	s.state.Outcome = outcome
	s.state.Reason = reason
	s.state.Deadline = time.Time{}
	s.state.PlayerA.Pending = game.MoveNone
	s.state.PlayerB.Pending = game.MoveNone
}

func (s *session) closeAborted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Phase == game.PhaseFinished {
		return
	}
	reason := s.abortReason
	if reason == "" {
		reason = reasonAborted
	}
	s.closeLocked(game.OutcomeAborted, reason)
}

func (s *session) awaitAcceptance() bool {
	s.mu.Lock()
	wait := s.state.Deadline.Sub(s.m.clock.Now())
	s.mu.Unlock()
	timer := s.m.clock.NewTimer(wait)
	defer timer.Stop()

	for {
		expired := false
		select {
		case <-s.ctx.Done():
			s.closeAborted()
			return false
		case <-s.wake:
		case <-timer.Chan():
			expired = true
		}

		s.mu.Lock()
		switch {
		case s.responded && s.accepted:
			s.mu.Unlock()
			return true
		case s.responded:
			s.closeLocked(game.OutcomeDeclined, fmt.Sprintf("%s declined the duel", s.state.PlayerB.Name))
			s.mu.Unlock()
			return false
		case expired:
			// closes the window so a late response sees ErrAlreadyResolved
			s.responded = true
			s.closeLocked(game.OutcomeAcceptanceTimedOut, fmt.Sprintf("%s did not answer in time", s.state.PlayerB.Name))
			s.mu.Unlock()
			return false
		}
		s.mu.Unlock()
	}
}

// start snapshots both players' stats and enters round 1.
func (s *session) start() bool {
	s.mu.Lock()
	a, b := s.state.PlayerA.ID, s.state.PlayerB.ID
	s.mu.Unlock()

	statsA, err := s.m.stats.LookupStats(s.ctx, a)
	if err == nil {
		var statsB game.CombatStats
		statsB, err = s.m.stats.LookupStats(s.ctx, b)
		if err == nil {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.state.Phase == game.PhaseFinished {
				return false
			}
			s.state.PlayerA.Stats = statsA
			s.state.PlayerB.Stats = statsB
			s.state.PlayerA.HP = s.m.rules.MaxHP
			s.state.PlayerB.HP = s.m.rules.MaxHP
			s.state.Round = 1
			s.state.Phase = game.PhaseInProgress
			return true
		}
	}

	if s.ctx.Err() != nil {
		s.closeAborted()
		return false
	}
	logging.Error("failed to load combat stats", err, logging.Fields{constants.LogFieldMatchID: s.state.MatchID})
	s.mu.Lock()
	s.closeLocked(game.OutcomeAborted, reasonStatsFailed)
	s.mu.Unlock()
	return false
}

// playRound runs one round and reports whether the match continues.
func (s *session) playRound() bool {
	s.mu.Lock()
	s.state.PlayerA.Pending = game.MoveNone
	s.state.PlayerB.Pending = game.MoveNone
	s.state.Deadline = s.m.clock.Now().Add(s.m.rules.RoundTimeout)
	timer := s.m.clock.NewTimer(s.m.rules.RoundTimeout)
	snap := s.state.Clone()
	s.mu.Unlock()
	defer timer.Stop()

	s.m.render(snap)

	for {
		select {
		case <-s.ctx.Done():
			s.closeAborted()
			return false
		case <-s.wake:
			s.mu.Lock()
			if !s.state.PlayerA.HasChosen() || !s.state.PlayerB.HasChosen() {
				s.mu.Unlock()
				continue
			}
			more := s.resolveLocked()
			s.mu.Unlock()
			return more
		case <-timer.Chan():
			s.mu.Lock()
			more := s.timeoutLocked()
			s.mu.Unlock()
			return more
		}
	}
}

// resolveLocked applies one round. The caller holds mu and both moves are set.
func (s *session) resolveLocked() bool {
	a, b := &s.state.PlayerA, &s.state.PlayerB
	res := s.m.resolver.Resolve(a.Pending, b.Pending, a.Stats.Attack, a.TotalDefense(), b.Stats.Attack, b.TotalDefense(), s.m.roller)

	a.HP -= res.DamageToA
	b.HP -= res.DamageToB
	a.BonusDefense = res.BonusA
	b.BonusDefense = res.BonusB
	summary := engine.Summarize(s.state.Round, a.Pending, b.Pending, res)
	s.state.LastRound = &summary
	s.state.Round++
	a.Pending = game.MoveNone
	b.Pending = game.MoveNone

	logging.Debug("round resolved", logging.Fields{
		constants.LogFieldMatchID: s.state.MatchID,
		constants.LogFieldRound:   summary.Round,
	})

	switch {
	case a.HP <= 0 && b.HP <= 0:
		s.closeLocked(game.OutcomeDraw, "both fighters went down together")
	case a.HP <= 0:
		s.closeLocked(game.OutcomeWinB, fmt.Sprintf("%s was knocked out", a.Name))
	case b.HP <= 0:
		s.closeLocked(game.OutcomeWinA, fmt.Sprintf("%s was knocked out", b.Name))
	default:
		return true
	}
	return false
}

// timeoutLocked ends the round when the timer fires. A round resolved by
// a move that landed first is still honored.
func (s *session) timeoutLocked() bool {
	a, b := s.state.PlayerA, s.state.PlayerB
	switch {
	case a.HasChosen() && b.HasChosen():
		return s.resolveLocked()
	case a.HasChosen():
		s.closeLocked(game.OutcomeForfeitA, fmt.Sprintf("%s failed to choose in time", b.Name))
	case b.HasChosen():
		s.closeLocked(game.OutcomeForfeitB, fmt.Sprintf("%s failed to choose in time", a.Name))
	default:
		s.closeLocked(game.OutcomeDraw, reasonBothMissed)
	}
	return false
}

func (s *session) finish() {
	snap := s.snapshot()
	s.m.retire(snap)
	s.m.render(snap)

	logging.Info("duel finished", logging.Fields{
		constants.LogFieldMatchID: snap.MatchID,
		constants.LogFieldOutcome: string(snap.Outcome),
		constants.LogFieldReason:  snap.Reason,
		constants.LogFieldRound:   snap.Round,
	})
	s.m.notify(snap)
}
