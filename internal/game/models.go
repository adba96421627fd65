package game

import (
	"strings"
	"time"
)

// MaxHitPoints is the HP both fighters start a duel with.
const MaxHitPoints = 30

// MoveChoice is a player's hidden choice for the current round.
type MoveChoice string

const (
	MoveNone   MoveChoice = ""
	MoveAttack MoveChoice = "atk"
	MoveDefend MoveChoice = "def"
)

// ParseMove maps user input ("atk", "attack", "def", "defend") to a
// MoveChoice. Anything else yields MoveNone and false.
func ParseMove(s string) (MoveChoice, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atk", "attack":
		return MoveAttack, true
	case "def", "defend":
		return MoveDefend, true
	default:
		return MoveNone, false
	}
}

// Label returns the word shown to players for the move.
func (m MoveChoice) Label() string {
	switch m {
	case MoveAttack:
		return "attack"
	case MoveDefend:
		return "defend"
	default:
		return "nothing"
	}
}

type Phase string

const (
	PhaseAwaitingAcceptance Phase = "awaiting_acceptance"
	PhaseInProgress         Phase = "in_progress"
	PhaseFinished           Phase = "finished"
)

// Outcome is unset until the match reaches PhaseFinished.
type Outcome string

const (
	OutcomeNone               Outcome = ""
	OutcomeWinA               Outcome = "win_a"
	OutcomeWinB               Outcome = "win_b"
	OutcomeDraw               Outcome = "draw"
	// OutcomeForfeitA awards the match to player A because B did not choose.
	OutcomeForfeitA           Outcome = "forfeit_a"
	// OutcomeForfeitB awards the match to player B because A did not choose.
	OutcomeForfeitB           Outcome = "forfeit_b"
	OutcomeDeclined           Outcome = "declined"
	OutcomeAcceptanceTimedOut Outcome = "acceptance_timed_out"
	OutcomeAborted            Outcome = "aborted"
)

// Side identifies one of the two fighters.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// Winner reports which side won, or SideNone for draws and matches that
// never started.
func (o Outcome) Winner() Side {
	switch o {
	case OutcomeWinA, OutcomeForfeitA:
		return SideA
	case OutcomeWinB, OutcomeForfeitB:
		return SideB
	default:
		return SideNone
	}
}

// Started reports whether the outcome can only be reached from a match
// that entered PhaseInProgress.
func (o Outcome) Started() bool {
	switch o {
	case OutcomeWinA, OutcomeWinB, OutcomeDraw, OutcomeForfeitA, OutcomeForfeitB:
		return true
	}
	return false
}

// CombatStats is the per-player snapshot taken once at acceptance. Buffs
// never mutate it; they live in Fighter.BonusDefense.
type CombatStats struct {
	Category string `json:"category"`
	Attack   int    `json:"attack"`
	Defense  int    `json:"defense"`
}

// Participant is the identity supplied by the hosting platform.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Fighter struct {
	Participant
	Stats   CombatStats `json:"stats"`
	HP      int         `json:"hp"`
	Pending MoveChoice  `json:"-"`
	// BonusDefense is carried in from the previous round's outcome (0 or 1).
	BonusDefense int `json:"bonus_defense"`
}

// TotalDefense is the defense used for damage: base plus carried bonus.
func (f Fighter) TotalDefense() int {
	return f.Stats.Defense + f.BonusDefense
}

// DisplayHP clamps HP at zero for presentation.
func (f Fighter) DisplayHP() int {
	if f.HP < 0 {
		return 0
	}
	return f.HP
}

// HasChosen reports whether the fighter already locked a move this round.
func (f Fighter) HasChosen() bool {
	return f.Pending != MoveNone
}

// RoundSummary describes the round that was just resolved.
type RoundSummary struct {
	Round     int        `json:"round"`
	MoveA     MoveChoice `json:"move_a"`
	MoveB     MoveChoice `json:"move_b"`
	DamageToA int        `json:"damage_to_a"`
	DamageToB int        `json:"damage_to_b"`
	CritA     bool       `json:"crit_a"`
	CritB     bool       `json:"crit_b"`
}

// MatchState is the aggregate owned by a single match session.
type MatchState struct {
	MatchID   string        `json:"match_id"`
	ChannelID string        `json:"channel_id"`
	PlayerA   Fighter       `json:"player_a"`
	PlayerB   Fighter       `json:"player_b"`
	Round     int           `json:"round"`
	Phase     Phase         `json:"phase"`
	Outcome   Outcome       `json:"outcome"`
	Reason    string        `json:"reason"`
	LastRound *RoundSummary `json:"last_round,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	// Deadline is when the current wait (acceptance or round) times out.
	Deadline time.Time `json:"deadline"`
}

// Clone returns a copy that shares no mutable memory with s.
func (s MatchState) Clone() MatchState {
	out := s
	if s.LastRound != nil {
		lr := *s.LastRound
		out.LastRound = &lr
	}
	return out
}

// Fighter returns the fighter for a player id and its side.
func (s *MatchState) Fighter(playerID string) (*Fighter, Side) {
	switch playerID {
	case s.PlayerA.ID:
		return &s.PlayerA, SideA
	case s.PlayerB.ID:
		return &s.PlayerB, SideB
	}
	return nil, SideNone
}

// Name returns the display name for a side.
func (s MatchState) Name(side Side) string {
	switch side {
	case SideA:
		return s.PlayerA.Name
	case SideB:
		return s.PlayerB.Name
	}
	return ""
}
