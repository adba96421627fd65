package service

import "errors"

var (
	ErrSelfChallenge    = errors.New("cannot challenge yourself")
	ErrNotEligible      = errors.New("player has no duel category")
	ErrUnknownMatch     = errors.New("unknown match")
	ErrNotYourChallenge = errors.New("challenge is addressed to another player")
	ErrAlreadyResolved  = errors.New("challenge already resolved")
	ErrNotAParticipant  = errors.New("player is not part of this match")
	ErrAlreadyChosen    = errors.New("move already chosen this round")
	ErrMatchFinished    = errors.New("match is finished")
	ErrInvalidMove      = errors.New("invalid move")
	ErrNotStarted       = errors.New("match has not started")
)
