package api

import (
	"errors"
	"net/http"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/keys"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/ericogr/dew-duel/internal/render"
	"github.com/ericogr/dew-duel/internal/service"

	"github.com/gin-gonic/gin"
)

// DuelHandler groups the duel HTTP handlers.
type DuelHandler struct {
	manager *service.Manager
	pairs   *PairRegistry
	board   *render.Board
}

func NewDuelHandler(manager *service.Manager, pairs *PairRegistry, board *render.Board) *DuelHandler {
	return &DuelHandler{manager: manager, pairs: pairs, board: board}
}

type CreateDuelRequest struct {
	TargetID   string `json:"target_id" binding:"required"`
	TargetName string `json:"target_name"`
	ChannelID  string `json:"channel_id"`
}

type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

type MoveRequest struct {
	Move string `json:"move" binding:"required"`
}

type AbortRequest struct {
	Reason string `json:"reason"`
}

// CreateDuel issues a challenge from the caller to the target.
func (h *DuelHandler) CreateDuel(c *gin.Context) {
	var req CreateDuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	challenger := currentPlayer(c)
	target := game.Participant{ID: req.TargetID, Name: req.TargetName}
	if target.Name == "" {
		target.Name = target.ID
	}

	pairKey := keys.PairKey(req.ChannelID, challenger.ID, target.ID)
	if !h.pairs.Reserve(pairKey) {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrPairBusy})
		return
	}
	matchID, err := h.manager.CreateMatch(c.Request.Context(), service.CreateRequest{
		Challenger: challenger,
		Target:     target,
		ChannelID:  req.ChannelID,
	})
	if err != nil {
		h.pairs.Release(pairKey)
		writeServiceError(c, err, constants.ErrFailedCreateDuel)
		return
	}
	h.pairs.Bind(pairKey, matchID)
	// the duel may already be over (e.g. aborted at shutdown) before Bind ran
	if st, err := h.manager.Snapshot(matchID); err != nil || st.Phase == game.PhaseFinished {
		h.pairs.releaseMatch(matchID)
	}
	c.JSON(http.StatusCreated, gin.H{"match_id": matchID, constants.JSONKeyMessage: constants.MsgChallengeSent})
}

// GetDuel returns the latest board for a duel.
func (h *DuelHandler) GetDuel(c *gin.Context) {
	matchID := c.Param("matchID")
	if f, ok := h.board.Frame(matchID); ok {
		c.JSON(http.StatusOK, f)
		return
	}
	st, err := h.manager.Snapshot(matchID)
	if err != nil {
		writeServiceError(c, err, constants.ErrDuelNotFound)
		return
	}
	c.JSON(http.StatusOK, render.Frame{State: st, Text: render.Text(st)})
}

// RespondDuel accepts or declines a challenge addressed to the caller.
func (h *DuelHandler) RespondDuel(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	player := currentPlayer(c)
	if err := h.manager.RespondToChallenge(c.Param("matchID"), player.ID, *req.Accept); err != nil {
		writeServiceError(c, err, constants.ErrInvalidRequest)
		return
	}
	msg := constants.MsgDeclined
	if *req.Accept {
		msg = constants.MsgAccepted
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: msg})
}

// SubmitMove locks in the caller's hidden move for the current round.
func (h *DuelHandler) SubmitMove(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	move, ok := game.ParseMove(req.Move)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidMove})
		return
	}
	player := currentPlayer(c)
	matchID := c.Param("matchID")
	err := h.manager.SubmitMove(matchID, player.ID, move)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: constants.MsgMoveStored})
	case errors.Is(err, service.ErrMatchFinished):
		// late clicks on a finished duel are expected and not worth an error log
		c.JSON(http.StatusGone, gin.H{constants.JSONKeyError: constants.ErrDuelFinished, constants.JSONKeyMessage: constants.MsgMoveIgnored})
	default:
		writeServiceError(c, err, constants.ErrFailedStoreMove)
	}
}

// AbortDuel force-finishes a duel. Admin only.
func (h *DuelHandler) AbortDuel(c *gin.Context) {
	var req AbortRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)
	matchID := c.Param("matchID")
	if err := h.manager.AbortMatch(matchID, req.Reason); err != nil {
		writeServiceError(c, err, constants.ErrInvalidRequest)
		return
	}
	logging.Info("duel aborted by admin", logging.Fields{
		constants.LogFieldMatchID:  matchID,
		constants.LogFieldPlayerID: currentPlayer(c).ID,
		constants.LogFieldReason:   req.Reason,
	})
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: constants.MsgAborted})
}

// writeServiceError maps service sentinels to status codes. Unknown
// errors are logged and answered with fallback.
func writeServiceError(c *gin.Context, err error, fallback string) {
	status, msg := http.StatusInternalServerError, fallback
	switch {
	case errors.Is(err, service.ErrUnknownMatch):
		status, msg = http.StatusNotFound, constants.ErrDuelNotFound
	case errors.Is(err, service.ErrNotYourChallenge):
		status, msg = http.StatusForbidden, constants.ErrNotYourChallenge
	case errors.Is(err, service.ErrNotAParticipant):
		status, msg = http.StatusForbidden, constants.ErrNotAParticipant
	case errors.Is(err, service.ErrAlreadyResolved):
		status, msg = http.StatusConflict, constants.ErrAlreadyResolved
	case errors.Is(err, service.ErrAlreadyChosen):
		status, msg = http.StatusConflict, constants.ErrAlreadyChosen
	case errors.Is(err, service.ErrNotStarted):
		status, msg = http.StatusConflict, constants.ErrDuelNotStarted
	case errors.Is(err, service.ErrMatchFinished):
		status, msg = http.StatusGone, constants.ErrDuelFinished
	case errors.Is(err, service.ErrSelfChallenge):
		status, msg = http.StatusBadRequest, constants.ErrSelfChallenge
	case errors.Is(err, service.ErrInvalidMove):
		status, msg = http.StatusBadRequest, constants.ErrInvalidMove
	case errors.Is(err, service.ErrNotEligible):
		status, msg = http.StatusUnprocessableEntity, constants.ErrNotEligible
	default:
		logging.Error("duel request failed", err, logging.Fields{constants.LogFieldMatchID: c.Param("matchID")})
	}
	c.JSON(status, gin.H{constants.JSONKeyError: msg})
}
