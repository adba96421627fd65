package api

import (
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ericogr/dew-duel/internal/config"
	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/engine"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/keys"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/ericogr/dew-duel/internal/render"
	"github.com/ericogr/dew-duel/internal/storage"

	"github.com/gin-gonic/gin"
)

// StatsCache is dropped whenever flavor stats change.
type StatsCache interface {
	Invalidate()
}

// FlavorHandler serves the rules and the flavor stat table.
type FlavorHandler struct {
	repo  storage.Repository
	cache StatsCache
	rules config.DuelRules

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFlavorHandler(repo storage.Repository, cache StatsCache, rules config.DuelRules) *FlavorHandler {
	return &FlavorHandler{
		repo:  repo,
		cache: cache,
		rules: rules,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type flavorView struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
}

func toView(f game.Flavor) flavorView {
	return flavorView{Key: f.Key, Name: f.Name, Attack: f.Attack, Defense: f.Defense}
}

type RollRequest struct {
	Names []string `json:"names" binding:"required"`
}

type AssignRequest struct {
	Flavor string `json:"flavor" binding:"required"`
}

// Rules returns the duel rules text.
func (h *FlavorHandler) Rules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"text":                  render.Rules(h.rules),
		"max_hp":                h.rules.MaxHP,
		"round_timeout_seconds": int(h.rules.RoundTimeout.Seconds()),
		"crit_chance":           h.rules.CritChance,
		"crit_multiplier":       h.rules.CritMultiplier,
	})
}

// ListFlavors returns every flavor with its duel stats.
func (h *FlavorHandler) ListFlavors(c *gin.Context) {
	flavors, err := h.repo.ListFlavors()
	if err != nil {
		logging.Error("failed to list flavors", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchFlavors})
		return
	}
	if len(flavors) == 0 {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrNoFlavors})
		return
	}
	out := make([]flavorView, 0, len(flavors))
	for _, f := range flavors {
		out = append(out, toView(f))
	}
	c.JSON(http.StatusOK, out)
}

// RollFlavors generates fresh random stats for the named flavors,
// creating them when missing. Admin only.
func (h *FlavorHandler) RollFlavors(c *gin.Context) {
	var req RollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	out := make([]flavorView, 0, len(req.Names))
	for _, name := range req.Names {
		name = strings.TrimSpace(name)
		key := keys.FlavorKey(name)
		if key == "" {
			continue
		}
		stats := h.roll()
		f := game.Flavor{Key: key, Name: name, Attack: stats.Attack, Defense: stats.Defense}
		if err := h.repo.UpsertFlavor(&f); err != nil {
			logging.Error("failed to save rolled flavor", err, logging.Fields{constants.LogFieldFlavor: key})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedSaveFlavors})
			return
		}
		out = append(out, toView(f))
	}
	if len(out) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	h.cache.Invalidate()
	logging.Info("flavor stats rolled", logging.Fields{constants.LogFieldCount: len(out)})
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: constants.MsgStatsRolled, "flavors": out})
}

func (h *FlavorHandler) roll() game.CombatStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return engine.RollStats(h.rng)
}

// AssignFlavor sets the flavor category of a member. Admin only.
func (h *FlavorHandler) AssignFlavor(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	playerID := c.Param("playerID")
	key := keys.FlavorKey(req.Flavor)
	if err := h.repo.AssignFlavor(playerID, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrUnknownFlavor})
			return
		}
		logging.Error("failed to assign flavor", err, logging.Fields{constants.LogFieldPlayerID: playerID, constants.LogFieldFlavor: key})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedAssignFlavor})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: constants.MsgFlavorSet, "player_id": playerID, "flavor": key})
}
