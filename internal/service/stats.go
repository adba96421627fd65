package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/dedupe"
	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/ericogr/dew-duel/internal/storage"
)

// FlavorReader is the part of storage.Repository the stat source needs.
type FlavorReader interface {
	ListFlavors() ([]game.Flavor, error)
	GetMemberFlavorKey(playerID string) (string, error)
}

// RepositoryStats serves combat stats from the flavor store. The flavor
// table is cached in memory; concurrent reloads share one query.
type RepositoryStats struct {
	repo FlavorReader

	mu    sync.RWMutex
	table map[string]game.CombatStats
}

func NewRepositoryStats(repo FlavorReader) *RepositoryStats {
	return &RepositoryStats{repo: repo}
}

func (s *RepositoryStats) Eligible(ctx context.Context, playerID string) error {
	_, err := s.LookupStats(ctx, playerID)
	return err
}

func (s *RepositoryStats) LookupStats(ctx context.Context, playerID string) (game.CombatStats, error) {
	key, err := s.repo.GetMemberFlavorKey(playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return game.CombatStats{}, ErrNotEligible
	}
	if err != nil {
		return game.CombatStats{}, err
	}
	table, err := s.load(ctx)
	if err != nil {
		return game.CombatStats{}, err
	}
	stats, ok := table[key]
	if !ok {
		return game.CombatStats{}, ErrNotEligible
	}
	return stats, nil
}

// Invalidate drops the cached table so the next lookup reloads it.
func (s *RepositoryStats) Invalidate() {
	s.mu.Lock()
	s.table = nil
	s.mu.Unlock()
}

func (s *RepositoryStats) load(ctx context.Context) (map[string]game.CombatStats, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	ch := dedupe.StatsGroup.DoChan(fmt.Sprintf("flavor-table:%p", s), func() (interface{}, error) {
		flavors, err := s.repo.ListFlavors()
		if err != nil {
			return nil, err
		}
		t := make(map[string]game.CombatStats, len(flavors))
		for _, f := range flavors {
			t[f.Key] = f.Stats()
		}
		s.mu.Lock()
		s.table = t
		s.mu.Unlock()
		logging.Debug("flavor table loaded", logging.Fields{constants.LogFieldCount: len(t)})
		return t, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]game.CombatStats), nil
	}
}
