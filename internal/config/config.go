package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ericogr/dew-duel/internal/game"
	"github.com/ericogr/dew-duel/internal/keys"
)

const (
	defaultAddress           = ":8080"
	defaultAcceptTimeout     = 60 * time.Second
	defaultRoundTimeout      = 60 * time.Second
	defaultRenderTimeout     = 5 * time.Second
	defaultCritChance        = 0.1
	defaultCritMultiplier    = 1.5
	defaultFinishedRetention = 10 * time.Minute
	defaultStatsRefresh      = 5 * time.Minute
)

type flavorEntry struct {
	Name    string `json:"name"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
}

type rawConfig struct {
	FlavorList []flavorEntry `json:"flavor_list"`
	Server     *struct {
		Address string `json:"address"`
	} `json:"server"`
	Duel *struct {
		MaxHP                int      `json:"max_hp"`
		AcceptTimeoutSeconds int      `json:"accept_timeout_seconds"`
		RoundTimeoutSeconds  int      `json:"round_timeout_seconds"`
		RenderTimeoutSeconds int      `json:"render_timeout_seconds"`
		CritChance           *float64 `json:"crit_chance"`
		CritMultiplier       *float64 `json:"crit_multiplier"`
	} `json:"duel"`
	// How long finished duel ids are remembered so late clicks get a
	// "duel is over" answer instead of "not found".
	FinishedRetentionMinutes int `json:"finished_retention_minutes"`
	// How often the cached flavor stat table is dropped and reloaded.
	StatsRefreshMinutes int `json:"stats_refresh_minutes"`
}

// DuelRules are the tunable constants of a match.
type DuelRules struct {
	MaxHP          int
	AcceptTimeout  time.Duration
	RoundTimeout   time.Duration
	RenderTimeout  time.Duration
	CritChance     float64
	CritMultiplier float64
}

// LoadedConfig contains flavors to seed, the server address and duel rules.
type LoadedConfig struct {
	Flavors           []game.Flavor
	ServerAddress     string
	Duel              DuelRules
	FinishedRetention time.Duration
	StatsRefresh      time.Duration
}

// DefaultDuelRules returns the rules used when the config omits them.
func DefaultDuelRules() DuelRules {
	return DuelRules{
		MaxHP:          game.MaxHitPoints,
		AcceptTimeout:  defaultAcceptTimeout,
		RoundTimeout:   defaultRoundTimeout,
		RenderTimeout:  defaultRenderTimeout,
		CritChance:     defaultCritChance,
		CritMultiplier: defaultCritMultiplier,
	}
}

// LoadConfig reads the configuration file at path. The `flavor_list` key
// may be empty; admins can roll stats for new flavors at runtime.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return parseConfig(path, b)
}

func parseConfig(path string, b []byte) (*LoadedConfig, error) {
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	out := make([]game.Flavor, 0, len(rc.FlavorList))
	seen := make(map[string]struct{}, len(rc.FlavorList))
	for _, f := range rc.FlavorList {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("config file %s: flavor entry missing 'name'", path)
		}
		if f.Attack < 0 || f.Defense < 0 {
			return nil, fmt.Errorf("config file %s: flavor '%s' has negative stats", path, name)
		}
		key := keys.FlavorKey(name)
		if _, exists := seen[key]; exists {
			return nil, fmt.Errorf("config file %s: duplicate flavor name '%s'", path, name)
		}
		seen[key] = struct{}{}
		out = append(out, game.Flavor{Key: key, Name: name, Attack: f.Attack, Defense: f.Defense})
	}

	addr := defaultAddress
	if rc.Server != nil && rc.Server.Address != "" {
		addr = rc.Server.Address
	}

	rules := DefaultDuelRules()
	if d := rc.Duel; d != nil {
		if d.MaxHP < 0 || d.AcceptTimeoutSeconds < 0 || d.RoundTimeoutSeconds < 0 || d.RenderTimeoutSeconds < 0 {
			return nil, fmt.Errorf("config file %s: duel values must not be negative", path)
		}
		if d.MaxHP > 0 {
			rules.MaxHP = d.MaxHP
		}
		if d.AcceptTimeoutSeconds > 0 {
			rules.AcceptTimeout = time.Duration(d.AcceptTimeoutSeconds) * time.Second
		}
		if d.RoundTimeoutSeconds > 0 {
			rules.RoundTimeout = time.Duration(d.RoundTimeoutSeconds) * time.Second
		}
		if d.RenderTimeoutSeconds > 0 {
			rules.RenderTimeout = time.Duration(d.RenderTimeoutSeconds) * time.Second
		}
		if d.CritChance != nil {
			if *d.CritChance < 0 || *d.CritChance > 1 {
				return nil, fmt.Errorf("config file %s: crit_chance must be within [0,1]", path)
			}
			rules.CritChance = *d.CritChance
		}
		if d.CritMultiplier != nil {
			if *d.CritMultiplier < 1 {
				return nil, fmt.Errorf("config file %s: crit_multiplier must be at least 1", path)
			}
			rules.CritMultiplier = *d.CritMultiplier
		}
	}

	retention := defaultFinishedRetention
	if rc.FinishedRetentionMinutes > 0 {
		retention = time.Duration(rc.FinishedRetentionMinutes) * time.Minute
	}
	refresh := defaultStatsRefresh
	if rc.StatsRefreshMinutes > 0 {
		refresh = time.Duration(rc.StatsRefreshMinutes) * time.Minute
	}

	return &LoadedConfig{
		Flavors:           out,
		ServerAddress:     addr,
		Duel:              rules,
		FinishedRetention: retention,
		StatsRefresh:      refresh,
	}, nil
}
