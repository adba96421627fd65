package dedupe

// Package dedupe provides shared singleflight groups used to coalesce
// concurrent loads. Only one load runs per key while other callers wait
// for its result.

import "golang.org/x/sync/singleflight"

// StatsGroup deduplicates reloads of the flavor stat table. Every duel
// accepted while a reload is in flight shares that reload.
var StatsGroup singleflight.Group
