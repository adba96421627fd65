package main

import (
	"time"

	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/ericogr/dew-duel/internal/render"
	"github.com/ericogr/dew-duel/internal/service"

	"github.com/go-co-op/gocron/v2"
)

const pruneInterval = time.Minute

// startScheduler runs the housekeeping jobs: forgetting finished duels
// and refreshing the cached flavor stat table.
func startScheduler(manager *service.Manager, board *render.Board, stats *service.RepositoryStats, retention, refresh time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(pruneInterval),
		gocron.NewTask(func() {
			duels := manager.PruneFinished(retention)
			frames := board.Prune(retention)
			if duels > 0 || frames > 0 {
				logging.Debug("pruned finished duels", logging.Fields{
					constants.LogFieldJob:   "prune-finished",
					constants.LogFieldCount: duels,
					"frames":                frames,
				})
			}
		}),
		gocron.WithName("prune-finished"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(refresh),
		gocron.NewTask(func() {
			stats.Invalidate()
			logging.Debug("flavor stat cache invalidated", logging.Fields{constants.LogFieldJob: "stats-refresh"})
		}),
		gocron.WithName("stats-refresh"),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
