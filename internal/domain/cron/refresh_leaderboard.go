package cron

import (
	"context"
	"time"

	"github.com/fitstakes/backend/internal/domain/statistic"
	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/pkg/xcontext"
)

// RefreshLeaderboardCronJob rebuilds every board from the transaction log
// so reads stay within the staleness bound even when no earn has touched
// the cache for a while.
type RefreshLeaderboardCronJob struct {
	leaderboard statistic.Leaderboard
	interval    time.Duration
}

func NewRefreshLeaderboardCronJob(
	leaderboard statistic.Leaderboard, interval time.Duration,
) *RefreshLeaderboardCronJob {
	return &RefreshLeaderboardCronJob{leaderboard: leaderboard, interval: interval}
}

func (job *RefreshLeaderboardCronJob) Do(ctx context.Context) {
	for _, tierCode := range tier.All() {
		for _, periodString := range []string{"day", "week", "month", "alltime"} {
			period, err := statistic.ToPeriod(ctx, periodString)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Invalid period: %v", err)
				continue
			}

			if _, err := job.leaderboard.Refresh(ctx, tierCode, period); err != nil {
				xcontext.Logger(ctx).Warnf(
					"Cannot refresh board %s/%s: %v", tierCode, period.Period(), err)
			}
		}
	}
}

func (job *RefreshLeaderboardCronJob) RunNow() bool {
	return true
}

func (job *RefreshLeaderboardCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
