package statistic

import (
	"context"
	"fmt"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/dateutil"
	"github.com/fitstakes/backend/pkg/xcontext"
)

func ToPeriodWithTime(periodString string, current time.Time) (entity.LeaderboardPeriodType, error) {
	switch periodString {
	case "day":
		return entity.NewLeaderboardPeriodDay(current), nil
	case "week":
		return entity.NewLeaderboardPeriodWeek(current), nil
	case "month":
		return entity.NewLeaderboardPeriodMonth(current), nil
	case "alltime":
		return entity.NewLeaderboardPeriodAllTime(), nil
	}

	return nil, fmt.Errorf("invalid period, expected day, week, month, or alltime, but got %s", periodString)
}

// ToPeriod resolves the current window in the platform reference timezone.
func ToPeriod(ctx context.Context, periodString string) (entity.LeaderboardPeriodType, error) {
	now := time.Now().In(xcontext.Configs(ctx).Leaderboard.Location())
	return ToPeriodWithTime(periodString, now)
}

// ToLastPeriod resolves the window right before the current one. Previous
// windows never change anymore, so their boards are immutable.
func ToLastPeriod(ctx context.Context, periodString string) (entity.LeaderboardPeriodType, error) {
	now := time.Now().In(xcontext.Configs(ctx).Leaderboard.Location())

	switch periodString {
	case "day":
		return entity.NewLeaderboardPeriodDay(dateutil.BeginningOfDay(now).Add(-time.Hour)), nil
	case "week":
		return entity.NewLeaderboardPeriodWeek(dateutil.BeginningOfWeek(now).AddDate(0, 0, -1)), nil
	case "month":
		return entity.NewLeaderboardPeriodMonth(dateutil.BeginningOfMonth(now).AddDate(0, 0, -1)), nil
	}

	return nil, fmt.Errorf("invalid period, expected day, week, or month, but got %s", periodString)
}
