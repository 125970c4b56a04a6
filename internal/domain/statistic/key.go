package statistic

import (
	"fmt"

	"github.com/fitstakes/backend/internal/entity"
)

// The zset carries live, approximate scores; the board key carries the
// ordered snapshot with exact tie-breaks.
func redisKeyLeaderboard(tierCode string, period entity.LeaderboardPeriodType) string {
	return fmt.Sprintf("leaderboard:%s:%s", tierCode, period.Period())
}

func redisKeyBoard(tierCode string, period entity.LeaderboardPeriodType) string {
	return fmt.Sprintf("board:%s:%s", tierCode, period.Period())
}
