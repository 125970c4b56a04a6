package statistic

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/fitstakes/backend/pkg/xredis"
	"github.com/puzpuzpuz/xsync"
	"github.com/redis/go-redis/v9"
)

// Board is the ordered snapshot of one tier and window. Entry order is the
// full deterministic ranking: points earned descending, then the earlier
// last contributing earn, then more distinct active days, then account id.
type Board struct {
	Tier        string       `json:"tier"`
	PeriodValue string       `json:"period_value"`
	RefreshedAt time.Time    `json:"refreshed_at"`
	Entries     []BoardEntry `json:"entries"`
}

type BoardEntry struct {
	AccountID    string    `json:"account_id"`
	Points       int64     `json:"points"`
	ActiveDays   int64     `json:"active_days"`
	LastEarnedAt time.Time `json:"last_earned_at"`
}

// Rank resolves an account's position on the board, 1-based. Zero means
// the account is not on it.
func (b *Board) Rank(accountID string) uint64 {
	for i, entry := range b.Entries {
		if entry.AccountID == accountID {
			return uint64(i) + 1
		}
	}

	return 0
}

type Leaderboard interface {
	GetLeaderboard(
		ctx context.Context,
		tierCode string,
		period entity.LeaderboardPeriodType,
		offset, limit int,
	) (*Board, []BoardEntry, error)

	GetRank(
		ctx context.Context,
		accountID, tierCode string,
		period entity.LeaderboardPeriodType,
	) (uint64, int64, bool, error)

	GetPreviousLeaderboard(
		ctx context.Context,
		tierCode string,
		period entity.LeaderboardPeriodType,
		offset, limit int,
	) (*Board, []BoardEntry, error)

	ChangePoints(
		ctx context.Context,
		accountID string,
		earnedAt time.Time,
		value int64,
		tierCodes []string,
	) error

	Refresh(
		ctx context.Context,
		tierCode string,
		period entity.LeaderboardPeriodType,
	) (*Board, error)
}

type leaderboard struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	redisClient     xredis.Client

	// Boards of closed windows never change again, so they are kept
	// in-process for the lifetime of the service.
	prevBoards *xsync.MapOf[string, *Board]
}

func New(
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	redisClient xredis.Client,
) *leaderboard {
	return &leaderboard{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		redisClient:     redisClient,
		prevBoards:      xsync.NewMapOf[*Board](),
	}
}

func (l *leaderboard) GetLeaderboard(
	ctx context.Context,
	tierCode string,
	period entity.LeaderboardPeriodType,
	offset, limit int,
) (*Board, []BoardEntry, error) {
	board, err := l.getBoard(ctx, tierCode, period)
	if err != nil {
		return nil, nil, err
	}

	// Pages inside the snapshot come back with exact ordering. Deeper
	// pages fall through to the live zset, which cannot break ties.
	if offset+limit <= len(board.Entries) {
		return board, board.Entries[offset : offset+limit], nil
	}

	if offset < len(board.Entries) {
		return board, board.Entries[offset:], nil
	}

	results, err := l.redisClient.ZRevRangeWithScores(
		ctx, redisKeyLeaderboard(tierCode, period), offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, nil, errorx.Unknown
	}

	entries := []BoardEntry{}
	for _, z := range results {
		entries = append(entries, BoardEntry{
			AccountID: z.Member.(string),
			Points:    int64(z.Score),
		})
	}

	return board, entries, nil
}

func (l *leaderboard) GetRank(
	ctx context.Context,
	accountID, tierCode string,
	period entity.LeaderboardPeriodType,
) (uint64, int64, bool, error) {
	board, err := l.getBoard(ctx, tierCode, period)
	if err != nil {
		return 0, 0, false, err
	}

	if rank := board.Rank(accountID); rank != 0 {
		entry := board.Entries[rank-1]
		return rank, entry.Points, false, nil
	}

	// Off the snapshot; the live zset still gives a usable estimate.
	rank, err := l.redisClient.ZRevRank(ctx, redisKeyLeaderboard(tierCode, period), accountID)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			xcontext.Logger(ctx).Debugf("Cannot get rev rank redis: %v", err)
		}

		return 0, 0, false, nil
	}

	return rank + 1, 0, true, nil
}

func (l *leaderboard) GetPreviousLeaderboard(
	ctx context.Context,
	tierCode string,
	period entity.LeaderboardPeriodType,
	offset, limit int,
) (*Board, []BoardEntry, error) {
	key := redisKeyBoard(tierCode, period)
	if board, ok := l.prevBoards.Load(key); ok {
		return board, pageOf(board.Entries, offset, limit), nil
	}

	var board Board
	err := l.redisClient.GetObj(ctx, key, &board)
	if err != nil && !errors.Is(err, redis.Nil) {
		xcontext.Logger(ctx).Errorf("Cannot get previous board from redis: %v", err)
		return nil, nil, errorx.Unknown
	}

	if err != nil {
		built, err := l.build(ctx, tierCode, period, 0)
		if err != nil {
			return nil, nil, err
		}

		board = *built
	}

	l.prevBoards.Store(key, &board)
	return &board, pageOf(board.Entries, offset, limit), nil
}

func (l *leaderboard) ChangePoints(
	ctx context.Context,
	accountID string,
	earnedAt time.Time,
	value int64,
	tierCodes []string,
) error {
	for _, tierCode := range tierCodes {
		for _, periodString := range []string{"day", "week", "month", "alltime"} {
			period, err := ToPeriodWithTime(periodString, earnedAt)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Invalid period: %v", err)
				return errorx.Unknown
			}

			key := redisKeyLeaderboard(tierCode, period)
			ok, err := l.redisClient.Exist(ctx, key)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
				return errorx.Unknown
			}

			// A cold zset gets its full scores on the next rebuild; nothing
			// to move now.
			if !ok {
				continue
			}

			if err := l.redisClient.ZIncrBy(ctx, key, value, accountID); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot call ZIncrBy redis: %v", err)
			}
		}
	}

	return nil
}

func (l *leaderboard) Refresh(
	ctx context.Context, tierCode string, period entity.LeaderboardPeriodType,
) (*Board, error) {
	ttl := xcontext.Configs(ctx).Leaderboard.StalenessBound.Duration
	return l.build(ctx, tierCode, period, ttl)
}

func (l *leaderboard) getBoard(
	ctx context.Context, tierCode string, period entity.LeaderboardPeriodType,
) (*Board, error) {
	var board Board
	err := l.redisClient.GetObj(ctx, redisKeyBoard(tierCode, period), &board)
	if err == nil {
		return &board, nil
	}

	if !errors.Is(err, redis.Nil) {
		xcontext.Logger(ctx).Errorf("Cannot get board from redis: %v", err)
	}

	return l.Refresh(ctx, tierCode, period)
}

// build recomputes the board from the transaction log and swaps it into
// redis together with the authoritative zset scores. A ttl of zero keeps
// the snapshot forever, which is what closed windows want.
func (l *leaderboard) build(
	ctx context.Context,
	tierCode string,
	period entity.LeaderboardPeriodType,
	ttl time.Duration,
) (*Board, error) {
	now := time.Now().In(xcontext.Configs(ctx).Leaderboard.Location())

	board := &Board{
		Tier:        tierCode,
		PeriodValue: period.Period(),
		RefreshedAt: now,
		Entries:     []BoardEntry{},
	}

	filter := repository.PeriodStatisticFilter{
		Begin:           period.Start(),
		End:             period.End(),
		ExcludeDisabled: true,
	}

	if tierCode != tier.Open {
		accountFilter, err := tier.Filter(tierCode, now)
		if err != nil {
			return nil, err
		}

		accounts, err := l.accountRepo.GetList(ctx, accountFilter)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot list tier accounts: %v", err)
			return nil, errorx.Unknown
		}

		if len(accounts) == 0 {
			return board, l.store(ctx, tierCode, period, board, ttl)
		}

		for _, account := range accounts {
			filter.AccountIDs = append(filter.AccountIDs, account.ID)
		}
	}

	stats, err := l.transactionRepo.Statistic(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load statistic from database: %v", err)
		return nil, errorx.Unknown
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Points != stats[j].Points {
			return stats[i].Points > stats[j].Points
		}

		if !stats[i].LastEarnedAt.Equal(stats[j].LastEarnedAt) {
			return stats[i].LastEarnedAt.Before(stats[j].LastEarnedAt)
		}

		if stats[i].ActiveDays != stats[j].ActiveDays {
			return stats[i].ActiveDays > stats[j].ActiveDays
		}

		return stats[i].AccountID < stats[j].AccountID
	})

	size := xcontext.Configs(ctx).Leaderboard.BoardSize
	if len(stats) > size {
		stats = stats[:size]
	}

	for _, stat := range stats {
		board.Entries = append(board.Entries, BoardEntry{
			AccountID:    stat.AccountID,
			Points:       stat.Points,
			ActiveDays:   stat.ActiveDays,
			LastEarnedAt: stat.LastEarnedAt,
		})
	}

	return board, l.store(ctx, tierCode, period, board, ttl)
}

func (l *leaderboard) store(
	ctx context.Context,
	tierCode string,
	period entity.LeaderboardPeriodType,
	board *Board,
	ttl time.Duration,
) error {
	if err := l.redisClient.SetObj(ctx, redisKeyBoard(tierCode, period), board, ttl); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set board to redis: %v", err)
		return errorx.Unknown
	}

	zsetKey := redisKeyLeaderboard(tierCode, period)
	for _, entry := range board.Entries {
		err := l.redisClient.ZAdd(ctx, zsetKey, redis.Z{
			Member: entry.AccountID,
			Score:  float64(entry.Points),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot zadd redis: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func pageOf(entries []BoardEntry, offset, limit int) []BoardEntry {
	if offset >= len(entries) {
		return []BoardEntry{}
	}

	if offset+limit > len(entries) {
		return entries[offset:]
	}

	return entries[offset : offset+limit]
}
