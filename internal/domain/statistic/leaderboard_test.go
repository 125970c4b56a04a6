package statistic

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/dateutil"
	"github.com/fitstakes/backend/pkg/testutil"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func insertEarn(t *testing.T, ctx context.Context, id, accountID string, amount int64, at time.Time) {
	t.Helper()

	err := repository.NewTransactionRepository().Create(ctx, &entity.PointTransaction{
		Base:      entity.Base{ID: id, CreatedAt: at},
		AccountID: accountID,
		Kind:      entity.TransactionEarn,
		Amount:    amount,
		Reference: id,
		DayValue:  dateutil.DayValue(at),
	})
	require.NoError(t, err)
}

// Four accounts all reach 100 points in the same week; the order must come
// from the tie-breaks alone.
func Test_leaderboard_GetLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	monday := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	week := entity.NewLeaderboardPeriodWeek(monday.Add(60 * time.Hour))

	insertEarn(t, ctx, "tx1", "account1", 60, monday.Add(10*time.Hour))
	insertEarn(t, ctx, "tx2", "account1", 40, monday.Add(34*time.Hour))
	insertEarn(t, ctx, "tx3", "account2", 100, monday.Add(33*time.Hour))
	insertEarn(t, ctx, "tx4", "account3", 100, monday.Add(34*time.Hour))
	insertEarn(t, ctx, "tx5", "account4", 100, monday.Add(34*time.Hour))

	// Spends and out-of-window earns must not move the board.
	err := repository.NewTransactionRepository().Create(ctx, &entity.PointTransaction{
		Base:      entity.Base{ID: "tx6", CreatedAt: monday.Add(35 * time.Hour)},
		AccountID: "account1",
		Kind:      entity.TransactionSpend,
		Amount:    -50,
		Reference: "tx6",
		DayValue:  dateutil.DayValue(monday.Add(35 * time.Hour)),
	})
	require.NoError(t, err)
	insertEarn(t, ctx, "tx7", "account3", 500, monday.AddDate(0, 0, -3))

	l := New(repository.NewAccountRepository(), repository.NewTransactionRepository(), &testutil.MockRedisClient{})

	_, entries, err := l.GetLeaderboard(ctx, tier.Open, week, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// account2 reached the total first; account1 beats account3 on active
	// days; account3 beats account4 on id.
	require.Equal(t, "account2", entries[0].AccountID)
	require.Equal(t, "account1", entries[1].AccountID)
	require.Equal(t, "account3", entries[2].AccountID)
	require.Equal(t, "account4", entries[3].AccountID)

	for _, entry := range entries {
		require.Equal(t, int64(100), entry.Points)
	}

	require.Equal(t, int64(2), entries[1].ActiveDays)
	require.Equal(t, int64(1), entries[2].ActiveDays)

	// The demographic board only sees its own members.
	_, entries, err = l.GetLeaderboard(ctx, "M-18-29-BEG", week, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "account1", entries[0].AccountID)

	// Disabling an account drops it from every board on the next rebuild.
	require.NoError(t, repository.NewAccountRepository().Disable(ctx, "account4"))

	_, entries, err = l.GetLeaderboard(ctx, tier.Open, week, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, entry := range entries {
		require.NotEqual(t, "account4", entry.AccountID)
	}

	// The alltime window has no bounds, so account3's earn from before the
	// week counts there.
	_, entries, err = l.GetLeaderboard(ctx, tier.Open, entity.NewLeaderboardPeriodAllTime(), 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "account3", entries[0].AccountID)
	require.Equal(t, int64(600), entries[0].Points)
}

func Test_leaderboard_GetLeaderboard_servesCachedBoard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	monday := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	week := entity.NewLeaderboardPeriodWeek(monday.Add(60 * time.Hour))
	insertEarn(t, ctx, "tx1", "account1", 100, monday.Add(10*time.Hour))

	stored := map[string][]byte{}
	storeCount := 0
	var storeTTL time.Duration

	redisClient := &testutil.MockRedisClient{
		SetObjFunc: func(ctx context.Context, key string, obj any, ttl time.Duration) error {
			b, err := json.Marshal(obj)
			require.NoError(t, err)
			stored[key] = b
			storeCount++
			storeTTL = ttl
			return nil
		},
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			b, ok := stored[key]
			if !ok {
				return redis.Nil
			}
			return json.Unmarshal(b, v)
		},
	}

	l := New(repository.NewAccountRepository(), repository.NewTransactionRepository(), redisClient)

	_, entries, err := l.GetLeaderboard(ctx, tier.Open, week, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, storeCount)
	require.Equal(t, 15*time.Minute, storeTTL)

	// New earns stay invisible until the snapshot expires or is rebuilt.
	insertEarn(t, ctx, "tx2", "account2", 999, monday.Add(11*time.Hour))

	board, entries, err := l.GetLeaderboard(ctx, tier.Open, week, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "account1", entries[0].AccountID)
	require.Equal(t, 1, storeCount)
	require.False(t, board.RefreshedAt.IsZero())

	_, err = l.Refresh(ctx, tier.Open, week)
	require.NoError(t, err)

	_, entries, err = l.GetLeaderboard(ctx, tier.Open, week, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "account2", entries[0].AccountID)
}

func Test_leaderboard_GetRank(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	monday := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	week := entity.NewLeaderboardPeriodWeek(monday.Add(60 * time.Hour))

	insertEarn(t, ctx, "tx1", "account1", 100, monday.Add(10*time.Hour))
	insertEarn(t, ctx, "tx2", "account2", 250, monday.Add(11*time.Hour))

	l := New(repository.NewAccountRepository(), repository.NewTransactionRepository(), &testutil.MockRedisClient{})

	rank, points, approximate, err := l.GetRank(ctx, "account2", tier.Open, week)
	require.NoError(t, err)
	require.Equal(t, uint64(1), rank)
	require.Equal(t, int64(250), points)
	require.False(t, approximate)

	rank, _, _, err = l.GetRank(ctx, "account1", tier.Open, week)
	require.NoError(t, err)
	require.Equal(t, uint64(2), rank)

	// Unknown account: not on the board, not in the zset.
	rank, _, approximate, err = l.GetRank(ctx, "ghost", tier.Open, week)
	require.NoError(t, err)
	require.Zero(t, rank)
	require.False(t, approximate)

	// Off-board accounts get the zset estimate.
	deep := New(repository.NewAccountRepository(), repository.NewTransactionRepository(), &testutil.MockRedisClient{
		ZRevRankFunc: func(ctx context.Context, key, member string) (uint64, error) {
			return 41, nil
		},
	})

	rank, points, approximate, err = deep.GetRank(ctx, "ghost", tier.Open, week)
	require.NoError(t, err)
	require.Equal(t, uint64(42), rank)
	require.Zero(t, points)
	require.True(t, approximate)
}

func Test_leaderboard_ChangePoints(t *testing.T) {
	ctx := testutil.MockContext()

	incremented := map[string]int64{}
	warm := &testutil.MockRedisClient{
		ExistFunc: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			incremented[key] += incr
			return nil
		},
	}

	l := New(repository.NewAccountRepository(), repository.NewTransactionRepository(), warm)

	earnedAt := time.Date(2026, 4, 8, 12, 0, 0, 0, time.UTC)
	err := l.ChangePoints(ctx, "account1", earnedAt, 70, []string{"M-18-29-BEG", tier.Open})
	require.NoError(t, err)

	// Two tiers times four windows.
	require.Len(t, incremented, 8)
	for _, value := range incremented {
		require.Equal(t, int64(70), value)
	}

	// Cold zsets are left alone; the next rebuild fills them.
	cold := &testutil.MockRedisClient{
		ZIncrByFunc: func(ctx context.Context, key string, incr int64, member string) error {
			t.Fatal("must not increment a cold zset")
			return nil
		},
	}

	err = New(repository.NewAccountRepository(), repository.NewTransactionRepository(), cold).
		ChangePoints(ctx, "account1", earnedAt, 70, []string{tier.Open})
	require.NoError(t, err)
}

func Test_leaderboard_GetPreviousLeaderboard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	lastMonday := time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)
	lastWeek := entity.NewLeaderboardPeriodWeek(lastMonday.Add(30 * time.Hour))

	insertEarn(t, ctx, "tx1", "account1", 300, lastMonday.Add(10*time.Hour))

	l := New(repository.NewAccountRepository(), repository.NewTransactionRepository(), &testutil.MockRedisClient{})

	board, entries, err := l.GetPreviousLeaderboard(ctx, tier.Open, lastWeek, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "account1", entries[0].AccountID)
	require.Equal(t, int64(300), entries[0].Points)
	require.Equal(t, lastWeek.Period(), board.PeriodValue)

	// The window is closed: even losing the underlying rows cannot change
	// the answer anymore.
	err = xcontext.DB(ctx).Where("account_id = ?", "account1").Delete(&entity.PointTransaction{}).Error
	require.NoError(t, err)

	_, entries, err = l.GetPreviousLeaderboard(ctx, tier.Open, lastWeek, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(300), entries[0].Points)
}
