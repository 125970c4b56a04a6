package domain

import (
	"context"

	"github.com/fitstakes/backend/internal/domain/statistic"
	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
)

type LeaderboardDomain interface {
	GetLeaderboard(ctx context.Context, req *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
	GetRank(ctx context.Context, req *model.GetRankRequest) (*model.GetRankResponse, error)
	GetPreviousLeaderboard(ctx context.Context, req *model.GetPreviousLeaderboardRequest) (*model.GetPreviousLeaderboardResponse, error)
}

type leaderboardDomain struct {
	accountRepo repository.AccountRepository
	leaderboard statistic.Leaderboard
}

func NewLeaderboardDomain(
	accountRepo repository.AccountRepository,
	leaderboard statistic.Leaderboard,
) *leaderboardDomain {
	return &leaderboardDomain{
		accountRepo: accountRepo,
		leaderboard: leaderboard,
	}
}

func (d *leaderboardDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	tierCode, err := resolveTier(req.Tier)
	if err != nil {
		return nil, err
	}

	period, err := statistic.ToPeriod(ctx, req.Period)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	board, entries, err := d.leaderboard.GetLeaderboard(ctx, tierCode, period, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{
		PeriodValue: board.PeriodValue,
		RefreshedAt: board.RefreshedAt,
		Entries:     d.decorate(ctx, entries, req.Offset),
	}, nil
}

func (d *leaderboardDomain) GetRank(
	ctx context.Context, req *model.GetRankRequest,
) (*model.GetRankResponse, error) {
	accountID := req.AccountID
	if accountID == "" {
		accountID = xcontext.RequestAccountID(ctx)
	}

	if accountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
	}

	tierCode, err := resolveTier(req.Tier)
	if err != nil {
		return nil, err
	}

	period, err := statistic.ToPeriod(ctx, req.Period)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	rank, points, approximate, err := d.leaderboard.GetRank(ctx, accountID, tierCode, period)
	if err != nil {
		return nil, err
	}

	return &model.GetRankResponse{
		Rank:        rank,
		Points:      points,
		Approximate: approximate,
	}, nil
}

func (d *leaderboardDomain) GetPreviousLeaderboard(
	ctx context.Context, req *model.GetPreviousLeaderboardRequest,
) (*model.GetPreviousLeaderboardResponse, error) {
	tierCode, err := resolveTier(req.Tier)
	if err != nil {
		return nil, err
	}

	period, err := statistic.ToLastPeriod(ctx, req.Period)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid period %s", req.Period)
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	board, entries, err := d.leaderboard.GetPreviousLeaderboard(
		ctx, tierCode, period, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetPreviousLeaderboardResponse{
		PeriodValue: board.PeriodValue,
		Entries:     d.decorate(ctx, entries, req.Offset),
	}, nil
}

// decorate turns board entries into api entries with ranks and display
// names. A missing name never hides the entry.
func (d *leaderboardDomain) decorate(
	ctx context.Context, entries []statistic.BoardEntry, offset int,
) []model.LeaderboardEntry {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.AccountID)
	}

	names := map[string]string{}
	if len(ids) > 0 {
		accounts, err := d.accountRepo.GetByIDs(ctx, ids)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get the board accounts: %v", err)
		}

		for _, account := range accounts {
			names[account.ID] = account.DisplayName
		}
	}

	decorated := []model.LeaderboardEntry{}
	for i, entry := range entries {
		decorated = append(decorated, model.LeaderboardEntry{
			Rank:        uint64(offset+i) + 1,
			AccountID:   entry.AccountID,
			DisplayName: names[entry.AccountID],
			Points:      entry.Points,
			ActiveDays:  entry.ActiveDays,
		})
	}

	return decorated
}

func resolveTier(code string) (string, error) {
	if code == "" {
		return tier.Open, nil
	}

	if !tier.IsValid(code) {
		return "", errorx.New(errorx.BadRequest, "Invalid tier %s", code)
	}

	return code, nil
}
