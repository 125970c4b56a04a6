package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/fitstakes/backend/internal/common"
	"github.com/fitstakes/backend/internal/domain/earnrule"
	"github.com/fitstakes/backend/internal/domain/statistic"
	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/dateutil"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/pkg/math"
	"gorm.io/gorm"
)

type LedgerDomain interface {
	Earn(ctx context.Context, req *model.EarnPointsRequest) (*model.EarnPointsResponse, error)
	Spend(ctx context.Context, req *model.SpendPointsRequest) (*model.SpendPointsResponse, error)
	Adjust(ctx context.Context, req *model.AdjustPointsRequest) (*model.AdjustPointsResponse, error)
	GetBalance(ctx context.Context, req *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GetTransactions(ctx context.Context, req *model.GetTransactionsRequest) (*model.GetTransactionsResponse, error)
	Reconcile(ctx context.Context, req *model.ReconcileBalanceRequest) (*model.ReconcileBalanceResponse, error)
}

type ledgerDomain struct {
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	aggregateRepo   repository.EarnAggregateRepository
	auditRepo       repository.AuditRepository
	leaderboard     statistic.Leaderboard
}

func NewLedgerDomain(
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	aggregateRepo repository.EarnAggregateRepository,
	auditRepo repository.AuditRepository,
	leaderboard statistic.Leaderboard,
) *ledgerDomain {
	return &ledgerDomain{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		aggregateRepo:   aggregateRepo,
		auditRepo:       auditRepo,
		leaderboard:     leaderboard,
	}
}

func (d *ledgerDomain) Earn(
	ctx context.Context, req *model.EarnPointsRequest,
) (*model.EarnPointsResponse, error) {
	if req.AccountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
	}

	if req.ExternalID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty external id")
	}

	if req.OccurredAt.IsZero() {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty occurred time")
	}

	rule, err := earnrule.New(ctx, model.Activity{
		AccountID:       req.AccountID,
		Type:            req.Type,
		Steps:           req.Steps,
		DurationMinutes: req.DurationMinutes,
		Intensity:       req.Intensity,
		OccurredAt:      req.OccurredAt,
		ExternalID:      req.ExternalID,
	})
	if err != nil {
		return nil, err
	}

	// All daily windows run on the platform reference calendar, not the
	// member's local one.
	occurredAt := req.OccurredAt.In(xcontext.Configs(ctx).Leaderboard.Location())
	day := dateutil.DayValue(occurredAt)

	for i := 0; i < xcontext.Configs(ctx).Ledger.MaxBalanceRetries; i++ {
		resp, retry, err := d.earnOnce(ctx, req, rule, occurredAt, day)
		if err != nil {
			return nil, err
		}

		if !retry {
			return resp, nil
		}
	}

	return nil, errorx.New(errorx.Conflict, "Too many concurrent balance changes, please try again")
}

// earnOnce runs one optimistic attempt. A true retry flag means the account
// version moved underneath (or the reference index rejected our row) and
// nothing was written; the caller starts over from a fresh read.
func (d *ledgerDomain) earnOnce(
	ctx context.Context,
	req *model.EarnPointsRequest,
	rule earnrule.Rule,
	occurredAt time.Time,
	day string,
) (*model.EarnPointsResponse, bool, error) {
	existing, err := d.transactionRepo.GetByReference(ctx, entity.TransactionEarn, req.ExternalID)
	if err == nil {
		return &model.EarnPointsResponse{
			TransactionID: existing.ID,
			Credited:      existing.Amount,
			Balance:       existing.Balance,
			Duplicate:     true,
		}, false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check for a duplicated activity: %v", err)
		return nil, false, errorx.Unknown
	}

	account, err := d.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, false, errorx.Unknown
	}

	if account.DisabledAt.Valid {
		return nil, false, errorx.New(errorx.PermissionDenied, "Account is disabled")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	aggregate, err := d.aggregateRepo.Get(ctx, account.ID, day)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get the earn aggregate: %v", err)
			return nil, false, errorx.Unknown
		}

		aggregate = &entity.EarnAggregate{AccountID: account.ID, DayValue: day}
	}

	credit, err := rule.Evaluate(ctx, aggregate)
	if err != nil {
		return nil, false, err
	}

	streak, err := d.streakBonus(ctx, aggregate, occurredAt)
	if err != nil {
		return nil, false, err
	}

	total := credit.Total() + streak
	room := math.MaxInt64(xcontext.Configs(ctx).Ledger.DailyEarnCap-aggregate.Points, 0)
	credited := math.MinInt64(total, room)

	// Allowance counters and bonus flags move even when the cap truncates
	// the credit; a capped bonus is still spent for the day.
	delta := &entity.EarnAggregate{
		AccountID:          account.ID,
		DayValue:           day,
		Points:             credited,
		StepsCounted:       credit.CountedSteps,
		Activities:         1,
		GoalBonusAwarded:   credit.GoalBonus > 0,
		StreakBonusAwarded: streak > 0,
	}
	if credit.WorkoutBonus > 0 {
		delta.WorkoutBonuses = 1
	}

	if err := d.aggregateRepo.Upsert(ctx, delta); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update the earn aggregate: %v", err)
		return nil, false, errorx.Unknown
	}

	if credited == 0 {
		xcontext.WithCommitDBTransaction(ctx)
		return &model.EarnPointsResponse{Credited: 0, Balance: account.Balance}, false, nil
	}

	newBalance := account.Balance + uint64(credited)
	if err := d.accountRepo.UpdateBalance(ctx, account.ID, newBalance, account.Version); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, true, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot update the balance: %v", err)
		return nil, false, errorx.Unknown
	}

	transaction := &entity.PointTransaction{
		Base:      entity.Base{ID: uuid.NewString()},
		AccountID: account.ID,
		Kind:      entity.TransactionEarn,
		Amount:    credited,
		Balance:   newBalance,
		Reference: req.ExternalID,
		Note:      earnNote(req.Type, credit, streak, credited < total),
		DayValue:  day,
	}

	if err := d.transactionRepo.Create(ctx, transaction); err != nil {
		// Most likely the unique reference index rejecting a concurrent
		// ingest of the same activity; the next attempt finds the winning
		// row and returns its outcome.
		xcontext.Logger(ctx).Warnf("Cannot create the earn transaction: %v", err)
		return nil, true, nil
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditPointsEarned,
		AccountID:     account.ID,
		Actor:         common.Actor(ctx),
		Data: structs.Map(pointsEarnedData{
			TransactionID: transaction.ID,
			ExternalID:    req.ExternalID,
			ActivityType:  req.Type,
			Amount:        credited,
			Balance:       newBalance,
		}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return nil, false, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	tiers, err := tier.TiersOf(account.Sex, account.BirthDate, account.FitnessLevel, occurredAt)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot classify account %s: %v", account.ID, err)
	} else if err := d.leaderboard.ChangePoints(ctx, account.ID, occurredAt, credited, tiers); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot update the leaderboard: %v", err)
	}

	return &model.EarnPointsResponse{
		TransactionID: transaction.ID,
		Credited:      credited,
		Balance:       newBalance,
	}, false, nil
}

// streakBonus checks whether this activity completes an unbroken run of
// active days. Reads happen inside the caller's transaction, so the flags
// it sees are the flags the upsert will extend.
func (d *ledgerDomain) streakBonus(
	ctx context.Context, today *entity.EarnAggregate, occurredAt time.Time,
) (int64, error) {
	cfg := xcontext.Configs(ctx).Ledger
	if cfg.StreakLength <= 1 || today.StreakBonusAwarded {
		return 0, nil
	}

	previousValues := dateutil.LastNDayValues(occurredAt.AddDate(0, 0, -1), cfg.StreakLength-1)
	previous, err := d.aggregateRepo.GetList(ctx, today.AccountID, previousValues)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the previous aggregates: %v", err)
		return 0, errorx.Unknown
	}

	week, err := d.aggregateRepo.GetList(ctx, today.AccountID, dateutil.WeekDayValues(occurredAt))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the week aggregates: %v", err)
		return 0, errorx.Unknown
	}

	return earnrule.StreakBonus(ctx, previous, week), nil
}

func earnNote(activityType string, credit earnrule.Credit, streak int64, capped bool) string {
	note := credit.Note
	if note == "" {
		note = activityType
	}

	parts := []string{note}

	if credit.GoalBonus > 0 {
		parts = append(parts, "daily goal bonus")
	}

	if credit.WorkoutBonus > 0 {
		parts = append(parts, "workout bonus")
	}

	if streak > 0 {
		parts = append(parts, "streak bonus")
	}

	if capped {
		parts = append(parts, "truncated by the daily cap")
	}

	return strings.Join(parts, ", ")
}

func (d *ledgerDomain) Spend(
	ctx context.Context, req *model.SpendPointsRequest,
) (*model.SpendPointsResponse, error) {
	accountID := xcontext.RequestAccountID(ctx)
	if accountID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow a zero amount")
	}

	if req.Reason == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty reason")
	}

	reference := uuid.NewString()
	for i := 0; i < xcontext.Configs(ctx).Ledger.MaxBalanceRetries; i++ {
		resp, retry, err := d.spendOnce(ctx, accountID, req, reference)
		if err != nil {
			return nil, err
		}

		if !retry {
			return resp, nil
		}
	}

	return nil, errorx.New(errorx.Conflict, "Too many concurrent balance changes, please try again")
}

func (d *ledgerDomain) spendOnce(
	ctx context.Context, accountID string, req *model.SpendPointsRequest, reference string,
) (*model.SpendPointsResponse, bool, error) {
	account, err := d.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, false, errorx.Unknown
	}

	if account.DisabledAt.Valid {
		return nil, false, errorx.New(errorx.PermissionDenied, "Account is disabled")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	transaction, err := common.SpendPoints(
		ctx, d.accountRepo, d.transactionRepo, account, req.Amount, reference, req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, true, nil
		}

		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, false, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot spend points: %v", err)
		return nil, false, errorx.Unknown
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditPointsSpent,
		AccountID:     account.ID,
		Actor:         common.Actor(ctx),
		Data: structs.Map(pointsSpentData{
			TransactionID: transaction.ID,
			Amount:        req.Amount,
			Reason:        req.Reason,
			Balance:       transaction.Balance,
		}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return nil, false, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.SpendPointsResponse{
		TransactionID: transaction.ID,
		Balance:       transaction.Balance,
	}, false, nil
}

func (d *ledgerDomain) Adjust(
	ctx context.Context, req *model.AdjustPointsRequest,
) (*model.AdjustPointsResponse, error) {
	if req.AccountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
	}

	if req.Amount == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow a zero amount")
	}

	if req.Reason == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty reason")
	}

	reference := uuid.NewString()
	for i := 0; i < xcontext.Configs(ctx).Ledger.MaxBalanceRetries; i++ {
		resp, retry, err := d.adjustOnce(ctx, req, reference)
		if err != nil {
			return nil, err
		}

		if !retry {
			return resp, nil
		}
	}

	return nil, errorx.New(errorx.Conflict, "Too many concurrent balance changes, please try again")
}

func (d *ledgerDomain) adjustOnce(
	ctx context.Context, req *model.AdjustPointsRequest, reference string,
) (*model.AdjustPointsResponse, bool, error) {
	account, err := d.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, false, errorx.Unknown
	}

	// Adjustments stay legal on disabled accounts; operators use them to
	// settle final balances.
	var newBalance uint64
	if req.Amount >= 0 {
		newBalance = account.Balance + uint64(req.Amount)
	} else {
		deduction := uint64(-req.Amount)
		if account.Balance < deduction {
			return nil, false, errorx.New(errorx.InsufficientFunds,
				"Not enough points, balance is %d but needs %d", account.Balance, deduction)
		}

		newBalance = account.Balance - deduction
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.accountRepo.UpdateBalance(ctx, account.ID, newBalance, account.Version); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, true, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot update the balance: %v", err)
		return nil, false, errorx.Unknown
	}

	now := time.Now().In(xcontext.Configs(ctx).Leaderboard.Location())
	transaction := &entity.PointTransaction{
		Base:      entity.Base{ID: uuid.NewString()},
		AccountID: account.ID,
		Kind:      entity.TransactionAdjust,
		Amount:    req.Amount,
		Balance:   newBalance,
		Reference: reference,
		Note:      req.Reason,
		DayValue:  dateutil.DayValue(now),
	}

	if err := d.transactionRepo.Create(ctx, transaction); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the adjust transaction: %v", err)
		return nil, false, errorx.Unknown
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditPointsAdjusted,
		AccountID:     account.ID,
		Actor:         common.Actor(ctx),
		Data: structs.Map(pointsAdjustedData{
			TransactionID: transaction.ID,
			Amount:        req.Amount,
			Reason:        req.Reason,
			Balance:       newBalance,
		}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return nil, false, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.AdjustPointsResponse{
		TransactionID: transaction.ID,
		Balance:       newBalance,
	}, false, nil
}

func (d *ledgerDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	accountID := req.AccountID
	if accountID == "" {
		accountID = xcontext.RequestAccountID(ctx)
	}

	if accountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
	}

	account, err := d.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	earnedToday := int64(0)
	today := dateutil.DayValue(time.Now().In(xcontext.Configs(ctx).Leaderboard.Location()))
	aggregate, err := d.aggregateRepo.Get(ctx, account.ID, today)
	if err == nil {
		earnedToday = aggregate.Points
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get the earn aggregate: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetBalanceResponse{
		Balance:     account.Balance,
		EarnedToday: earnedToday,
	}, nil
}

func (d *ledgerDomain) GetTransactions(
	ctx context.Context, req *model.GetTransactionsRequest,
) (*model.GetTransactionsResponse, error) {
	accountID := req.AccountID
	if accountID == "" {
		accountID = xcontext.RequestAccountID(ctx)
	}

	if accountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
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

	transactions, err := d.transactionRepo.GetListByAccountID(ctx, accountID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get transactions: %v", err)
		return nil, errorx.Unknown
	}

	resp := []model.PointTransaction{}
	for _, t := range transactions {
		resp = append(resp, convertTransaction(&t))
	}

	return &model.GetTransactionsResponse{Transactions: resp}, nil
}

func (d *ledgerDomain) Reconcile(
	ctx context.Context, req *model.ReconcileBalanceRequest,
) (*model.ReconcileBalanceResponse, error) {
	if req.AccountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
	}

	account, err := d.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	sum, err := d.transactionRepo.SumByAccountID(ctx, account.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum transactions: %v", err)
		return nil, errorx.Unknown
	}

	consistent := int64(account.Balance) == sum
	if !consistent {
		xcontext.Logger(ctx).Errorf(
			"Balance drift on account %s: balance=%d, transaction sum=%d",
			account.ID, account.Balance, sum)
	}

	return &model.ReconcileBalanceResponse{
		Balance:        account.Balance,
		TransactionSum: sum,
		Consistent:     consistent,
	}, nil
}
