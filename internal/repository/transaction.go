package repository

import (
	"context"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"
)

// PeriodStatisticFilter selects the positive earns feeding a leaderboard
// window. A zero Begin means the all-time window.
type PeriodStatisticFilter struct {
	AccountIDs []string
	Begin      time.Time
	End        time.Time

	// ExcludeDisabled drops earns of accounts that have been disabled
	// since, keeping them off every board without touching their history.
	ExcludeDisabled bool
}

// AccountPeriodStat carries everything the deterministic ranking needs:
// the total, the moment the total was reached, and the distinct active
// days inside the window.
type AccountPeriodStat struct {
	AccountID    string
	Points       int64
	LastEarnedAt time.Time
	ActiveDays   int64
}

// TransactionRepository is append-only on purpose: rows are never updated
// or deleted once written.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.PointTransaction) error
	GetByID(ctx context.Context, id string) (*entity.PointTransaction, error)
	GetByReference(ctx context.Context, kind entity.TransactionKind, reference string) (*entity.PointTransaction, error)
	GetListByAccountID(ctx context.Context, accountID string, offset, limit int) ([]entity.PointTransaction, error)
	SumByAccountID(ctx context.Context, accountID string) (int64, error)
	Statistic(ctx context.Context, filter PeriodStatisticFilter) ([]AccountPeriodStat, error)
}

type transactionRepository struct{}

func NewTransactionRepository() *transactionRepository {
	return &transactionRepository{}
}

func (r *transactionRepository) Create(
	ctx context.Context, transaction *entity.PointTransaction,
) error {
	return xcontext.DB(ctx).Create(transaction).Error
}

func (r *transactionRepository) GetByID(
	ctx context.Context, id string,
) (*entity.PointTransaction, error) {
	var result entity.PointTransaction
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *transactionRepository) GetByReference(
	ctx context.Context, kind entity.TransactionKind, reference string,
) (*entity.PointTransaction, error) {
	var result entity.PointTransaction
	err := xcontext.DB(ctx).
		Where("kind=? AND reference=?", kind, reference).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *transactionRepository) GetListByAccountID(
	ctx context.Context, accountID string, offset, limit int,
) ([]entity.PointTransaction, error) {
	var result []entity.PointTransaction
	err := xcontext.DB(ctx).
		Where("account_id=?", accountID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// SumByAccountID recomputes the balance from first principles. It must
// always agree with accounts.balance; Reconcile uses it to prove that.
func (r *transactionRepository) SumByAccountID(
	ctx context.Context, accountID string,
) (int64, error) {
	var sum int64
	err := xcontext.DB(ctx).Model(&entity.PointTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("account_id=?", accountID).
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}

	return sum, nil
}

func (r *transactionRepository) Statistic(
	ctx context.Context, filter PeriodStatisticFilter,
) ([]AccountPeriodStat, error) {
	tx := xcontext.DB(ctx).Model(&entity.PointTransaction{}).
		Select(`account_id,
			SUM(amount) AS points,
			MAX(point_transactions.created_at) AS last_earned_at,
			COUNT(DISTINCT day_value) AS active_days`).
		Where("kind=? AND amount > 0", entity.TransactionEarn).
		Group("account_id")

	if !filter.Begin.IsZero() {
		tx = tx.Where("point_transactions.created_at >= ? AND point_transactions.created_at < ?",
			filter.Begin, filter.End)
	}

	if len(filter.AccountIDs) > 0 {
		tx = tx.Where("account_id IN (?)", filter.AccountIDs)
	}

	if filter.ExcludeDisabled {
		tx = tx.Joins("JOIN accounts ON accounts.id = point_transactions.account_id").
			Where("accounts.disabled_at IS NULL")
	}

	var result []AccountPeriodStat
	if err := tx.Scan(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
