package common

import (
	"context"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/dateutil"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/google/uuid"
)

// Actor names who a change is attributed to in the audit trail: the
// authenticated account, or the service itself for scheduled work.
func Actor(ctx context.Context) string {
	if accountID := xcontext.RequestAccountID(ctx); accountID != "" {
		return accountID
	}

	return "system"
}

// SpendPoints debits amount from the account inside the caller's database
// transaction, guarded by the account version. gorm.ErrRecordNotFound from
// here means the version moved underneath; the caller reloads the account
// and retries the whole attempt.
func SpendPoints(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	account *entity.Account,
	amount uint64,
	reference, note string,
) (*entity.PointTransaction, error) {
	if account.Balance < amount {
		return nil, errorx.New(errorx.InsufficientFunds,
			"Not enough points, balance is %d but needs %d", account.Balance, amount)
	}

	newBalance := account.Balance - amount
	if err := accountRepo.UpdateBalance(ctx, account.ID, newBalance, account.Version); err != nil {
		return nil, err
	}

	now := time.Now().In(xcontext.Configs(ctx).Leaderboard.Location())
	transaction := &entity.PointTransaction{
		Base:      entity.Base{ID: uuid.NewString()},
		AccountID: account.ID,
		Kind:      entity.TransactionSpend,
		Amount:    -int64(amount),
		Balance:   newBalance,
		Reference: reference,
		Note:      note,
		DayValue:  dateutil.DayValue(now),
	}

	if err := transactionRepo.Create(ctx, transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}
