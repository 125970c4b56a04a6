package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"

	"gorm.io/gorm"
)

// GetAccountListFilter narrows accounts to one tier's attribute set. Zero
// fields are skipped, so the empty filter returns everybody.
type GetAccountListFilter struct {
	Sex          entity.Sex
	FitnessLevel entity.FitnessLevel
	BornAfter    time.Time
	BornBefore   time.Time

	IncludeDisabled bool
}

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Account, error)
	GetList(ctx context.Context, filter GetAccountListFilter) ([]entity.Account, error)
	UpdateProfile(ctx context.Context, id string, data *entity.Account) error
	UpdateBalance(ctx context.Context, id string, newBalance uint64, expectedVersion int64) error
	Disable(ctx context.Context, id string) error
	Enable(ctx context.Context, id string) error
}

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	return xcontext.DB(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *accountRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Account, error) {
	var result []entity.Account
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *accountRepository) GetList(
	ctx context.Context, filter GetAccountListFilter,
) ([]entity.Account, error) {
	tx := xcontext.DB(ctx).Model(&entity.Account{})

	if filter.Sex != "" {
		tx = tx.Where("sex=?", filter.Sex)
	}

	if filter.FitnessLevel != "" {
		tx = tx.Where("fitness_level=?", filter.FitnessLevel)
	}

	if !filter.BornAfter.IsZero() {
		tx = tx.Where("birth_date > ?", filter.BornAfter)
	}

	if !filter.BornBefore.IsZero() {
		tx = tx.Where("birth_date <= ?", filter.BornBefore)
	}

	if !filter.IncludeDisabled {
		tx = tx.Where("disabled_at IS NULL")
	}

	var result []entity.Account
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateProfile only touches the profile attributes; the balance moves
// exclusively through UpdateBalance.
func (r *accountRepository) UpdateProfile(
	ctx context.Context, id string, data *entity.Account,
) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("id=?", id).
		Updates(map[string]any{
			"display_name":  data.DisplayName,
			"sex":           data.Sex,
			"birth_date":    data.BirthDate,
			"fitness_level": data.FitnessLevel,
		}).Error
}

// UpdateBalance is the optimistic-concurrency primitive of the ledger. The
// write only lands when the caller read the latest version; otherwise no
// row matches and the caller must re-read and retry.
func (r *accountRepository) UpdateBalance(
	ctx context.Context, id string, newBalance uint64, expectedVersion int64,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("id=? AND version=?", id, expectedVersion).
		Updates(map[string]any{
			"balance": newBalance,
			"version": gorm.Expr("version+1"),
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) Disable(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("id=? AND disabled_at IS NULL", id).
		Update("disabled_at", time.Now())

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) Enable(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("id=?", id).
		Update("disabled_at", nil).Error
}
