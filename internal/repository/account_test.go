package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/migration"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testContext(t *testing.T) context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := xcontext.WithDB(context.Background(), db)
	require.NoError(t, migration.AutoMigrate(ctx))

	return ctx
}

func Test_accountRepository_UpdateBalance(t *testing.T) {
	ctx := testContext(t)
	accountRepo := NewAccountRepository()

	err := accountRepo.Create(ctx, &entity.Account{
		Base:        entity.Base{ID: "account1"},
		DisplayName: "Pat Walker",
		Balance:     100,
	})
	require.NoError(t, err)

	// The writer holding the current version lands and bumps it.
	err = accountRepo.UpdateBalance(ctx, "account1", 150, 0)
	require.NoError(t, err)

	account, err := accountRepo.GetByID(ctx, "account1")
	require.NoError(t, err)
	require.Equal(t, uint64(150), account.Balance)
	require.Equal(t, int64(1), account.Version)

	// A stale version matches no row and must leave the balance alone.
	err = accountRepo.UpdateBalance(ctx, "account1", 400, 0)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	account, err = accountRepo.GetByID(ctx, "account1")
	require.NoError(t, err)
	require.Equal(t, uint64(150), account.Balance)
	require.Equal(t, int64(1), account.Version)

	// Re-reading picks up the new version and the retry lands.
	err = accountRepo.UpdateBalance(ctx, "account1", 400, account.Version)
	require.NoError(t, err)

	account, err = accountRepo.GetByID(ctx, "account1")
	require.NoError(t, err)
	require.Equal(t, uint64(400), account.Balance)
	require.Equal(t, int64(2), account.Version)
}

func Test_accountRepository_DisableEnable(t *testing.T) {
	ctx := testContext(t)
	accountRepo := NewAccountRepository()

	err := accountRepo.Create(ctx, &entity.Account{
		Base: entity.Base{ID: "account1"}, DisplayName: "Pat Walker",
	})
	require.NoError(t, err)

	require.NoError(t, accountRepo.Disable(ctx, "account1"))

	account, err := accountRepo.GetByID(ctx, "account1")
	require.NoError(t, err)
	require.True(t, account.DisabledAt.Valid)

	// Disabling twice matches no row.
	err = accountRepo.Disable(ctx, "account1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := accountRepo.GetList(ctx, GetAccountListFilter{})
	require.NoError(t, err)
	require.Empty(t, list)

	list, err = accountRepo.GetList(ctx, GetAccountListFilter{IncludeDisabled: true})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, accountRepo.Enable(ctx, "account1"))

	account, err = accountRepo.GetByID(ctx, "account1")
	require.NoError(t, err)
	require.False(t, account.DisabledAt.Valid)
}

func Test_accountRepository_GetList(t *testing.T) {
	ctx := testContext(t)
	accountRepo := NewAccountRepository()

	now := time.Now()
	accounts := []*entity.Account{
		{
			Base:         entity.Base{ID: "account1"},
			Sex:          entity.SexMale,
			BirthDate:    now.AddDate(-25, 0, 0),
			FitnessLevel: entity.FitnessBeginner,
		},
		{
			Base:         entity.Base{ID: "account2"},
			Sex:          entity.SexMale,
			BirthDate:    now.AddDate(-45, 0, 0),
			FitnessLevel: entity.FitnessBeginner,
		},
		{
			Base:         entity.Base{ID: "account3"},
			Sex:          entity.SexFemale,
			BirthDate:    now.AddDate(-25, 0, 0),
			FitnessLevel: entity.FitnessAdvanced,
		},
	}
	for _, account := range accounts {
		require.NoError(t, accountRepo.Create(ctx, account))
	}

	// The empty filter returns everybody.
	list, err := accountRepo.GetList(ctx, GetAccountListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	// An 18-29 male beginner window selects account1 only: account2 is too
	// old, account3 is the wrong sex and level.
	list, err = accountRepo.GetList(ctx, GetAccountListFilter{
		Sex:          entity.SexMale,
		FitnessLevel: entity.FitnessBeginner,
		BornAfter:    now.AddDate(-30, 0, 0),
		BornBefore:   now.AddDate(-18, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "account1", list[0].ID)
}
