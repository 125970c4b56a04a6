package testutil

import (
	"context"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/dateutil"
)

// Fixture accounts cover both sexes and several age windows. Birth dates
// are relative to now so the derived tiers stay stable as the clock moves.
var (
	Account1 = &entity.Account{
		Base:         entity.Base{ID: "account1"},
		DisplayName:  "Pat Walker",
		Sex:          entity.SexMale,
		BirthDate:    time.Now().AddDate(-25, 0, 0),
		FitnessLevel: entity.FitnessBeginner,
		Balance:      1000,
	}

	Account2 = &entity.Account{
		Base:         entity.Base{ID: "account2"},
		DisplayName:  "Jess Rowe",
		Sex:          entity.SexFemale,
		BirthDate:    time.Now().AddDate(-34, 0, 0),
		FitnessLevel: entity.FitnessAdvanced,
		Balance:      500,
	}

	Account3 = &entity.Account{
		Base:         entity.Base{ID: "account3"},
		DisplayName:  "Sam Hale",
		Sex:          entity.SexMale,
		BirthDate:    time.Now().AddDate(-63, 0, 0),
		FitnessLevel: entity.FitnessIntermediate,
	}

	Account4 = &entity.Account{
		Base:         entity.Base{ID: "account4"},
		DisplayName:  "Alex Finn",
		Sex:          entity.SexFemale,
		BirthDate:    time.Now().AddDate(-25, 0, 0),
		FitnessLevel: entity.FitnessBeginner,
	}

	// Drawing1 is open for sales with three ranked prizes and no ticket cap.
	Drawing1 = &entity.Drawing{
		Base:       entity.Base{ID: "drawing1"},
		Name:       "Weekly Wellness Sweepstakes",
		Type:       entity.DrawingWeekly,
		Status:     entity.DrawingOpen,
		TicketCost: 50,
		Prizes: entity.Array[entity.Prize]{
			{ID: "prize1", Rank: 1, Name: "Fitness Tracker"},
			{ID: "prize2", Rank: 2, Name: "Gift Card"},
			{ID: "prize3", Rank: 3, Name: "Water Bottle"},
		},
		SalesOpenAt:  time.Now().Add(-time.Hour),
		SalesCloseAt: time.Now().Add(24 * time.Hour),
		DrawAt:       time.Now().Add(25 * time.Hour),
	}

	// Drawing2 is still a draft with a hard ticket cap.
	Drawing2 = &entity.Drawing{
		Base:       entity.Base{ID: "drawing2"},
		Name:       "Daily Steps Raffle",
		Type:       entity.DrawingDaily,
		Status:     entity.DrawingDraft,
		TicketCost: 10,
		MaxTickets: 100,
		Prizes: entity.Array[entity.Prize]{
			{ID: "prize4", Rank: 1, Name: "Protein Pack"},
		},
		SalesOpenAt:  time.Now().Add(time.Hour),
		SalesCloseAt: time.Now().Add(12 * time.Hour),
		DrawAt:       time.Now().Add(13 * time.Hour),
	}
)

func CreateFixtureDb(ctx context.Context) {
	InsertAccounts(ctx)
	InsertDrawings(ctx)
}

func InsertAccounts(ctx context.Context) {
	accountRepo := repository.NewAccountRepository()
	transactionRepo := repository.NewTransactionRepository()

	for _, account := range []*entity.Account{Account1, Account2, Account3, Account4} {
		if err := accountRepo.Create(ctx, account); err != nil {
			panic(err)
		}

		if account.Balance == 0 {
			continue
		}

		// A starting balance needs a backing row, or the ledger could
		// never reconcile these accounts.
		err := transactionRepo.Create(ctx, &entity.PointTransaction{
			Base:      entity.Base{ID: "seed-" + account.ID},
			AccountID: account.ID,
			Kind:      entity.TransactionAdjust,
			Amount:    int64(account.Balance),
			Balance:   account.Balance,
			Reference: "seed-" + account.ID,
			Note:      "starting balance",
			DayValue:  dateutil.DayValue(time.Now()),
		})
		if err != nil {
			panic(err)
		}
	}
}

func InsertDrawings(ctx context.Context) {
	drawingRepo := repository.NewDrawingRepository()

	for _, drawing := range []*entity.Drawing{Drawing1, Drawing2} {
		if err := drawingRepo.Create(ctx, drawing); err != nil {
			panic(err)
		}
	}
}
