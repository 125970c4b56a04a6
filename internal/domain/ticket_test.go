package domain

import (
	"testing"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/testutil"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func Test_ticketDomain_Buy(t *testing.T) {
	ctx := testutil.MockContextWithAccountID(testutil.Account1.ID)
	testutil.CreateFixtureDb(ctx)
	ticketRepo := repository.NewTicketRepository()
	drawingRepo := repository.NewDrawingRepository()
	accountRepo := repository.NewAccountRepository()
	auditRepo := repository.NewAuditRepository()
	domain := NewTicketDomain(ticketRepo, drawingRepo, accountRepo,
		repository.NewTransactionRepository(), auditRepo)

	resp, err := domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  3,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.PurchaseID)
	require.Len(t, resp.Tickets, 3)
	require.Equal(t, uint64(150), resp.Cost)
	require.Equal(t, testutil.Account1.Balance-150, resp.Balance)

	drawing, err := drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, 3, drawing.SoldTickets)

	// Tickets stay unnumbered until sales close.
	tickets, err := ticketRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for _, ticket := range tickets {
		require.Equal(t, testutil.Account1.ID, ticket.AccountID)
		require.Equal(t, resp.PurchaseID, ticket.PurchaseID)
		require.False(t, ticket.Number.Valid)
	}

	var transaction entity.PointTransaction
	err = xcontext.DB(ctx).Take(&transaction, "id=?", tickets[0].TransactionID).Error
	require.NoError(t, err)
	require.Equal(t, entity.TransactionSpend, transaction.Kind)
	require.Equal(t, int64(-150), transaction.Amount)
	require.Equal(t, resp.PurchaseID, transaction.Reference)
	require.Equal(t, "3 tickets for Weekly Wellness Sweepstakes", transaction.Note)

	audits, err := auditRepo.GetListByAccountID(ctx, testutil.Account1.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.Equal(t, entity.AuditTicketsPurchased, audits[0].Kind)
	require.Equal(t, testutil.Drawing1.ID, audits[0].DrawingID)
	require.Equal(t, testutil.Account1.ID, audits[0].Actor)

	// A second purchase gets its own purchase id.
	again, err := domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	require.NotEqual(t, resp.PurchaseID, again.PurchaseID)
	require.Equal(t, testutil.Account1.Balance-250, again.Balance)

	drawing, err = drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, 5, drawing.SoldTickets)
}

func Test_ticketDomain_Buy_validation(t *testing.T) {
	ctx := testutil.MockContextWithAccountID(testutil.Account1.ID)
	testutil.CreateFixtureDb(ctx)
	domain := NewTicketDomain(repository.NewTicketRepository(), repository.NewDrawingRepository(),
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	_, err := domain.Buy(testutil.MockContext(), &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  1,
	})
	require.Equal(t, errorx.New(errorx.Unauthenticated, "Not authenticated"), err)

	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{Quantity: 1})
	require.Equal(t, errorx.New(errorx.BadRequest, "Not allow an empty drawing id"), err)

	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID})
	require.Equal(t, errorx.New(errorx.BadRequest, "Quantity must be positive"), err)

	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  101,
	})
	require.Equal(t,
		errorx.New(errorx.BadRequest, "Exceed the maximum of tickets per purchase (100)"), err)

	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{DrawingID: "ghost", Quantity: 1})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found drawing"), err)
}

func Test_ticketDomain_Buy_salesNotOpen(t *testing.T) {
	ctx := testutil.MockContextWithAccountID(testutil.Account1.ID)
	testutil.CreateFixtureDb(ctx)
	domain := NewTicketDomain(repository.NewTicketRepository(), repository.NewDrawingRepository(),
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	// Drawing2 is still a draft.
	_, err := domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing2.ID,
		Quantity:  1,
	})
	require.Equal(t, errorx.New(errorx.DrawingClosed, "Sales are not open"), err)

	// An open drawing whose close time has passed rejects purchases even
	// before the scheduler sweeps it.
	err = xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=?", testutil.Drawing1.ID).
		Update("sales_close_at", time.Now().Add(-time.Minute)).Error
	require.NoError(t, err)

	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  1,
	})
	require.Equal(t, errorx.New(errorx.DrawingClosed, "Sales are closed"), err)
}

func Test_ticketDomain_Buy_insufficientFunds(t *testing.T) {
	ctx := testutil.MockContextWithAccountID(testutil.Account3.ID)
	testutil.CreateFixtureDb(ctx)
	drawingRepo := repository.NewDrawingRepository()
	domain := NewTicketDomain(repository.NewTicketRepository(), drawingRepo,
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	_, err := domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  1,
	})
	require.Equal(t,
		errorx.New(errorx.InsufficientFunds, "Not enough points, balance is 0 but needs 50"),
		err)

	// The rolled back purchase releases its reservation.
	drawing, err := drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, 0, drawing.SoldTickets)
}

func Test_ticketDomain_Buy_soldOut(t *testing.T) {
	ctx := testutil.MockContextWithAccountID(testutil.Account1.ID)
	testutil.CreateFixtureDb(ctx)
	drawingRepo := repository.NewDrawingRepository()
	domain := NewTicketDomain(repository.NewTicketRepository(), drawingRepo,
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	capped := &entity.Drawing{
		Base:         entity.Base{ID: "capped"},
		Name:         "Capped Raffle",
		Type:         entity.DrawingDaily,
		Status:       entity.DrawingOpen,
		TicketCost:   10,
		MaxTickets:   3,
		Prizes:       entity.Array[entity.Prize]{{ID: "prize-capped", Rank: 1, Name: "Towel"}},
		SalesOpenAt:  time.Now().Add(-time.Hour),
		SalesCloseAt: time.Now().Add(time.Hour),
		DrawAt:       time.Now().Add(2 * time.Hour),
	}
	require.NoError(t, drawingRepo.Create(ctx, capped))

	_, err := domain.Buy(ctx, &model.BuyTicketsRequest{DrawingID: capped.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{DrawingID: capped.ID, Quantity: 2})
	require.Equal(t, errorx.New(errorx.Unavailable, "Not enough tickets left"), err)

	// The last seat is still sellable.
	_, err = domain.Buy(ctx, &model.BuyTicketsRequest{DrawingID: capped.ID, Quantity: 1})
	require.NoError(t, err)

	drawing, err := drawingRepo.GetByID(ctx, capped.ID)
	require.NoError(t, err)
	require.Equal(t, 3, drawing.SoldTickets)

	account, err := repository.NewAccountRepository().GetByID(ctx, testutil.Account1.ID)
	require.NoError(t, err)
	require.Equal(t, testutil.Account1.Balance-30, account.Balance)
}

func Test_ticketDomain_CloseSales(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	ticketRepo := repository.NewTicketRepository()
	drawingRepo := repository.NewDrawingRepository()
	auditRepo := repository.NewAuditRepository()
	domain := NewTicketDomain(ticketRepo, drawingRepo, repository.NewAccountRepository(),
		repository.NewTransactionRepository(), auditRepo)

	// Two purchases from different accounts fix the purchase order.
	first, err := domain.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account1.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 2})
	require.NoError(t, err)

	second, err := domain.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account2.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, domain.CloseSales(ctx, testutil.Drawing1.ID))

	drawing, err := drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DrawingClosed, drawing.Status)
	require.Equal(t, 3, drawing.TotalTickets)

	// Numbers run 1..N in purchase order.
	tickets, err := ticketRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for i, ticket := range tickets {
		require.True(t, ticket.Number.Valid)
		require.Equal(t, int64(i+1), ticket.Number.Int64)
	}
	require.Equal(t, first.Tickets[0], tickets[0].ID)
	require.Equal(t, second.Tickets[0], tickets[2].ID)

	audits, err := auditRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.Equal(t, entity.AuditSalesClosed, audits[0].Kind)

	// Closing again resumes cleanly: same numbers, no second audit entry.
	require.NoError(t, domain.CloseSales(ctx, testutil.Drawing1.ID))

	tickets, err = ticketRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 0)
	require.NoError(t, err)
	for i, ticket := range tickets {
		require.Equal(t, int64(i+1), ticket.Number.Int64)
	}

	audits, err = auditRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
}

func Test_ticketDomain_CloseSales_resume(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	ticketRepo := repository.NewTicketRepository()
	drawingRepo := repository.NewDrawingRepository()
	domain := NewTicketDomain(ticketRepo, drawingRepo, repository.NewAccountRepository(),
		repository.NewTransactionRepository(), repository.NewAuditRepository())

	resp, err := domain.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account1.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 3})
	require.NoError(t, err)

	// A crash mid-run: the status flipped and one ticket got its number,
	// but the rest never did.
	err = drawingRepo.CompareAndSwapStatus(
		ctx, testutil.Drawing1.ID, entity.DrawingOpen, entity.DrawingClosed)
	require.NoError(t, err)
	require.NoError(t, ticketRepo.AssignNumber(ctx, resp.Tickets[0], 1))

	require.NoError(t, domain.CloseSales(ctx, testutil.Drawing1.ID))

	tickets, err := ticketRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 0)
	require.NoError(t, err)
	for i, ticket := range tickets {
		require.Equal(t, int64(i+1), ticket.Number.Int64)
	}

	drawing, err := drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, 3, drawing.TotalTickets)
}

func Test_ticketDomain_CloseSales_nothingSold(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	drawingRepo := repository.NewDrawingRepository()
	auditRepo := repository.NewAuditRepository()
	domain := NewTicketDomain(repository.NewTicketRepository(), drawingRepo,
		repository.NewAccountRepository(), repository.NewTransactionRepository(), auditRepo)

	require.NoError(t, domain.CloseSales(ctx, testutil.Drawing1.ID))

	// No tickets means no possible winner; the drawing is voided outright.
	drawing, err := drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DrawingCancelled, drawing.Status)

	audits, err := auditRepo.GetListByDrawingID(ctx, testutil.Drawing1.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	require.Equal(t, entity.AuditDrawingCancelled, audits[0].Kind)
	require.Equal(t, "no tickets sold", audits[0].Data["reason"])
}

func Test_ticketDomain_CloseSales_wrongStatus(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewTicketDomain(repository.NewTicketRepository(), repository.NewDrawingRepository(),
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	err := domain.CloseSales(ctx, testutil.Drawing2.ID)
	require.Equal(t, errorx.New(errorx.BadRequest, "Cannot close sales in status draft"), err)

	err = domain.CloseSales(ctx, "ghost")
	require.Equal(t, errorx.New(errorx.NotFound, "Not found drawing"), err)
}

func Test_ticketDomain_GetMyTickets(t *testing.T) {
	ctx := testutil.MockContextWithAccountID(testutil.Account1.ID)
	testutil.CreateFixtureDb(ctx)
	domain := NewTicketDomain(repository.NewTicketRepository(), repository.NewDrawingRepository(),
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	_, err := domain.Buy(ctx, &model.BuyTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
		Quantity:  3,
	})
	require.NoError(t, err)

	resp, err := domain.GetMyTickets(ctx, &model.GetMyTicketsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 3)
	require.Equal(t, testutil.Drawing1.ID, resp.Tickets[0].DrawingID)

	resp, err = domain.GetMyTickets(ctx, &model.GetMyTicketsRequest{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)

	_, err = domain.GetMyTickets(ctx, &model.GetMyTicketsRequest{Limit: 51})
	require.Equal(t, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (50)"), err)

	_, err = domain.GetMyTickets(testutil.MockContext(), &model.GetMyTicketsRequest{})
	require.Equal(t, errorx.New(errorx.Unauthenticated, "Not authenticated"), err)
}

func Test_ticketDomain_GetDrawingTickets(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewTicketDomain(repository.NewTicketRepository(), repository.NewDrawingRepository(),
		repository.NewAccountRepository(), repository.NewTransactionRepository(),
		repository.NewAuditRepository())

	_, err := domain.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account1.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = domain.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account2.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 1})
	require.NoError(t, err)

	resp, err := domain.GetDrawingTickets(ctx, &model.GetDrawingTicketsRequest{
		DrawingID: testutil.Drawing1.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 3)
	require.Equal(t, testutil.Account1.ID, resp.Tickets[0].AccountID)
	require.Equal(t, testutil.Account2.ID, resp.Tickets[2].AccountID)

	_, err = domain.GetDrawingTickets(ctx, &model.GetDrawingTicketsRequest{})
	require.Equal(t, errorx.New(errorx.BadRequest, "Not allow an empty drawing id"), err)
}
