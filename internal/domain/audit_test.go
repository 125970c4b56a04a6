package domain

import (
	"testing"
	"time"

	"github.com/fitstakes/backend/internal/domain/statistic"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/testutil"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func Test_auditDomain_GetAccountTrail(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	accountRepo := repository.NewAccountRepository()
	transactionRepo := repository.NewTransactionRepository()
	auditRepo := repository.NewAuditRepository()
	ledger := NewLedgerDomain(accountRepo, transactionRepo,
		repository.NewEarnAggregateRepository(), auditRepo,
		statistic.New(accountRepo, transactionRepo, &testutil.MockRedisClient{}))
	domain := NewAuditDomain(auditRepo)

	_, err := ledger.Earn(ctx, &model.EarnPointsRequest{
		AccountID:  testutil.Account1.ID,
		Type:       "steps",
		Steps:      4000,
		OccurredAt: time.Now().In(time.UTC),
		ExternalID: "trail-1",
	})
	require.NoError(t, err)

	_, err = ledger.Adjust(ctx, &model.AdjustPointsRequest{
		AccountID: testutil.Account1.ID,
		Amount:    -10,
		Reason:    "support correction",
	})
	require.NoError(t, err)

	resp, err := domain.GetAccountTrail(ctx, &model.GetAccountAuditTrailRequest{
		AccountID: testutil.Account1.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	// Newest first.
	require.Equal(t, "points_adjusted", resp.Entries[0].Kind)
	require.Equal(t, "points_earned", resp.Entries[1].Kind)
	require.Equal(t, float64(40), resp.Entries[1].Data["amount"])

	// The caller's own trail needs no explicit id.
	resp, err = domain.GetAccountTrail(
		xcontext.WithRequestAccountID(ctx, testutil.Account1.ID),
		&model.GetAccountAuditTrailRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	_, err = domain.GetAccountTrail(ctx, &model.GetAccountAuditTrailRequest{})
	require.Equal(t, errorx.New(errorx.BadRequest, "Not allow an empty account id"), err)

	_, err = domain.GetAccountTrail(ctx, &model.GetAccountAuditTrailRequest{
		AccountID: testutil.Account1.ID,
		Limit:     51,
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (50)"), err)
}

func Test_auditDomain_GetDrawingTrail(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	drawingRepo := repository.NewDrawingRepository()
	auditRepo := repository.NewAuditRepository()
	drawings := NewDrawingDomain(drawingRepo, repository.NewTicketRepository(),
		auditRepo, &testutil.MockPublisher{})
	tickets := NewTicketDomain(repository.NewTicketRepository(), drawingRepo,
		repository.NewAccountRepository(), repository.NewTransactionRepository(), auditRepo)
	domain := NewAuditDomain(auditRepo)

	_, err := tickets.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account1.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, tickets.CloseSales(ctx, testutil.Drawing1.ID))

	_, err = drawings.Cancel(ctx, &model.CancelDrawingRequest{
		ID:    testutil.Drawing1.ID,
		Force: true,
	})
	require.NoError(t, err)

	resp, err := domain.GetDrawingTrail(ctx, &model.GetDrawingAuditTrailRequest{
		DrawingID: testutil.Drawing1.ID,
	})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)
	require.Equal(t, "drawing_cancelled", resp.Entries[0].Kind)
	require.Equal(t, "sales_closed", resp.Entries[1].Kind)
	require.Equal(t, "tickets_purchased", resp.Entries[2].Kind)
	require.Equal(t, true, resp.Entries[0].Data["force"])

	_, err = domain.GetDrawingTrail(ctx, &model.GetDrawingAuditTrailRequest{})
	require.Equal(t, errorx.New(errorx.BadRequest, "Not allow an empty drawing id"), err)
}
