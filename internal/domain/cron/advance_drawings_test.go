package cron

import (
	"context"
	"testing"
	"time"

	"github.com/fitstakes/backend/internal/domain"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/pubsub"
	"github.com/fitstakes/backend/pkg/testutil"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func Test_AdvanceDrawingsCronJob(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	ticketRepo := repository.NewTicketRepository()
	drawingRepo := repository.NewDrawingRepository()
	auditRepo := repository.NewAuditRepository()
	publisher := &testutil.MockPublisher{
		PublishFunc: func(context.Context, string, *pubsub.Pack) error { return nil },
	}
	drawingDomain := domain.NewDrawingDomain(drawingRepo, ticketRepo, auditRepo, publisher)
	ticketDomain := domain.NewTicketDomain(ticketRepo, drawingRepo,
		repository.NewAccountRepository(), repository.NewTransactionRepository(), auditRepo)
	job := NewAdvanceDrawingsCronJob(drawingRepo, drawingDomain, ticketDomain, time.Minute)

	// A scheduled drawing past its open time.
	overdue := &entity.Drawing{
		Base:         entity.Base{ID: "overdue-open"},
		Name:         "Overdue Opener",
		Type:         entity.DrawingDaily,
		Status:       entity.DrawingScheduled,
		TicketCost:   10,
		Prizes:       entity.Array[entity.Prize]{{ID: "prize-a", Rank: 1, Name: "Mat"}},
		SalesOpenAt:  time.Now().Add(-time.Hour),
		SalesCloseAt: time.Now().Add(time.Hour),
		DrawAt:       time.Now().Add(2 * time.Hour),
	}
	require.NoError(t, drawingRepo.Create(ctx, overdue))

	// A scheduled drawing whose time has not come.
	early := &entity.Drawing{
		Base:         entity.Base{ID: "early"},
		Name:         "Early Bird",
		Type:         entity.DrawingDaily,
		Status:       entity.DrawingScheduled,
		TicketCost:   10,
		Prizes:       entity.Array[entity.Prize]{{ID: "prize-b", Rank: 1, Name: "Band"}},
		SalesOpenAt:  time.Now().Add(time.Hour),
		SalesCloseAt: time.Now().Add(2 * time.Hour),
		DrawAt:       time.Now().Add(3 * time.Hour),
	}
	require.NoError(t, drawingRepo.Create(ctx, early))

	// Drawing1 sold tickets and is past both close and draw time.
	_, err := ticketDomain.Buy(xcontext.WithRequestAccountID(ctx, testutil.Account1.ID),
		&model.BuyTicketsRequest{DrawingID: testutil.Drawing1.ID, Quantity: 2})
	require.NoError(t, err)

	err = xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=?", testutil.Drawing1.ID).
		Updates(map[string]any{
			"sales_close_at": time.Now().Add(-10 * time.Minute),
			"draw_at":        time.Now().Add(-time.Minute),
		}).Error
	require.NoError(t, err)

	job.Do(ctx)

	// One sweep advances each drawing as far as its clock allows.
	drawing, err := drawingRepo.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DrawingOpen, drawing.Status)

	drawing, err = drawingRepo.GetByID(ctx, early.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DrawingScheduled, drawing.Status)

	drawing, err = drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DrawingCompleted, drawing.Status)
	require.Equal(t, 2, drawing.TotalTickets)
	require.NotEmpty(t, drawing.Seed)

	winners, err := ticketRepo.GetWinners(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	// A second sweep is a no-op.
	job.Do(ctx)

	drawing, err = drawingRepo.GetByID(ctx, testutil.Drawing1.ID)
	require.NoError(t, err)
	require.Equal(t, entity.DrawingCompleted, drawing.Status)
}
