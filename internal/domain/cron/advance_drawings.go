package cron

import (
	"context"
	"time"

	"github.com/fitstakes/backend/internal/domain"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/xcontext"
)

// AdvanceDrawingsCronJob sweeps drawings whose open, close, or draw time
// has passed and pushes each through its next lifecycle transition. The
// sweep runs on boot too, so transitions missed during downtime happen on
// the next start.
type AdvanceDrawingsCronJob struct {
	drawingRepo   repository.DrawingRepository
	drawingDomain domain.DrawingDomain
	ticketDomain  domain.TicketDomain
	interval      time.Duration
}

func NewAdvanceDrawingsCronJob(
	drawingRepo repository.DrawingRepository,
	drawingDomain domain.DrawingDomain,
	ticketDomain domain.TicketDomain,
	interval time.Duration,
) *AdvanceDrawingsCronJob {
	return &AdvanceDrawingsCronJob{
		drawingRepo:   drawingRepo,
		drawingDomain: drawingDomain,
		ticketDomain:  ticketDomain,
		interval:      interval,
	}
}

func (job *AdvanceDrawingsCronJob) Do(ctx context.Context) {
	now := time.Now()

	dueToOpen, err := job.drawingRepo.GetDueToOpen(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get drawings due to open: %v", err)
	}

	for _, drawing := range dueToOpen {
		if err := job.drawingDomain.OpenSales(ctx, drawing.ID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot open sales of drawing %s: %v", drawing.ID, err)
		}
	}

	dueToClose, err := job.drawingRepo.GetDueToClose(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get drawings due to close: %v", err)
	}

	for _, drawing := range dueToClose {
		if err := job.ticketDomain.CloseSales(ctx, drawing.ID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot close sales of drawing %s: %v", drawing.ID, err)
		}
	}

	dueToExecute, err := job.drawingRepo.GetDueToExecute(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get drawings due to execute: %v", err)
	}

	for _, drawing := range dueToExecute {
		_, err := job.drawingDomain.Execute(ctx, &model.ExecuteDrawingRequest{ID: drawing.ID})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot execute drawing %s: %v", drawing.ID, err)
		}
	}
}

func (job *AdvanceDrawingsCronJob) RunNow() bool {
	return true
}

func (job *AdvanceDrawingsCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
