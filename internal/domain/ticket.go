package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/structs"
	"github.com/fitstakes/backend/internal/common"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketDomain interface {
	Buy(ctx context.Context, req *model.BuyTicketsRequest) (*model.BuyTicketsResponse, error)
	GetMyTickets(ctx context.Context, req *model.GetMyTicketsRequest) (*model.GetMyTicketsResponse, error)
	GetDrawingTickets(ctx context.Context, req *model.GetDrawingTicketsRequest) (*model.GetDrawingTicketsResponse, error)

	// CloseSales is invoked by the scheduler at the sales-close time. It is
	// idempotent; call it again to resume an interrupted numbering run.
	CloseSales(ctx context.Context, drawingID string) error
}

type ticketDomain struct {
	ticketRepo      repository.TicketRepository
	drawingRepo     repository.DrawingRepository
	accountRepo     repository.AccountRepository
	transactionRepo repository.TransactionRepository
	auditRepo       repository.AuditRepository
}

func NewTicketDomain(
	ticketRepo repository.TicketRepository,
	drawingRepo repository.DrawingRepository,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditRepository,
) *ticketDomain {
	return &ticketDomain{
		ticketRepo:      ticketRepo,
		drawingRepo:     drawingRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
	}
}

func (d *ticketDomain) Buy(
	ctx context.Context, req *model.BuyTicketsRequest,
) (*model.BuyTicketsResponse, error) {
	accountID := xcontext.RequestAccountID(ctx)
	if accountID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
	}

	if req.DrawingID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty drawing id")
	}

	if req.Quantity <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Quantity must be positive")
	}

	maxPerPurchase := xcontext.Configs(ctx).Ticket.MaxPerPurchase
	if req.Quantity > maxPerPurchase {
		return nil, errorx.New(errorx.BadRequest,
			"Exceed the maximum of tickets per purchase (%d)", maxPerPurchase)
	}

	purchaseID := uuid.NewString()
	for i := 0; i < xcontext.Configs(ctx).Ledger.MaxBalanceRetries; i++ {
		resp, retry, err := d.buyOnce(ctx, accountID, purchaseID, req)
		if err != nil {
			return nil, err
		}

		if !retry {
			return resp, nil
		}
	}

	return nil, errorx.New(errorx.Conflict, "Too many concurrent balance changes, please try again")
}

func (d *ticketDomain) buyOnce(
	ctx context.Context, accountID, purchaseID string, req *model.BuyTicketsRequest,
) (*model.BuyTicketsResponse, bool, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.DrawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, false, errorx.Unknown
	}

	if drawing.Status != entity.DrawingOpen {
		return nil, false, errorx.New(errorx.DrawingClosed, "Sales are not open")
	}

	// The scheduler may not have swept yet; the close time binds anyway.
	if !time.Now().Before(drawing.SalesCloseAt) {
		return nil, false, errorx.New(errorx.DrawingClosed, "Sales are closed")
	}

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

	cost := drawing.TicketCost * uint64(req.Quantity)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.drawingRepo.IncreaseSoldTickets(ctx, drawing.ID, req.Quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, errorx.New(errorx.Unavailable, "Not enough tickets left")
		}

		xcontext.Logger(ctx).Errorf("Cannot reserve tickets: %v", err)
		return nil, false, errorx.Unknown
	}

	transaction, err := common.SpendPoints(ctx, d.accountRepo, d.transactionRepo, account,
		cost, purchaseID, fmt.Sprintf("%d tickets for %s", req.Quantity, drawing.Name))
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

	tickets := make([]*entity.Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		tickets = append(tickets, &entity.Ticket{
			SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
			DrawingID:     drawing.ID,
			AccountID:     account.ID,
			PurchaseID:    purchaseID,
			TransactionID: transaction.ID,
		})
	}

	if err := d.ticketRepo.CreateAll(ctx, tickets); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create tickets: %v", err)
		return nil, false, errorx.Unknown
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditTicketsPurchased,
		AccountID:     account.ID,
		DrawingID:     drawing.ID,
		Actor:         common.Actor(ctx),
		Data: structs.Map(ticketsPurchasedData{
			PurchaseID:    purchaseID,
			TransactionID: transaction.ID,
			Quantity:      req.Quantity,
			Cost:          cost,
			Balance:       transaction.Balance,
		}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return nil, false, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	ids := make([]int64, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}

	return &model.BuyTicketsResponse{
		PurchaseID: purchaseID,
		Tickets:    ids,
		Cost:       cost,
		Balance:    transaction.Balance,
	}, false, nil
}

func (d *ticketDomain) GetMyTickets(
	ctx context.Context, req *model.GetMyTicketsRequest,
) (*model.GetMyTicketsResponse, error) {
	accountID := xcontext.RequestAccountID(ctx)
	if accountID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not authenticated")
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

	tickets, err := d.ticketRepo.GetListByAccountID(ctx, accountID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tickets: %v", err)
		return nil, errorx.Unknown
	}

	resp := []model.Ticket{}
	for _, t := range tickets {
		resp = append(resp, convertTicket(&t))
	}

	return &model.GetMyTicketsResponse{Tickets: resp}, nil
}

func (d *ticketDomain) GetDrawingTickets(
	ctx context.Context, req *model.GetDrawingTicketsRequest,
) (*model.GetDrawingTicketsResponse, error) {
	if req.DrawingID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty drawing id")
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

	tickets, err := d.ticketRepo.GetListByDrawingID(ctx, req.DrawingID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get tickets: %v", err)
		return nil, errorx.Unknown
	}

	resp := []model.Ticket{}
	for _, t := range tickets {
		resp = append(resp, convertTicket(&t))
	}

	return &model.GetDrawingTicketsResponse{Tickets: resp}, nil
}

func (d *ticketDomain) CloseSales(ctx context.Context, drawingID string) error {
	drawing, err := d.drawingRepo.GetByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return errorx.Unknown
	}

	switch drawing.Status {
	case entity.DrawingOpen:
		err := d.drawingRepo.CompareAndSwapStatus(
			ctx, drawing.ID, entity.DrawingOpen, entity.DrawingClosed)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.Conflict, "The drawing changed status, please try again")
			}

			xcontext.Logger(ctx).Errorf("Cannot close the drawing: %v", err)
			return errorx.Unknown
		}

	case entity.DrawingClosed:
		// Resuming an interrupted close.

	default:
		return errorx.New(errorx.BadRequest, "Cannot close sales in status %s", drawing.Status)
	}

	total, err := common.NumberTickets(ctx, d.ticketRepo, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot number the tickets: %v", err)
		return errorx.Unknown
	}

	if total == 0 {
		return d.cancelEmptyDrawing(ctx, drawing)
	}

	if drawing.TotalTickets != total {
		if err := d.drawingRepo.SetTotalTickets(ctx, drawing.ID, total); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot set the total tickets: %v", err)
			return errorx.Unknown
		}
	}

	_, err = d.auditRepo.GetLastByKind(ctx, entity.AuditSalesClosed, drawing.ID)
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot check the audit trail: %v", err)
		return errorx.Unknown
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditSalesClosed,
		DrawingID:     drawing.ID,
		Actor:         common.Actor(ctx),
		Data:          structs.Map(salesClosedData{TotalTickets: total}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return errorx.Unknown
	}

	return nil
}

// cancelEmptyDrawing voids a drawing that closed with nothing sold. No
// winner can be drawn from an empty ticket list.
func (d *ticketDomain) cancelEmptyDrawing(ctx context.Context, drawing *entity.Drawing) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.drawingRepo.CompareAndSwapStatus(
		ctx, drawing.ID, entity.DrawingClosed, entity.DrawingCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.Conflict, "The drawing changed status, please try again")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel the drawing: %v", err)
		return errorx.Unknown
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditDrawingCancelled,
		DrawingID:     drawing.ID,
		Actor:         common.Actor(ctx),
		Data:          structs.Map(drawingVoidedData{Reason: "no tickets sold"}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}
