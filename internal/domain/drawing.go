package domain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"sort"

	"github.com/fitstakes/backend/internal/common"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/crypto"
	"github.com/fitstakes/backend/pkg/enum"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/pubsub"
	"github.com/fitstakes/backend/pkg/xcontext"

	zlib "github.com/4kills/go-zlib"
	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/pkg/math"
	"gorm.io/gorm"
)

type DrawingDomain interface {
	Create(ctx context.Context, req *model.CreateDrawingRequest) (*model.CreateDrawingResponse, error)
	Update(ctx context.Context, req *model.UpdateDrawingRequest) (*model.UpdateDrawingResponse, error)
	Schedule(ctx context.Context, req *model.ScheduleDrawingRequest) (*model.ScheduleDrawingResponse, error)
	Cancel(ctx context.Context, req *model.CancelDrawingRequest) (*model.CancelDrawingResponse, error)
	Get(ctx context.Context, req *model.GetDrawingRequest) (*model.GetDrawingResponse, error)
	GetList(ctx context.Context, req *model.GetDrawingsRequest) (*model.GetDrawingsResponse, error)
	Execute(ctx context.Context, req *model.ExecuteDrawingRequest) (*model.ExecuteDrawingResponse, error)
	Verify(ctx context.Context, req *model.VerifyDrawingRequest) (*model.VerifyDrawingResponse, error)
	GetWinners(ctx context.Context, req *model.GetWinnersRequest) (*model.GetWinnersResponse, error)

	// OpenSales is invoked by the scheduler at the sales-open time.
	OpenSales(ctx context.Context, drawingID string) error
}

type drawingDomain struct {
	drawingRepo repository.DrawingRepository
	ticketRepo  repository.TicketRepository
	auditRepo   repository.AuditRepository
	publisher   pubsub.Publisher
}

func NewDrawingDomain(
	drawingRepo repository.DrawingRepository,
	ticketRepo repository.TicketRepository,
	auditRepo repository.AuditRepository,
	publisher pubsub.Publisher,
) *drawingDomain {
	return &drawingDomain{
		drawingRepo: drawingRepo,
		ticketRepo:  ticketRepo,
		auditRepo:   auditRepo,
		publisher:   publisher,
	}
}

// drawingSnapshot is the frozen ticket list a draw runs against. The json
// encoding is hashed uncompressed, then stored zlib-compressed; Verify
// recomputes the hash after decompressing.
type drawingSnapshot struct {
	DrawingID    string           `json:"drawing_id"`
	TotalTickets int              `json:"total_tickets"`
	Tickets      []snapshotTicket `json:"tickets"`
}

type snapshotTicket struct {
	ID        int64  `json:"id"`
	Number    int64  `json:"number"`
	AccountID string `json:"account_id"`
}

func (d *drawingDomain) Create(
	ctx context.Context, req *model.CreateDrawingRequest,
) (*model.CreateDrawingResponse, error) {
	drawingType, err := enum.ToEnum[entity.DrawingType](req.Type)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid drawing type %s", req.Type)
	}

	prizes := make(entity.Array[entity.Prize], 0, len(req.Prizes))
	for _, prize := range req.Prizes {
		prizes = append(prizes, entity.Prize{
			ID:   uuid.NewString(),
			Rank: prize.Rank,
			Name: prize.Name,
		})
	}

	drawing := &entity.Drawing{
		Base:         entity.Base{ID: uuid.NewString()},
		Name:         req.Name,
		Type:         drawingType,
		Status:       entity.DrawingDraft,
		TicketCost:   req.TicketCost,
		MaxTickets:   int(req.MaxTickets),
		SalesOpenAt:  req.SalesOpenAt,
		SalesCloseAt: req.SalesCloseAt,
		DrawAt:       req.DrawAt,
		Prizes:       prizes,
	}

	if err := validateDrawingPlan(drawing); err != nil {
		return nil, err
	}

	if err := d.drawingRepo.Create(ctx, drawing); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create drawing: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateDrawingResponse{ID: drawing.ID}, nil
}

func (d *drawingDomain) Update(
	ctx context.Context, req *model.UpdateDrawingRequest,
) (*model.UpdateDrawingResponse, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	prizes := make(entity.Array[entity.Prize], 0, len(req.Prizes))
	for _, prize := range req.Prizes {
		prizes = append(prizes, entity.Prize{
			ID:   uuid.NewString(),
			Rank: prize.Rank,
			Name: prize.Name,
		})
	}

	updated := &entity.Drawing{
		Name:         req.Name,
		Type:         drawing.Type,
		TicketCost:   req.TicketCost,
		MaxTickets:   int(req.MaxTickets),
		SalesOpenAt:  req.SalesOpenAt,
		SalesCloseAt: req.SalesCloseAt,
		DrawAt:       req.DrawAt,
		Prizes:       prizes,
	}

	if err := validateDrawingPlan(updated); err != nil {
		return nil, err
	}

	if err := d.drawingRepo.Update(ctx, req.ID, updated); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.BadRequest,
				"Only a draft or scheduled drawing can be edited")
		}

		xcontext.Logger(ctx).Errorf("Cannot update drawing: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateDrawingResponse{}, nil
}

func (d *drawingDomain) Schedule(
	ctx context.Context, req *model.ScheduleDrawingRequest,
) (*model.ScheduleDrawingResponse, error) {
	err := d.drawingRepo.CompareAndSwapStatus(
		ctx, req.ID, entity.DrawingDraft, entity.DrawingScheduled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.BadRequest, "Only a draft can be scheduled")
		}

		xcontext.Logger(ctx).Errorf("Cannot schedule drawing: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ScheduleDrawingResponse{}, nil
}

func (d *drawingDomain) OpenSales(ctx context.Context, drawingID string) error {
	drawing, err := d.drawingRepo.GetByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return errorx.Unknown
	}

	if drawing.Status == entity.DrawingOpen {
		return nil
	}

	if drawing.Status != entity.DrawingScheduled {
		return errorx.New(errorx.BadRequest, "Cannot open sales in status %s", drawing.Status)
	}

	err = d.drawingRepo.CompareAndSwapStatus(
		ctx, drawingID, entity.DrawingScheduled, entity.DrawingOpen)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.Conflict, "The drawing changed status, please try again")
		}

		xcontext.Logger(ctx).Errorf("Cannot open the drawing: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *drawingDomain) Cancel(
	ctx context.Context, req *model.CancelDrawingRequest,
) (*model.CancelDrawingResponse, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	switch drawing.Status {
	case entity.DrawingCompleted:
		return nil, errorx.New(errorx.BadRequest, "Cannot cancel a completed drawing")

	case entity.DrawingCancelled:
		return &model.CancelDrawingResponse{}, nil

	case entity.DrawingClosed:
		if !req.Force {
			return nil, errorx.New(errorx.BadRequest,
				"Tickets are already numbered, cancelling now requires force")
		}
	}

	// Sold tickets are not refunded; ticket purchases are final.
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.drawingRepo.CompareAndSwapStatus(ctx, req.ID, drawing.Status, entity.DrawingCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Conflict, "The drawing changed status, please try again")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel the drawing: %v", err)
		return nil, errorx.Unknown
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditDrawingCancelled,
		DrawingID:     drawing.ID,
		Actor:         common.Actor(ctx),
		Data: structs.Map(drawingCancelledData{
			FromStatus:  string(drawing.Status),
			Force:       req.Force,
			SoldTickets: drawing.SoldTickets,
		}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.CancelDrawingResponse{}, nil
}

func (d *drawingDomain) Get(
	ctx context.Context, req *model.GetDrawingRequest,
) (*model.GetDrawingResponse, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetDrawingResponse{Drawing: convertDrawing(drawing)}, nil
}

func (d *drawingDomain) GetList(
	ctx context.Context, req *model.GetDrawingsRequest,
) (*model.GetDrawingsResponse, error) {
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

	filter := repository.GetDrawingListFilter{
		Offset: req.Offset,
		Limit:  req.Limit,
	}

	if req.Type != "" {
		drawingType, err := enum.ToEnum[entity.DrawingType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid drawing type %s", req.Type)
		}

		filter.Type = drawingType
	}

	if req.Status != "" {
		status, err := enum.ToEnum[entity.DrawingStatus](req.Status)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid drawing status %s", req.Status)
		}

		filter.Statuses = []entity.DrawingStatus{status}
	}

	drawings, err := d.drawingRepo.GetList(ctx, filter)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get drawings: %v", err)
		return nil, errorx.Unknown
	}

	resp := []model.Drawing{}
	for i := range drawings {
		resp = append(resp, convertDrawing(&drawings[i]))
	}

	return &model.GetDrawingsResponse{Drawings: resp}, nil
}

func (d *drawingDomain) Execute(
	ctx context.Context, req *model.ExecuteDrawingRequest,
) (*model.ExecuteDrawingResponse, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	// Executing twice returns the recorded outcome of the first run.
	if drawing.Status == entity.DrawingCompleted {
		return d.executedResult(ctx, drawing)
	}

	if drawing.Status != entity.DrawingClosed {
		return nil, errorx.New(errorx.BadRequest,
			"Cannot execute a drawing in status %s", drawing.Status)
	}

	// Finish any numbering an interrupted close left behind before the
	// ticket list is frozen.
	total, err := common.NumberTickets(ctx, d.ticketRepo, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot number the tickets: %v", err)
		return nil, errorx.Unknown
	}

	if total == 0 {
		if err := d.cancelUnsoldDrawing(ctx, drawing); err != nil {
			return nil, err
		}

		drawing.Status = entity.DrawingCancelled
		return &model.ExecuteDrawingResponse{
			Drawing: convertDrawing(drawing),
			Winners: []model.Winner{},
		}, nil
	}

	tickets, err := d.ticketRepo.GetListByDrawingID(ctx, drawing.ID, 0, 0)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the tickets: %v", err)
		return nil, errorx.Unknown
	}

	snapshot := drawingSnapshot{
		DrawingID:    drawing.ID,
		TotalTickets: total,
		Tickets:      make([]snapshotTicket, 0, len(tickets)),
	}
	for _, ticket := range tickets {
		snapshot.Tickets = append(snapshot.Tickets, snapshotTicket{
			ID:        ticket.ID,
			Number:    ticket.Number.Int64,
			AccountID: ticket.AccountID,
		})
	}
	sort.Slice(snapshot.Tickets, func(i, j int) bool {
		return snapshot.Tickets[i].Number < snapshot.Tickets[j].Number
	})

	raw, err := json.Marshal(snapshot)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal the snapshot: %v", err)
		return nil, errorx.Unknown
	}

	compressed, err := compressSnapshot(raw)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compress the snapshot: %v", err)
		return nil, errorx.Unknown
	}

	seed, err := crypto.DrawSeed()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate the seed: %v", err)
		return nil, errorx.Unknown
	}

	prizes := sortedPrizes(drawing)
	k := math.MinInt(len(prizes), total)

	numbers, err := crypto.SelectWithoutReplacement(seed, total, k)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot select the winning numbers: %v", err)
		return nil, errorx.Unknown
	}

	winners := make([]entity.Map, 0, k)
	for i, number := range numbers {
		winners = append(winners, structs.Map(drawnWinnerData{
			Number:    number,
			PrizeID:   prizes[i].ID,
			PrizeRank: prizes[i].Rank,
		}))
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = d.drawingRepo.Complete(ctx, drawing.ID,
		base64.StdEncoding.EncodeToString(seed), crypto.DrawAlgorithm,
		compressed, crypto.SHA256(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Another executor holds the closed -> completed transition.
			return nil, errorx.New(errorx.AlreadyExecuting,
				"The drawing is being executed, please try again")
		}

		xcontext.Logger(ctx).Errorf("Cannot complete the drawing: %v", err)
		return nil, errorx.Unknown
	}

	for i, number := range numbers {
		err := d.ticketRepo.MarkWinner(
			ctx, drawing.ID, int64(number), prizes[i].ID, prizes[i].Rank)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mark the winning ticket: %v", err)
			return nil, errorx.Unknown
		}
	}

	err = d.auditRepo.Create(ctx, &entity.AuditEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		Kind:          entity.AuditDrawingExecuted,
		DrawingID:     drawing.ID,
		Actor:         common.Actor(ctx),
		Data: structs.Map(drawingExecutedData{
			Seed:         base64.StdEncoding.EncodeToString(seed),
			Algorithm:    crypto.DrawAlgorithm,
			SnapshotHash: crypto.SHA256(raw),
			TotalTickets: total,
			Winners:      winners,
		}),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the audit entry: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	completed, err := d.drawingRepo.GetByID(ctx, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the completed drawing: %v", err)
		return nil, errorx.Unknown
	}

	resp, err := d.executedResult(ctx, completed)
	if err != nil {
		return nil, err
	}

	d.publishWinners(ctx, completed, resp.Winners)
	return resp, nil
}

// cancelUnsoldDrawing voids a closed drawing that reached its draw time
// with no tickets.
func (d *drawingDomain) cancelUnsoldDrawing(ctx context.Context, drawing *entity.Drawing) error {
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

// executedResult assembles the response of a completed drawing from the
// stored winner marks. It never publishes; a re-executed drawing must not
// hand its winners to fulfillment twice.
func (d *drawingDomain) executedResult(
	ctx context.Context, drawing *entity.Drawing,
) (*model.ExecuteDrawingResponse, error) {
	winners, err := d.winnersOf(ctx, drawing)
	if err != nil {
		return nil, err
	}

	return &model.ExecuteDrawingResponse{
		Drawing: convertDrawing(drawing),
		Winners: winners,
	}, nil
}

func (d *drawingDomain) winnersOf(
	ctx context.Context, drawing *entity.Drawing,
) ([]model.Winner, error) {
	tickets, err := d.ticketRepo.GetWinners(ctx, drawing.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the winners: %v", err)
		return nil, errorx.Unknown
	}

	names := prizeNames(drawing)
	winners := make([]model.Winner, 0, len(tickets))
	for i := range tickets {
		winners = append(winners, convertWinner(&tickets[i], names[tickets[i].PrizeID]))
	}

	return winners, nil
}

// publishWinners hands each winner to the fulfillment topic. Delivery is
// best effort; a failed publish never rolls back a completed drawing.
func (d *drawingDomain) publishWinners(
	ctx context.Context, drawing *entity.Drawing, winners []model.Winner,
) {
	for _, winner := range winners {
		handoff := model.WinnerHandoff{
			DrawingID:   drawing.ID,
			DrawingName: drawing.Name,
			TicketID:    winner.TicketID,
			Number:      winner.Number,
			AccountID:   winner.AccountID,
			PrizeID:     winner.PrizeID,
			PrizeRank:   winner.PrizeRank,
			PrizeName:   winner.PrizeName,
			CompletedAt: drawing.CompletedAt.Time,
		}

		msg, err := json.Marshal(handoff)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot marshal the winner handoff: %v", err)
			continue
		}

		topic := xcontext.Configs(ctx).Kafka.FulfillmentTopic
		err = d.publisher.Publish(ctx, topic, &pubsub.Pack{
			Key: []byte(drawing.ID),
			Msg: msg,
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish the winner handoff: %v", err)
		}
	}
}

func (d *drawingDomain) Verify(
	ctx context.Context, req *model.VerifyDrawingRequest,
) (*model.VerifyDrawingResponse, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	if drawing.Status != entity.DrawingCompleted {
		return nil, errorx.New(errorx.BadRequest, "Only a completed drawing can be verified")
	}

	winners, err := d.winnersOf(ctx, drawing)
	if err != nil {
		return nil, err
	}

	resp := &model.VerifyDrawingResponse{
		Seed:      drawing.Seed,
		Algorithm: drawing.Algorithm,
		Winners:   winners,
	}

	raw, err := decompressSnapshot(drawing.Snapshot)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decompress the snapshot: %v", err)
		return nil, errorx.Unknown
	}

	if crypto.SHA256(raw) != drawing.SnapshotHash {
		resp.Reason = "the ticket snapshot does not match its recorded hash"
		return resp, nil
	}

	if drawing.Algorithm != crypto.DrawAlgorithm {
		resp.Reason = "unknown draw algorithm"
		return resp, nil
	}

	var snapshot drawingSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal the snapshot: %v", err)
		return nil, errorx.Unknown
	}

	seed, err := base64.StdEncoding.DecodeString(drawing.Seed)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode the seed: %v", err)
		return nil, errorx.Unknown
	}

	prizes := sortedPrizes(drawing)
	k := math.MinInt(len(prizes), snapshot.TotalTickets)

	numbers, err := crypto.SelectWithoutReplacement(seed, snapshot.TotalTickets, k)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot replay the draw: %v", err)
		return nil, errorx.Unknown
	}

	// The recorded winners must be exactly the replayed ones, prize by
	// prize.
	recorded := make(map[int64]model.Winner, len(winners))
	for _, winner := range winners {
		recorded[winner.Number] = winner
	}

	if len(winners) != len(numbers) {
		resp.Reason = "the number of recorded winners does not match the replay"
		return resp, nil
	}

	for i, number := range numbers {
		winner, ok := recorded[int64(number)]
		if !ok || winner.PrizeID != prizes[i].ID {
			resp.Reason = "the recorded winners do not match the replay"
			return resp, nil
		}
	}

	resp.Valid = true
	return resp, nil
}

func (d *drawingDomain) GetWinners(
	ctx context.Context, req *model.GetWinnersRequest,
) (*model.GetWinnersResponse, error) {
	drawing, err := d.drawingRepo.GetByID(ctx, req.DrawingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drawing")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drawing: %v", err)
		return nil, errorx.Unknown
	}

	winners, err := d.winnersOf(ctx, drawing)
	if err != nil {
		return nil, err
	}

	return &model.GetWinnersResponse{Winners: winners}, nil
}

func validateDrawingPlan(drawing *entity.Drawing) error {
	if drawing.Name == "" {
		return errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	if drawing.TicketCost == 0 {
		return errorx.New(errorx.BadRequest, "Not allow a free ticket")
	}

	if drawing.MaxTickets < 0 {
		return errorx.New(errorx.BadRequest, "Max tickets must not be negative")
	}

	if !drawing.SalesOpenAt.Before(drawing.SalesCloseAt) {
		return errorx.New(errorx.BadRequest, "Sales must open before they close")
	}

	if drawing.DrawAt.Before(drawing.SalesCloseAt) {
		return errorx.New(errorx.BadRequest, "Cannot draw before sales close")
	}

	if len(drawing.Prizes) == 0 {
		return errorx.New(errorx.BadRequest, "Not allow a drawing without prizes")
	}

	ranks := make(map[int]bool, len(drawing.Prizes))
	for _, prize := range drawing.Prizes {
		if prize.Name == "" {
			return errorx.New(errorx.BadRequest, "Not allow an empty prize name")
		}

		if prize.Rank < 1 || prize.Rank > len(drawing.Prizes) {
			return errorx.New(errorx.BadRequest, "Prize ranks must run from 1 to %d",
				len(drawing.Prizes))
		}

		if ranks[prize.Rank] {
			return errorx.New(errorx.BadRequest, "Not allow duplicated prize ranks")
		}

		ranks[prize.Rank] = true
	}

	return nil
}

func sortedPrizes(drawing *entity.Drawing) []entity.Prize {
	prizes := make([]entity.Prize, len(drawing.Prizes))
	copy(prizes, drawing.Prizes)
	sort.Slice(prizes, func(i, j int) bool { return prizes[i].Rank < prizes[j].Rank })
	return prizes
}

func prizeNames(drawing *entity.Drawing) map[string]string {
	names := make(map[string]string, len(drawing.Prizes))
	for _, prize := range drawing.Prizes {
		names[prize.ID] = prize.Name
	}

	return names
}

func compressSnapshot(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompressSnapshot(compressed []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
