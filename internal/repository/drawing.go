package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type GetDrawingListFilter struct {
	Statuses []entity.DrawingStatus
	Type     entity.DrawingType

	Offset int
	Limit  int
}

type DrawingRepository interface {
	Create(ctx context.Context, drawing *entity.Drawing) error
	GetByID(ctx context.Context, id string) (*entity.Drawing, error)
	GetList(ctx context.Context, filter GetDrawingListFilter) ([]entity.Drawing, error)
	GetDueToOpen(ctx context.Context, now time.Time) ([]entity.Drawing, error)
	GetDueToClose(ctx context.Context, now time.Time) ([]entity.Drawing, error)
	GetDueToExecute(ctx context.Context, now time.Time) ([]entity.Drawing, error)
	Update(ctx context.Context, id string, data *entity.Drawing) error
	CompareAndSwapStatus(ctx context.Context, id string, from, to entity.DrawingStatus) error
	Complete(ctx context.Context, id string, seed, algorithm string, snapshot []byte, snapshotHash string) error
	SetTotalTickets(ctx context.Context, id string, total int) error
	IncreaseSoldTickets(ctx context.Context, id string, count int) error
}

type drawingRepository struct{}

func NewDrawingRepository() *drawingRepository {
	return &drawingRepository{}
}

func (r *drawingRepository) Create(ctx context.Context, drawing *entity.Drawing) error {
	return xcontext.DB(ctx).Create(drawing).Error
}

func (r *drawingRepository) GetByID(ctx context.Context, id string) (*entity.Drawing, error) {
	var result entity.Drawing
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *drawingRepository) GetList(
	ctx context.Context, filter GetDrawingListFilter,
) ([]entity.Drawing, error) {
	tx := xcontext.DB(ctx).Model(&entity.Drawing{})

	if len(filter.Statuses) > 0 {
		tx = tx.Where("status IN (?)", filter.Statuses)
	}

	if filter.Type != "" {
		tx = tx.Where("type=?", filter.Type)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.Drawing
	if err := tx.Order("draw_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *drawingRepository) GetDueToOpen(
	ctx context.Context, now time.Time,
) ([]entity.Drawing, error) {
	return r.getDue(ctx, entity.DrawingScheduled, "sales_open_at", now)
}

func (r *drawingRepository) GetDueToClose(
	ctx context.Context, now time.Time,
) ([]entity.Drawing, error) {
	return r.getDue(ctx, entity.DrawingOpen, "sales_close_at", now)
}

func (r *drawingRepository) GetDueToExecute(
	ctx context.Context, now time.Time,
) ([]entity.Drawing, error) {
	return r.getDue(ctx, entity.DrawingClosed, "draw_at", now)
}

func (r *drawingRepository) getDue(
	ctx context.Context, status entity.DrawingStatus, column string, now time.Time,
) ([]entity.Drawing, error) {
	var result []entity.Drawing
	err := xcontext.DB(ctx).
		Where("status=? AND "+column+" <= ?", status, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Update edits the plan of a drawing. Only drafts and scheduled drawings
// may be edited; the guard is part of the WHERE so a concurrent opening
// cannot be overwritten.
func (r *drawingRepository) Update(ctx context.Context, id string, data *entity.Drawing) error {
	tx := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=? AND status IN (?)", id, []entity.DrawingStatus{
			entity.DrawingDraft, entity.DrawingScheduled,
		}).
		Updates(map[string]any{
			"name":           data.Name,
			"type":           data.Type,
			"ticket_cost":    data.TicketCost,
			"max_tickets":    data.MaxTickets,
			"sales_open_at":  data.SalesOpenAt,
			"sales_close_at": data.SalesCloseAt,
			"draw_at":        data.DrawAt,
			"prizes":         data.Prizes,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CompareAndSwapStatus is the serialization point of every lifecycle
// transition: the update only lands when the drawing still is in the
// expected status.
func (r *drawingRepository) CompareAndSwapStatus(
	ctx context.Context, id string, from, to entity.DrawingStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=? AND status=?", id, from).
		Update("status", to)

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

// Complete moves closed -> completed and records the draw evidence in the
// same conditional write, so only one executor can ever win.
func (r *drawingRepository) Complete(
	ctx context.Context, id string, seed, algorithm string, snapshot []byte, snapshotHash string,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=? AND status=?", id, entity.DrawingClosed).
		Updates(map[string]any{
			"status":        entity.DrawingCompleted,
			"seed":          seed,
			"algorithm":     algorithm,
			"snapshot":      snapshot,
			"snapshot_hash": snapshotHash,
			"completed_at":  time.Now(),
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *drawingRepository) SetTotalTickets(ctx context.Context, id string, total int) error {
	return xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=?", id).
		Update("total_tickets", total).Error
}

// IncreaseSoldTickets reserves capacity. With a positive max_tickets the
// increment only lands while capacity remains, so overselling cannot
// happen no matter how many purchases race.
func (r *drawingRepository) IncreaseSoldTickets(ctx context.Context, id string, count int) error {
	tx := xcontext.DB(ctx).Model(&entity.Drawing{}).
		Where("id=? AND (max_tickets = 0 OR sold_tickets + ? <= max_tickets)", id, count).
		Update("sold_tickets", gorm.Expr("sold_tickets+?", count))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
