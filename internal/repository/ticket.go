package repository

import (
	"context"
	"errors"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"

	"gorm.io/gorm"
)

type TicketRepository interface {
	CreateAll(ctx context.Context, tickets []*entity.Ticket) error
	GetByID(ctx context.Context, id int64) (*entity.Ticket, error)
	GetByNumber(ctx context.Context, drawingID string, number int64) (*entity.Ticket, error)
	GetListByDrawingID(ctx context.Context, drawingID string, offset, limit int) ([]entity.Ticket, error)
	GetListByAccountID(ctx context.Context, accountID string, offset, limit int) ([]entity.Ticket, error)
	GetUnnumbered(ctx context.Context, drawingID string) ([]entity.Ticket, error)
	MaxAssignedNumber(ctx context.Context, drawingID string) (int64, error)
	AssignNumber(ctx context.Context, ticketID, number int64) error
	CountByDrawingID(ctx context.Context, drawingID string) (int64, error)
	MarkWinner(ctx context.Context, drawingID string, number int64, prizeID string, prizeRank int) error
	GetWinners(ctx context.Context, drawingID string) ([]entity.Ticket, error)
}

type ticketRepository struct{}

func NewTicketRepository() *ticketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) CreateAll(ctx context.Context, tickets []*entity.Ticket) error {
	return xcontext.DB(ctx).Create(tickets).Error
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	var result entity.Ticket
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) GetByNumber(
	ctx context.Context, drawingID string, number int64,
) (*entity.Ticket, error) {
	var result entity.Ticket
	err := xcontext.DB(ctx).
		Where("drawing_id=? AND number=?", drawingID, number).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) GetListByDrawingID(
	ctx context.Context, drawingID string, offset, limit int,
) ([]entity.Ticket, error) {
	var result []entity.Ticket
	tx := xcontext.DB(ctx).
		Where("drawing_id=?", drawingID).
		Order("id ASC")

	if limit > 0 {
		tx = tx.Offset(offset).Limit(limit)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) GetListByAccountID(
	ctx context.Context, accountID string, offset, limit int,
) ([]entity.Ticket, error) {
	var result []entity.Ticket
	err := xcontext.DB(ctx).
		Where("account_id=?", accountID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetUnnumbered returns the tickets still waiting for a number in purchase
// order, which the snowflake id preserves.
func (r *ticketRepository) GetUnnumbered(
	ctx context.Context, drawingID string,
) ([]entity.Ticket, error) {
	var result []entity.Ticket
	err := xcontext.DB(ctx).
		Where("drawing_id=? AND number IS NULL", drawingID).
		Order("id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) MaxAssignedNumber(
	ctx context.Context, drawingID string,
) (int64, error) {
	var max int64
	err := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Select("COALESCE(MAX(number), 0)").
		Where("drawing_id=?", drawingID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}

	return max, nil
}

// AssignNumber numbers one ticket. The guard keeps an already numbered
// ticket untouched, so resuming after a crash never renumbers anything.
func (r *ticketRepository) AssignNumber(ctx context.Context, ticketID, number int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("id=? AND number IS NULL", ticketID).
		Update("number", number)

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

func (r *ticketRepository) CountByDrawingID(
	ctx context.Context, drawingID string,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("drawing_id=?", drawingID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ticketRepository) MarkWinner(
	ctx context.Context, drawingID string, number int64, prizeID string, prizeRank int,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Ticket{}).
		Where("drawing_id=? AND number=?", drawingID, number).
		Updates(map[string]any{
			"is_winner":  true,
			"prize_id":   prizeID,
			"prize_rank": prizeRank,
		})

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ticketRepository) GetWinners(
	ctx context.Context, drawingID string,
) ([]entity.Ticket, error) {
	var result []entity.Ticket
	err := xcontext.DB(ctx).
		Where("drawing_id=? AND is_winner=?", drawingID, true).
		Order("prize_rank ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
