package repository

import (
	"context"

	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/pkg/xcontext"
)

// AuditRepository is deliberately append-only: there is no update and no
// delete, so the trail cannot be rewritten through this layer.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	GetListByAccountID(ctx context.Context, accountID string, offset, limit int) ([]entity.AuditEntry, error)
	GetListByDrawingID(ctx context.Context, drawingID string, offset, limit int) ([]entity.AuditEntry, error)
	GetLastByKind(ctx context.Context, kind entity.AuditKind, drawingID string) (*entity.AuditEntry, error)
}

type auditRepository struct{}

func NewAuditRepository() *auditRepository {
	return &auditRepository{}
}

func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	return xcontext.DB(ctx).Create(entry).Error
}

func (r *auditRepository) GetListByAccountID(
	ctx context.Context, accountID string, offset, limit int,
) ([]entity.AuditEntry, error) {
	var result []entity.AuditEntry
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

func (r *auditRepository) GetListByDrawingID(
	ctx context.Context, drawingID string, offset, limit int,
) ([]entity.AuditEntry, error) {
	var result []entity.AuditEntry
	err := xcontext.DB(ctx).
		Where("drawing_id=?", drawingID).
		Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *auditRepository) GetLastByKind(
	ctx context.Context, kind entity.AuditKind, drawingID string,
) (*entity.AuditEntry, error) {
	var result entity.AuditEntry
	err := xcontext.DB(ctx).
		Where("kind=? AND drawing_id=?", kind, drawingID).
		Order("id DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
