package domain

import (
	"context"

	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
)

type AuditDomain interface {
	GetAccountTrail(ctx context.Context, req *model.GetAccountAuditTrailRequest) (*model.GetAccountAuditTrailResponse, error)
	GetDrawingTrail(ctx context.Context, req *model.GetDrawingAuditTrailRequest) (*model.GetDrawingAuditTrailResponse, error)
}

type auditDomain struct {
	auditRepo repository.AuditRepository
}

func NewAuditDomain(auditRepo repository.AuditRepository) *auditDomain {
	return &auditDomain{auditRepo: auditRepo}
}

func (d *auditDomain) GetAccountTrail(
	ctx context.Context, req *model.GetAccountAuditTrailRequest,
) (*model.GetAccountAuditTrailResponse, error) {
	accountID := req.AccountID
	if accountID == "" {
		accountID = xcontext.RequestAccountID(ctx)
	}

	if accountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty account id")
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

	entries, err := d.auditRepo.GetListByAccountID(ctx, accountID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the audit trail: %v", err)
		return nil, errorx.Unknown
	}

	resp := []model.AuditEntry{}
	for i := range entries {
		resp = append(resp, convertAuditEntry(&entries[i]))
	}

	return &model.GetAccountAuditTrailResponse{Entries: resp}, nil
}

func (d *auditDomain) GetDrawingTrail(
	ctx context.Context, req *model.GetDrawingAuditTrailRequest,
) (*model.GetDrawingAuditTrailResponse, error) {
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

	entries, err := d.auditRepo.GetListByDrawingID(ctx, req.DrawingID, req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the audit trail: %v", err)
		return nil, errorx.Unknown
	}

	resp := []model.AuditEntry{}
	for i := range entries {
		resp = append(resp, convertAuditEntry(&entries[i]))
	}

	return &model.GetDrawingAuditTrailResponse{Entries: resp}, nil
}
