package domain

import (
	"context"
	"errors"
	"time"

	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/internal/entity"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/enum"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountDomain interface {
	Create(ctx context.Context, req *model.CreateAccountRequest) (*model.CreateAccountResponse, error)
	Get(ctx context.Context, req *model.GetAccountRequest) (*model.GetAccountResponse, error)
	UpdateProfile(ctx context.Context, req *model.UpdateAccountProfileRequest) (*model.UpdateAccountProfileResponse, error)
	Disable(ctx context.Context, req *model.DisableAccountRequest) (*model.DisableAccountResponse, error)
	Enable(ctx context.Context, req *model.EnableAccountRequest) (*model.EnableAccountResponse, error)
	ClassifyTier(ctx context.Context, req *model.ClassifyTierRequest) (*model.ClassifyTierResponse, error)
	GetTiers(ctx context.Context, req *model.GetTiersRequest) (*model.GetTiersResponse, error)
}

type accountDomain struct {
	accountRepo repository.AccountRepository
}

func NewAccountDomain(accountRepo repository.AccountRepository) *accountDomain {
	return &accountDomain{accountRepo: accountRepo}
}

func (d *accountDomain) Create(
	ctx context.Context, req *model.CreateAccountRequest,
) (*model.CreateAccountResponse, error) {
	sex, fitnessLevel, err := parseProfile(req.Sex, req.FitnessLevel)
	if err != nil {
		return nil, err
	}

	if req.DisplayName == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty display name")
	}

	// Classification rejects ineligible profiles before anything is stored.
	tiers, err := tier.TiersOf(sex, req.BirthDate, fitnessLevel, time.Now())
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := d.accountRepo.GetByID(ctx, id); err == nil {
		return nil, errorx.New(errorx.AlreadyExists, "The account already exists")
	}

	account := &entity.Account{
		Base:         entity.Base{ID: id},
		DisplayName:  req.DisplayName,
		Sex:          sex,
		BirthDate:    req.BirthDate,
		FitnessLevel: fitnessLevel,
	}

	if err := d.accountRepo.Create(ctx, account); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateAccountResponse{Account: convertAccount(account, tiers)}, nil
}

func (d *accountDomain) Get(
	ctx context.Context, req *model.GetAccountRequest,
) (*model.GetAccountResponse, error) {
	accountID := req.ID
	if accountID == "" {
		accountID = xcontext.RequestAccountID(ctx)
	}

	account, err := d.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetAccountResponse{Account: d.convertWithTiers(ctx, account)}, nil
}

func (d *accountDomain) UpdateProfile(
	ctx context.Context, req *model.UpdateAccountProfileRequest,
) (*model.UpdateAccountProfileResponse, error) {
	sex, fitnessLevel, err := parseProfile(req.Sex, req.FitnessLevel)
	if err != nil {
		return nil, err
	}

	if req.DisplayName == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty display name")
	}

	if _, err := tier.Classify(sex, req.BirthDate, fitnessLevel, time.Now()); err != nil {
		return nil, err
	}

	if _, err := d.accountRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	err = d.accountRepo.UpdateProfile(ctx, req.ID, &entity.Account{
		DisplayName:  req.DisplayName,
		Sex:          sex,
		BirthDate:    req.BirthDate,
		FitnessLevel: fitnessLevel,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update the profile: %v", err)
		return nil, errorx.Unknown
	}

	// Tiers are derived on read, so the change moves the member to the new
	// tier from the next classification on.
	account, err := d.accountRepo.GetByID(ctx, req.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the updated account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateAccountProfileResponse{Account: d.convertWithTiers(ctx, account)}, nil
}

func (d *accountDomain) Disable(
	ctx context.Context, req *model.DisableAccountRequest,
) (*model.DisableAccountResponse, error) {
	account, err := d.accountRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	if account.DisabledAt.Valid {
		return &model.DisableAccountResponse{}, nil
	}

	if err := d.accountRepo.Disable(ctx, req.ID); err != nil {
		// Zero rows means another disable landed first.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.DisableAccountResponse{}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot disable the account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DisableAccountResponse{}, nil
}

func (d *accountDomain) Enable(
	ctx context.Context, req *model.EnableAccountRequest,
) (*model.EnableAccountResponse, error) {
	if _, err := d.accountRepo.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.accountRepo.Enable(ctx, req.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot enable the account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.EnableAccountResponse{}, nil
}

func (d *accountDomain) ClassifyTier(
	ctx context.Context, req *model.ClassifyTierRequest,
) (*model.ClassifyTierResponse, error) {
	sex, fitnessLevel, err := parseProfile(req.Sex, req.FitnessLevel)
	if err != nil {
		return nil, err
	}

	tiers, err := tier.TiersOf(sex, req.BirthDate, fitnessLevel, time.Now())
	if err != nil {
		return nil, err
	}

	return &model.ClassifyTierResponse{Tier: tiers[0], Tiers: tiers}, nil
}

func (d *accountDomain) GetTiers(
	ctx context.Context, req *model.GetTiersRequest,
) (*model.GetTiersResponse, error) {
	return &model.GetTiersResponse{Tiers: tier.All()}, nil
}

// convertWithTiers decorates the account with its derived tiers. A stored
// profile always classifies; should it not, the account is still returned.
func (d *accountDomain) convertWithTiers(
	ctx context.Context, account *entity.Account,
) model.Account {
	tiers, err := tier.TiersOf(account.Sex, account.BirthDate, account.FitnessLevel, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot classify account %s: %v", account.ID, err)
	}

	return convertAccount(account, tiers)
}

func parseProfile(sexValue, fitnessValue string) (entity.Sex, entity.FitnessLevel, error) {
	sex, err := enum.ToEnum[entity.Sex](sexValue)
	if err != nil {
		return "", "", errorx.New(errorx.BadRequest, "Invalid sex %s", sexValue)
	}

	fitnessLevel, err := enum.ToEnum[entity.FitnessLevel](fitnessValue)
	if err != nil {
		return "", "", errorx.New(errorx.BadRequest, "Invalid fitness level %s", fitnessValue)
	}

	return sex, fitnessLevel, nil
}
