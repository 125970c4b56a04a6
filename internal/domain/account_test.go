package domain

import (
	"testing"
	"time"

	"github.com/fitstakes/backend/internal/domain/tier"
	"github.com/fitstakes/backend/internal/model"
	"github.com/fitstakes/backend/internal/repository"
	"github.com/fitstakes/backend/pkg/errorx"
	"github.com/fitstakes/backend/pkg/testutil"
	"github.com/fitstakes/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

func Test_accountDomain_Create(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewAccountDomain(repository.NewAccountRepository())

	resp, err := domain.Create(ctx, &model.CreateAccountRequest{
		ID:           "runner-9",
		DisplayName:  "Morgan Reed",
		Sex:          "female",
		BirthDate:    time.Now().AddDate(-42, 0, 0),
		FitnessLevel: "intermediate",
	})
	require.NoError(t, err)
	require.Equal(t, "runner-9", resp.Account.ID)
	require.Equal(t, "F-40-49-INT", resp.Account.Tier)
	require.Equal(t, []string{"F-40-49-INT", tier.Open}, resp.Account.Tiers)
	require.Equal(t, uint64(0), resp.Account.Balance)

	_, err = domain.Create(ctx, &model.CreateAccountRequest{
		ID:           "runner-9",
		DisplayName:  "Morgan Reed",
		Sex:          "female",
		BirthDate:    time.Now().AddDate(-42, 0, 0),
		FitnessLevel: "intermediate",
	})
	require.Equal(t, errorx.New(errorx.AlreadyExists, "The account already exists"), err)

	// Without an id the service assigns one.
	resp, err = domain.Create(ctx, &model.CreateAccountRequest{
		DisplayName:  "Riley Snow",
		Sex:          "male",
		BirthDate:    time.Now().AddDate(-61, 0, 0),
		FitnessLevel: "advanced",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Account.ID)
	require.Equal(t, "M-60+-ADV", resp.Account.Tier)
}

func Test_accountDomain_Create_invalidProfile(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewAccountDomain(repository.NewAccountRepository())

	req := &model.CreateAccountRequest{
		DisplayName:  "Casey Young",
		Sex:          "other",
		BirthDate:    time.Now().AddDate(-20, 0, 0),
		FitnessLevel: "beginner",
	}
	_, err := domain.Create(ctx, req)
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid sex other"), err)

	req.Sex = "male"
	req.FitnessLevel = "elite"
	_, err = domain.Create(ctx, req)
	require.Equal(t, errorx.New(errorx.BadRequest, "Invalid fitness level elite"), err)

	req.FitnessLevel = "beginner"
	req.BirthDate = time.Now().AddDate(-17, 0, 0)
	_, err = domain.Create(ctx, req)
	require.Equal(t, errorx.New(errorx.BadRequest, "Members under 18 are not eligible"), err)

	req.BirthDate = time.Now().AddDate(-20, 0, 0)
	req.DisplayName = ""
	_, err = domain.Create(ctx, req)
	require.Equal(t, errorx.New(errorx.BadRequest, "Not allow an empty display name"), err)
}

func Test_accountDomain_Get(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewAccountDomain(repository.NewAccountRepository())

	resp, err := domain.Get(ctx, &model.GetAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)
	require.Equal(t, "Pat Walker", resp.Account.DisplayName)
	require.Equal(t, "M-18-29-BEG", resp.Account.Tier)
	require.Equal(t, testutil.Account1.Balance, resp.Account.Balance)
	require.False(t, resp.Account.Disabled)

	// Without an id the request falls back to the caller.
	resp, err = domain.Get(xcontext.WithRequestAccountID(ctx, testutil.Account2.ID),
		&model.GetAccountRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.Account2.ID, resp.Account.ID)
	require.Equal(t, "F-30-39-ADV", resp.Account.Tier)

	_, err = domain.Get(ctx, &model.GetAccountRequest{ID: "ghost"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found account"), err)
}

func Test_accountDomain_UpdateProfile(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewAccountDomain(repository.NewAccountRepository())

	resp, err := domain.UpdateProfile(ctx, &model.UpdateAccountProfileRequest{
		ID:           testutil.Account1.ID,
		DisplayName:  "Pat Walker",
		Sex:          "male",
		BirthDate:    testutil.Account1.BirthDate,
		FitnessLevel: "advanced",
	})
	require.NoError(t, err)
	require.Equal(t, "M-18-29-ADV", resp.Account.Tier)

	// An ineligible profile never replaces an eligible one.
	_, err = domain.UpdateProfile(ctx, &model.UpdateAccountProfileRequest{
		ID:           testutil.Account1.ID,
		DisplayName:  "Pat Walker",
		Sex:          "male",
		BirthDate:    time.Now().AddDate(-16, 0, 0),
		FitnessLevel: "advanced",
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Members under 18 are not eligible"), err)

	check, err := domain.Get(ctx, &model.GetAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)
	require.Equal(t, "M-18-29-ADV", check.Account.Tier)

	_, err = domain.UpdateProfile(ctx, &model.UpdateAccountProfileRequest{
		ID:           "ghost",
		DisplayName:  "Ghost",
		Sex:          "male",
		BirthDate:    time.Now().AddDate(-30, 0, 0),
		FitnessLevel: "beginner",
	})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found account"), err)
}

func Test_accountDomain_DisableEnable(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	domain := NewAccountDomain(repository.NewAccountRepository())

	_, err := domain.Disable(ctx, &model.DisableAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)

	resp, err := domain.Get(ctx, &model.GetAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)
	require.True(t, resp.Account.Disabled)

	// Disabling twice is harmless.
	_, err = domain.Disable(ctx, &model.DisableAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)

	_, err = domain.Enable(ctx, &model.EnableAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)

	resp, err = domain.Get(ctx, &model.GetAccountRequest{ID: testutil.Account1.ID})
	require.NoError(t, err)
	require.False(t, resp.Account.Disabled)

	_, err = domain.Disable(ctx, &model.DisableAccountRequest{ID: "ghost"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found account"), err)

	_, err = domain.Enable(ctx, &model.EnableAccountRequest{ID: "ghost"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found account"), err)
}

func Test_accountDomain_ClassifyTier(t *testing.T) {
	ctx := testutil.MockContext()
	domain := NewAccountDomain(repository.NewAccountRepository())

	resp, err := domain.ClassifyTier(ctx, &model.ClassifyTierRequest{
		Sex:          "female",
		BirthDate:    time.Now().AddDate(-34, 0, 0),
		FitnessLevel: "advanced",
	})
	require.NoError(t, err)
	require.Equal(t, "F-30-39-ADV", resp.Tier)
	require.Equal(t, []string{"F-30-39-ADV", tier.Open}, resp.Tiers)

	_, err = domain.ClassifyTier(ctx, &model.ClassifyTierRequest{
		Sex:          "female",
		BirthDate:    time.Now().AddDate(-10, 0, 0),
		FitnessLevel: "advanced",
	})
	require.Equal(t, errorx.New(errorx.BadRequest, "Members under 18 are not eligible"), err)

	tiers, err := domain.GetTiers(ctx, &model.GetTiersRequest{})
	require.NoError(t, err)
	require.Len(t, tiers.Tiers, 31)
	require.Equal(t, tier.Open, tiers.Tiers[30])
}
