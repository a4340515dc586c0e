package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/portpak/portpak/internal/fee/domain"
	feeservice "github.com/portpak/portpak/internal/fee/service"
	"github.com/portpak/portpak/internal/migration"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type feeFixture struct {
	db  *gorm.DB
	svc domain.Service
	ctx context.Context
}

func setupFeeFixture(t *testing.T) *feeFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:feetest_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)

	return &feeFixture{
		db:  db,
		svc: feeservice.New(feeservice.Params{DB: db, Log: zap.NewNop(), GenID: node}),
		ctx: tenantctx.WithCompanyID(context.Background(), node.Generate()),
	}
}

func TestCreateFeeRejectsDuplicateCode(t *testing.T) {
	f := setupFeeFixture(t)

	req := domain.CreateFeeRequest{
		Name:              "Handling",
		Code:              "HANDLING",
		FeeType:           string(domain.FeeTypeShipping),
		CalculationMethod: string(domain.MethodFixed),
		Amount:            "5.00",
		Currency:          "USD",
	}
	_, err := f.svc.Create(f.ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Create(f.ctx, req)
	require.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestUpdateFeePersistsClearedFields(t *testing.T) {
	f := setupFeeFixture(t)

	created, err := f.svc.Create(f.ctx, domain.CreateFeeRequest{
		Name:              "Fragile handling",
		Code:              "FRAGILE",
		FeeType:           string(domain.FeeTypeHandling),
		CalculationMethod: string(domain.MethodFixed),
		Amount:            "7.50",
		Currency:          "USD",
		AppliesTo:         []string{"fragile"},
		Description:       "old description",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"fragile"}, created.AppliesToList())

	empty := ""
	updated, err := f.svc.Update(f.ctx, domain.UpdateFeeRequest{
		ID:          created.ID.String(),
		AppliesTo:   []string{},
		Description: &empty,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Description)
	require.Nil(t, updated.AppliesToList())

	// The cleared values must survive a fresh read, not just echo back.
	stored, err := f.svc.GetByID(f.ctx, created.ID.String())
	require.NoError(t, err)
	require.Empty(t, stored.Description)
	require.Nil(t, stored.AppliesToList())
}

func TestUpdateFeeLeavesUntouchedFields(t *testing.T) {
	f := setupFeeFixture(t)

	created, err := f.svc.Create(f.ctx, domain.CreateFeeRequest{
		Name:              "Storage",
		Code:              "STORAGE",
		FeeType:           string(domain.FeeTypeHandling),
		CalculationMethod: string(domain.MethodFixed),
		Amount:            "3.00",
		Currency:          "USD",
		Description:       "per day after grace period",
	})
	require.NoError(t, err)

	amount := "4.00"
	_, err = f.svc.Update(f.ctx, domain.UpdateFeeRequest{
		ID:     created.ID.String(),
		Amount: &amount,
	})
	require.NoError(t, err)

	stored, err := f.svc.GetByID(f.ctx, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, "4", stored.Amount.String())
	require.Equal(t, "per day after grace period", stored.Description)
}
