package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/portpak/portpak/internal/dutyfee/domain"
	dutyservice "github.com/portpak/portpak/internal/dutyfee/service"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	"github.com/portpak/portpak/internal/migration"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dutyFixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       domain.Service
	ctx       context.Context
	companyID snowflake.ID
}

func setupDutyFixture(t *testing.T) *dutyFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:dutytest_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	companyID := node.Generate()
	return &dutyFixture{
		db:        db,
		node:      node,
		svc:       dutyservice.New(dutyservice.Params{DB: db, Log: zap.NewNop(), GenID: node}),
		ctx:       tenantctx.WithCompanyID(context.Background(), companyID),
		companyID: companyID,
	}
}

func (f *dutyFixture) addParcel(t *testing.T, status parceldomain.Status) snowflake.ID {
	t.Helper()

	id := f.node.Generate()
	require.NoError(t, f.db.Create(&parceldomain.Parcel{
		ID:             id,
		CompanyID:      f.companyID,
		CustomerID:     f.node.Generate(),
		TrackingNumber: "TRK" + id.String(),
		Status:         status,
		ItemCount:      1,
		ReceivedAt:     time.Now().UTC(),
	}).Error)
	return id
}

func TestCreateDutyFee(t *testing.T) {
	f := setupDutyFixture(t)
	parcelID := f.addParcel(t, parceldomain.StatusReceived)

	fee, err := f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Electronics",
		Amount:   "2500.00",
		Currency: "jmd",
	})
	require.NoError(t, err)
	require.Equal(t, "JMD", fee.Currency)
	require.Equal(t, "Electronics", fee.DisplayType())
}

func TestCreateDutyFeeValidation(t *testing.T) {
	f := setupDutyFixture(t)
	parcelID := f.addParcel(t, parceldomain.StatusReceived)

	_, err := f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Spaceships",
		Amount:   "10.00",
		Currency: "USD",
	})
	require.ErrorIs(t, err, domain.ErrInvalidFeeType)

	_, err = f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  domain.FeeTypeOther,
		Amount:   "10.00",
		Currency: "USD",
	})
	require.ErrorIs(t, err, domain.ErrCustomTypeMissing)

	_, err = f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Electronics",
		Amount:   "-5.00",
		Currency: "USD",
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Electronics",
		Amount:   "10.00",
		Currency: "EUR",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestUpdateDutyFeePersistsClearedCustomType(t *testing.T) {
	f := setupDutyFixture(t)
	parcelID := f.addParcel(t, parceldomain.StatusReceived)

	fee, err := f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID:      parcelID.String(),
		FeeType:       domain.FeeTypeOther,
		CustomFeeType: "Broker fee",
		Amount:        "75.00",
		Currency:      "USD",
	})
	require.NoError(t, err)

	feeType := "Electronics"
	empty := ""
	updated, err := f.svc.Update(f.ctx, domain.UpdateDutyFeeRequest{
		ID:            fee.ID.String(),
		FeeType:       &feeType,
		CustomFeeType: &empty,
	})
	require.NoError(t, err)
	require.Equal(t, "Electronics", updated.DisplayType())

	// The cleared custom type must survive a fresh read.
	var stored domain.DutyFee
	require.NoError(t, f.db.First(&stored, "id = ?", fee.ID).Error)
	require.Equal(t, "Electronics", stored.FeeType)
	require.Empty(t, stored.CustomFeeType)
}

func TestDutyFeeFrozenByParcelStatus(t *testing.T) {
	f := setupDutyFixture(t)
	parcelID := f.addParcel(t, parceldomain.StatusReceived)

	fee, err := f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Electronics",
		Amount:   "100.00",
		Currency: "USD",
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&parceldomain.Parcel{}).
		Where("id = ?", parcelID).
		Update("status", parceldomain.StatusDelivered).Error)

	amount := "200.00"
	_, err = f.svc.Update(f.ctx, domain.UpdateDutyFeeRequest{ID: fee.ID.String(), Amount: &amount})
	require.ErrorIs(t, err, domain.ErrImmutableFeeState)

	err = f.svc.Delete(f.ctx, fee.ID.String())
	require.ErrorIs(t, err, domain.ErrImmutableFeeState)
}

func TestDutyFeeFrozenByInvoiceLink(t *testing.T) {
	f := setupDutyFixture(t)
	parcelID := f.addParcel(t, parceldomain.StatusReceived)

	fee, err := f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Electronics",
		Amount:   "100.00",
		Currency: "USD",
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Create(&invoicedomain.InvoiceItem{
		ID:          f.node.Generate(),
		InvoiceID:   f.node.Generate(),
		ParcelID:    parcelID,
		Type:        invoicedomain.ItemTypeFee,
		Description: "Handling",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(5),
		LineTotal:   decimal.NewFromInt(5),
		Currency:    "USD",
	}).Error)

	amount := "200.00"
	_, err = f.svc.Update(f.ctx, domain.UpdateDutyFeeRequest{ID: fee.ID.String(), Amount: &amount})
	require.ErrorIs(t, err, domain.ErrImmutableFeeState)

	_, err = f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Furniture",
		Amount:   "50.00",
		Currency: "USD",
	})
	require.ErrorIs(t, err, domain.ErrImmutableFeeState)
}

func TestDutyFeeTotals(t *testing.T) {
	f := setupDutyFixture(t)
	parcelID := f.addParcel(t, parceldomain.StatusReceived)

	_, err := f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Electronics",
		Amount:   "100.00",
		Currency: "USD",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx, domain.CreateDutyFeeRequest{
		ParcelID: parcelID.String(),
		FeeType:  "Clothing & Footwear",
		Amount:   "1500.00",
		Currency: "JMD",
	})
	require.NoError(t, err)

	totals, err := f.svc.Totals(f.ctx, parcelID.String())
	require.NoError(t, err)
	require.True(t, totals["USD"].Equal(decimal.NewFromInt(100)))
	require.True(t, totals["JMD"].Equal(decimal.NewFromInt(1500)))
}
