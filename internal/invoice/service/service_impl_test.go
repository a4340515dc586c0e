package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	companydomain "github.com/portpak/portpak/internal/company/domain"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	invoiceservice "github.com/portpak/portpak/internal/invoice/service"
	"github.com/portpak/portpak/internal/migration"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	settingsservice "github.com/portpak/portpak/internal/settings/service"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	svc        invoicedomain.Service
	ctx        context.Context
	companyID  snowflake.ID
	customerID snowflake.ID
}

func setupInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	companyID := node.Generate()
	require.NoError(t, db.Create(&companydomain.Company{
		ID:            companyID,
		Name:          "Island Express",
		Subdomain:     "island-express",
		InvoicePrefix: "PKG",
	}).Error)

	customerID := node.Generate()
	require.NoError(t, db.Create(&customerdomain.Customer{
		ID:            customerID,
		CompanyID:     companyID,
		Name:          "Andre Brown",
		Email:         "andre@example.com",
		AccountNumber: "PP-000001",
	}).Error)

	settingsSvc := settingsservice.New(settingsservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})

	svc := invoiceservice.New(invoiceservice.Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Settings: settingsSvc,
	})

	return &invoiceFixture{
		db:         db,
		node:       node,
		svc:        svc,
		ctx:        tenantctx.WithCompanyID(context.Background(), companyID),
		companyID:  companyID,
		customerID: customerID,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:invoicetest_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))
	return db
}

func (f *invoiceFixture) addParcel(t *testing.T, weight, declaredValue string) snowflake.ID {
	t.Helper()

	id := f.node.Generate()
	require.NoError(t, f.db.Create(&parceldomain.Parcel{
		ID:             id,
		CompanyID:      f.companyID,
		CustomerID:     f.customerID,
		TrackingNumber: "TRK" + id.String(),
		Status:         parceldomain.StatusProcessed,
		Weight:         mustDecimal(t, weight),
		DeclaredValue:  mustDecimal(t, declaredValue),
		ItemCount:      1,
		ReceivedAt:     time.Now().UTC(),
	}).Error)
	return id
}

func (f *invoiceFixture) addFee(t *testing.T, code string, method feedomain.CalculationMethod, amount, curr string, appliesTo []byte) {
	t.Helper()

	require.NoError(t, f.db.Create(&feedomain.Fee{
		ID:                f.node.Generate(),
		CompanyID:         f.companyID,
		Name:              code,
		Code:              code,
		FeeType:           feedomain.FeeTypeShipping,
		CalculationMethod: method,
		Amount:            mustDecimal(t, amount),
		Currency:          curr,
		AppliesTo:         appliesTo,
		IsActive:          true,
	}).Error)
}

func (f *invoiceFixture) addDutyFee(t *testing.T, parcelID snowflake.ID, amount, curr string) {
	t.Helper()

	require.NoError(t, f.db.Create(&dutydomain.DutyFee{
		ID:        f.node.Generate(),
		CompanyID: f.companyID,
		ParcelID:  parcelID,
		FeeType:   "Electronics",
		Amount:    mustDecimal(t, amount),
		Currency:  curr,
	}).Error)
}

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func TestGenerateAndFinalize(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "SHIP_LB", feedomain.MethodPerWeight, "2.50", "USD", []byte(`["weight"]`))
	parcelID := f.addParcel(t, "4", "100")

	resp, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
	})
	require.NoError(t, err)
	require.Nil(t, resp.Mismatch)

	inv := resp.Invoice
	require.Equal(t, invoicedomain.StatusDraft, inv.Status)
	require.Len(t, inv.Items, 1)
	require.Equal(t, "10", inv.Items[0].LineTotal.String())
	require.Equal(t, "2.5", inv.Items[0].UnitPrice.String())
	require.Equal(t, "4", inv.Items[0].Quantity.String())
	require.Equal(t, "10", inv.TotalAmount.String())

	now := time.Now().UTC()
	expectedPrefix := fmt.Sprintf("PKG-%02d-%02d-", now.Year()%100, int(now.Month()))
	require.Equal(t, expectedPrefix+"0001", inv.InvoiceNumber)

	issued, err := f.svc.Finalize(f.ctx, inv.ID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusIssued, issued.Status)
	require.NotNil(t, issued.IssueDate)
	require.NotNil(t, issued.DueDate)
	// USD totals round to the nearest $10 at issue time.
	require.Equal(t, "10", issued.TotalAmount.String())

	var parcel parceldomain.Parcel
	require.NoError(t, f.db.First(&parcel, "id = ?", parcelID).Error)
	require.Equal(t, parceldomain.StatusReadyForPickup, parcel.Status)
}

func TestGenerateMismatchRequiresStrategy(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "HANDLE", feedomain.MethodFixed, "5.00", "USD", nil)
	parcelID := f.addParcel(t, "1", "50")
	f.addDutyFee(t, parcelID, "1585.00", "JMD")

	resp, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
	})
	require.ErrorIs(t, err, invoicedomain.ErrMismatchUnresolved)
	require.NotNil(t, resp.Mismatch)
	require.Equal(t, "USD", resp.Mismatch.InvoiceCurrency)
	require.Equal(t, []string{"JMD"}, resp.Mismatch.Currencies)
	require.Equal(t, 1, resp.Mismatch.Count)

	// Nothing committed on the aborted attempt.
	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestGenerateConvertFeesStrategy(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "HANDLE", feedomain.MethodFixed, "5.00", "USD", nil)
	parcelID := f.addParcel(t, "1", "50")
	f.addDutyFee(t, parcelID, "1585.00", "JMD")

	resp, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
		Strategy:   invoicedomain.StrategyConvertFees,
	})
	require.NoError(t, err)
	require.Nil(t, resp.Mismatch)

	inv := resp.Invoice
	require.Equal(t, "USD", inv.Currency)
	require.Len(t, inv.Items, 2)
	for _, item := range inv.Items {
		require.Equal(t, "USD", item.Currency)
	}
	// 1585 JMD at the default 158.50 rate is 10 USD, plus the 5 USD fee.
	require.Equal(t, "15", inv.TotalAmount.String())
}

func TestGenerateSkipsAlreadyInvoicedParcels(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "HANDLE", feedomain.MethodFixed, "5.00", "USD", nil)
	parcelID := f.addParcel(t, "1", "50")

	first, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
	})
	require.NoError(t, err)
	require.Len(t, first.Invoice.Items, 1)

	second, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		InvoiceID: first.Invoice.ID.String(),
		ParcelIDs: []string{parcelID.String()},
	})
	require.NoError(t, err)
	require.Len(t, second.Invoice.Items, 1)
}

func TestCancelRevertsParcels(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "HANDLE", feedomain.MethodFixed, "5.00", "USD", nil)
	parcelID := f.addParcel(t, "1", "50")

	resp, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
	})
	require.NoError(t, err)

	_, err = f.svc.Finalize(f.ctx, resp.Invoice.ID.String())
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(f.ctx, resp.Invoice.ID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusCancelled, cancelled.Status)

	var parcel parceldomain.Parcel
	require.NoError(t, f.db.First(&parcel, "id = ?", parcelID).Error)
	require.Equal(t, parceldomain.StatusProcessed, parcel.Status)

	var itemCount int64
	require.NoError(t, f.db.Model(&invoicedomain.InvoiceItem{}).
		Where("invoice_id = ?", resp.Invoice.ID).
		Count(&itemCount).Error)
	require.Zero(t, itemCount)
}

func TestItemEditsDraftOnly(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "HANDLE", feedomain.MethodFixed, "5.00", "USD", nil)
	parcelID := f.addParcel(t, "1", "50")

	resp, err := f.svc.Generate(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
	})
	require.NoError(t, err)

	withCustom, err := f.svc.AddItem(f.ctx, invoicedomain.AddItemRequest{
		InvoiceID:   resp.Invoice.ID.String(),
		Description: "Storage fee",
		Quantity:    "2",
		UnitPrice:   "3.00",
	})
	require.NoError(t, err)
	require.Len(t, withCustom.Items, 2)
	require.Equal(t, "11", withCustom.TotalAmount.String())

	_, err = f.svc.Finalize(f.ctx, resp.Invoice.ID.String())
	require.NoError(t, err)

	_, err = f.svc.AddItem(f.ctx, invoicedomain.AddItemRequest{
		InvoiceID:   resp.Invoice.ID.String(),
		Description: "Late fee",
		Quantity:    "1",
		UnitPrice:   "1.00",
	})
	require.ErrorIs(t, err, invoicedomain.ErrNotDraft)
}

func TestPreviewDoesNotPersist(t *testing.T) {
	f := setupInvoiceFixture(t)
	f.addFee(t, "HANDLE", feedomain.MethodFixed, "5.00", "USD", nil)
	parcelID := f.addParcel(t, "1", "50")

	resp, err := f.svc.Preview(f.ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customerID.String(),
		ParcelIDs:  []string{parcelID.String()},
		Currency:   "USD",
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "5", resp.Totals.Total.String())

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	require.Zero(t, count)
}
