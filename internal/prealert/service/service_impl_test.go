package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	"github.com/portpak/portpak/internal/migration"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	parcelservice "github.com/portpak/portpak/internal/parcel/service"
	"github.com/portpak/portpak/internal/prealert/domain"
	prealertservice "github.com/portpak/portpak/internal/prealert/service"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type preAlertFixture struct {
	db         *gorm.DB
	node       *snowflake.Node
	svc        domain.Service
	parcels    parceldomain.Service
	ctx        context.Context
	companyID  snowflake.ID
	customerID snowflake.ID
}

func setupPreAlertFixture(t *testing.T) *preAlertFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:prealerttest_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	companyID := node.Generate()
	customerID := node.Generate()
	require.NoError(t, db.Create(&customerdomain.Customer{
		ID:            customerID,
		CompanyID:     companyID,
		Name:          "Dana Brown",
		Email:         "dana@example.com",
		AccountNumber: "PKG-0001",
	}).Error)

	svc := prealertservice.New(prealertservice.Params{DB: db, Log: zap.NewNop(), GenID: node})
	parcels := parcelservice.New(parcelservice.Params{DB: db, Log: zap.NewNop(), GenID: node, PreAlerts: svc})

	return &preAlertFixture{
		db:         db,
		node:       node,
		svc:        svc,
		parcels:    parcels,
		ctx:        tenantctx.WithCompanyID(context.Background(), companyID),
		companyID:  companyID,
		customerID: customerID,
	}
}

func TestCreatePreAlertDefaults(t *testing.T) {
	f := setupPreAlertFixture(t)

	alert, err := f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "1Z999AA10123456784",
		Courier:        "UPS",
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, alert.Status)
	require.Equal(t, snowflake.ID(0), alert.ParcelID)

	// No estimate given, so arrival defaults to a week out.
	expected := time.Now().UTC().Add(7 * 24 * time.Hour)
	require.WithinDuration(t, expected, alert.EstimatedArrival, time.Minute)
}

func TestCreatePreAlertValidation(t *testing.T) {
	f := setupPreAlertFixture(t)

	_, err := f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.node.Generate().String(),
		TrackingNumber: "1Z999AA10123456784",
		Courier:        "UPS",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "1Z",
		Courier:        "UPS",
	})
	require.ErrorIs(t, err, domain.ErrInvalidTracking)

	_, err = f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "1Z999AA10123456784",
		Courier:        "U",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCourier)
}

func TestParcelIntakeMatchesPreAlert(t *testing.T) {
	f := setupPreAlertFixture(t)

	alert, err := f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-MATCH-001",
		Courier:        "FedEx",
	})
	require.NoError(t, err)

	unmatched, err := f.svc.List(f.ctx, domain.ListPreAlertRequest{Unmatched: true})
	require.NoError(t, err)
	require.Len(t, unmatched, 1)

	parcel, err := f.parcels.Create(f.ctx, parceldomain.CreateParcelRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-MATCH-001",
		Weight:         "4.0",
	})
	require.NoError(t, err)

	matched, err := f.svc.GetByID(f.ctx, alert.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusMatched, matched.Status)
	require.Equal(t, parcel.ID, matched.ParcelID)

	unmatched, err = f.svc.List(f.ctx, domain.ListPreAlertRequest{Unmatched: true})
	require.NoError(t, err)
	require.Empty(t, unmatched)
}

func TestMatchedPreAlertIsFrozen(t *testing.T) {
	f := setupPreAlertFixture(t)

	alert, err := f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-MATCH-002",
		Courier:        "DHL",
	})
	require.NoError(t, err)

	_, err = f.parcels.Create(f.ctx, parceldomain.CreateParcelRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-MATCH-002",
	})
	require.NoError(t, err)

	cancelled := string(domain.StatusCancelled)
	_, err = f.svc.Update(f.ctx, domain.UpdatePreAlertRequest{
		ID:     alert.ID.String(),
		Status: &cancelled,
	})
	require.ErrorIs(t, err, domain.ErrAlreadyMatched)

	_, err = f.svc.Cancel(f.ctx, alert.ID.String())
	require.ErrorIs(t, err, domain.ErrAlreadyMatched)

	err = f.svc.Delete(f.ctx, alert.ID.String())
	require.ErrorIs(t, err, domain.ErrAlreadyMatched)
}

func TestCancelPendingPreAlert(t *testing.T) {
	f := setupPreAlertFixture(t)

	alert, err := f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-CANCEL-001",
		Courier:        "USPS",
		Description:    "sneakers",
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(f.ctx, alert.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)

	// A cancelled pre-alert no longer matches incoming parcels.
	_, err = f.parcels.Create(f.ctx, parceldomain.CreateParcelRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-CANCEL-001",
	})
	require.NoError(t, err)

	stored, err := f.svc.GetByID(f.ctx, alert.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, stored.Status)
	require.Equal(t, snowflake.ID(0), stored.ParcelID)
}

func TestUpdatePreAlertPersistsClearedDescription(t *testing.T) {
	f := setupPreAlertFixture(t)

	alert, err := f.svc.Create(f.ctx, domain.CreatePreAlertRequest{
		CustomerID:     f.customerID.String(),
		TrackingNumber: "TRK-CLEAR-001",
		Courier:        "Amazon",
		Description:    "two phone cases",
	})
	require.NoError(t, err)

	empty := ""
	updated, err := f.svc.Update(f.ctx, domain.UpdatePreAlertRequest{
		ID:          alert.ID.String(),
		Description: &empty,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Description)

	stored, err := f.svc.GetByID(f.ctx, alert.ID.String())
	require.NoError(t, err)
	require.Empty(t, stored.Description)
}
