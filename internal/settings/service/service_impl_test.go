package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/portpak/portpak/internal/currency"
	"github.com/portpak/portpak/internal/migration"
	"github.com/portpak/portpak/internal/settings/domain"
	settingsservice "github.com/portpak/portpak/internal/settings/service"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSettingsService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:settingstest_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := settingsservice.New(settingsservice.Params{DB: db, Log: zap.NewNop(), GenID: node})
	ctx := tenantctx.WithCompanyID(context.Background(), node.Generate())
	return svc, ctx
}

func TestExchangeRateDefaults(t *testing.T) {
	svc, ctx := setupSettingsService(t)

	settings, err := svc.GetExchangeRate(ctx)
	require.NoError(t, err)
	require.Equal(t, currency.USD, settings.BaseCurrency)
	require.Equal(t, currency.JMD, settings.TargetCurrency)
	require.Equal(t, currency.DefaultExchangeRate, settings.ExchangeRate)
}

func TestUpdateExchangeRateRoundTrip(t *testing.T) {
	svc, ctx := setupSettingsService(t)

	updated, err := svc.UpdateExchangeRate(ctx, domain.UpdateExchangeRateRequest{
		BaseCurrency:   "usd",
		TargetCurrency: "jmd",
		ExchangeRate:   160.25,
		AutoUpdate:     true,
	})
	require.NoError(t, err)
	require.Equal(t, "USD", updated.BaseCurrency)
	require.Equal(t, "JMD", updated.TargetCurrency)
	require.False(t, updated.LastUpdated.IsZero())

	stored, err := svc.GetExchangeRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 160.25, stored.ExchangeRate)
	require.True(t, stored.AutoUpdate)

	// Second update hits the existing row instead of inserting.
	_, err = svc.UpdateExchangeRate(ctx, domain.UpdateExchangeRateRequest{
		BaseCurrency:   "USD",
		TargetCurrency: "JMD",
		ExchangeRate:   155.00,
	})
	require.NoError(t, err)

	stored, err = svc.GetExchangeRate(ctx)
	require.NoError(t, err)
	require.Equal(t, 155.00, stored.ExchangeRate)
}

func TestUpdateExchangeRateValidation(t *testing.T) {
	svc, ctx := setupSettingsService(t)

	_, err := svc.UpdateExchangeRate(ctx, domain.UpdateExchangeRateRequest{
		BaseCurrency:   "USD",
		TargetCurrency: "JMD",
		ExchangeRate:   0,
	})
	require.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = svc.UpdateExchangeRate(ctx, domain.UpdateExchangeRateRequest{
		BaseCurrency:   "USD",
		TargetCurrency: "USD",
		ExchangeRate:   100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPair)

	_, err = svc.UpdateExchangeRate(context.Background(), domain.UpdateExchangeRateRequest{
		BaseCurrency:   "USD",
		TargetCurrency: "JMD",
		ExchangeRate:   100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidCompany)
}
