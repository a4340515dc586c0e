package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/config"
	"github.com/portpak/portpak/internal/currency"
	"github.com/portpak/portpak/internal/settings/domain"
	"github.com/portpak/portpak/pkg/repository"
	"github.com/portpak/portpak/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Billing *config.BillingConfigHolder
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	billing *config.BillingConfigHolder
	store   repository.Repository[domain.CompanySettings]
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("settings.service"),
		genID:   p.GenID,
		billing: p.Billing,
		store:   repository.ProvideStore[domain.CompanySettings](p.DB),
	}
}

func (s *Service) GetExchangeRate(ctx context.Context) (currency.Settings, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return currency.Settings{}, domain.ErrInvalidCompany
	}
	return s.GetExchangeRateFor(ctx, companyID)
}

func (s *Service) GetExchangeRateFor(ctx context.Context, companyID snowflake.ID) (currency.Settings, error) {
	row, err := s.store.FindOne(ctx, &domain.CompanySettings{CompanyID: companyID})
	if err != nil {
		return currency.Settings{}, err
	}
	if row == nil || len(row.ExchangeRate) == 0 {
		return s.defaults(), nil
	}

	var settings currency.Settings
	if err := json.Unmarshal(row.ExchangeRate, &settings); err != nil {
		s.log.Warn("stored exchange rate settings unreadable, using defaults",
			zap.String("company_id", companyID.String()),
			zap.Error(err),
		)
		return s.defaults(), nil
	}
	if settings.ExchangeRate <= 0 || settings.BaseCurrency == "" || settings.TargetCurrency == "" {
		return s.defaults(), nil
	}
	return settings, nil
}

func (s *Service) UpdateExchangeRate(ctx context.Context, req domain.UpdateExchangeRateRequest) (currency.Settings, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return currency.Settings{}, domain.ErrInvalidCompany
	}

	if req.ExchangeRate <= 0 {
		return currency.Settings{}, domain.ErrInvalidRate
	}
	base := strings.ToUpper(strings.TrimSpace(req.BaseCurrency))
	target := strings.ToUpper(strings.TrimSpace(req.TargetCurrency))
	if base == "" || target == "" || base == target {
		return currency.Settings{}, domain.ErrInvalidPair
	}

	settings := currency.Settings{
		BaseCurrency:   base,
		TargetCurrency: target,
		ExchangeRate:   req.ExchangeRate,
		LastUpdated:    time.Now().UTC(),
		AutoUpdate:     req.AutoUpdate,
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		return currency.Settings{}, err
	}

	existing, err := s.store.FindOne(ctx, &domain.CompanySettings{CompanyID: companyID})
	if err != nil {
		return currency.Settings{}, err
	}

	now := time.Now().UTC()
	if existing == nil {
		row := domain.CompanySettings{
			ID:           s.genID.Generate(),
			CompanyID:    companyID,
			ExchangeRate: datatypes.JSON(raw),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.store.Create(ctx, &row); err != nil {
			return currency.Settings{}, err
		}
	} else {
		if err := s.store.Update(ctx, existing.ID.String(), map[string]any{
			"exchange_rate": datatypes.JSON(raw),
			"updated_at":    now,
		}); err != nil {
			return currency.Settings{}, err
		}
	}

	s.log.Info("exchange rate updated",
		zap.String("company_id", companyID.String()),
		zap.Float64("rate", settings.ExchangeRate),
	)
	return settings, nil
}

// defaults layers the hot-reloadable billing config over the built-in
// platform defaults.
func (s *Service) defaults() currency.Settings {
	settings := currency.DefaultSettings()
	if s.billing == nil {
		return settings
	}

	cfg := s.billing.Current()
	if cfg.DefaultBaseCurrency != "" {
		settings.BaseCurrency = cfg.DefaultBaseCurrency
	}
	if cfg.DefaultQuoteCurrency != "" {
		settings.TargetCurrency = cfg.DefaultQuoteCurrency
	}
	if cfg.DefaultExchangeRate > 0 {
		settings.ExchangeRate = cfg.DefaultExchangeRate
	}
	return settings
}
