package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/currency"
	"gorm.io/datatypes"
)

// CompanySettings holds per-company configuration. ExchangeRate stores a
// currency.Settings snapshot as JSON.
type CompanySettings struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	CompanyID    snowflake.ID   `gorm:"uniqueIndex;not null" json:"company_id"`
	ExchangeRate datatypes.JSON `gorm:"type:jsonb" json:"exchange_rate,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type UpdateExchangeRateRequest struct {
	BaseCurrency   string
	TargetCurrency string
	ExchangeRate   float64
	AutoUpdate     bool
}

// Service reads and writes company settings. GetExchangeRate returns
// platform defaults when the company has none stored; callers treat the
// result as a read-only snapshot for the duration of one operation.
type Service interface {
	GetExchangeRate(ctx context.Context) (currency.Settings, error)
	GetExchangeRateFor(ctx context.Context, companyID snowflake.ID) (currency.Settings, error)
	UpdateExchangeRate(ctx context.Context, req UpdateExchangeRateRequest) (currency.Settings, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidRate    = errors.New("invalid_exchange_rate")
	ErrInvalidPair    = errors.New("invalid_currency_pair")
)
