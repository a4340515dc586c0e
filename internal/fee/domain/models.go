package domain

import (
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type FeeType string

const (
	FeeTypeTax      FeeType = "tax"
	FeeTypeService  FeeType = "service"
	FeeTypeShipping FeeType = "shipping"
	FeeTypeHandling FeeType = "handling"
	FeeTypeCustoms  FeeType = "customs"
	FeeTypeOther    FeeType = "other"
)

type CalculationMethod string

const (
	MethodFixed       CalculationMethod = "fixed"
	MethodPercentage  CalculationMethod = "percentage"
	MethodPerWeight   CalculationMethod = "per_weight"
	MethodPerItem     CalculationMethod = "per_item"
	MethodDimensional CalculationMethod = "dimensional"
	MethodTiered      CalculationMethod = "tiered"
	MethodThreshold   CalculationMethod = "threshold"
	MethodTimed       CalculationMethod = "timed"
)

var feeTypes = map[FeeType]bool{
	FeeTypeTax:      true,
	FeeTypeService:  true,
	FeeTypeShipping: true,
	FeeTypeHandling: true,
	FeeTypeCustoms:  true,
	FeeTypeOther:    true,
}

var calculationMethods = map[CalculationMethod]bool{
	MethodFixed:       true,
	MethodPercentage:  true,
	MethodPerWeight:   true,
	MethodPerItem:     true,
	MethodDimensional: true,
	MethodTiered:      true,
	MethodThreshold:   true,
	MethodTimed:       true,
}

var codePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// Fee is a company-configured charging rule. Metadata's shape is keyed by
// CalculationMethod; DecodeMetadata returns the typed variant.
type Fee struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID         snowflake.ID      `gorm:"not null;index:idx_fees_company_code,unique" json:"company_id"`
	Name              string            `gorm:"not null" json:"name"`
	Code              string            `gorm:"not null;index:idx_fees_company_code,unique" json:"code"`
	FeeType           FeeType           `gorm:"not null" json:"fee_type"`
	CalculationMethod CalculationMethod `gorm:"not null" json:"calculation_method"`
	Amount            decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency          string            `gorm:"not null;default:'USD'" json:"currency"`
	AppliesTo         datatypes.JSON    `gorm:"type:jsonb" json:"applies_to,omitempty"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	Description       string            `json:"description,omitempty"`
	IsActive          bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Validate checks the fields that make a fee definition evaluable,
// including the method-specific metadata shape.
func (f *Fee) Validate() error {
	if f.Name == "" {
		return ErrInvalidName
	}
	if !codePattern.MatchString(f.Code) {
		return ErrInvalidCode
	}
	if !feeTypes[f.FeeType] {
		return ErrInvalidFeeType
	}
	if !calculationMethods[f.CalculationMethod] {
		return ErrInvalidMethod
	}
	if f.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if f.Currency == "" {
		return ErrInvalidCurrency
	}
	_, err := f.DecodeMetadata()
	return err
}
