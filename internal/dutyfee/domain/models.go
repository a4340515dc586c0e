package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// FeeTypes is the commodity classification list duty officers pick from.
// "Other" requires a custom fee type label.
var FeeTypes = []string{
	"Electronics",
	"Clothing & Footwear",
	"Food & Grocery",
	"Household Appliances",
	"Furniture",
	"Construction Materials",
	"Tools & Machinery",
	"Cosmetics & Personal",
	"Medical Equipment",
	"Agricultural Products",
	"Pet Supplies",
	"Books & Education",
	"Mobile Accessories",
	"ANIMALS",
	"SOLAR EQUIPMENT",
	"WRIST WATCHES",
	"Other",
}

const FeeTypeOther = "Other"

var feeTypeSet = func() map[string]bool {
	set := make(map[string]bool, len(FeeTypes))
	for _, t := range FeeTypes {
		set[t] = true
	}
	return set
}()

func ValidFeeType(feeType string) bool { return feeTypeSet[feeType] }

// DutyFee is a customs charge attached to one parcel. Currency is
// restricted to USD or JMD, unlike configurable fees.
type DutyFee struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID     snowflake.ID    `gorm:"not null;index" json:"company_id"`
	ParcelID      snowflake.ID    `gorm:"not null;index" json:"parcel_id"`
	FeeType       string          `gorm:"not null" json:"fee_type"`
	CustomFeeType string          `json:"custom_fee_type,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency      string          `gorm:"not null" json:"currency"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DisplayType returns the label shown on invoices: the custom type for
// "Other" fees, the commodity type otherwise.
func (d *DutyFee) DisplayType() string {
	if d.FeeType == FeeTypeOther && d.CustomFeeType != "" {
		return d.CustomFeeType
	}
	return d.FeeType
}

// CanModify reports whether a parcel's duty fees may still change.
// Fees freeze once the parcel reaches a terminal status or has been
// pulled onto an invoice.
func CanModify(parcelStatus string, hasInvoice bool) bool {
	if hasInvoice {
		return false
	}
	switch parcelStatus {
	case "ready_for_pickup", "delivered":
		return false
	}
	return true
}

// TotalsByCurrency sums duty fee amounts per currency. Both USD and JMD
// keys are always present so callers render both totals unconditionally.
func TotalsByCurrency(fees []DutyFee) map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{
		"USD": decimal.Zero,
		"JMD": decimal.Zero,
	}
	for _, fee := range fees {
		totals[fee.Currency] = totals[fee.Currency].Add(fee.Amount)
	}
	return totals
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidParcel     = errors.New("invalid_parcel")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidFeeType    = errors.New("invalid_fee_type")
	ErrCustomTypeMissing = errors.New("custom_fee_type_required")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCurrency   = errors.New("invalid_currency")
	ErrImmutableFeeState = errors.New("immutable_fee_state")
	ErrNotFound          = errors.New("not_found")
)
