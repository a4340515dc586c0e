package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusMatched   Status = "matched"
	StatusCancelled Status = "cancelled"
)

var statuses = map[Status]bool{
	StatusPending:   true,
	StatusMatched:   true,
	StatusCancelled: true,
}

func ValidStatus(s Status) bool { return statuses[s] }

// PreAlert is a customer's heads-up that a package is on the way. A
// pending pre-alert is matched to the parcel carrying the same tracking
// number when that parcel is received.
type PreAlert struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID        snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID       snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	TrackingNumber   string          `gorm:"not null;index" json:"tracking_number"`
	Courier          string          `gorm:"not null" json:"courier"`
	Description      string          `json:"description,omitempty"`
	EstimatedWeight  decimal.Decimal `gorm:"type:decimal(10,2)" json:"estimated_weight"`
	EstimatedArrival time.Time       `json:"estimated_arrival"`
	ParcelID         snowflake.ID    `gorm:"index" json:"parcel_id,omitempty"`
	Status           Status          `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Matched reports whether the pre-alert is tied to a received parcel.
func (p *PreAlert) Matched() bool {
	return p.Status == StatusMatched && p.ParcelID != 0
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidTracking = errors.New("invalid_tracking_number")
	ErrInvalidCourier  = errors.New("invalid_courier")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrAlreadyMatched  = errors.New("pre_alert_already_matched")
	ErrNotFound        = errors.New("not_found")
)
