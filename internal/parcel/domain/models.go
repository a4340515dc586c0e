package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusReceived       Status = "received"
	StatusProcessing     Status = "processing"
	StatusProcessed      Status = "processed"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusDelivered      Status = "delivered"
	StatusReturned       Status = "returned"
)

var statuses = map[Status]bool{
	StatusReceived:       true,
	StatusProcessing:     true,
	StatusProcessed:      true,
	StatusReadyForPickup: true,
	StatusDelivered:      true,
	StatusReturned:       true,
}

// transitions holds the allowed forward moves of the parcel lifecycle.
var transitions = map[Status][]Status{
	StatusReceived:       {StatusProcessing, StatusReturned},
	StatusProcessing:     {StatusProcessed, StatusReturned},
	StatusProcessed:      {StatusReadyForPickup, StatusReturned},
	StatusReadyForPickup: {StatusDelivered, StatusProcessed, StatusReturned},
	StatusDelivered:      {},
	StatusReturned:       {},
}

func ValidStatus(s Status) bool { return statuses[s] }

// CanTransition reports whether a parcel may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Parcel struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID      snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID     snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	TrackingNumber string          `gorm:"not null;index" json:"tracking_number"`
	Status         Status          `gorm:"not null;default:'received'" json:"status"`
	Weight         decimal.Decimal `gorm:"type:decimal(10,2)" json:"weight"`
	DeclaredValue  decimal.Decimal `gorm:"type:decimal(10,2)" json:"declared_value"`
	ItemCount      int             `gorm:"not null;default:1" json:"item_count"`
	Length         decimal.Decimal `gorm:"type:decimal(10,2)" json:"length"`
	Width          decimal.Decimal `gorm:"type:decimal(10,2)" json:"width"`
	Height         decimal.Decimal `gorm:"type:decimal(10,2)" json:"height"`
	Description    string          `json:"description,omitempty"`
	Tags           datatypes.JSON  `gorm:"type:jsonb" json:"tags,omitempty"`
	ReceivedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"received_at"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Subject builds the attribute bag fee evaluation runs against.
func (p *Parcel) Subject(now time.Time) feedomain.Subject {
	return feedomain.Subject{
		ParcelID:      p.ID,
		Weight:        p.Weight,
		DeclaredValue: p.DeclaredValue,
		ItemCount:     p.ItemCount,
		Length:        p.Length,
		Width:         p.Width,
		Height:        p.Height,
		Tags:          p.TagList(),
		ReceivedAt:    p.ReceivedAt,
		Now:           now,
	}
}

// TagList decodes the tags column; a broken column reads as no tags.
func (p *Parcel) TagList() []string {
	if len(p.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(p.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidTracking   = errors.New("invalid_tracking_number")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrNotFound          = errors.New("not_found")
)
