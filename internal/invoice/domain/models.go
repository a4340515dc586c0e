package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusOverdue   Status = "overdue"
)

var statusTransitions = map[Status][]Status{
	StatusDraft:     {StatusIssued, StatusCancelled},
	StatusIssued:    {StatusPaid, StatusCancelled, StatusOverdue},
	StatusOverdue:   {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether an invoice may move between statuses.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ItemType string

const (
	ItemTypeCustom   ItemType = "custom"
	ItemTypePackage  ItemType = "package"
	ItemTypeFee      ItemType = "fee"
	ItemTypeTax      ItemType = "tax"
	ItemTypeShipping ItemType = "shipping"
	ItemTypeHandling ItemType = "handling"
	ItemTypeCustoms  ItemType = "customs"
	ItemTypeDuty     ItemType = "duty"
	ItemTypeOther    ItemType = "other"
)

type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID     snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID    snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	InvoiceNumber string          `gorm:"not null;index" json:"invoice_number"`
	Status        Status          `gorm:"not null;default:'draft'" json:"status"`
	Currency      string          `gorm:"not null;default:'USD'" json:"currency"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	IssueDate     *time.Time      `json:"issue_date,omitempty"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// InvoiceItem is a persisted invoice row. UnitPrice and LineTotal are
// fixed at commit time; issuance never recalculates them.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ParcelID    snowflake.ID    `gorm:"index" json:"parcel_id,omitempty"`
	Type        ItemType        `gorm:"not null;default:'custom'" json:"type"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"line_total"`
	Currency    string          `gorm:"not null" json:"currency"`
	NeedsReview bool            `gorm:"not null;default:false" json:"needs_review"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// LineItem is the ephemeral builder value. Items only become
// InvoiceItem rows once mismatches are resolved and the batch commits.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Currency    string          `json:"currency"`
	ParcelID    snowflake.ID    `json:"parcel_id,omitempty"`
	Type        ItemType        `json:"type"`
	NeedsReview bool            `json:"needs_review,omitempty"`
}

// Totals is the result of the invoice totals calculation.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// CurrencyMismatch reports line items whose native currency conflicts
// with the invoice currency. It is a control-flow signal, not an error;
// the caller must resolve it before the items are committed.
type CurrencyMismatch struct {
	InvoiceCurrency string   `json:"invoice_currency"`
	Currencies      []string `json:"currencies"`
	Count           int      `json:"count"`
}

// ResolveStrategy selects how a currency mismatch is resolved.
type ResolveStrategy string

const (
	StrategyChangeInvoiceCurrency ResolveStrategy = "changeInvoiceCurrency"
	StrategyConvertFees           ResolveStrategy = "convertFees"
)
