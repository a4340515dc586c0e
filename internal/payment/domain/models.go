package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "bank_transfer"
	MethodOnline   Method = "online"
)

var methods = map[Method]bool{
	MethodCash:     true,
	MethodCard:     true,
	MethodTransfer: true,
	MethodOnline:   true,
}

func ValidMethod(m Method) bool { return methods[m] }

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Meta keys recording the conversion provenance at payment time.
// Statistics replay these instead of the current rate so revenue is
// never restated when the company's rate changes later.
const (
	MetaCurrency     = "currency"
	MetaExchangeRate = "exchange_rate"
)

type Payment struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID  snowflake.ID      `gorm:"not null;index" json:"company_id"`
	InvoiceID  snowflake.ID      `gorm:"not null;index" json:"invoice_id"`
	CustomerID snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	Amount     decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method     Method            `gorm:"not null" json:"method"`
	Status     Status            `gorm:"not null;default:'pending'" json:"status"`
	Meta       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"meta,omitempty"`
	Reference  string            `json:"reference,omitempty"`
	PaidAt     *time.Time        `json:"paid_at,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type RecordPaymentRequest struct {
	InvoiceID string
	Amount    string
	Method    string
	Reference string
}

type Service interface {
	Record(context.Context, RecordPaymentRequest) (Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]Payment, error)
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidInvoice = errors.New("invalid_invoice")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrInvalidMethod  = errors.New("invalid_method")
	ErrInvoiceState   = errors.New("invoice_not_payable")
	ErrNotFound       = errors.New("not_found")
)
