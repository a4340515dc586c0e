package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company is the tenant record. InvoicePrefix seeds invoice numbers,
// e.g. "PKG" yields PKG-26-08-0001.
type Company struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Name          string       `gorm:"not null" json:"name"`
	Subdomain     string       `gorm:"uniqueIndex;not null" json:"subdomain"`
	InvoicePrefix string       `gorm:"not null;default:'INV'" json:"invoice_prefix"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type CreateCompanyRequest struct {
	Name          string
	Subdomain     string
	InvoicePrefix string
}

type Service interface {
	Create(context.Context, CreateCompanyRequest) (Company, error)
	GetByID(ctx context.Context, id snowflake.ID) (Company, error)
	GetBySubdomain(ctx context.Context, subdomain string) (Company, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidSubdomain = errors.New("invalid_subdomain")
	ErrSubdomainTaken   = errors.New("subdomain_taken")
	ErrNotFound         = errors.New("not_found")
)
