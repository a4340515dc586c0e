package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateDutyFeeRequest struct {
	ParcelID      string
	FeeType       string
	CustomFeeType string
	Amount        string
	Currency      string
	Description   string
}

type UpdateDutyFeeRequest struct {
	ID            string
	FeeType       *string
	CustomFeeType *string
	Amount        *string
	Currency      *string
	Description   *string
}

type Service interface {
	Create(context.Context, CreateDutyFeeRequest) (DutyFee, error)
	Update(context.Context, UpdateDutyFeeRequest) (DutyFee, error)
	Delete(ctx context.Context, id string) error
	ListByParcel(ctx context.Context, parcelID string) ([]DutyFee, error)
	ListByParcelID(ctx context.Context, parcelID snowflake.ID) ([]DutyFee, error)
	Totals(ctx context.Context, parcelID string) (map[string]decimal.Decimal, error)
}
