package domain

import "context"

type CreateFeeRequest struct {
	Name              string
	Code              string
	FeeType           string
	CalculationMethod string
	Amount            string
	Currency          string
	AppliesTo         []string
	Metadata          map[string]any
	Description       string
}

type UpdateFeeRequest struct {
	ID          string
	Name        *string
	Amount      *string
	Currency    *string
	AppliesTo   []string
	Metadata    map[string]any
	Description *string
}

type ListFeeRequest struct {
	FeeType    string
	ActiveOnly bool
}

type Service interface {
	Create(context.Context, CreateFeeRequest) (Fee, error)
	Update(context.Context, UpdateFeeRequest) (Fee, error)
	GetByID(ctx context.Context, id string) (Fee, error)
	List(context.Context, ListFeeRequest) ([]Fee, error)
	ListActive(ctx context.Context) ([]Fee, error)
	SetActive(ctx context.Context, id string, active bool) (Fee, error)
	Delete(ctx context.Context, id string) error
}
