package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateParcelRequest struct {
	CustomerID     string
	TrackingNumber string
	Weight         string
	DeclaredValue  string
	ItemCount      int
	Length         string
	Width          string
	Height         string
	Description    string
	Tags           []string
}

type ListParcelRequest struct {
	CustomerID string
	Status     string
}

type Service interface {
	Create(context.Context, CreateParcelRequest) (Parcel, error)
	GetByID(ctx context.Context, id string) (Parcel, error)
	List(context.Context, ListParcelRequest) ([]Parcel, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Parcel, error)
	// SetStatus forces a status without transition checks. Reserved for
	// internal orchestration such as invoice cancellation rollback.
	SetStatus(ctx context.Context, id snowflake.ID, status Status) error
	GetMany(ctx context.Context, ids []snowflake.ID) ([]Parcel, error)
}
