package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreatePreAlertRequest struct {
	CustomerID       string
	TrackingNumber   string
	Courier          string
	Description      string
	EstimatedWeight  string
	EstimatedArrival *time.Time
}

type UpdatePreAlertRequest struct {
	ID               string
	TrackingNumber   *string
	Courier          *string
	Description      *string
	EstimatedWeight  *string
	EstimatedArrival *time.Time
	Status           *string
}

type ListPreAlertRequest struct {
	CustomerID string
	Status     string
	// Unmatched narrows the listing to pending pre-alerts with no
	// parcel linked yet.
	Unmatched bool
}

type Service interface {
	Create(context.Context, CreatePreAlertRequest) (PreAlert, error)
	GetByID(ctx context.Context, id string) (PreAlert, error)
	List(context.Context, ListPreAlertRequest) ([]PreAlert, error)
	Update(context.Context, UpdatePreAlertRequest) (PreAlert, error)
	Cancel(ctx context.Context, id string) (PreAlert, error)
	Delete(ctx context.Context, id string) error
	// MatchTracking links the pending pre-alert carrying the tracking
	// number to the received parcel. A nil result means nothing was
	// waiting on that number.
	MatchTracking(ctx context.Context, trackingNumber string, parcelID snowflake.ID) (*PreAlert, error)
}
