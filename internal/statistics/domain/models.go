package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type MonthBucket struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type MonthCount struct {
	MonthBucket
	Count int64 `json:"count"`
}

type MonthAmount struct {
	MonthBucket
	Amount decimal.Decimal `json:"amount"`
}

type CustomerStats struct {
	ParcelsByStatus     map[string]int64 `json:"parcels_by_status"`
	OutstandingInvoices int64            `json:"outstanding_invoices"`
	OutstandingAmount   decimal.Decimal  `json:"outstanding_amount"`
	Currency            string           `json:"currency"`
	MonthlyParcels      []MonthCount     `json:"monthly_parcels"`
}

type AdminStats struct {
	ParcelsThisMonth  int64           `json:"parcels_this_month"`
	ParcelsPrevMonth  int64           `json:"parcels_prev_month"`
	ParcelGrowthPct   float64         `json:"parcel_growth_pct"`
	RevenueThisMonth  decimal.Decimal `json:"revenue_this_month"`
	RevenuePrevMonth  decimal.Decimal `json:"revenue_prev_month"`
	RevenueGrowthPct  float64         `json:"revenue_growth_pct"`
	Currency          string          `json:"currency"`
	MonthlyRevenue    []MonthAmount   `json:"monthly_revenue"`
}

type Service interface {
	CustomerStats(ctx context.Context, customerID, displayCurrency string) (CustomerStats, error)
	AdminStats(ctx context.Context, displayCurrency string, months int) (AdminStats, error)
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidCurrency = errors.New("invalid_currency")
)
