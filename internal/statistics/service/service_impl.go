package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/currency"
	"github.com/portpak/portpak/internal/statistics/domain"
	settingsdomain "github.com/portpak/portpak/internal/settings/domain"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Settings settingsdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	settings settingsdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("statistics.service"),
		settings: p.Settings,
	}
}

type paymentRow struct {
	Amount    decimal.Decimal
	Meta      datatypes.JSONMap
	CreatedAt time.Time
}

func (s *Service) CustomerStats(ctx context.Context, customerID, displayCurrency string) (domain.CustomerStats, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.CustomerStats{}, domain.ErrInvalidCompany
	}

	custID, err := snowflake.ParseString(strings.TrimSpace(customerID))
	if err != nil || custID == 0 {
		return domain.CustomerStats{}, domain.ErrInvalidCustomer
	}

	display, err := s.displayCurrency(displayCurrency)
	if err != nil {
		return domain.CustomerStats{}, err
	}

	stats := domain.CustomerStats{
		ParcelsByStatus: map[string]int64{},
		Currency:        display,
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := s.db.WithContext(ctx).Raw(
		`SELECT status, COUNT(1) AS count
		 FROM parcels
		 WHERE company_id = ? AND customer_id = ?
		 GROUP BY status`,
		companyID, custID,
	).Scan(&counts).Error; err != nil {
		return domain.CustomerStats{}, err
	}
	for _, row := range counts {
		stats.ParcelsByStatus[row.Status] = row.Count
	}

	type invoiceRow struct {
		TotalAmount decimal.Decimal
		AmountPaid  decimal.Decimal
		Currency    string
	}
	var open []invoiceRow
	if err := s.db.WithContext(ctx).Raw(
		`SELECT total_amount, amount_paid, currency
		 FROM invoices
		 WHERE company_id = ? AND customer_id = ? AND status IN ('issued', 'overdue')`,
		companyID, custID,
	).Scan(&open).Error; err != nil {
		return domain.CustomerStats{}, err
	}

	rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
	if err != nil {
		return domain.CustomerStats{}, err
	}

	total := decimal.Zero
	for _, row := range open {
		due := row.TotalAmount.Sub(row.AmountPaid)
		converted, err := currency.Convert(due, row.Currency, display, rateSettings)
		if err != nil {
			return domain.CustomerStats{}, err
		}
		total = total.Add(converted)
	}
	stats.OutstandingInvoices = int64(len(open))
	stats.OutstandingAmount = total.Round(2)

	stats.MonthlyParcels, err = s.monthlyParcelCounts(ctx, companyID, custID, 6)
	if err != nil {
		return domain.CustomerStats{}, err
	}
	return stats, nil
}

func (s *Service) AdminStats(ctx context.Context, displayCurrency string, months int) (domain.AdminStats, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.AdminStats{}, domain.ErrInvalidCompany
	}

	display, err := s.displayCurrency(displayCurrency)
	if err != nil {
		return domain.AdminStats{}, err
	}
	if months <= 0 {
		months = 6
	}

	now := time.Now().UTC()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevMonthStart := thisMonthStart.AddDate(0, -1, 0)
	windowStart := thisMonthStart.AddDate(0, -(months - 1), 0)

	stats := domain.AdminStats{Currency: display}

	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM parcels WHERE company_id = ? AND created_at >= ?`,
		companyID, thisMonthStart,
	).Scan(&stats.ParcelsThisMonth).Error; err != nil {
		return domain.AdminStats{}, err
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM parcels WHERE company_id = ? AND created_at >= ? AND created_at < ?`,
		companyID, prevMonthStart, thisMonthStart,
	).Scan(&stats.ParcelsPrevMonth).Error; err != nil {
		return domain.AdminStats{}, err
	}
	stats.ParcelGrowthPct = growthPct(
		decimal.NewFromInt(stats.ParcelsThisMonth),
		decimal.NewFromInt(stats.ParcelsPrevMonth),
	)

	rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
	if err != nil {
		return domain.AdminStats{}, err
	}

	var payments []paymentRow
	if err := s.db.WithContext(ctx).Raw(
		`SELECT amount, meta, created_at
		 FROM payments
		 WHERE company_id = ? AND status = 'completed' AND created_at >= ?`,
		companyID, windowStart,
	).Scan(&payments).Error; err != nil {
		return domain.AdminStats{}, err
	}

	monthly := make(map[domain.MonthBucket]decimal.Decimal)
	for _, payment := range payments {
		converted, err := convertPayment(payment, display, rateSettings)
		if err != nil {
			return domain.AdminStats{}, err
		}

		bucket := domain.MonthBucket{Year: payment.CreatedAt.Year(), Month: int(payment.CreatedAt.Month())}
		monthly[bucket] = monthly[bucket].Add(converted)

		if !payment.CreatedAt.Before(thisMonthStart) {
			stats.RevenueThisMonth = stats.RevenueThisMonth.Add(converted)
		} else if !payment.CreatedAt.Before(prevMonthStart) {
			stats.RevenuePrevMonth = stats.RevenuePrevMonth.Add(converted)
		}
	}

	stats.RevenueThisMonth = stats.RevenueThisMonth.Round(2)
	stats.RevenuePrevMonth = stats.RevenuePrevMonth.Round(2)
	stats.RevenueGrowthPct = growthPct(stats.RevenueThisMonth, stats.RevenuePrevMonth)

	for i := 0; i < months; i++ {
		monthStart := thisMonthStart.AddDate(0, -i, 0)
		bucket := domain.MonthBucket{Year: monthStart.Year(), Month: int(monthStart.Month())}
		stats.MonthlyRevenue = append(stats.MonthlyRevenue, domain.MonthAmount{
			MonthBucket: bucket,
			Amount:      monthly[bucket].Round(2),
		})
	}

	return stats, nil
}

// convertPayment converts one payment into the display currency. The
// rate recorded on the payment wins; company settings and then platform
// defaults fill in when the snapshot is missing. Replaying the recorded
// rate keeps historical revenue stable across rate changes.
func convertPayment(payment paymentRow, display string, fallback currency.Settings) (decimal.Decimal, error) {
	paymentCurrency, _ := payment.Meta["currency"].(string)
	if paymentCurrency == "" {
		paymentCurrency = fallback.BaseCurrency
	}

	settings := fallback
	if rate, ok := metaRate(payment.Meta); ok {
		settings.ExchangeRate = rate
	}
	if settings.ExchangeRate <= 0 {
		settings = currency.DefaultSettings()
	}

	return currency.Convert(payment.Amount, paymentCurrency, display, settings)
}

func metaRate(meta datatypes.JSONMap) (float64, bool) {
	raw, ok := meta["exchange_rate"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, v > 0
	case int64:
		return float64(v), v > 0
	default:
		return 0, false
	}
}

func (s *Service) monthlyParcelCounts(ctx context.Context, companyID, customerID snowflake.ID, months int) ([]domain.MonthCount, error) {
	now := time.Now().UTC()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowStart := thisMonthStart.AddDate(0, -(months - 1), 0)

	var rows []struct {
		CreatedAt time.Time
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT created_at FROM parcels
		 WHERE company_id = ? AND customer_id = ? AND created_at >= ?`,
		companyID, customerID, windowStart,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.MonthBucket]int64)
	for _, row := range rows {
		bucket := domain.MonthBucket{Year: row.CreatedAt.Year(), Month: int(row.CreatedAt.Month())}
		counts[bucket]++
	}

	var result []domain.MonthCount
	for i := 0; i < months; i++ {
		monthStart := thisMonthStart.AddDate(0, -i, 0)
		bucket := domain.MonthBucket{Year: monthStart.Year(), Month: int(monthStart.Month())}
		result = append(result, domain.MonthCount{MonthBucket: bucket, Count: counts[bucket]})
	}
	return result, nil
}

func (s *Service) displayCurrency(raw string) (string, error) {
	display := strings.ToUpper(strings.TrimSpace(raw))
	if display == "" {
		display = currency.USD
	}
	if display != currency.USD && display != currency.JMD {
		return "", domain.ErrInvalidCurrency
	}
	return display, nil
}

func growthPct(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}
