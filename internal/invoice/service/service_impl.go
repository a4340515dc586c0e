package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/config"
	"github.com/portpak/portpak/internal/currency"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	"github.com/portpak/portpak/internal/invoice/builder"
	"github.com/portpak/portpak/internal/invoice/domain"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	settingsdomain "github.com/portpak/portpak/internal/settings/domain"
	"github.com/portpak/portpak/pkg/telemetry"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Settings settingsdomain.Service
	Billing  *config.BillingConfigHolder
	Metrics  *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	settings settingsdomain.Service
	billing  *config.BillingConfigHolder
	metrics  *telemetry.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		settings: p.Settings,
		billing:  p.Billing,
		metrics:  p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.GenerateInvoiceResponse, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.GenerateInvoiceResponse{}, domain.ErrInvalidCompany
	}

	rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
	if err != nil {
		return domain.GenerateInvoiceResponse{}, err
	}

	invoiceCurrency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if invoiceCurrency == "" {
		invoiceCurrency = rateSettings.BaseCurrency
	}

	var resp domain.GenerateInvoiceResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, existingItems, err := s.loadOrCreateDraft(ctx, tx, companyID, req, invoiceCurrency)
		if err != nil {
			return err
		}

		items, mismatch, err := s.buildItems(ctx, tx, companyID, invoice, req.ParcelIDs, existingItems)
		if err != nil {
			return err
		}

		if mismatch != nil {
			if req.Strategy == "" {
				// Surface the conflict; nothing is committed.
				resp.Mismatch = mismatch
				return domain.ErrMismatchUnresolved
			}
			resolved, newCurrency, err := builder.ResolveMismatch(items, invoice.Currency, req.Strategy, rateSettings)
			if err != nil {
				return err
			}
			items = resolved
			invoice.Currency = newCurrency
		}

		if err := s.appendItems(ctx, tx, invoice, items); err != nil {
			return err
		}
		if err := s.recomputeTotals(ctx, tx, invoice, rateSettings); err != nil {
			return err
		}

		resp.Invoice = *invoice
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrMismatchUnresolved) && resp.Mismatch != nil {
			return resp, err
		}
		return domain.GenerateInvoiceResponse{}, err
	}

	s.metrics.ObserveInvoice(string(resp.Invoice.Status), companyID.String(), resp.Invoice.Currency, resp.Invoice.TotalAmount.InexactFloat64())
	s.log.Info("invoice draft generated",
		zap.String("invoice_id", resp.Invoice.ID.String()),
		zap.String("invoice_number", resp.Invoice.InvoiceNumber),
		zap.Int("parcels", len(req.ParcelIDs)),
	)
	return resp, nil
}

func (s *Service) Preview(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.PreviewResponse, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.PreviewResponse{}, domain.ErrInvalidCompany
	}

	rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
	if err != nil {
		return domain.PreviewResponse{}, err
	}

	invoiceCurrency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if invoiceCurrency == "" {
		invoiceCurrency = rateSettings.BaseCurrency
	}

	var existingItems []domain.InvoiceItem
	invoice := &domain.Invoice{Currency: invoiceCurrency}
	if req.InvoiceID != "" {
		loaded, err := s.getOwned(ctx, s.db, companyID, req.InvoiceID)
		if err != nil {
			return domain.PreviewResponse{}, err
		}
		invoice = loaded
		existingItems = loaded.Items
	}

	items, mismatch, err := s.buildItems(ctx, s.db, companyID, invoice, req.ParcelIDs, existingItems)
	if err != nil {
		return domain.PreviewResponse{}, err
	}

	resp := domain.PreviewResponse{Items: items, Mismatch: mismatch}
	if mismatch == nil {
		totals, err := builder.ComputeTotals(items, invoice.Currency, rateSettings)
		if err != nil {
			return domain.PreviewResponse{}, err
		}
		resp.Totals = totals
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	invoice, err := s.getOwned(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	stmt := s.db.WithContext(ctx).Where("company_id = ?", companyID)
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(req.CustomerID)
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		stmt = stmt.Where("customer_id = ?", customerID)
	}
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}

	var invoices []domain.Invoice
	if err := stmt.Order("created_at desc, id desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Service) AddItem(ctx context.Context, req domain.AddItemRequest) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil || quantity.IsNegative() {
		return domain.Invoice{}, domain.ErrInvalidQuantity
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(req.UnitPrice))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidQuantity
	}

	var result domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.getOwned(ctx, tx, companyID, req.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}

		now := time.Now().UTC()
		item := domain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			Type:        domain.ItemTypeCustom,
			Description: strings.TrimSpace(req.Description),
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			LineTotal:   quantity.Mul(unitPrice).Round(2),
			Currency:    invoice.Currency,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		invoice.Items = append(invoice.Items, item)

		rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
		if err != nil {
			return err
		}
		if err := s.recomputeTotals(ctx, tx, invoice, rateSettings); err != nil {
			return err
		}
		result = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return result, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil || quantity.IsNegative() {
		return domain.Invoice{}, domain.ErrInvalidQuantity
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(req.UnitPrice))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidQuantity
	}
	itemID, err := snowflake.ParseString(strings.TrimSpace(req.ItemID))
	if err != nil || itemID == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	var result domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.getOwned(ctx, tx, companyID, req.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}

		updated := false
		for i := range invoice.Items {
			if invoice.Items[i].ID != itemID {
				continue
			}
			invoice.Items[i].Quantity = quantity
			invoice.Items[i].UnitPrice = unitPrice
			invoice.Items[i].LineTotal = quantity.Mul(unitPrice).Round(2)
			invoice.Items[i].UpdatedAt = time.Now().UTC()
			if err := tx.Save(&invoice.Items[i]).Error; err != nil {
				return err
			}
			updated = true
			break
		}
		if !updated {
			return domain.ErrNotFound
		}

		rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
		if err != nil {
			return err
		}
		if err := s.recomputeTotals(ctx, tx, invoice, rateSettings); err != nil {
			return err
		}
		result = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return result, nil
}

func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID string) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	id, err := snowflake.ParseString(strings.TrimSpace(itemID))
	if err != nil || id == 0 {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	var result domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.getOwned(ctx, tx, companyID, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}

		res := tx.Where("invoice_id = ? AND id = ?", invoice.ID, id).Delete(&domain.InvoiceItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		kept := invoice.Items[:0]
		for _, item := range invoice.Items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		invoice.Items = kept

		rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
		if err != nil {
			return err
		}
		if err := s.recomputeTotals(ctx, tx, invoice, rateSettings); err != nil {
			return err
		}
		result = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}
	return result, nil
}

// Finalize issues a draft: due date defaults from billing config, the
// total is rounded to the cash increment for the invoice currency, and
// the invoiced parcels move to ready_for_pickup.
func (s *Service) Finalize(ctx context.Context, id string) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	var result domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.getOwned(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(invoice.Status, domain.StatusIssued) {
			return domain.ErrInvalidTransition
		}
		if len(invoice.Items) == 0 {
			return domain.ErrNoItems
		}

		now := time.Now().UTC()
		dueDays := 30
		if s.billing != nil {
			if d := s.billing.Current().InvoiceDueDays; d > 0 {
				dueDays = d
			}
		}
		due := now.AddDate(0, 0, dueDays)

		rounded := s.roundTotal(invoice.TotalAmount, invoice.Currency)

		invoice.Status = domain.StatusIssued
		invoice.IssueDate = &now
		invoice.DueDate = &due
		invoice.TotalAmount = rounded
		invoice.UpdatedAt = now

		if err := tx.Model(&domain.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]any{
			"status":       invoice.Status,
			"issue_date":   now,
			"due_date":     due,
			"total_amount": rounded,
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}

		if err := s.moveInvoicedParcels(ctx, tx, invoice.ID, parceldomain.StatusReadyForPickup); err != nil {
			return err
		}

		result = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.metrics.ObserveInvoice(string(result.Status), companyID.String(), result.Currency, result.TotalAmount.InexactFloat64())
	s.log.Info("invoice issued",
		zap.String("invoice_id", result.ID.String()),
		zap.String("invoice_number", result.InvoiceNumber),
		zap.String("total", result.TotalAmount.String()),
	)
	return result, nil
}

// roundTotal applies the operator-configured cash increment for the
// currency, falling back to the built-in rounding rules.
func (s *Service) roundTotal(total decimal.Decimal, code string) decimal.Decimal {
	if s.billing != nil {
		if inc, ok := s.billing.Current().RoundingIncrements[code]; ok && inc > 0 {
			return currency.RoundToIncrement(total, inc)
		}
	}
	return currency.RoundInvoiceTotal(total, code)
}

// Cancel voids an invoice and reverts any ready_for_pickup parcels it
// held back to processed.
func (s *Service) Cancel(ctx context.Context, id string) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	var result domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.getOwned(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if !domain.CanTransition(invoice.Status, domain.StatusCancelled) {
			return domain.ErrInvalidTransition
		}

		now := time.Now().UTC()
		if err := tx.Model(&domain.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]any{
			"status":     domain.StatusCancelled,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			`UPDATE parcels SET status = ?, updated_at = ?
			 WHERE status = ? AND id IN (SELECT parcel_id FROM invoice_items WHERE invoice_id = ? AND parcel_id <> 0)`,
			parceldomain.StatusProcessed, now, parceldomain.StatusReadyForPickup, invoice.ID,
		).Error; err != nil {
			return err
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}

		invoice.Status = domain.StatusCancelled
		invoice.Items = nil
		invoice.UpdatedAt = now
		result = *invoice
		return nil
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice cancelled", zap.String("invoice_id", result.ID.String()))
	return result, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Invoice, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCompany
	}

	invoice, err := s.getOwned(ctx, s.db, companyID, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !domain.CanTransition(invoice.Status, domain.StatusPaid) {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]any{
		"status":     domain.StatusPaid,
		"updated_at": now,
	}).Error; err != nil {
		return domain.Invoice{}, err
	}

	invoice.Status = domain.StatusPaid
	invoice.UpdatedAt = now
	return *invoice, nil
}

func (s *Service) DeleteDraft(ctx context.Context, id string) error {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.ErrInvalidCompany
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.getOwned(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if invoice.Status != domain.StatusDraft {
			return domain.ErrNotDraft
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Invoice{}, "id = ?", invoice.ID).Error
	})
}

func (s *Service) loadOrCreateDraft(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, req domain.GenerateInvoiceRequest, invoiceCurrency string) (*domain.Invoice, []domain.InvoiceItem, error) {
	if req.InvoiceID != "" {
		invoice, err := s.getOwned(ctx, tx, companyID, req.InvoiceID)
		if err != nil {
			return nil, nil, err
		}
		if invoice.Status != domain.StatusDraft {
			return nil, nil, domain.ErrNotDraft
		}
		return invoice, invoice.Items, nil
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return nil, nil, domain.ErrInvalidCustomer
	}

	number, err := s.nextInvoiceNumber(ctx, tx, companyID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		CustomerID:    customerID,
		InvoiceNumber: number,
		Status:        domain.StatusDraft,
		Currency:      invoiceCurrency,
		Subtotal:      decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.Zero,
		AmountPaid:    decimal.Zero,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.Omit("Items").Create(invoice).Error; err != nil {
		return nil, nil, err
	}
	return invoice, nil, nil
}

// buildItems loads the parcels, active fee rules, and duty fees inside
// the caller's transaction, then runs the pure builder. Lookups finish
// before evaluation starts so no parcel sees a partial fee set.
func (s *Service) buildItems(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, invoice *domain.Invoice, parcelIDs []string, existingItems []domain.InvoiceItem) ([]domain.LineItem, *domain.CurrencyMismatch, error) {
	ids := make([]snowflake.ID, 0, len(parcelIDs))
	for _, raw := range parcelIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			return nil, nil, domain.ErrInvalidID
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil, nil
	}

	var parcels []parceldomain.Parcel
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Order("id asc").
		Find(&parcels).Error; err != nil {
		return nil, nil, err
	}

	var fees []feedomain.Fee
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("id asc").
		Find(&fees).Error; err != nil {
		return nil, nil, err
	}

	var dutyRows []dutydomain.DutyFee
	if err := tx.WithContext(ctx).
		Where("company_id = ? AND parcel_id IN ?", companyID, ids).
		Order("id asc").
		Find(&dutyRows).Error; err != nil {
		return nil, nil, err
	}
	dutyFees := make(map[snowflake.ID][]dutydomain.DutyFee, len(dutyRows))
	for _, row := range dutyRows {
		dutyFees[row.ParcelID] = append(dutyFees[row.ParcelID], row)
	}

	return builder.GenerateFeesForParcels(parcels, fees, dutyFees, existingItems, invoice.Currency)
}

func (s *Service) appendItems(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice, items []domain.LineItem) error {
	now := time.Now().UTC()
	for _, item := range items {
		row := domain.InvoiceItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			ParcelID:    item.ParcelID,
			Type:        item.Type,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Currency:    item.Currency,
			NeedsReview: item.NeedsReview,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
		invoice.Items = append(invoice.Items, row)
	}
	return nil
}

func (s *Service) recomputeTotals(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice, rateSettings currency.Settings) error {
	lineItems := make([]domain.LineItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lineItems = append(lineItems, domain.LineItem{
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Currency:  item.Currency,
			Type:      item.Type,
		})
	}

	totals, err := builder.ComputeTotals(lineItems, invoice.Currency, rateSettings)
	if err != nil {
		return err
	}

	invoice.Subtotal = totals.Subtotal
	invoice.TaxAmount = totals.TaxAmount
	invoice.TotalAmount = totals.Total
	invoice.UpdatedAt = time.Now().UTC()

	return tx.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]any{
		"currency":     invoice.Currency,
		"subtotal":     totals.Subtotal,
		"tax_amount":   totals.TaxAmount,
		"total_amount": totals.Total,
		"updated_at":   invoice.UpdatedAt,
	}).Error
}

func (s *Service) moveInvoicedParcels(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, status parceldomain.Status) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE parcels SET status = ?, updated_at = ?
		 WHERE id IN (SELECT parcel_id FROM invoice_items WHERE invoice_id = ? AND parcel_id <> 0)`,
		status, time.Now().UTC(), invoiceID,
	).Error
}

// nextInvoiceNumber yields PREFIX-YY-MM-SEQ, sequenced per company per
// calendar month.
func (s *Service) nextInvoiceNumber(ctx context.Context, tx *gorm.DB, companyID snowflake.ID) (string, error) {
	var prefix string
	if err := tx.WithContext(ctx).Raw(
		`SELECT invoice_prefix FROM companies WHERE id = ?`, companyID,
	).Scan(&prefix).Error; err != nil {
		return "", err
	}
	if prefix == "" {
		prefix = "INV"
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var count int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoices WHERE company_id = ? AND created_at >= ?`,
		companyID, monthStart,
	).Scan(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%02d-%02d-%04d", prefix, now.Year()%100, int(now.Month()), count+1), nil
}

func (s *Service) getOwned(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, id string) (*domain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return nil, domain.ErrInvalidID
	}

	var invoice domain.Invoice
	err = tx.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND id = ?", companyID, invoiceID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}
