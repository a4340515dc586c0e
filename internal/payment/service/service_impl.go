package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	"github.com/portpak/portpak/internal/payment/domain"
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
	GenID    *snowflake.Node
	Settings settingsdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	settings settingsdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		settings: p.Settings,
	}
}

// Record registers a completed payment against an issued invoice,
// snapshotting the invoice currency and the exchange rate in force so
// later reporting replays the historical rate. A fully covered invoice
// flips to paid in the same transaction.
func (s *Service) Record(ctx context.Context, req domain.RecordPaymentRequest) (domain.Payment, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Payment{}, domain.ErrInvalidCompany
	}

	invoiceID, err := snowflake.ParseString(strings.TrimSpace(req.InvoiceID))
	if err != nil || invoiceID == 0 {
		return domain.Payment{}, domain.ErrInvalidInvoice
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.Sign() <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	method := domain.Method(strings.TrimSpace(req.Method))
	if !domain.ValidMethod(method) {
		return domain.Payment{}, domain.ErrInvalidMethod
	}

	rateSettings, err := s.settings.GetExchangeRateFor(ctx, companyID)
	if err != nil {
		return domain.Payment{}, err
	}

	var payment domain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice invoicedomain.Invoice
		err := tx.Where("company_id = ? AND id = ?", companyID, invoiceID).First(&invoice).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if invoice.Status != invoicedomain.StatusIssued && invoice.Status != invoicedomain.StatusOverdue {
			return domain.ErrInvoiceState
		}

		now := time.Now().UTC()
		payment = domain.Payment{
			ID:         s.genID.Generate(),
			CompanyID:  companyID,
			InvoiceID:  invoice.ID,
			CustomerID: invoice.CustomerID,
			Amount:     amount,
			Method:     method,
			Status:     domain.StatusCompleted,
			Meta: datatypes.JSONMap{
				domain.MetaCurrency:     invoice.Currency,
				domain.MetaExchangeRate: rateSettings.ExchangeRate,
			},
			Reference: strings.TrimSpace(req.Reference),
			PaidAt:    &now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		paid := invoice.AmountPaid.Add(amount)
		updates := map[string]any{
			"amount_paid": paid,
			"updated_at":  now,
		}
		if paid.GreaterThanOrEqual(invoice.TotalAmount) {
			updates["status"] = invoicedomain.StatusPaid
		}
		return tx.Model(&invoicedomain.Invoice{}).Where("id = ?", invoice.ID).Updates(updates).Error
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("invoice_id", payment.InvoiceID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID string) ([]domain.Payment, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	id, err := snowflake.ParseString(strings.TrimSpace(invoiceID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidInvoice
	}

	var payments []domain.Payment
	err = s.db.WithContext(ctx).
		Where("company_id = ? AND invoice_id = ?", companyID, id).
		Order("created_at asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
