package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/dutyfee/domain"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	"github.com/portpak/portpak/pkg/repository"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[domain.DutyFee]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dutyfee.service"),
		genID: p.GenID,
		store: repository.ProvideStore[domain.DutyFee](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDutyFeeRequest) (domain.DutyFee, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.DutyFee{}, domain.ErrInvalidCompany
	}

	parcelID, err := snowflake.ParseString(strings.TrimSpace(req.ParcelID))
	if err != nil || parcelID == 0 {
		return domain.DutyFee{}, domain.ErrInvalidParcel
	}

	if err := s.checkMutable(ctx, companyID, parcelID); err != nil {
		return domain.DutyFee{}, err
	}

	feeType := strings.TrimSpace(req.FeeType)
	customType := strings.TrimSpace(req.CustomFeeType)
	if !domain.ValidFeeType(feeType) {
		return domain.DutyFee{}, domain.ErrInvalidFeeType
	}
	if feeType == domain.FeeTypeOther && customType == "" {
		return domain.DutyFee{}, domain.ErrCustomTypeMissing
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.Sign() <= 0 {
		return domain.DutyFee{}, domain.ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency != "USD" && currency != "JMD" {
		return domain.DutyFee{}, domain.ErrInvalidCurrency
	}

	now := time.Now().UTC()
	fee := domain.DutyFee{
		ID:            s.genID.Generate(),
		CompanyID:     companyID,
		ParcelID:      parcelID,
		FeeType:       feeType,
		CustomFeeType: customType,
		Amount:        amount,
		Currency:      currency,
		Description:   strings.TrimSpace(req.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, &fee); err != nil {
		return domain.DutyFee{}, err
	}

	s.log.Info("duty fee created",
		zap.String("duty_fee_id", fee.ID.String()),
		zap.String("parcel_id", parcelID.String()),
		zap.String("fee_type", fee.DisplayType()),
	)
	return fee, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDutyFeeRequest) (domain.DutyFee, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.DutyFee{}, domain.ErrInvalidCompany
	}

	fee, err := s.getOwned(ctx, companyID, req.ID)
	if err != nil {
		return domain.DutyFee{}, err
	}

	if err := s.checkMutable(ctx, companyID, fee.ParcelID); err != nil {
		return domain.DutyFee{}, err
	}

	// Changed columns go through a map so cleared values persist,
	// notably customFeeType emptied after switching away from Other.
	changes := map[string]any{}
	if req.FeeType != nil {
		feeType := strings.TrimSpace(*req.FeeType)
		if !domain.ValidFeeType(feeType) {
			return domain.DutyFee{}, domain.ErrInvalidFeeType
		}
		fee.FeeType = feeType
		changes["fee_type"] = fee.FeeType
	}
	if req.CustomFeeType != nil {
		fee.CustomFeeType = strings.TrimSpace(*req.CustomFeeType)
		changes["custom_fee_type"] = fee.CustomFeeType
	}
	if fee.FeeType == domain.FeeTypeOther && fee.CustomFeeType == "" {
		return domain.DutyFee{}, domain.ErrCustomTypeMissing
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.Amount))
		if err != nil || amount.Sign() <= 0 {
			return domain.DutyFee{}, domain.ErrInvalidAmount
		}
		fee.Amount = amount
		changes["amount"] = fee.Amount
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if currency != "USD" && currency != "JMD" {
			return domain.DutyFee{}, domain.ErrInvalidCurrency
		}
		fee.Currency = currency
		changes["currency"] = fee.Currency
	}
	if req.Description != nil {
		fee.Description = strings.TrimSpace(*req.Description)
		changes["description"] = fee.Description
	}
	fee.UpdatedAt = time.Now().UTC()
	changes["updated_at"] = fee.UpdatedAt

	if err := s.store.Update(ctx, fee.ID.String(), changes); err != nil {
		return domain.DutyFee{}, err
	}
	return *fee, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.ErrInvalidCompany
	}

	fee, err := s.getOwned(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.checkMutable(ctx, companyID, fee.ParcelID); err != nil {
		return err
	}
	return s.store.Delete(ctx, fee.ID.String())
}

func (s *Service) ListByParcel(ctx context.Context, parcelID string) ([]domain.DutyFee, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(parcelID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidParcel
	}
	return s.ListByParcelID(ctx, id)
}

func (s *Service) ListByParcelID(ctx context.Context, parcelID snowflake.ID) ([]domain.DutyFee, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	items, err := s.store.Find(ctx, &domain.DutyFee{CompanyID: companyID, ParcelID: parcelID})
	if err != nil {
		return nil, err
	}

	fees := make([]domain.DutyFee, 0, len(items))
	for _, item := range items {
		fees = append(fees, *item)
	}
	return fees, nil
}

func (s *Service) Totals(ctx context.Context, parcelID string) (map[string]decimal.Decimal, error) {
	fees, err := s.ListByParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	return domain.TotalsByCurrency(fees), nil
}

func (s *Service) getOwned(ctx context.Context, companyID snowflake.ID, id string) (*domain.DutyFee, error) {
	feeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || feeID == 0 {
		return nil, domain.ErrInvalidID
	}

	fee, err := s.store.FindOne(ctx, &domain.DutyFee{ID: feeID, CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, domain.ErrNotFound
	}
	return fee, nil
}

// checkMutable enforces the duty fee freeze: terminal parcel status or
// any invoice linkage makes the parcel's duty fees read-only.
func (s *Service) checkMutable(ctx context.Context, companyID, parcelID snowflake.ID) error {
	var parcel parceldomain.Parcel
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, status FROM parcels WHERE company_id = ? AND id = ?`,
		companyID, parcelID,
	).Scan(&parcel).Error
	if err != nil {
		return err
	}
	if parcel.ID == 0 {
		return domain.ErrInvalidParcel
	}

	var invoiced int64
	err = s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM invoice_items WHERE parcel_id = ?`,
		parcelID,
	).Scan(&invoiced).Error
	if err != nil {
		return err
	}

	if !domain.CanModify(string(parcel.Status), invoiced > 0) {
		return domain.ErrImmutableFeeState
	}
	return nil
}
