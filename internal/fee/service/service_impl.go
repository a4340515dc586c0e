package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/fee/domain"
	"github.com/portpak/portpak/pkg/db"
	"github.com/portpak/portpak/pkg/repository"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[domain.Fee]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("fee.service"),
		genID: p.GenID,
		store: repository.ProvideStore[domain.Fee](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateFeeRequest) (domain.Fee, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Fee{}, domain.ErrInvalidCompany
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return domain.Fee{}, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	fee := domain.Fee{
		ID:                s.genID.Generate(),
		CompanyID:         companyID,
		Name:              strings.TrimSpace(req.Name),
		Code:              strings.ToUpper(strings.TrimSpace(req.Code)),
		FeeType:           domain.FeeType(req.FeeType),
		CalculationMethod: domain.CalculationMethod(req.CalculationMethod),
		Amount:            amount,
		Currency:          strings.ToUpper(strings.TrimSpace(req.Currency)),
		AppliesTo:         encodeAppliesTo(req.AppliesTo),
		Metadata:          datatypes.JSONMap(req.Metadata),
		Description:       strings.TrimSpace(req.Description),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if fee.Metadata == nil {
		fee.Metadata = datatypes.JSONMap{}
	}

	if err := fee.Validate(); err != nil {
		return domain.Fee{}, err
	}

	existing, err := s.store.FindOne(ctx, &domain.Fee{CompanyID: companyID, Code: fee.Code})
	if err != nil {
		return domain.Fee{}, err
	}
	if existing != nil {
		return domain.Fee{}, domain.ErrDuplicateCode
	}

	if err := s.store.Create(ctx, &fee); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Fee{}, domain.ErrDuplicateCode
		}
		return domain.Fee{}, err
	}

	s.log.Info("fee created",
		zap.String("fee_id", fee.ID.String()),
		zap.String("code", fee.Code),
		zap.String("method", string(fee.CalculationMethod)),
	)
	return fee, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateFeeRequest) (domain.Fee, error) {
	fee, err := s.getOwned(ctx, req.ID)
	if err != nil {
		return domain.Fee{}, err
	}

	// Changed columns go through a map so cleared values (empty
	// description, nil appliesTo) persist; Updates on a struct would
	// skip them as zero values.
	changes := map[string]any{}
	if req.Name != nil {
		fee.Name = strings.TrimSpace(*req.Name)
		changes["name"] = fee.Name
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(strings.TrimSpace(*req.Amount))
		if err != nil {
			return domain.Fee{}, domain.ErrInvalidAmount
		}
		fee.Amount = amount
		changes["amount"] = fee.Amount
	}
	if req.Currency != nil {
		fee.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
		changes["currency"] = fee.Currency
	}
	if req.AppliesTo != nil {
		fee.AppliesTo = encodeAppliesTo(req.AppliesTo)
		changes["applies_to"] = fee.AppliesTo
	}
	if req.Metadata != nil {
		fee.Metadata = datatypes.JSONMap(req.Metadata)
		changes["metadata"] = fee.Metadata
	}
	if req.Description != nil {
		fee.Description = strings.TrimSpace(*req.Description)
		changes["description"] = fee.Description
	}
	fee.UpdatedAt = time.Now().UTC()
	changes["updated_at"] = fee.UpdatedAt

	if err := fee.Validate(); err != nil {
		return domain.Fee{}, err
	}
	if err := s.store.Update(ctx, fee.ID.String(), changes); err != nil {
		return domain.Fee{}, err
	}
	return *fee, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Fee, error) {
	fee, err := s.getOwned(ctx, id)
	if err != nil {
		return domain.Fee{}, err
	}
	return *fee, nil
}

func (s *Service) List(ctx context.Context, req domain.ListFeeRequest) ([]domain.Fee, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	filter := &domain.Fee{CompanyID: companyID}
	if req.FeeType != "" {
		filter.FeeType = domain.FeeType(req.FeeType)
	}
	if req.ActiveOnly {
		filter.IsActive = true
	}

	items, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	fees := make([]domain.Fee, 0, len(items))
	for _, item := range items {
		fees = append(fees, *item)
	}
	return fees, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Fee, error) {
	return s.List(ctx, domain.ListFeeRequest{ActiveOnly: true})
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (domain.Fee, error) {
	fee, err := s.getOwned(ctx, id)
	if err != nil {
		return domain.Fee{}, err
	}

	fee.IsActive = active
	fee.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, fee.ID.String(), map[string]any{
		"is_active":  active,
		"updated_at": fee.UpdatedAt,
	}); err != nil {
		return domain.Fee{}, err
	}
	return *fee, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	fee, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, fee.ID.String())
}

func (s *Service) getOwned(ctx context.Context, id string) (*domain.Fee, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	feeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || feeID == 0 {
		return nil, domain.ErrInvalidID
	}

	fee, err := s.store.FindOne(ctx, &domain.Fee{ID: feeID, CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	if fee == nil {
		return nil, domain.ErrNotFound
	}
	return fee, nil
}

func encodeAppliesTo(list []string) datatypes.JSON {
	if len(list) == 0 {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
