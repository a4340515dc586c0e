package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	"github.com/portpak/portpak/internal/prealert/domain"
	"github.com/portpak/portpak/pkg/repository"
	"github.com/portpak/portpak/pkg/tenantctx"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultArrivalWindow is assumed when the customer gives no estimate.
const defaultArrivalWindow = 7 * 24 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	store     repository.Repository[domain.PreAlert]
	customers repository.Repository[customerdomain.Customer]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("prealert.service"),
		genID:     p.GenID,
		store:     repository.ProvideStore[domain.PreAlert](p.DB),
		customers: repository.ProvideStore[customerdomain.Customer](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePreAlertRequest) (domain.PreAlert, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.PreAlert{}, domain.ErrInvalidCompany
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.PreAlert{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customers.FindOne(ctx, &customerdomain.Customer{ID: customerID, CompanyID: companyID})
	if err != nil {
		return domain.PreAlert{}, err
	}
	if customer == nil {
		return domain.PreAlert{}, domain.ErrInvalidCustomer
	}

	tracking := strings.TrimSpace(req.TrackingNumber)
	if len(tracking) < 3 {
		return domain.PreAlert{}, domain.ErrInvalidTracking
	}
	courier := strings.TrimSpace(req.Courier)
	if len(courier) < 2 {
		return domain.PreAlert{}, domain.ErrInvalidCourier
	}

	now := time.Now().UTC()
	arrival := now.Add(defaultArrivalWindow)
	if req.EstimatedArrival != nil {
		arrival = req.EstimatedArrival.UTC()
	}

	alert := domain.PreAlert{
		ID:               s.genID.Generate(),
		CompanyID:        companyID,
		CustomerID:       customerID,
		TrackingNumber:   tracking,
		Courier:          courier,
		Description:      strings.TrimSpace(req.Description),
		EstimatedWeight:  parseDecimal(req.EstimatedWeight),
		EstimatedArrival: arrival,
		Status:           domain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.Create(ctx, &alert); err != nil {
		return domain.PreAlert{}, err
	}

	s.log.Info("pre-alert created",
		zap.String("pre_alert_id", alert.ID.String()),
		zap.String("tracking_number", alert.TrackingNumber),
		zap.String("courier", alert.Courier),
	)
	return alert, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.PreAlert, error) {
	alert, err := s.getOwned(ctx, id)
	if err != nil {
		return domain.PreAlert{}, err
	}
	return *alert, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPreAlertRequest) ([]domain.PreAlert, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	query := s.db.WithContext(ctx).Where("company_id = ?", companyID)
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		query = query.Where("customer_id = ?", customerID)
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		if !domain.ValidStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}
	if req.Unmatched {
		query = query.Where("status = ? AND parcel_id = 0", domain.StatusPending)
	}

	var alerts []domain.PreAlert
	if err := query.Order("id asc").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePreAlertRequest) (domain.PreAlert, error) {
	alert, err := s.getOwned(ctx, req.ID)
	if err != nil {
		return domain.PreAlert{}, err
	}

	// Changed columns go through a map so cleared values persist.
	changes := map[string]any{}
	if req.TrackingNumber != nil {
		tracking := strings.TrimSpace(*req.TrackingNumber)
		if len(tracking) < 3 {
			return domain.PreAlert{}, domain.ErrInvalidTracking
		}
		alert.TrackingNumber = tracking
		changes["tracking_number"] = alert.TrackingNumber
	}
	if req.Courier != nil {
		courier := strings.TrimSpace(*req.Courier)
		if len(courier) < 2 {
			return domain.PreAlert{}, domain.ErrInvalidCourier
		}
		alert.Courier = courier
		changes["courier"] = alert.Courier
	}
	if req.Description != nil {
		alert.Description = strings.TrimSpace(*req.Description)
		changes["description"] = alert.Description
	}
	if req.EstimatedWeight != nil {
		alert.EstimatedWeight = parseDecimal(*req.EstimatedWeight)
		changes["estimated_weight"] = alert.EstimatedWeight
	}
	if req.EstimatedArrival != nil {
		alert.EstimatedArrival = req.EstimatedArrival.UTC()
		changes["estimated_arrival"] = alert.EstimatedArrival
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !domain.ValidStatus(status) {
			return domain.PreAlert{}, domain.ErrInvalidStatus
		}
		if alert.Matched() && status != domain.StatusMatched {
			return domain.PreAlert{}, domain.ErrAlreadyMatched
		}
		alert.Status = status
		changes["status"] = alert.Status
	}
	alert.UpdatedAt = time.Now().UTC()
	changes["updated_at"] = alert.UpdatedAt

	if err := s.store.Update(ctx, alert.ID.String(), changes); err != nil {
		return domain.PreAlert{}, err
	}
	return *alert, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.PreAlert, error) {
	alert, err := s.getOwned(ctx, id)
	if err != nil {
		return domain.PreAlert{}, err
	}
	if alert.Matched() {
		return domain.PreAlert{}, domain.ErrAlreadyMatched
	}

	alert.Status = domain.StatusCancelled
	alert.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, alert.ID.String(), map[string]any{
		"status":     alert.Status,
		"updated_at": alert.UpdatedAt,
	}); err != nil {
		return domain.PreAlert{}, err
	}

	s.log.Info("pre-alert cancelled", zap.String("pre_alert_id", alert.ID.String()))
	return *alert, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	alert, err := s.getOwned(ctx, id)
	if err != nil {
		return err
	}
	if alert.Matched() {
		return domain.ErrAlreadyMatched
	}
	return s.store.Delete(ctx, alert.ID.String())
}

func (s *Service) MatchTracking(ctx context.Context, trackingNumber string, parcelID snowflake.ID) (*domain.PreAlert, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	tracking := strings.TrimSpace(trackingNumber)
	if tracking == "" || parcelID == 0 {
		return nil, nil
	}

	var alert domain.PreAlert
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND tracking_number = ? AND status = ? AND parcel_id = 0",
			companyID, tracking, domain.StatusPending).
		Order("id asc").
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	alert.Status = domain.StatusMatched
	alert.ParcelID = parcelID
	alert.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, alert.ID.String(), map[string]any{
		"status":     alert.Status,
		"parcel_id":  alert.ParcelID,
		"updated_at": alert.UpdatedAt,
	}); err != nil {
		return nil, err
	}

	s.log.Info("pre-alert matched",
		zap.String("pre_alert_id", alert.ID.String()),
		zap.String("parcel_id", parcelID.String()),
	)
	return &alert, nil
}

func (s *Service) getOwned(ctx context.Context, id string) (*domain.PreAlert, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	alertID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || alertID == 0 {
		return nil, domain.ErrInvalidID
	}

	alert, err := s.store.FindOne(ctx, &domain.PreAlert{ID: alertID, CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrNotFound
	}
	return alert, nil
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}
