package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/parcel/domain"
	prealertdomain "github.com/portpak/portpak/internal/prealert/domain"
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

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	PreAlerts prealertdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	store     repository.Repository[domain.Parcel]
	preAlerts prealertdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("parcel.service"),
		genID:     p.GenID,
		store:     repository.ProvideStore[domain.Parcel](p.DB),
		preAlerts: p.PreAlerts,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateParcelRequest) (domain.Parcel, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return domain.Parcel{}, domain.ErrInvalidCompany
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Parcel{}, domain.ErrInvalidCustomer
	}

	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		return domain.Parcel{}, domain.ErrInvalidTracking
	}

	itemCount := req.ItemCount
	if itemCount <= 0 {
		itemCount = 1
	}

	now := time.Now().UTC()
	parcel := domain.Parcel{
		ID:             s.genID.Generate(),
		CompanyID:      companyID,
		CustomerID:     customerID,
		TrackingNumber: tracking,
		Status:         domain.StatusReceived,
		Weight:         parseDecimal(req.Weight),
		DeclaredValue:  parseDecimal(req.DeclaredValue),
		ItemCount:      itemCount,
		Length:         parseDecimal(req.Length),
		Width:          parseDecimal(req.Width),
		Height:         parseDecimal(req.Height),
		Description:    strings.TrimSpace(req.Description),
		Tags:           encodeTags(req.Tags),
		ReceivedAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Create(ctx, &parcel); err != nil {
		return domain.Parcel{}, err
	}

	if s.preAlerts != nil {
		if _, err := s.preAlerts.MatchTracking(ctx, parcel.TrackingNumber, parcel.ID); err != nil {
			// The parcel is already received; a failed match is not
			// worth failing intake over.
			s.log.Warn("pre-alert match failed",
				zap.String("parcel_id", parcel.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.log.Info("parcel received",
		zap.String("parcel_id", parcel.ID.String()),
		zap.String("tracking_number", parcel.TrackingNumber),
	)
	return parcel, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Parcel, error) {
	parcel, err := s.getOwned(ctx, id)
	if err != nil {
		return domain.Parcel{}, err
	}
	return *parcel, nil
}

func (s *Service) List(ctx context.Context, req domain.ListParcelRequest) ([]domain.Parcel, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	filter := &domain.Parcel{CompanyID: companyID}
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		if !domain.ValidStatus(status) {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	items, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	parcels := make([]domain.Parcel, 0, len(items))
	for _, item := range items {
		parcels = append(parcels, *item)
	}
	return parcels, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Parcel, error) {
	if !domain.ValidStatus(status) {
		return domain.Parcel{}, domain.ErrInvalidStatus
	}

	parcel, err := s.getOwned(ctx, id)
	if err != nil {
		return domain.Parcel{}, err
	}
	if !domain.CanTransition(parcel.Status, status) {
		return domain.Parcel{}, domain.ErrInvalidTransition
	}

	parcel.Status = status
	parcel.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, parcel.ID.String(), map[string]any{
		"status":     status,
		"updated_at": parcel.UpdatedAt,
	}); err != nil {
		return domain.Parcel{}, err
	}

	s.log.Info("parcel status changed",
		zap.String("parcel_id", parcel.ID.String()),
		zap.String("status", string(status)),
	)
	return *parcel, nil
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status domain.Status) error {
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}
	return s.store.Update(ctx, id.String(), map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func (s *Service) GetMany(ctx context.Context, ids []snowflake.ID) ([]domain.Parcel, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var parcels []domain.Parcel
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND id IN ?", companyID, ids).
		Order("id asc").
		Find(&parcels).Error
	if err != nil {
		return nil, err
	}
	return parcels, nil
}

func (s *Service) getOwned(ctx context.Context, id string) (*domain.Parcel, error) {
	companyID, ok := tenantctx.CompanyID(ctx)
	if !ok || companyID == 0 {
		return nil, domain.ErrInvalidCompany
	}

	parcelID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parcelID == 0 {
		return nil, domain.ErrInvalidID
	}

	parcel, err := s.store.FindOne(ctx, &domain.Parcel{ID: parcelID, CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	if parcel == nil {
		return nil, domain.ErrNotFound
	}
	return parcel, nil
}

func parseDecimal(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func encodeTags(tags []string) datatypes.JSON {
	if len(tags) == 0 {
		return nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
