package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/company/domain"
	"github.com/portpak/portpak/pkg/db"
	"github.com/portpak/portpak/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[domain.Company]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		store: repository.ProvideStore[domain.Company](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	if !subdomainPattern.MatchString(subdomain) {
		return domain.Company{}, domain.ErrInvalidSubdomain
	}

	prefix := strings.ToUpper(strings.TrimSpace(req.InvoicePrefix))
	if prefix == "" {
		prefix = "INV"
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:            s.genID.Generate(),
		Name:          name,
		Subdomain:     subdomain,
		InvoicePrefix: prefix,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, &company); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Company{}, domain.ErrSubdomainTaken
		}
		return domain.Company{}, err
	}

	return company, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	item, err := s.store.FindOne(ctx, &domain.Company{ID: id})
	if err != nil {
		return domain.Company{}, err
	}
	if item == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetBySubdomain(ctx context.Context, subdomain string) (domain.Company, error) {
	item, err := s.store.FindOne(ctx, &domain.Company{Subdomain: strings.ToLower(strings.TrimSpace(subdomain))})
	if err != nil {
		return domain.Company{}, err
	}
	if item == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *item, nil
}
