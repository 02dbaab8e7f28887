package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateOfferingRequest struct {
	Name            string `json:"name"`
	DurationMin     int    `json:"duration_min"`
	BufferBeforeMin int    `json:"buffer_before_min"`
	BufferAfterMin  int    `json:"buffer_after_min"`
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req CreateOfferingRequest) (domain.Offering, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.DurationMin <= 0 || req.BufferBeforeMin < 0 || req.BufferAfterMin < 0 {
		return domain.Offering{}, domain.ErrInvalidOffering
	}

	now := time.Now().UTC()
	offering := domain.Offering{
		ID:              s.genID.Generate(),
		Name:            name,
		DurationMin:     req.DurationMin,
		BufferBeforeMin: req.BufferBeforeMin,
		BufferAfterMin:  req.BufferAfterMin,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &offering); err != nil {
		return domain.Offering{}, err
	}
	return offering, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Offering, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Offering{}, domain.ErrInvalidOffering
	}

	offering, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Offering{}, err
	}
	if offering == nil {
		return domain.Offering{}, domain.ErrOfferingNotFound
	}
	return *offering, nil
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Offering, error) {
	return s.repo.ListActive(ctx, s.db)
}
