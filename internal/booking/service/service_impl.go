package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/booking/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("booking.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListBookingRequest) ([]domain.Booking, error) {
	filter := domain.ListBookingFilter{Limit: req.Limit}

	if req.SeriesID != "" {
		parsed, err := snowflake.ParseString(req.SeriesID)
		if err != nil {
			return nil, domain.ErrInvalidBooking
		}
		filter.SeriesID = parsed
	}
	if req.CustomerID != "" {
		parsed, err := snowflake.ParseString(req.CustomerID)
		if err != nil {
			return nil, domain.ErrInvalidBooking
		}
		filter.CustomerID = parsed
	}

	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Booking{}, domain.ErrInvalidBooking
	}

	booking, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Booking{}, err
	}
	if booking == nil {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return *booking, nil
}

func (s *Service) CheckBufferedConflicts(ctx context.Context, actualStart, actualEnd time.Time, serviceID *snowflake.ID) error {
	count, err := s.repo.CountOverlapping(ctx, s.db, serviceID, actualStart, actualEnd)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrSlotConflict
	}
	return nil
}
