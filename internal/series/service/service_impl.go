package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/recurrence"
	"github.com/smallbiznis/bookflow/internal/series/domain"
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
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("series.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSeriesRequest) (domain.Series, error) {
	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return domain.Series{}, domain.ErrInvalidCustomer
	}

	pattern, err := recurrence.ParsePattern(req.Pattern)
	if err != nil {
		return domain.Series{}, domain.ErrInvalidPattern
	}

	interval := req.Interval
	if interval == 0 {
		interval = 1
	}
	if interval < 0 {
		return domain.Series{}, domain.ErrInvalidInterval
	}

	if req.StartDate.IsZero() {
		return domain.Series{}, domain.ErrInvalidStartDate
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return domain.Series{}, domain.ErrInvalidBounds
	}
	if req.OccurrencesCount != nil && *req.OccurrencesCount <= 0 {
		return domain.Series{}, domain.ErrInvalidBounds
	}

	var serviceID *snowflake.ID
	if req.ServiceID != "" {
		parsed, err := snowflake.ParseString(req.ServiceID)
		if err != nil {
			return domain.Series{}, domain.ErrInvalidSeries
		}
		serviceID = &parsed
	}

	var routineID *snowflake.ID
	if req.RoutineID != "" {
		parsed, err := snowflake.ParseString(req.RoutineID)
		if err != nil {
			return domain.Series{}, domain.ErrInvalidSeries
		}
		routineID = &parsed
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := time.Now().UTC()
	series := domain.Series{
		ID:               s.genID.Generate(),
		CustomerID:       customerID,
		ServiceID:        serviceID,
		RoutineID:        routineID,
		Pattern:          pattern,
		Interval:         interval,
		StartDate:        req.StartDate.UTC(),
		EndDate:          req.EndDate,
		OccurrencesCount: req.OccurrencesCount,
		Status:           domain.SeriesStatusActive,
		Metadata:         metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &series); err != nil {
		return domain.Series{}, err
	}

	s.log.Info("series created",
		zap.String("series_id", series.ID.String()),
		zap.String("pattern", string(series.Pattern)),
		zap.Int("interval", series.Interval),
	)
	return series, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Series, error) {
	series, err := s.find(ctx, id)
	if err != nil {
		return domain.Series{}, err
	}
	return *series, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSeriesRequest) ([]domain.Series, error) {
	filter := domain.ListSeriesFilter{Limit: req.Limit}

	if req.CustomerID != "" {
		parsed, err := snowflake.ParseString(req.CustomerID)
		if err != nil {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = parsed
	}

	if req.Status != "" {
		status := domain.SeriesStatus(req.Status)
		switch status {
		case domain.SeriesStatusActive, domain.SeriesStatusPaused, domain.SeriesStatusCompleted, domain.SeriesStatusCancelled:
			filter.Status = status
		default:
			return nil, domain.ErrInvalidStatus
		}
	}

	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Pause(ctx context.Context, id string) (domain.Series, error) {
	return s.transition(ctx, id, domain.SeriesStatusPaused, func(current domain.SeriesStatus) bool {
		return current == domain.SeriesStatusActive
	})
}

func (s *Service) Resume(ctx context.Context, id string) (domain.Series, error) {
	return s.transition(ctx, id, domain.SeriesStatusActive, func(current domain.SeriesStatus) bool {
		return current == domain.SeriesStatusPaused
	})
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Series, error) {
	return s.transition(ctx, id, domain.SeriesStatusCancelled, func(current domain.SeriesStatus) bool {
		return !current.Terminal()
	})
}

func (s *Service) transition(ctx context.Context, id string, target domain.SeriesStatus, allowed func(domain.SeriesStatus) bool) (domain.Series, error) {
	series, err := s.find(ctx, id)
	if err != nil {
		return domain.Series{}, err
	}

	if series.Status.Terminal() {
		return domain.Series{}, domain.ErrSeriesTerminal
	}
	if !allowed(series.Status) {
		return domain.Series{}, domain.ErrInvalidStatus
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, s.db, series.ID, target, now); err != nil {
		return domain.Series{}, err
	}

	series.Status = target
	series.UpdatedAt = now
	return *series, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Series, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidSeries
	}

	series, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, domain.ErrSeriesNotFound
	}
	return series, nil
}
