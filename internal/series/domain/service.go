package domain

import (
	"context"
	"errors"
	"time"
)

type CreateSeriesRequest struct {
	CustomerID       string         `json:"customer_id"`
	ServiceID        string         `json:"service_id,omitempty"`
	RoutineID        string         `json:"routine_id,omitempty"`
	Pattern          string         `json:"pattern"`
	Interval         int            `json:"interval"`
	StartDate        time.Time      `json:"start_date"`
	EndDate          *time.Time     `json:"end_date,omitempty"`
	OccurrencesCount *int           `json:"occurrences_count,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

type ListSeriesRequest struct {
	CustomerID string
	Status     string
	Limit      int
}

type Service interface {
	Create(ctx context.Context, req CreateSeriesRequest) (Series, error)
	GetByID(ctx context.Context, id string) (Series, error)
	List(ctx context.Context, req ListSeriesRequest) ([]Series, error)
	Pause(ctx context.Context, id string) (Series, error)
	Resume(ctx context.Context, id string) (Series, error)
	Cancel(ctx context.Context, id string) (Series, error)
}

var (
	ErrInvalidSeries    = errors.New("invalid_series")
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrInvalidPattern   = errors.New("invalid_pattern")
	ErrInvalidInterval  = errors.New("invalid_interval")
	ErrInvalidStartDate = errors.New("invalid_start_date")
	ErrInvalidBounds    = errors.New("invalid_series_bounds")
	ErrSeriesNotFound   = errors.New("series_not_found")
	ErrSeriesTerminal   = errors.New("series_terminal")
	ErrInvalidStatus    = errors.New("invalid_status")
)
