package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListSeriesFilter struct {
	CustomerID snowflake.ID
	Status     SeriesStatus
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, series *Series) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Series, error)
	List(ctx context.Context, db *gorm.DB, filter ListSeriesFilter) ([]Series, error)

	// ListActive returns every active series ordered by start date ascending.
	// That ordering is the only processing-order guarantee the engine gives.
	ListActive(ctx context.Context, db *gorm.DB) ([]Series, error)

	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status SeriesStatus, now time.Time) error

	// IncrementCompleted bumps occurrences_completed by exactly one.
	IncrementCompleted(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
