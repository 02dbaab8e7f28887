package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/series/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, series *domain.Series) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO recurring_series
		 (id, customer_id, service_id, routine_id, pattern, recur_interval, start_date, end_date,
		  occurrences_count, occurrences_completed, status, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		series.ID,
		series.CustomerID,
		series.ServiceID,
		series.RoutineID,
		series.Pattern,
		series.Interval,
		series.StartDate,
		series.EndDate,
		series.OccurrencesCount,
		series.OccurrencesCompleted,
		series.Status,
		series.Metadata,
		series.CreatedAt,
		series.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Series, error) {
	var series domain.Series
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, service_id, routine_id, pattern, recur_interval, start_date, end_date,
		        occurrences_count, occurrences_completed, status, metadata, created_at, updated_at
		 FROM recurring_series WHERE id = ?`,
		id,
	).Scan(&series).Error
	if err != nil {
		return nil, err
	}
	if series.ID == 0 {
		return nil, nil
	}
	return &series, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSeriesFilter) ([]domain.Series, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	stmt := db.WithContext(ctx).Model(&domain.Series{})
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var series []domain.Series
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Series, error) {
	var series []domain.Series
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, service_id, routine_id, pattern, recur_interval, start_date, end_date,
		        occurrences_count, occurrences_completed, status, metadata, created_at, updated_at
		 FROM recurring_series
		 WHERE status = ?
		 ORDER BY start_date ASC, id ASC`,
		domain.SeriesStatusActive,
	).Scan(&series).Error
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.SeriesStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE recurring_series SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		now,
		id,
	).Error
}

func (r *repo) IncrementCompleted(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE recurring_series
		 SET occurrences_completed = occurrences_completed + 1, updated_at = ?
		 WHERE id = ?`,
		now,
		id,
	).Error
}
