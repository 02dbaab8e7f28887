package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bookings
		 (id, customer_id, service_id, series_id, conversation_id,
		  start_time, end_time, actual_start, actual_end,
		  status, external_ref, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.CustomerID,
		booking.ServiceID,
		booking.SeriesID,
		booking.ConversationID,
		booking.StartTime,
		booking.EndTime,
		booking.ActualStart,
		booking.ActualEnd,
		booking.Status,
		booking.ExternalRef,
		booking.Metadata,
		booking.CreatedAt,
		booking.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).Raw(
		selectColumns+` WHERE id = ?`,
		id,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListBookingFilter) ([]domain.Booking, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	stmt := db.WithContext(ctx).Model(&domain.Booking{})
	if filter.SeriesID != 0 {
		stmt = stmt.Where("series_id = ?", filter.SeriesID)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}

	var bookings []domain.Booking
	if err := stmt.Order("start_time ASC").Limit(limit).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) FindLastBySeriesID(ctx context.Context, db *gorm.DB, seriesID snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).Raw(
		selectColumns+`
		 WHERE series_id = ?
		 ORDER BY start_time DESC
		 LIMIT 1`,
		seriesID,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) FindBySeriesIDAndStart(ctx context.Context, db *gorm.DB, seriesID snowflake.ID, start time.Time) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).Raw(
		selectColumns+`
		 WHERE series_id = ? AND start_time = ?
		 LIMIT 1`,
		seriesID,
		start,
	).Scan(&booking).Error
	if err != nil {
		return nil, err
	}
	if booking.ID == 0 {
		return nil, nil
	}
	return &booking, nil
}

func (r *repo) CountOverlapping(ctx context.Context, db *gorm.DB, serviceID *snowflake.ID, from, to time.Time) (int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("status <> ?", domain.BookingStatusCancelled).
		Where("actual_start < ? AND actual_end > ?", to, from)
	if serviceID != nil {
		stmt = stmt.Where("service_id = ?", *serviceID)
	}

	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

const selectColumns = `SELECT id, customer_id, service_id, series_id, conversation_id,
        start_time, end_time, actual_start, actual_end,
        status, external_ref, metadata, created_at, updated_at
 FROM bookings`
