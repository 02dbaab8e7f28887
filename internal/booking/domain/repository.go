package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListBookingFilter struct {
	SeriesID   snowflake.ID
	CustomerID snowflake.ID
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	List(ctx context.Context, db *gorm.DB, filter ListBookingFilter) ([]Booking, error)

	// FindLastBySeriesID returns the most recent booking for a series by
	// start time, or nil. The engine anchors occurrence advancement on it.
	FindLastBySeriesID(ctx context.Context, db *gorm.DB, seriesID snowflake.ID) (*Booking, error)

	// FindBySeriesIDAndStart is the read side of the idempotency guard.
	FindBySeriesIDAndStart(ctx context.Context, db *gorm.DB, seriesID snowflake.ID, start time.Time) (*Booking, error)

	// CountOverlapping counts non-cancelled bookings whose buffered window
	// intersects [from, to), optionally scoped to one offering.
	CountOverlapping(ctx context.Context, db *gorm.DB, serviceID *snowflake.ID, from, to time.Time) (int64, error)
}
