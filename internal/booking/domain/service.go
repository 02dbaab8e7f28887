package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ListBookingRequest struct {
	SeriesID   string
	CustomerID string
	Limit      int
}

type Service interface {
	List(ctx context.Context, req ListBookingRequest) ([]Booking, error)
	GetByID(ctx context.Context, id string) (Booking, error)

	// CheckBufferedConflicts returns ErrSlotConflict when any non-cancelled
	// booking already intersects the buffered window [actualStart, actualEnd).
	CheckBufferedConflicts(ctx context.Context, actualStart, actualEnd time.Time, serviceID *snowflake.ID) error
}

var (
	ErrInvalidBooking  = errors.New("invalid_booking")
	ErrBookingNotFound = errors.New("booking_not_found")
	ErrSlotConflict    = errors.New("slot_conflict")
)
