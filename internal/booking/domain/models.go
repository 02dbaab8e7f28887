// Package domain contains persistence models for bookings.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BookingStatus represents lifecycle states for a booking.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is one appointment occurrence. ActualStart/ActualEnd expand the
// visible window by the offering's pre/post buffers; conflict checks run
// against the buffered window, not the visible one.
type Booking struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	ServiceID      *snowflake.ID `gorm:"index" json:"service_id,omitempty"`
	SeriesID       *snowflake.ID `gorm:"index" json:"series_id,omitempty"`
	ConversationID snowflake.ID  `gorm:"not null" json:"conversation_id"`

	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	ActualStart time.Time `gorm:"not null;index" json:"actual_start"`
	ActualEnd   time.Time `gorm:"not null;index" json:"actual_end"`

	Status BookingStatus `gorm:"type:text;not null" json:"status"`

	// ExternalRef is the deterministic correlation id "<seriesID>-<startUnix>".
	// The unique index makes duplicate occurrence insertion impossible even
	// across processes; a duplicate-key insert is treated as an idempotent skip.
	ExternalRef string `gorm:"uniqueIndex;not null" json:"external_ref"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Booking) TableName() string { return "bookings" }

// OccurrenceRef derives the correlation id for one series occurrence.
func OccurrenceRef(seriesID snowflake.ID, start time.Time) string {
	return fmt.Sprintf("%d-%d", seriesID, start.Unix())
}
