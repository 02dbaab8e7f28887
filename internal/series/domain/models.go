// Package domain contains persistence models for recurring appointment series.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/recurrence"
	"gorm.io/datatypes"
)

// SeriesStatus represents lifecycle states for a recurring series.
type SeriesStatus string

const (
	SeriesStatusActive    SeriesStatus = "active"
	SeriesStatusPaused    SeriesStatus = "paused"
	SeriesStatusCompleted SeriesStatus = "completed"
	SeriesStatusCancelled SeriesStatus = "cancelled"
)

// Terminal reports whether no further bookings may be created for the series.
func (s SeriesStatus) Terminal() bool {
	return s == SeriesStatusCompleted || s == SeriesStatusCancelled
}

// Series drives repeated booking creation for one customer.
// Terminal rows are never deleted; they persist for history.
type Series struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	ServiceID  *snowflake.ID `gorm:"index" json:"service_id,omitempty"`
	RoutineID  *snowflake.ID `gorm:"" json:"routine_id,omitempty"`

	Pattern recurrence.Pattern `gorm:"type:text;not null" json:"pattern"`

	// Interval multiplies the pattern's base unit. Column avoids the
	// INTERVAL keyword so raw SQL stays portable.
	Interval int `gorm:"column:recur_interval;not null;default:1" json:"interval"`

	StartDate time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate   *time.Time `gorm:"" json:"end_date,omitempty"`

	// OccurrencesCount is the optional upper bound; OccurrencesCompleted
	// is monotonically non-decreasing.
	OccurrencesCount     *int `gorm:"" json:"occurrences_count,omitempty"`
	OccurrencesCompleted int  `gorm:"not null;default:0" json:"occurrences_completed"`

	Status    SeriesStatus      `gorm:"type:text;not null;index" json:"status"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Series) TableName() string { return "recurring_series" }

// Exhausted reports whether either series boundary has been reached.
func (s *Series) Exhausted(now time.Time) bool {
	if s.OccurrencesCount != nil && s.OccurrencesCompleted >= *s.OccurrencesCount {
		return true
	}
	if s.EndDate != nil && s.EndDate.Before(now) {
		return true
	}
	return false
}
