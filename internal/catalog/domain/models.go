// Package domain contains persistence models for the service catalog.
// Offerings are reference data: the processing engine only reads them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Offering struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"not null" json:"name"`
	DurationMin     int          `gorm:"not null;default:30" json:"duration_min"`
	BufferBeforeMin int          `gorm:"not null;default:0" json:"buffer_before_min"`
	BufferAfterMin  int          `gorm:"not null;default:0" json:"buffer_after_min"`
	Active          bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Offering) TableName() string { return "offerings" }

// Duration returns the appointment length.
func (o Offering) Duration() time.Duration {
	return time.Duration(o.DurationMin) * time.Minute
}

// BufferBefore returns preparation time reserved before the appointment.
func (o Offering) BufferBefore() time.Duration {
	return time.Duration(o.BufferBeforeMin) * time.Minute
}

// BufferAfter returns cleanup time reserved after the appointment.
func (o Offering) BufferAfter() time.Duration {
	return time.Duration(o.BufferAfterMin) * time.Minute
}
