// Package domain contains persistence models for customer conversations.
// The booking schema requires every booking to hang off a conversation;
// the processing engine finds or creates one per customer.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Conversation struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Channel       string       `gorm:"not null;default:'whatsapp'" json:"channel"`
	LastMessageAt *time.Time   `gorm:"" json:"last_message_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Conversation) TableName() string { return "conversations" }
