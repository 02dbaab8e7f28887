package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, conversation *Conversation) error
	FindByCustomerID(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*Conversation, error)
	Touch(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
}
