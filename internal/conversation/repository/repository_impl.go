package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/conversation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, conversation *domain.Conversation) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO conversations (id, customer_id, channel, last_message_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		conversation.ID,
		conversation.CustomerID,
		conversation.Channel,
		conversation.LastMessageAt,
		conversation.CreatedAt,
		conversation.UpdatedAt,
	).Error
}

func (r *repo) FindByCustomerID(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, channel, last_message_at, created_at, updated_at
		 FROM conversations
		 WHERE customer_id = ?
		 ORDER BY created_at DESC
		 LIMIT 1`,
		customerID,
	).Scan(&conversation).Error
	if err != nil {
		return nil, err
	}
	if conversation.ID == 0 {
		return nil, nil
	}
	return &conversation, nil
}

func (r *repo) Touch(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE conversations SET last_message_at = ?, updated_at = ? WHERE id = ?`,
		at,
		at,
		id,
	).Error
}
