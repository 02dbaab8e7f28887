package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bookflow/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, offering *domain.Offering) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO offerings (id, name, duration_min, buffer_before_min, buffer_after_min, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		offering.ID,
		offering.Name,
		offering.DurationMin,
		offering.BufferBeforeMin,
		offering.BufferAfterMin,
		offering.Active,
		offering.CreatedAt,
		offering.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Offering, error) {
	var offering domain.Offering
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, duration_min, buffer_before_min, buffer_after_min, active, created_at, updated_at
		 FROM offerings WHERE id = ?`,
		id,
	).Scan(&offering).Error
	if err != nil {
		return nil, err
	}
	if offering.ID == 0 {
		return nil, nil
	}
	return &offering, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Offering, error) {
	var offerings []domain.Offering
	err := db.WithContext(ctx).
		Model(&domain.Offering{}).
		Where("active = ?", true).
		Order("name ASC").
		Find(&offerings).Error
	if err != nil {
		return nil, err
	}
	return offerings, nil
}
