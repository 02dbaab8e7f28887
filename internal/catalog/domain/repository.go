package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, offering *Offering) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Offering, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Offering, error)
}

var (
	ErrInvalidOffering  = errors.New("invalid_offering")
	ErrOfferingNotFound = errors.New("offering_not_found")
)
