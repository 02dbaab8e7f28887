// Package seed bootstraps reference data so a fresh install is usable
// without manual setup.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/bookflow/internal/catalog/domain"
	"gorm.io/gorm"
)

const (
	defaultOfferingName     = "General appointment"
	defaultOfferingDuration = 30
)

// EnsureDefaultOffering creates a catalog offering when none exist, so
// series without an explicit offering have something to point at.
func EnsureDefaultOffering(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogdomain.Offering{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		offering := catalogdomain.Offering{
			ID:          node.Generate(),
			Name:        defaultOfferingName,
			DurationMin: defaultOfferingDuration,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&offering).Error
	})
}
