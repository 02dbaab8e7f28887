// Package migration creates the booking schema on startup so local and
// self-hosted installs work out of the box.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	bookingdomain "github.com/smallbiznis/bookflow/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/bookflow/internal/catalog/domain"
	conversationdomain "github.com/smallbiznis/bookflow/internal/conversation/domain"
	customerdomain "github.com/smallbiznis/bookflow/internal/customer/domain"
	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// RunMigrations applies the embedded SQL migrations against PostgreSQL.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	return nil
}

// AutoMigrate builds the schema from the models for databases the SQL
// migrations do not target (sqlite and mysql, mostly development setups).
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&customerdomain.Customer{},
		&catalogdomain.Offering{},
		&conversationdomain.Conversation{},
		&seriesdomain.Series{},
		&bookingdomain.Booking{},
	)
}
