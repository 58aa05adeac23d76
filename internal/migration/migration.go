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
	customerdomain "github.com/smallbiznis/launchpad/internal/customer/domain"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	pricedomain "github.com/smallbiznis/launchpad/internal/price/domain"
	productdomain "github.com/smallbiznis/launchpad/internal/product/domain"
	profiledomain "github.com/smallbiznis/launchpad/internal/profile/domain"
	subscriptiondomain "github.com/smallbiznis/launchpad/internal/subscription/domain"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Models lists every table owned by the application, in dependency order.
func Models() []any {
	return []any{
		&organizationdomain.Organization{},
		&organizationdomain.OrganizationMember{},
		&profiledomain.Profile{},
		&customerdomain.Customer{},
		&productdomain.Product{},
		&pricedomain.Price{},
		&subscriptiondomain.Subscription{},
		&paymentdomain.WebhookEvent{},
	}
}

// Run applies the schema. Postgres uses the versioned SQL migrations; other
// dialects, used for local development, are auto-migrated from the models.
func Run(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if conn.Dialector.Name() != "postgres" {
		return conn.AutoMigrate(Models()...)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

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
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
