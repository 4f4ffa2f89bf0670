package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ChangeChannel is the NOTIFY channel the row-change triggers publish on.
const ChangeChannel = "row_changes"

// Options controls how InitDB connects.
type Options struct {
	DSN string
	Env string
	// PingTimeout bounds the whole connect-and-ping retry loop.
	PingTimeout time.Duration
}

// InitDB opens the database connection, verifies it and prepares the tables
// this service owns. Clinic tables (patients, appointment_calls) belong to
// the hosted database and are never migrated here.
func InitDB(ctx context.Context, opts Options, log *logger.Logger) (*gorm.DB, error) {
	db, err := Open(postgres.Open(opts.DSN), opts.Env)
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	if err := testDatabaseConnection(ctx, db, opts.PingTimeout, log); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	if err := seedInitialData(db); err != nil {
		return nil, err
	}

	log.Info("Database initialized successfully.")
	return db, nil
}

// Open builds a gorm handle over the given dialector.
func Open(dialector gorm.Dialector, env string) (*gorm.DB, error) {
	logMode := gormlogger.Silent
	if env == "development" {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}
	return db, nil
}

// configureConnectionPool sets up the connection pool settings for the database.
func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// testDatabaseConnection pings with exponential backoff so a database that is
// still starting does not fail the boot.
func testDatabaseConnection(ctx context.Context, db *gorm.DB, limit time.Duration, log *logger.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = limit
	if limit <= 0 {
		b.MaxElapsedTime = 30 * time.Second
	}

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return sqlDB.PingContext(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).Warnf("database not reachable, retrying in %s", wait)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// runMigrations performs schema migrations for the account tables.
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Profile{},
	)
}

// seedInitialData populates the database with initial data.
func seedInitialData(db *gorm.DB) error {
	if err := models.SeedRoles(db); err != nil {
		return errors.Wrap(err, "failed to seed roles")
	}
	return nil
}

const notifyFunctionSQL = `CREATE OR REPLACE FUNCTION notify_row_change() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('` + ChangeChannel + `', json_build_object('table', TG_TABLE_NAME, 'op', TG_OP)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql`

// InstallChangeTriggers makes every write to the given tables emit a
// NOTIFY on ChangeChannel. Statement-level triggers keep bulk updates to one
// notification.
func InstallChangeTriggers(ctx context.Context, db *gorm.DB, tables ...string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(notifyFunctionSQL).Error; err != nil {
			return fmt.Errorf("failed to create notify function: %w", err)
		}
		for _, table := range tables {
			if !validIdentifier(table) {
				return fmt.Errorf("invalid table name %q", table)
			}
			trigger := table + "_row_changes"
			if err := tx.Exec(fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, trigger, table)).Error; err != nil {
				return fmt.Errorf("failed to drop trigger on %s: %w", table, err)
			}
			create := fmt.Sprintf(`CREATE TRIGGER %s AFTER INSERT OR UPDATE OR DELETE ON %s FOR EACH STATEMENT EXECUTE FUNCTION notify_row_change()`, trigger, table)
			if err := tx.Exec(create).Error; err != nil {
				return fmt.Errorf("failed to create trigger on %s: %w", table, err)
			}
		}
		return nil
	})
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return !strings.HasPrefix(name, "pg_")
}
