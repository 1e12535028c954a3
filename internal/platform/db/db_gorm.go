// Package db opens the GORM connection and holds shared query and error helpers.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authorentity "book_catalog/internal/feature/authors/domain/entity"
	bookentity "book_catalog/internal/feature/books/domain/entity"
	userentity "book_catalog/internal/feature/users/domain/entity"
	"book_catalog/internal/platform/config"
)

const connectTimeout = 60 * time.Second

// retryInterval is a var so tests can shorten it.
var retryInterval = 3 * time.Second

// Opener opens a connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// BuildDSN returns a PostgreSQL keyword/value DSN. A Cloud SQL instance name
// takes precedence over host and port.
func BuildDSN(cfg config.DBConfig) string {
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceConnectionName != "" {
		host = "/cloudsql/" + cfg.InstanceConnectionName
		port = "5432"
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host, port, cfg.User, cfg.Password, cfg.Name, sslmode)
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// sqliteDriver is go-sqlite3 with a per-connection hook, so every pooled
// connection enforces foreign keys and can fold Unicode case.
const sqliteDriver = "sqlite3_catalog"

// foldFunc lowercases with Unicode rules; SQLite's LOWER() only folds ASCII.
const foldFunc = "fold"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			if _, err := conn.Exec("PRAGMA foreign_keys = ON", nil); err != nil {
				return err
			}
			return conn.RegisterFunc(foldFunc, strings.ToLower, true)
		},
	})
}

// OpenSQLite opens a SQLite database with foreign keys enforced on every connection.
// ":memory:" is pinned to a single connection so every query sees the same database.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: sqliteDriver, DSN: path}), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	var fk int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		return nil, fmt.Errorf("check sqlite foreign keys: %w", err)
	}
	if fk != 1 {
		return nil, errors.New("sqlite foreign keys are not enforced")
	}
	return db, nil
}

// OpenDB connects to the configured database and runs migrations when enabled.
func OpenDB(cfg config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = OpenSQLite(cfg.SQLitePath)
	default:
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, openPostgres)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("database connected", "driver", cfg.Driver)

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userentity.User{},
		&authorentity.Author{},
		&bookentity.Book{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Checker adapts Ping to the readiness handler.
func Checker(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not configured")
		}
		return Ping(ctx, db)
	}
}
