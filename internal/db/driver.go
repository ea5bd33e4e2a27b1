// Package db stores pending flows and credentials in SQLite or PostgreSQL.
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/logger"

	// Database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DatabaseDriver names the database/sql driver in use.
type DatabaseDriver string

const (
	SQLite     DatabaseDriver = "sqlite3"
	PostgreSQL DatabaseDriver = "postgres"
)

// sqliteParams lets authorize-url, callback and serve share one database file
// from separate processes.
const sqliteParams = "_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"

// Pool bounds the connections one lockflow process keeps.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// DetectDriver picks PostgreSQL for postgres URLs and key=value DSNs and
// SQLite for everything else, including bare file names.
func DetectDriver(dsn string) DatabaseDriver {
	dsn = strings.ToLower(dsn)
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		return PostgreSQL
	}
	return SQLite
}

// PoolFor returns the pool limits for driver. An in-memory SQLite database
// lives as long as its single connection.
func PoolFor(driver DatabaseDriver, appEnv string) Pool {
	if driver == SQLite {
		return Pool{MaxOpen: 1, MaxIdle: 1}
	}
	if appEnv == config.EnvProd {
		return Pool{MaxOpen: 10, MaxIdle: 2, MaxLifetime: 5 * time.Minute}
	}
	return Pool{MaxOpen: 4, MaxIdle: 1, MaxLifetime: 5 * time.Minute}
}

// SQLiteDSN adds the shared-file parameters unless the caller set their own.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + sqliteParams
}

// OpenDatabase opens and pings the database named by cfg.DatabaseURL.
func OpenDatabase(cfg *config.Config) (*sql.DB, DatabaseDriver, error) {
	driver := DetectDriver(cfg.DatabaseURL)
	dsn := cfg.DatabaseURL
	if driver == SQLite {
		dsn = SQLiteDSN(dsn)
	}
	pool := PoolFor(driver, cfg.AppEnv)

	logger.Debug("Opening database", "driver", string(driver), "max_open", pool.MaxOpen)

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, driver, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, driver, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := initSession(db, driver); err != nil {
		_ = db.Close()
		return nil, driver, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, driver, nil
}

// initSession sets per-connection options. Timestamps are stored in UTC.
func initSession(db *sql.DB, driver DatabaseDriver) error {
	switch driver {
	case SQLite:
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// Best effort; :memory: ignores journal_mode.
		for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL"} {
			if _, err := db.Exec(pragma); err != nil {
				logger.Warn("Failed to set SQLite pragma", "pragma", pragma, "error", err)
			}
		}
	case PostgreSQL:
		if _, err := db.Exec("SET timezone = 'UTC'"); err != nil {
			logger.Warn("Failed to set PostgreSQL timezone", "error", err)
		}
	}
	return nil
}

// GetPlaceholder returns the driver's placeholder for the given position.
func GetPlaceholder(driver DatabaseDriver, position int) string {
	if driver == PostgreSQL {
		return fmt.Sprintf("$%d", position)
	}
	return "?"
}

// Rebind rewrites ? placeholders for the driver.
func Rebind(driver DatabaseDriver, query string) string {
	if driver != PostgreSQL {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(GetPlaceholder(driver, n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
