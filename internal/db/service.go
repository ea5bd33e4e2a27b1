package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/logger"
)

// Service wraps the database connection and provides methods for database operations
type Service struct {
	db      *sql.DB
	queries *Queries
	driver  DatabaseDriver
}

// NewService opens the database and applies the schema.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	db, driver, err := OpenDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("Database service initialized", "driver", string(driver))

	return &Service{
		db:      db,
		queries: New(db, driver),
		driver:  driver,
	}, nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Queries returns the queries instance
func (s *Service) Queries() *Queries {
	return s.queries
}

// DB returns the underlying database connection
func (s *Service) DB() *sql.DB {
	return s.db
}

// Driver returns the database driver type
func (s *Service) Driver() DatabaseDriver {
	return s.driver
}

// WithTx executes a function within a database transaction
func (s *Service) WithTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	queries := s.queries.WithTx(tx)
	if err := fn(queries); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
