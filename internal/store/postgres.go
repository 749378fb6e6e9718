package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/database"
	"github.com/screening-outcome-classifier/internal/domain"
)

// PostgresStore keeps runs in PostgreSQL.
// It expects the schema to exist already, see database.MigrationRunner.
type PostgresStore struct {
	sqlStore
	conn *database.DB
}

// NewPostgresStore wraps an open connection.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{sqlStore: sqlStore{db: db, numbered: true}}, nil
}

// OpenPostgresStore connects using cfg and, when cfg.Migrate is set, brings
// the schema up to date first.
func OpenPostgresStore(ctx context.Context, cfg domain.StoreConfig, logger *logrus.Logger) (*PostgresStore, error) {
	conn, err := database.NewConnection(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Migrate {
		runner, err := database.NewMigrationRunner(conn.DB, logger)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if err := runner.Up(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	store, err := NewPostgresStore(conn.DB)
	if err != nil {
		conn.Close()
		return nil, err
	}
	store.conn = conn
	return store, nil
}

// Health checks the connection pool.
func (s *PostgresStore) Health(ctx context.Context) error {
	if s.conn != nil {
		return s.conn.Health(ctx)
	}
	return s.sqlStore.Health(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return s.sqlStore.Close()
}
