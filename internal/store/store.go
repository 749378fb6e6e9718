package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/screening-outcome-classifier/internal/domain"
)

// New opens the store selected by cfg.Driver. The none driver yields a nil
// store and no error.
func New(ctx context.Context, cfg domain.StoreConfig, logger *logrus.Logger) (domain.ResultStore, error) {
	switch cfg.Driver {
	case "", domain.StoreDriverNone:
		return nil, nil
	case domain.StoreDriverSQLite:
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.Path).Info("Using SQLite run store")
		return s, nil
	case domain.StoreDriverPostgres:
		s, err := OpenPostgresStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using PostgreSQL run store")
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
