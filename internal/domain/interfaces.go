package domain

import (
	"context"
)

// ResultStore persists summary runs so that they can be fetched later.
type ResultStore interface {
	SaveRun(ctx context.Context, run *SummaryRun) error
	GetRun(ctx context.Context, id string) (*SummaryRun, error)
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	DeleteRun(ctx context.Context, id string) error
	// Health reports whether the store can currently be reached.
	Health(ctx context.Context) error
	Close() error
}

// ConfigManager handles application configuration
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetStoreConfig() *StoreConfig
	GetWindowConfig() WindowConfig
	Validate() error
	Reload() error
}
