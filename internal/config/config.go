package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/screening-outcome-classifier/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. SOC_SERVER_PORT.
const EnvPrefix = "SOC"

// Window keys. They are read one by one so an absent key stays unset.
const (
	KeyCIPrior        = "classification.ci_prior"
	KeyCancerPrior    = "classification.cancer_prior"
	KeyNormalFollowUp = "classification.normal_follow_up"
	KeyBenignFollowUp = "classification.benign_follow_up"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	mu     sync.RWMutex
	file   string
	config *domain.Config
}

// NewManager loads configuration from config.yaml in the usual search paths,
// environment variables and defaults.
func NewManager() (*Manager, error) {
	return NewManagerFromFile("")
}

// NewManagerFromFile is NewManager with an explicit config file. An empty
// path searches the default locations.
func NewManagerFromFile(path string) (*Manager, error) {
	m := &Manager{file: path}
	config, err := m.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.config = config
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() (*domain.Config, error) {
	v := viper.New()

	if m.file != "" {
		v.SetConfigFile(m.file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/screening-outcome-classifier/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	windows, err := readWindows(v)
	if err != nil {
		return nil, err
	}
	config.Classification = windows

	return config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 32<<20)

	// Store defaults
	v.SetDefault("store.driver", domain.StoreDriverSQLite)
	v.SetDefault("store.path", filepath.Join(DefaultDataDir(), "runs.db"))
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_open_conns", 25)
	v.SetDefault("store.max_idle_conns", 5)
	v.SetDefault("store.conn_max_lifetime", "5m")
	v.SetDefault("store.migrate", true)

	// Summary defaults
	v.SetDefault("summary.workers", 0)
	v.SetDefault("summary.format", "csv")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_items", 256)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.filename", "")
}

// readWindows reads the optional month windows. Zero is a valid window and is
// kept distinct from an absent key.
func readWindows(v *viper.Viper) (domain.WindowConfig, error) {
	var (
		windows domain.WindowConfig
		err     error
	)
	for key, dst := range map[string]**int{
		KeyCIPrior:        &windows.CIPrior,
		KeyCancerPrior:    &windows.CancerPrior,
		KeyNormalFollowUp: &windows.NormalFollowUp,
		KeyBenignFollowUp: &windows.BenignFollowUp,
	} {
		if *dst, err = optionalInt(v, key); err != nil {
			return domain.WindowConfig{}, err
		}
	}
	return windows, nil
}

func optionalInt(v *viper.Viper, key string) (*int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q is not a whole number of months", key, raw)
	}
	return &n, nil
}

// DefaultDataDir is where local state such as the SQLite run store lives.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".screening-outcome-classifier"
	}
	return filepath.Join(homeDir, ".screening-outcome-classifier")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.GetConfig().Server
}

// GetStoreConfig returns result store configuration
func (m *Manager) GetStoreConfig() *domain.StoreConfig {
	return &m.GetConfig().Store
}

// GetWindowConfig returns the classification windows
func (m *Manager) GetWindowConfig() domain.WindowConfig {
	return m.GetConfig().Classification
}

// Reload reads the configuration again. The new configuration replaces the
// current one only if it loads and validates; otherwise the current one stays.
func (m *Manager) Reload() error {
	config, err := m.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	if err := validate(config); err != nil {
		return fmt.Errorf("reloaded configuration is invalid: %w", err)
	}

	m.mu.Lock()
	m.config = config
	m.mu.Unlock()
	return nil
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	return validate(m.GetConfig())
}

func validate(config *domain.Config) error {

	if err := config.Classification.Validate(); err != nil {
		return fmt.Errorf("invalid classification windows: %w", err)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %v", config.Server.RateLimit)
	}

	switch config.Store.Driver {
	case domain.StoreDriverNone:
	case domain.StoreDriverSQLite:
		if config.Store.Path == "" {
			return fmt.Errorf("store path is required for the sqlite driver")
		}
	case domain.StoreDriverPostgres:
		if config.Store.DSN == "" {
			return fmt.Errorf("store dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported store driver: %s", config.Store.Driver)
	}

	if config.Summary.Workers < 0 {
		return fmt.Errorf("invalid summary workers: %d", config.Summary.Workers)
	}
	switch strings.ToLower(config.Summary.Format) {
	case "csv", "json", "yaml", "yml":
	default:
		return fmt.Errorf("invalid summary format: %s", config.Summary.Format)
	}

	if config.Cache.Enabled && config.Cache.MaxItems <= 0 {
		return fmt.Errorf("cache max items must be positive when the cache is enabled")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch config.Logging.Output {
	case "stdout", "stderr":
	case "file":
		if config.Logging.Filename == "" {
			return fmt.Errorf("logging filename is required for file output")
		}
	default:
		return fmt.Errorf("invalid logging output: %s", config.Logging.Output)
	}

	return nil
}
