package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screening-outcome-classifier/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManagerFromFile(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, domain.StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Store.ConnMaxLifetime)
	assert.Equal(t, "csv", cfg.Summary.Format)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.Equal(t, domain.WindowConfig{}, m.GetWindowConfig())
	assert.NoError(t, m.Validate())
}

func TestNewManager_Windows(t *testing.T) {
	path := writeConfig(t, `
classification:
  ci_prior: 0
  cancer_prior: 24
  normal_follow_up: null
server:
  port: 9090
store:
  driver: none
`)

	m, err := NewManagerFromFile(path)
	require.NoError(t, err)

	windows := m.GetWindowConfig()
	require.NotNil(t, windows.CIPrior)
	assert.Equal(t, 0, *windows.CIPrior)
	require.NotNil(t, windows.CancerPrior)
	assert.Equal(t, 24, *windows.CancerPrior)
	assert.Nil(t, windows.NormalFollowUp)
	assert.Nil(t, windows.BenignFollowUp)

	assert.Equal(t, 9090, m.GetServerConfig().Port)
	assert.Equal(t, domain.StoreDriverNone, m.GetStoreConfig().Driver)
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SOC_CLASSIFICATION_BENIGN_FOLLOW_UP", "36")
	t.Setenv("SOC_SERVER_PORT", "7070")
	t.Setenv("SOC_LOGGING_LEVEL", "debug")

	m, err := NewManagerFromFile(writeConfig(t, "classification:\n  benign_follow_up: 12\n"))
	require.NoError(t, err)

	require.NotNil(t, m.GetWindowConfig().BenignFollowUp)
	assert.Equal(t, 36, *m.GetWindowConfig().BenignFollowUp)
	assert.Equal(t, 7070, m.GetServerConfig().Port)
	assert.Equal(t, "debug", m.GetConfig().Logging.Level)
}

func TestNewManager_InvalidWindow(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"word", "classification:\n  ci_prior: soon\n", KeyCIPrior},
		{"fraction", "classification:\n  normal_follow_up: 1.5\n", KeyNormalFollowUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManagerFromFile(writeConfig(t, tt.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), "not a whole number of months")
		})
	}
}

func TestManager_Reload(t *testing.T) {
	path := writeConfig(t, "classification:\n  normal_follow_up: 12\n")
	m, err := NewManagerFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 12, *m.GetWindowConfig().NormalFollowUp)

	require.NoError(t, os.WriteFile(path, []byte("classification:\n  normal_follow_up: 24\n  cancer_prior: 0\n"), 0644))
	require.NoError(t, m.Reload())

	windows := m.GetWindowConfig()
	require.NotNil(t, windows.NormalFollowUp)
	assert.Equal(t, 24, *windows.NormalFollowUp)
	require.NotNil(t, windows.CancerPrior)
	assert.Equal(t, 0, *windows.CancerPrior)
}

func TestManager_ReloadKeepsCurrentOnError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparsable window", "classification:\n  normal_follow_up: later\n"},
		{"negative window", "classification:\n  normal_follow_up: -3\n"},
		{"invalid port", "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "classification:\n  normal_follow_up: 12\n")
			m, err := NewManagerFromFile(path)
			require.NoError(t, err)
			before := m.GetConfig()

			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			assert.Error(t, m.Reload())

			assert.Same(t, before, m.GetConfig())
			assert.Equal(t, 12, *m.GetWindowConfig().NormalFollowUp)
		})
	}
}

func TestNewManager_MissingFile(t *testing.T) {
	_, err := NewManagerFromFile(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{"negative window", func(c *domain.Config) { c.Classification.NormalFollowUp = domain.Months(-1) }, "classification windows"},
		{"bad port", func(c *domain.Config) { c.Server.Port = 0 }, "server port"},
		{"negative rate", func(c *domain.Config) { c.Server.RateLimit = -1 }, "rate limit"},
		{"unknown driver", func(c *domain.Config) { c.Store.Driver = "mongo" }, "store driver"},
		{"sqlite without path", func(c *domain.Config) { c.Store.Path = "" }, "store path"},
		{"postgres without dsn", func(c *domain.Config) { c.Store.Driver = domain.StoreDriverPostgres }, "store dsn"},
		{"negative workers", func(c *domain.Config) { c.Summary.Workers = -2 }, "workers"},
		{"bad format", func(c *domain.Config) { c.Summary.Format = "xlsx" }, "summary format"},
		{"empty cache", func(c *domain.Config) { c.Cache.MaxItems = 0 }, "cache"},
		{"bad level", func(c *domain.Config) { c.Logging.Level = "loud" }, "log level"},
		{"file without name", func(c *domain.Config) { c.Logging.Output = "file" }, "filename"},
		{"bad output", func(c *domain.Config) { c.Logging.Output = "syslog" }, "logging output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManagerFromFile(writeConfig(t, "{}\n"))
			require.NoError(t, err)

			tt.mutate(m.GetConfig())

			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		logger, err := NewLogger(domain.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
		assert.Equal(t, os.Stdout, logger.Out)
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger, err := NewLogger(domain.LoggingConfig{Level: "chatty", Format: "text"})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
		assert.Equal(t, os.Stderr, logger.Out)
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "soc.log")
		logger, err := NewLogger(domain.LoggingConfig{Level: "info", Format: "json", Output: "file", Filename: path})
		require.NoError(t, err)

		logger.Info("written")
		if f, ok := logger.Out.(*os.File); ok {
			require.NoError(t, f.Close())
		}

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"written"`)
	})
}
