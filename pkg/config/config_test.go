package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ROI_CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Equal(t, 365*24*time.Hour, cfg.Retention())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ROI_CONFIG_FILE", "")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestLoad_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roi.yaml")
	content := "port: 7070\ndatabase_driver: postgres\ndatabase_url: postgres://u:p@localhost/roi\nredis:\n  enabled: true\n  address: cache:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ROI_CONFIG_FILE", path)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	assert.Equal(t, "./data", cfg.DataDir)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ROI_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Port: 8000, DataDir: "./data", DatabaseDriver: DriverSQLite, DatabasePath: "a.db"}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.Port = 0
	assert.Error(t, c.Validate())

	c = base()
	c.DatabaseDriver = "POSTGRES"
	assert.Error(t, c.Validate(), "postgres without url")

	c.DatabaseURL = "postgres://localhost/roi"
	require.NoError(t, c.Validate())
	assert.Equal(t, DriverPostgres, c.DatabaseDriver)

	c = base()
	c.DatabaseDriver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.RetentionDays = -1
	assert.Error(t, c.Validate())
}
