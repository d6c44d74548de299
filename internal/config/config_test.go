package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Server.APIPrefix)
	assert.Equal(t, "task_management_system", cfg.Database.MySQL.Name)
	assert.Equal(t, "utf8mb4", cfg.Database.MySQL.Charset)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "deepseek-v3-1-terminus", cfg.AI.ArkModel)
	assert.False(t, cfg.MockMode)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "8080"
database:
  mysql:
    host: "db.internal"
    port: 3307
ai:
  timeout: 3s
mock_mode: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.MySQL.Host)
	assert.Equal(t, 3307, cfg.Database.MySQL.Port)
	assert.Equal(t, 3*time.Second, cfg.AI.Timeout)
	assert.True(t, cfg.MockMode)
}

func TestLoad_LegacyEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  mysql:
    host: "from-file"
`)
	t.Setenv("DB_HOST", "from-env")
	t.Setenv("DB_NAME", "tasks")
	t.Setenv("ARK_API_KEY", "ark-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.MySQL.Host)
	assert.Equal(t, "tasks", cfg.Database.MySQL.Name)
	assert.Equal(t, "ark-key", cfg.AI.ArkAPIKey)
}

func TestMySQLConfig_DataSourceName(t *testing.T) {
	c := MySQLConfig{Host: "h", Port: 3306, User: "u", Password: "p", Name: "db", Charset: "utf8mb4"}
	dsn := c.DataSourceName()
	assert.Contains(t, dsn, "u:p@tcp(h:3306)/db?")
	assert.Contains(t, dsn, "charset=utf8mb4")
	assert.Contains(t, dsn, "parseTime=true")

	c.DSN = "explicit"
	assert.Equal(t, "explicit", c.DataSourceName())
}
