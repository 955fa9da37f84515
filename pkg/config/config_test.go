package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, config.BackupNone, cfg.Backup.Provider)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, 2*time.Minute, cfg.Backup.Debounce)
	assert.Equal(t, "backups/agro-berry-data.json", cfg.Backup.GitHub.Path)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("BACKUP_PROVIDER", "github")
	t.Setenv("BACKUP_DEBOUNCE", "30s")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreRedis, cfg.Store.Driver)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, 30*time.Second, cfg.Backup.Debounce)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Backup.S3.UsePathStyle)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "agro", Password: "p@ss:1", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://agro:p%40ss%3A1@db:5432/inv?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
