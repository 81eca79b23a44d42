package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_PORT", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 30*time.Second, cfg.Redis.InventoryCacheTTL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("POSTGRES_MAX_CONNS", "25")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("AUTH_BCRYPT_COST", "not-a-number")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AdminSignupAndSeed(t *testing.T) {
	t.Setenv("AUTH_ALLOW_ADMIN_SIGNUP", "")
	t.Setenv("AUTH_ADMIN_EMAIL", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Auth.AllowAdminSignup)
	assert.Empty(t, cfg.Auth.Admin.Email)

	t.Setenv("AUTH_ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("AUTH_ADMIN_EMAIL", "root@example.com")
	t.Setenv("AUTH_ADMIN_PASSWORD", "changeme")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.AllowAdminSignup)
	assert.Equal(t, AdminSeed{Name: "Administrator", Email: "root@example.com", Password: "changeme"}, cfg.Auth.Admin)

	t.Setenv("AUTH_ADMIN_PASSWORD", "")
	_, err = Load()
	assert.ErrorContains(t, err, "AUTH_ADMIN_PASSWORD")
}
