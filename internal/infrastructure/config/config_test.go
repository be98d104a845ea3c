package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "storefront-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.Sweep.CheckoutTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 100, cfg.Sweep.BatchSize)
	assert.Equal(t, 30*time.Minute, cfg.Shipping.QuoteTTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.IsProduction())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_APP_PORT", "9090")
	t.Setenv("STOREFRONT_DATABASE_HOST", "db.internal")
	t.Setenv("STOREFRONT_SWEEP_CHECKOUT_TIMEOUT", "45m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 45*time.Minute, cfg.Sweep.CheckoutTimeout)
}

func TestProductionValidation(t *testing.T) {
	t.Setenv("STOREFRONT_APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("STOREFRONT_PAYMENT_MERCHANT_SECRET", "topsecret")
	t.Setenv("STOREFRONT_JWT_SECRET", "jwtsecret")
	t.Setenv("STOREFRONT_DATABASE_PASSWORD", "pgpass")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "h", Port: 5433, User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=d sslmode=disable", c.DSN())
}
