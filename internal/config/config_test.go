package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("env wins over flags", func(t *testing.T) {
		t.Setenv("DATABASE_URI", "postgres://env")
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("DELIVERY_FEE", "2.50")
		t.Setenv("CATALOG_CACHE_TTL", "1m")

		conf, err := load([]string{"-d", "postgres://flag", "-a", ":9090"})
		require.NoError(t, err)

		assert.Equal(t, "postgres://env", conf.DatabaseDSN)
		assert.Equal(t, ":9090", conf.RunAddress)
		assert.Equal(t, "env-secret", conf.JWTSecret)
		assert.Equal(t, "2.5", conf.DeliveryFee.String())
		assert.Equal(t, time.Minute, conf.CatalogCacheTTL)
	})

	t.Run("defaults", func(t *testing.T) {
		conf, err := load([]string{"-d", "postgres://flag", "-k", "flag-secret"})
		require.NoError(t, err)

		assert.Equal(t, "localhost:8080", conf.RunAddress)
		assert.Equal(t, "internal/db/migrations", conf.MigrationsDir)
		assert.Equal(t, "flag-secret", conf.JWTSecret)
		assert.Equal(t, "0.01", conf.LoyaltyRedeemRate.String())
		assert.Equal(t, 30*time.Second, conf.PriceWatchInterval)
		assert.Equal(t, "@every 1m", conf.CampaignsSchedule)
	})

	t.Run("missing dsn", func(t *testing.T) {
		_, err := load([]string{"-k", "secret"})
		assert.ErrorContains(t, err, "database DSN is not set")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		_, err := load([]string{"-d", "postgres://flag"})
		assert.ErrorContains(t, err, "JWT secret is not set")
	})

	t.Run("invalid decimal", func(t *testing.T) {
		t.Setenv("LOYALTY_REDEEM_RATE", "abc")
		_, err := load([]string{"-d", "postgres://flag", "-k", "secret"})
		assert.ErrorContains(t, err, "parse env config")
	})
}
