package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "JWT_REFRESH_SECRET", "OPS_TOKEN_HASH",
		"ENVIRONMENT", "HOLD_TTL_HOURS", "GRACE_PERIOD_MINUTES",
		"PAYMENT_DEADLINE_OFFSET_MINUTES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("Requires JWT Secrets", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/bookings")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("Full Configuration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/bookings")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Positive(t, cfg.Booking.HoldTTL)
	})

	t.Run("Production Requires Ops Token Hash", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/bookings")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
		t.Setenv("ENVIRONMENT", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPS_TOKEN_HASH")
	})
}

func TestLoadMaintenance(t *testing.T) {
	t.Run("Auth Secrets Are Not Required", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DATABASE_URL", "postgres://localhost/bookings")

		cfg, err := LoadMaintenance()
		require.NoError(t, err)
		assert.Positive(t, cfg.Booking.GracePeriod)
	})

	t.Run("Database Is Still Required", func(t *testing.T) {
		clearEnv(t)

		_, err := LoadMaintenance()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})
}
