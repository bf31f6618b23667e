package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "taxiads_test")
}

func TestLoadConfig(t *testing.T) {
	t.Run("DefaultsApply", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "development", cfg.AppEnv)
		assert.Equal(t, "en", cfg.DefaultLanguage)
		assert.Equal(t, 5*time.Minute, cfg.ExpirationCooldown)
		assert.Equal(t, 2*time.Minute, cfg.ExpirationWatchdogTimeout)
		assert.Equal(t, 10*time.Second, cfg.ExpirationInitialDelay)
		assert.Equal(t, time.Hour, cfg.ExpirationInterval)
		assert.Equal(t, 5*time.Minute, cfg.AdminPollInterval)
	})

	t.Run("EnvOverridesDurations", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("EXPIRATION_COOLDOWN", "30s")
		t.Setenv("EXPIRATION_INTERVAL", "15m")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, cfg.ExpirationCooldown)
		assert.Equal(t, 15*time.Minute, cfg.ExpirationInterval)
	})

	t.Run("InvalidDurationIsAnError", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("EXPIRATION_COOLDOWN", "five minutes")

		_, err := LoadConfig()

		assert.Error(t, err)
	})

	t.Run("NegativeDurationIsAnError", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("EXPIRATION_WATCHDOG_TIMEOUT", "-1m")

		_, err := LoadConfig()

		assert.Error(t, err)
	})

	t.Run("MongoURIRequired", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "")
		t.Setenv("MONGODB_DATABASE", "taxiads_test")

		_, err := LoadConfig()

		assert.ErrorContains(t, err, "MONGODB_URI")
	})

	t.Run("DatabaseRequired", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("MONGODB_DATABASE", "")

		_, err := LoadConfig()

		assert.ErrorContains(t, err, "MONGODB_DATABASE")
	})

	t.Run("OpsChatRequiredWithToken", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("OPS_BOT_TOKEN", "123:abc")
		t.Setenv("OPS_CHAT_ID", "")

		_, err := LoadConfig()

		assert.ErrorContains(t, err, "OPS_CHAT_ID")
	})

	t.Run("OpsChatParsed", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("OPS_BOT_TOKEN", "123:abc")
		t.Setenv("OPS_CHAT_ID", "-1001234567890")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, int64(-1001234567890), cfg.OpsChatID)
	})

	t.Run("InvalidOpsChatID", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("OPS_CHAT_ID", "not-a-number")

		_, err := LoadConfig()

		assert.ErrorContains(t, err, "OPS_CHAT_ID")
	})
}
