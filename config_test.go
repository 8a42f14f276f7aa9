package orbex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ORBEX_GATEWAY_URL", "http://localhost:8080")
	t.Setenv("ORBEX_CHAIN_ID", "orbex-devnet")
	t.Setenv("ORBEX_PRIVATE_KEY", testKeyHex)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Run("Minimal environment with defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", cfg.GatewayURL)
		assert.Equal(t, "orbex-devnet", cfg.ChainID)
		assert.Equal(t, AccountHRP, cfg.AccountHRP)
		assert.Zero(t, cfg.GasLimit)
		assert.Zero(t, cfg.UnorderedWindow)
	})

	t.Run("Full environment", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORBEX_WS_URL", "wss://stream.orbex.io/api/v1/ws")
		t.Setenv("ORBEX_ACCOUNT_HRP", "orbtest")
		t.Setenv("ORBEX_GAS_LIMIT", "300000")
		t.Setenv("ORBEX_UNORDERED_WINDOW", "5s")

		cfg, err := LoadConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "wss://stream.orbex.io/api/v1/ws", cfg.WebsocketURL)
		assert.Equal(t, "orbtest", cfg.AccountHRP)
		assert.Equal(t, uint64(300000), cfg.GasLimit)
		assert.Equal(t, 5*time.Second, cfg.UnorderedWindow)
	})

	t.Run("Missing required variable", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORBEX_GATEWAY_URL", "")

		_, err := LoadConfigFromEnv()
		assert.Error(t, err)
	})

	t.Run("Malformed gas limit", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORBEX_GAS_LIMIT", "lots")

		_, err := LoadConfigFromEnv()
		assert.ErrorContains(t, err, "ORBEX_GAS_LIMIT")
	})

	t.Run("Malformed window", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ORBEX_UNORDERED_WINDOW", "soon")

		_, err := LoadConfigFromEnv()
		assert.ErrorContains(t, err, "ORBEX_UNORDERED_WINDOW")
	})
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		GatewayURL:    "http://localhost:8080",
		ChainID:       "orbex-devnet",
		PrivateKeyHex: testKeyHex,
		AccountHRP:    "orb",
	}
	require.NoError(t, valid.Validate())

	t.Run("Gateway URL must be a URL", func(t *testing.T) {
		cfg := valid
		cfg.GatewayURL = "not a url"
		assert.Error(t, cfg.Validate())
	})

	t.Run("HRP must be lowercase", func(t *testing.T) {
		cfg := valid
		cfg.AccountHRP = "ORB"
		assert.Error(t, cfg.Validate())
	})
}
