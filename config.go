package orbex

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything a Client needs to sign and submit transactions.
type Config struct {
	// GatewayURL is the HTTP base of the venue gateway, e.g. "https://gw.orbex.io".
	GatewayURL string `validate:"required,url"`
	// WebsocketURL is the market stream endpoint. Optional; the stream is
	// only dialed when a subscription is requested.
	WebsocketURL string `validate:"omitempty,uri"`
	// ChainID identifies the ledger, e.g. "orbex-devnet".
	ChainID string `validate:"required"`
	// PrivateKeyHex is the agent's secp256k1 key as 64 hex characters,
	// with or without a 0x prefix.
	PrivateKeyHex string `validate:"required"`
	// AccountHRP is the bech32 prefix for account addresses.
	AccountHRP string `validate:"required,lowercase"`

	// GasLimit overrides the per-transaction gas limit. Zero means default.
	GasLimit uint64
	// UnorderedWindow is the validity window for unordered transactions.
	// Zero means default. The gateway rejects long windows.
	UnorderedWindow time.Duration
}

var validate = validator.New()

// Validate checks the config. NewClient calls it; it is exported for callers
// that assemble a Config from their own sources.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfigFromEnv builds a Config from environment variables, loading a
// .env file first when one is present:
//
//	ORBEX_GATEWAY_URL       gateway HTTP base (required)
//	ORBEX_WS_URL            market stream endpoint
//	ORBEX_CHAIN_ID          chain ID (required)
//	ORBEX_PRIVATE_KEY       agent private key hex (required)
//	ORBEX_ACCOUNT_HRP       bech32 prefix (default "orb")
//	ORBEX_GAS_LIMIT         gas limit override
//	ORBEX_UNORDERED_WINDOW  unordered validity window, e.g. "10s"
func LoadConfigFromEnv() (Config, error) {
	// A missing .env file is not an error; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		GatewayURL:    os.Getenv("ORBEX_GATEWAY_URL"),
		WebsocketURL:  os.Getenv("ORBEX_WS_URL"),
		ChainID:       os.Getenv("ORBEX_CHAIN_ID"),
		PrivateKeyHex: os.Getenv("ORBEX_PRIVATE_KEY"),
		AccountHRP:    os.Getenv("ORBEX_ACCOUNT_HRP"),
	}
	if cfg.AccountHRP == "" {
		cfg.AccountHRP = AccountHRP
	}
	if v := os.Getenv("ORBEX_GAS_LIMIT"); v != "" {
		gasLimit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ORBEX_GAS_LIMIT: %w", err)
		}
		cfg.GasLimit = gasLimit
	}
	if v := os.Getenv("ORBEX_UNORDERED_WINDOW"); v != "" {
		window, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ORBEX_UNORDERED_WINDOW: %w", err)
		}
		cfg.UnorderedWindow = window
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
