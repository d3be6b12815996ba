package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fartswap/fartswap-core/internal/constants"
)

type Config struct {
	// RPC settings
	RPCUrl     string
	Commitment string

	// Upstream lists
	TokenListURL        string
	PoolListURL         string
	TokenCacheTTL       time.Duration
	PoolRefreshInterval time.Duration
	IncludeUnofficial   bool

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Swap execution
	ConfirmTimeout   time.Duration
	SubmitAttempts   int
	DefaultSlippage  string
	WalletPrivateKey string

	// Redis settings
	RedisAddr string

	// API settings
	APIAddr            string
	APIKey             string
	DevMode            bool
	SessionIdleTimeout time.Duration

	LogLevel string
}

func Load() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		// RPC
		RPCUrl:     v.GetString("SOLANA_RPC_URL"),
		Commitment: v.GetString("COMMITMENT"),

		// Lists
		TokenListURL:        v.GetString("TOKEN_LIST_URL"),
		PoolListURL:         v.GetString("POOL_LIST_URL"),
		TokenCacheTTL:       v.GetDuration("TOKEN_CACHE_TTL"),
		PoolRefreshInterval: v.GetDuration("POOL_REFRESH_INTERVAL"),
		IncludeUnofficial:   v.GetBool("POOL_INCLUDE_UNOFFICIAL"),

		// HTTP
		HTTPTimeout:  v.GetDuration("HTTP_TIMEOUT"),
		MaxRetries:   v.GetInt("MAX_RETRIES"),
		RetryBackoff: v.GetDuration("RETRY_BACKOFF"),

		// Swap
		ConfirmTimeout:   v.GetDuration("CONFIRM_TIMEOUT"),
		SubmitAttempts:   v.GetInt("SUBMIT_ATTEMPTS"),
		DefaultSlippage:  strings.TrimSpace(v.GetString("DEFAULT_SLIPPAGE")),
		WalletPrivateKey: v.GetString("WALLET_PRIVATE_KEY"),

		// Redis
		RedisAddr: v.GetString("REDIS_ADDR"),

		// API
		APIAddr:            v.GetString("API_ADDR"),
		APIKey:             v.GetString("API_KEY"),
		DevMode:            v.GetBool("DEV_MODE"),
		SessionIdleTimeout: v.GetDuration("SESSION_IDLE_TIMEOUT"),

		LogLevel: v.GetString("LOG_LEVEL"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	v.SetDefault("COMMITMENT", constants.CommitmentConfirmed)
	v.SetDefault("TOKEN_LIST_URL", constants.TokenListURL)
	v.SetDefault("POOL_LIST_URL", constants.PoolListURL)
	v.SetDefault("TOKEN_CACHE_TTL", 10*time.Minute)
	v.SetDefault("POOL_REFRESH_INTERVAL", time.Duration(0))
	v.SetDefault("POOL_INCLUDE_UNOFFICIAL", false)
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("RETRY_BACKOFF", 1*time.Second)
	v.SetDefault("CONFIRM_TIMEOUT", 60*time.Second)
	v.SetDefault("SUBMIT_ATTEMPTS", constants.DefaultSubmitAttempts)
	v.SetDefault("DEFAULT_SLIPPAGE", constants.DefaultSlippage)
	v.SetDefault("WALLET_PRIVATE_KEY", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("API_ADDR", ":8090")
	v.SetDefault("API_KEY", "")
	v.SetDefault("DEV_MODE", false)
	v.SetDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
}

// Validate reports the first setting that would make the service misbehave.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCUrl) == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	switch c.Commitment {
	case constants.CommitmentProcessed, constants.CommitmentConfirmed, constants.CommitmentFinalized:
	default:
		return fmt.Errorf("COMMITMENT must be processed, confirmed or finalized, got %q", c.Commitment)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("CONFIRM_TIMEOUT must be > 0")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be >= 0")
	}
	if c.SubmitAttempts < 1 {
		return fmt.Errorf("SUBMIT_ATTEMPTS must be >= 1")
	}
	if c.TokenCacheTTL < 0 {
		return fmt.Errorf("TOKEN_CACHE_TTL must be >= 0")
	}
	if c.PoolRefreshInterval < 0 {
		return fmt.Errorf("POOL_REFRESH_INTERVAL must be >= 0")
	}
	s, err := decimal.NewFromString(c.DefaultSlippage)
	if err != nil {
		return fmt.Errorf("DEFAULT_SLIPPAGE: %w", err)
	}
	if s.IsNegative() || s.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("DEFAULT_SLIPPAGE must be between 0 and 100")
	}
	return nil
}
