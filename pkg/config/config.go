package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yiinote/ethereum-sdk/pkg/types"
)

// Config holds all SDK configuration. Components receive explicit structs
// built from this; there is no ambient configuration state.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Chain connection
	Network          string
	EthRPCURL        string
	WalletPrivateKey string

	// Collaborator endpoints
	OrderBookBaseURL string
	OrderBookWSURL   string
	FeeConfigURL     string

	// Exchange contracts
	ExchangeV2Address       string
	RoyaltiesRegistryAddr   string
	SeaportAddress          string
	LooksRareAddress        string
	ExchangeWrapperAddress  string
	ProtocolFeeRecipient    string

	// Fee schedule caching (0 disables the caching decorator)
	FeeCacheTTL time.Duration

	// Order event stream
	WSDialTimeout           time.Duration
	WSPongTimeout           time.Duration
	WSPingInterval          time.Duration
	WSReconnectInitialDelay time.Duration
	WSReconnectMaxDelay     time.Duration
	WSReconnectBackoffMult  float64
	WSEventBufferSize       int

	// Fill history storage
	StorageMode  string // "postgres" or "console"
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Chain defaults
		Network:          getEnvOrDefault("ETH_NETWORK", "mainnet"),
		EthRPCURL:        os.Getenv("ETH_RPC_URL"),
		WalletPrivateKey: os.Getenv("WALLET_PRIVATE_KEY"),

		// Collaborator defaults
		OrderBookBaseURL: getEnvOrDefault("ORDERBOOK_API_URL", "https://api.rarible.org/v0.1"),
		OrderBookWSURL:   getEnvOrDefault("ORDERBOOK_WS_URL", "wss://api.rarible.org/v0.1/subscribe"),
		FeeConfigURL:     getEnvOrDefault("FEE_CONFIG_URL", "https://api.rarible.org/v0.1/fees"),

		// Mainnet contract defaults; override per network.
		ExchangeV2Address:      getEnvOrDefault("EXCHANGE_V2_ADDRESS", "0x9757F2d2b135150BBeb65308D4a91804107cd8D6"),
		RoyaltiesRegistryAddr:  getEnvOrDefault("ROYALTIES_REGISTRY_ADDRESS", "0xEa90CFad1b8e030B8Fd3E9D412CfA122D08dE954"),
		SeaportAddress:         getEnvOrDefault("SEAPORT_ADDRESS", "0x00000000000000ADc04C56Bf30aC9d3c0aAF14dC"),
		LooksRareAddress:       getEnvOrDefault("LOOKSRARE_ADDRESS", "0x59728544B08AB483533076417FbBB2fD0B17CE3a"),
		ExchangeWrapperAddress: os.Getenv("EXCHANGE_WRAPPER_ADDRESS"),
		ProtocolFeeRecipient:   os.Getenv("PROTOCOL_FEE_RECIPIENT"),

		// Fee cache defaults
		FeeCacheTTL: getDurationOrDefault("FEE_CACHE_TTL", 0),

		// Order event stream defaults
		WSDialTimeout:           getDurationOrDefault("WS_DIAL_TIMEOUT", 10*time.Second),
		WSPongTimeout:           getDurationOrDefault("WS_PONG_TIMEOUT", 15*time.Second),
		WSPingInterval:          getDurationOrDefault("WS_PING_INTERVAL", 10*time.Second),
		WSReconnectInitialDelay: getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", 1*time.Second),
		WSReconnectMaxDelay:     getDurationOrDefault("WS_RECONNECT_MAX_DELAY", 30*time.Second),
		WSReconnectBackoffMult:  getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", 2.0),
		WSEventBufferSize:       getIntOrDefault("WS_EVENT_BUFFER_SIZE", 1000),

		// Storage defaults
		StorageMode:  getEnvOrDefault("STORAGE_MODE", "console"),
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "ethereum_sdk"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "ethereum_sdk"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "ethereum_sdk"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if _, ok := types.ChainID(c.Network); !ok {
		return fmt.Errorf("unknown network %q", c.Network)
	}

	if c.OrderBookBaseURL == "" {
		return fmt.Errorf("ORDERBOOK_API_URL cannot be empty")
	}

	if c.FeeConfigURL == "" {
		return fmt.Errorf("FEE_CONFIG_URL cannot be empty")
	}

	if c.StorageMode != "console" && c.StorageMode != "postgres" {
		return fmt.Errorf("STORAGE_MODE must be 'console' or 'postgres', got %q", c.StorageMode)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
