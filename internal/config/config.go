package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"

	"github.com/lottolabs/sortitio/pkg/validation"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int
	// Ledger configuration
	RPCURL     string
	ProgramID  string
	Commitment string
	// Wallet configuration; empty means read-only mode
	KeypairPath string
	// History cache configuration; empty disables the cache
	HistoryDBPath string
	// Token registry configuration; empty disables symbol resolution
	TokenRegistryURL string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development:      getEnvAsBool("DEVELOPMENT", false),
		APIPort:          getEnvAsInt("API_PORT", 7311),
		RPCURL:           getEnv("RPC_URL", "https://api.devnet.solana.com"),
		ProgramID:        getEnv("PROGRAM_ID", ""),
		Commitment:       getEnv("COMMITMENT", "confirmed"),
		KeypairPath:      getEnv("KEYPAIR_PATH", ""),
		HistoryDBPath:    getEnv("HISTORY_DB_PATH", ""),
		TokenRegistryURL: getEnv("TOKEN_REGISTRY_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}

	if c.ProgramID == "" {
		return fmt.Errorf("PROGRAM_ID is required")
	}
	if err := validation.ValidateAddress(c.ProgramID); err != nil {
		return fmt.Errorf("invalid PROGRAM_ID: %w", err)
	}

	switch c.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("COMMITMENT must be processed, confirmed or finalized, got %q", c.Commitment)
	}

	return nil
}

// Program returns the program id as a public key. Call Validate first.
func (c *Config) Program() solana.PublicKey {
	key, _ := validation.ParseAddress(c.ProgramID)
	return key
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
