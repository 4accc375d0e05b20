package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a recall service.
//
// It includes settings for:
//   - Memory store (durable persistence with in-process fallback)
//   - Embedding provider (optional, for semantic recall)
//   - Vector index (optional, for semantic recall)
//   - Recall behavior (timeouts, result limits, caching)
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./memories.db",
//	        },
//	    },
//	    Vector: core.VectorConfig{Enabled: true},
//	    Embedder: &core.EmbedderConfig{Provider: "mock"},
//	}
type Config struct {
	// Store contains memory store configuration.
	Store StoreConfig `json:"store"`

	// Embedder contains embedding provider configuration (optional).
	Embedder *EmbedderConfig `json:"embedder,omitempty"`

	// Vector contains vector index configuration.
	Vector VectorConfig `json:"vector"`

	// Recall contains recall behavior configuration.
	Recall RecallConfig `json:"recall"`
}

// StoreConfig contains configuration for the durable memory store.
//
// Supported providers: sqlite, postgres, mysql, memory
type StoreConfig struct {
	// Provider is the store provider name (sqlite, postgres, mysql, memory).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	Config map[string]interface{} `json:"config,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai, mock
type EmbedderConfig struct {
	// Provider is the embedding provider name (openai, mock).
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key,omitempty"`

	// Model is the embedding model name.
	Model string `json:"model,omitempty"`

	// BaseURL is the base URL for the API (optional).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the dimension of the embedding vectors.
	Dimensions int `json:"dimensions,omitempty"`
}

// VectorConfig contains configuration for the vector index.
type VectorConfig struct {
	// Enabled turns the in-process vector index on. Semantic recall
	// degrades to lexical matching when disabled.
	Enabled bool `json:"enabled"`
}

// RecallConfig contains recall behavior configuration.
type RecallConfig struct {
	// StrategyTimeout is the per-strategy time budget.
	// Default: 300ms.
	StrategyTimeout time.Duration `json:"strategy_timeout,omitempty"`

	// OverallTimeout bounds a whole Recall call.
	// Default: 2s.
	OverallTimeout time.Duration `json:"overall_timeout,omitempty"`

	// DefaultLimit is the result count when the caller sets none.
	// Default: 5.
	DefaultLimit int `json:"default_limit,omitempty"`

	// MaxLimit caps the caller-requested result count.
	// Default: 50.
	MaxLimit int `json:"max_limit,omitempty"`

	// CacheTTL enables per-strategy result caching when positive.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`
}

// Default recall behavior.
const (
	DefaultStrategyTimeout = 300 * time.Millisecond
	DefaultOverallTimeout  = 2 * time.Second
	DefaultLimit           = 5
	DefaultMaxLimit        = 50
)

// withDefaults fills unset recall settings.
func (c RecallConfig) withDefaults() RecallConfig {
	if c.StrategyTimeout <= 0 {
		c.StrategyTimeout = DefaultStrategyTimeout
	}
	if c.OverallTimeout <= 0 {
		c.OverallTimeout = DefaultOverallTimeout
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = DefaultMaxLimit
	}
	return c
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - STORE_PROVIDER (sqlite, postgres, mysql, memory)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, etc.
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL
//   - VECTOR_INDEX_ENABLED (true/false)
//   - RECALL_STRATEGY_TIMEOUT_MS, RECALL_OVERALL_TIMEOUT_MS
//   - RECALL_DEFAULT_LIMIT, RECALL_MAX_LIMIT, RECALL_CACHE_TTL_MS
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("STORE_PROVIDER", "sqlite")

	storeConfig := make(map[string]interface{})
	switch provider {
	case "sqlite":
		storeConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./recall.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "memories"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       port,
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "recall"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "memories"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		storeConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "recall"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "memories"),
		}
	}

	config := &Config{
		Store: StoreConfig{
			Provider: provider,
			Config:   storeConfig,
		},
		Vector: VectorConfig{
			Enabled: os.Getenv("VECTOR_INDEX_ENABLED") == "true",
		},
		Recall: RecallConfig{
			StrategyTimeout: envDurationMs("RECALL_STRATEGY_TIMEOUT_MS"),
			OverallTimeout:  envDurationMs("RECALL_OVERALL_TIMEOUT_MS"),
			DefaultLimit:    envInt("RECALL_DEFAULT_LIMIT"),
			MaxLimit:        envInt("RECALL_MAX_LIMIT"),
			CacheTTL:        envDurationMs("RECALL_CACHE_TTL_MS"),
		},
	}

	if embedderProvider := os.Getenv("EMBEDDING_PROVIDER"); embedderProvider != "" {
		dims, _ := strconv.Atoi(os.Getenv("EMBEDDING_DIMENSIONS"))
		config.Embedder = &EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      os.Getenv("EMBEDDING_MODEL"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRecallError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewRecallError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// The store provider must be one of the known backends and a configured
// embedder must name a known provider.
func (c *Config) Validate() error {
	switch c.Store.Provider {
	case "sqlite", "postgres", "mysql", "memory":
	case "":
		return NewRecallError("Validate", ErrInvalidConfig)
	default:
		return NewRecallError("Validate", fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, c.Store.Provider))
	}

	if c.Embedder != nil {
		switch c.Embedder.Provider {
		case "openai", "mock":
		default:
			return NewRecallError("Validate", fmt.Errorf("%w: unknown embedder provider %q", ErrInvalidConfig, c.Embedder.Provider))
		}
	}

	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envInt(key string) int {
	n, _ := strconv.Atoi(os.Getenv(key))
	return n
}

func envDurationMs(key string) time.Duration {
	return time.Duration(envInt(key)) * time.Millisecond
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
