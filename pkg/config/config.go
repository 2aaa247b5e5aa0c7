package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Storage configuration
	Storage StorageConfig `mapstructure:"storage"`

	// Embedding configuration
	Embedding EmbeddingConfig `mapstructure:"embedding"`

	// LLM configuration for answer synthesis
	LLM LLMConfig `mapstructure:"llm"`

	// Retrieval configuration
	Retrieval RetrievalConfig `mapstructure:"retrieval"`

	// Ingest configuration
	Ingest IngestConfig `mapstructure:"ingest"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// StorageConfig holds chunk store configuration
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // memory, badger, qdrant, neo4j

	// Badger settings
	Path string `mapstructure:"path"`

	// Qdrant settings
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api_key"`
	Collection string `mapstructure:"collection"`

	// Neo4j settings
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig holds answer-synthesis model configuration
type LLMConfig struct {
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// RetrievalConfig holds default retrieval knobs
type RetrievalConfig struct {
	K             int     `mapstructure:"k"`
	Alpha         float64 `mapstructure:"alpha"`
	MaxCandidates int     `mapstructure:"max_candidates"`
}

// IngestConfig holds ingestion pipeline configuration
type IngestConfig struct {
	// ChunkWords is the word-window size per chunk
	ChunkWords int `mapstructure:"chunk_words"`
	// ChunkOverlap is the number of words shared between adjacent chunks
	ChunkOverlap int `mapstructure:"chunk_overlap"`
	// LedgerPath is the directory recording embedded content hashes
	LedgerPath string `mapstructure:"ledger_path"`
	// BatchTokenBudget caps the token total of one embedding batch
	BatchTokenBudget int `mapstructure:"batch_token_budget"`
	// ChunkTokenLimit skips chunks above this token estimate
	ChunkTokenLimit int `mapstructure:"chunk_token_limit"`
	// UploadBatchSize is the number of chunks per store upsert
	UploadBatchSize int `mapstructure:"upload_batch_size"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// AlertConfig holds operator alerting configuration
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// Storage defaults
	viper.SetDefault("storage.driver", "badger")
	viper.SetDefault("storage.path", "./quorum_db")
	viper.SetDefault("storage.collection", "mfs_collection")
	viper.SetDefault("storage.database", "neo4j")

	// Embedding defaults
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)

	// LLM defaults
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.max_tokens", 1024)

	// Retrieval defaults
	viper.SetDefault("retrieval.k", 10)
	viper.SetDefault("retrieval.alpha", 0.5)
	viper.SetDefault("retrieval.max_candidates", 10000)

	// Ingest defaults
	viper.SetDefault("ingest.chunk_words", 500)
	viper.SetDefault("ingest.chunk_overlap", 50)
	viper.SetDefault("ingest.ledger_path", "./quorum_ledger")
	viper.SetDefault("ingest.batch_token_budget", 200000)
	viper.SetDefault("ingest.chunk_token_limit", 10000)
	viper.SetDefault("ingest.upload_batch_size", 100)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	// Alert defaults
	viper.SetDefault("alert.enabled", false)
	viper.SetDefault("alert.smtp_port", 587)

	// Telemetry defaults
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", fmt.Sprintf("%s/.quorum/telemetry", home))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Embedding.APIKey = apiKey
		config.LLM.APIKey = apiKey
	}

	// Qdrant credentials
	if url := os.Getenv("QDRANT_URL"); url != "" {
		config.Storage.URL = url
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		config.Storage.APIKey = key
	}

	// Neo4j credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Storage.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	// Generic storage settings
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		config.Storage.Driver = driver
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		config.Storage.Path = path
	}

	// Server settings
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	// Telemetry settings
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
