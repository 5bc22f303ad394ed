package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Geolocation GeolocationConfig
	Search      SearchConfig
	RateLimit   RateLimitConfig
	Backfill    BackfillConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Timeout   time.Duration
	CacheTTL  time.Duration
	CacheSize int
}

// SearchConfig tunes the listing search pipeline
type SearchConfig struct {
	DefaultPageSize       int
	MaxPageSize           int
	BackfillPerRequest    int
	EnrichmentTimeout     time.Duration
	EnrichmentConcurrency int
}

// RateLimitConfig bounds search requests per client
type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// BackfillConfig drives the bulk coordinate sweep
type BackfillConfig struct {
	Schedule   string
	BatchSize  int
	BatchDelay time.Duration
	Workers    int
	ClaimTTL   time.Duration
	Timeout    time.Duration
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment wins.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "dhikcar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Geolocation: GeolocationConfig{
			Provider:  getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:    getEnv("GEOLOCATION_API_KEY", ""),
			BaseURL:   getEnv("GEOLOCATION_BASE_URL", "https://maps.googleapis.com/maps/api"),
			Timeout:   getEnvAsDuration("GEOCODE_TIMEOUT", 5*time.Second),
			CacheTTL:  getEnvAsDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
			CacheSize: getEnvAsInt("GEOCODE_CACHE_SIZE", 10000),
		},
		Search: SearchConfig{
			DefaultPageSize:       getEnvAsInt("SEARCH_DEFAULT_PAGE_SIZE", 5),
			MaxPageSize:           getEnvAsInt("SEARCH_MAX_PAGE_SIZE", 100),
			BackfillPerRequest:    getEnvAsInt("SEARCH_BACKFILL_PER_REQUEST", 3),
			EnrichmentTimeout:     getEnvAsDuration("ENRICHMENT_TIMEOUT", 3*time.Second),
			EnrichmentConcurrency: getEnvAsInt("ENRICHMENT_CONCURRENCY", 8),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Limit:   getEnvAsInt("RATE_LIMIT_SEARCH_LIMIT", 50),
			Window:  getEnvAsDuration("RATE_LIMIT_SEARCH_WINDOW", time.Minute),
		},
		Backfill: BackfillConfig{
			Schedule:   getEnv("BACKFILL_SCHEDULE", ""),
			BatchSize:  getEnvAsInt("BACKFILL_BATCH_SIZE", 10),
			BatchDelay: getEnvAsDuration("BACKFILL_BATCH_DELAY", 2*time.Second),
			Workers:    getEnvAsInt("BACKFILL_WORKERS", 4),
			ClaimTTL:   getEnvAsDuration("BACKFILL_CLAIM_TTL", 5*time.Minute),
			Timeout:    getEnvAsDuration("BACKFILL_TASK_TIMEOUT", 10*time.Second),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dhikcar-search"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the search pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Search.DefaultPageSize < 1 || c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf("invalid page size settings: default=%d max=%d", c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Geolocation.Timeout <= 0 {
		return fmt.Errorf("GEOCODE_TIMEOUT must be positive")
	}
	if c.Geolocation.Provider == "google" && c.Geolocation.APIKey == "" {
		return fmt.Errorf("GEOLOCATION_API_KEY is required for the google provider")
	}
	if c.Backfill.BatchSize < 1 || c.Backfill.Workers < 1 {
		return fmt.Errorf("backfill batch size and workers must be >= 1")
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
