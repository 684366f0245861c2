package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	ConnectTimeout      time.Duration
	SlowQueryThreshold  time.Duration
	HealthCheckInterval time.Duration
	MigrationsPath      string
	EnableQueryLogging  bool
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider      string // "memory" or "redis"
	TTL           time.Duration
	MaxKeys       int
	RedisURL      string
	RedisDB       int
	RedisPassword string
	PoolSize      int
}

// AuthConfig holds authentication configuration. This service only verifies
// bearer tokens issued elsewhere; it never mints them.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load reads configuration from the environment, with .env support for local
// development. Missing required values fail fast.
func Load() (*Config, error) {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Server:   loadServerConfig(env),
		Database: loadDatabaseConfig(env),
		Cache:    loadCacheConfig(env),
		Auth:     loadAuthConfig(),
		Logging:  loadLoggingConfig(env),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "8080"),
		Host:            getEnv("HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("SERVER_MAX_HEADER_BYTES", 1<<20),
	}
}

func loadDatabaseConfig(env string) DatabaseConfig {
	cfg := DatabaseConfig{
		URL:                 getEnv("DATABASE_URL", ""),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		ConnectTimeout:      getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "migrations"),
		EnableQueryLogging:  getBoolEnv("DB_ENABLE_QUERY_LOGGING", env != "production"),
	}

	if env == "production" {
		if cfg.MaxOpenConns < 50 {
			cfg.MaxOpenConns = 50
		}
		if cfg.MaxIdleConns < 20 {
			cfg.MaxIdleConns = 20
		}
	}

	return cfg
}

func loadCacheConfig(env string) CacheConfig {
	provider := getEnv("CACHE_PROVIDER", "memory")
	if env == "production" && os.Getenv("CACHE_PROVIDER") == "" && os.Getenv("REDIS_URL") != "" {
		provider = "redis"
	}

	return CacheConfig{
		Provider:      provider,
		TTL:           getDurationEnv("CACHE_TTL", 15*time.Minute),
		MaxKeys:       getIntEnv("CACHE_MAX_KEYS", 10000),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PoolSize:      getIntEnv("REDIS_POOL_SIZE", 10),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	format := "json"
	if env == "development" {
		format = "console"
	}

	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", format),
	}
}

// Validate checks cross-field requirements that the loaders cannot default.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Cache.Provider != "memory" && c.Cache.Provider != "redis" {
		return fmt.Errorf("CACHE_PROVIDER must be 'memory' or 'redis', got %q", c.Cache.Provider)
	}

	if c.Cache.Provider == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
	}

	if c.Server.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
