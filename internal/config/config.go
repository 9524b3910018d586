package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables once at process start and passed to constructors.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	OpenLibrary OpenLibraryConfig
	JSONBin     JSONBinConfig
	FileMirror  FileMirrorConfig
	JWT         JWTConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type CacheConfig struct {
	DefaultTTL time.Duration
}

type OpenLibraryConfig struct {
	BaseURL string
	Timeout time.Duration
}

// JSONBin mirroring is disabled when APIKey is empty.
type JSONBinConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// FileMirror sidecar appends created books to a local JSON file.
// Disabled when Path is empty.
type FileMirrorConfig struct {
	Path string
}

// JWT guards write endpoints. Empty secret disables the guard.
type JWTConfig struct {
	Secret string
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        GetEnv("APP_NAME", "Book Catalog API"),
			Environment: GetEnv("APP_ENV", "development"),
			Port:        GetEnv("APP_PORT", "8080"),
			Version:     GetEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     GetEnv("DB_USER", "postgres"),
			Password: GetEnv("DB_PASSWORD", ""),
			Database: GetEnv("DB_NAME", "bookcatalog"),
			SSLMode:  GetEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			DefaultTTL: getEnvDuration("CACHE_DEFAULT_TTL", 300*time.Second),
		},
		OpenLibrary: OpenLibraryConfig{
			BaseURL: GetEnv("OPENLIBRARY_BASE_URL", "https://openlibrary.org"),
			Timeout: getEnvDuration("OPENLIBRARY_TIMEOUT", 20*time.Second),
		},
		JSONBin: JSONBinConfig{
			BaseURL: GetEnv("JSONBIN_BASE_URL", "https://api.jsonbin.io/v3/b"),
			APIKey:  GetEnv("JSONBIN_API_KEY", ""),
			Timeout: getEnvDuration("JSONBIN_TIMEOUT", 30*time.Second),
		},
		FileMirror: FileMirrorConfig{
			Path: GetEnv("FILE_MIRROR_PATH", ""),
		},
		JWT: JWTConfig{
			Secret: GetEnv("JWT_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks invariants that would otherwise surface at runtime.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.JWT.Secret == "" {
			fmt.Println("WARNING: JWT_SECRET not set - write endpoints are unauthenticated")
		}
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("DB_MAX_CONNS must be >= DB_MIN_CONNS")
	}
	return nil
}

// GetEnv reads an environment variable with a fallback. Exported for the
// entrypoint, which needs APP_ENV before the full config is loaded.
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
