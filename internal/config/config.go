package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database   DatabaseConfig
	Redis      RedisConfig
	Admin      AdminConfig
	Server     ServerConfig
	RateLimit  RateLimitConfig
	SelfHosted bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings for the event stream.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// AdminConfig holds back-office JWT authentication settings.
type AdminConfig struct {
	JWTSecret string //nolint:gosec // G117: JWT signing secret config
	TokenTTL  time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// RateLimitConfig holds request throttling settings. Public limits apply
// per client IP on the activation endpoints; brand limits apply per
// authenticated brand.
type RateLimitConfig struct {
	PublicPerSecond float64
	PublicBurst     int
	BrandPerSecond  float64
	BrandBurst      int
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (admin JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("KEYLINE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("KEYLINE_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("KEYLINE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	adminTTL, err := getEnvDuration("KEYLINE_ADMIN_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("KEYLINE_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("KEYLINE_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	publicRPS, err := getEnvFloat("KEYLINE_RATE_PUBLIC_PER_SECOND", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	publicBurst, err := getEnvInt("KEYLINE_RATE_PUBLIC_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	brandRPS, err := getEnvFloat("KEYLINE_RATE_BRAND_PER_SECOND", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	brandBurst, err := getEnvInt("KEYLINE_RATE_BRAND_BURST", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("KEYLINE_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("KEYLINE_CORS_ORIGINS", []string{"*"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("KEYLINE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("KEYLINE_DB_USER", "keyline"),
			Password: getEnv("KEYLINE_DB_PASSWORD", ""),
			DBName:   getEnv("KEYLINE_DB_NAME", "keyline_dev"),
			SSLMode:  getEnv("KEYLINE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("KEYLINE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("KEYLINE_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("KEYLINE_ADMIN_JWT_SECRET", ""),
			TokenTTL:  adminTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("KEYLINE_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		RateLimit: RateLimitConfig{
			PublicPerSecond: publicRPS,
			PublicBurst:     publicBurst,
			BrandPerSecond:  brandRPS,
			BrandBurst:      brandBurst,
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// Admin JWT secret is required (no insecure default).
	if c.Admin.JWTSecret == "" {
		return errors.New("KEYLINE_ADMIN_JWT_SECRET is required")
	}
	if len(c.Admin.JWTSecret) < 32 {
		return errors.New("KEYLINE_ADMIN_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("KEYLINE_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("KEYLINE_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("KEYLINE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Admin.TokenTTL <= 0 {
		return fmt.Errorf("KEYLINE_ADMIN_TOKEN_TTL must be positive, got %s", c.Admin.TokenTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("KEYLINE_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("KEYLINE_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.RateLimit.PublicPerSecond <= 0 || c.RateLimit.BrandPerSecond <= 0 {
		return errors.New("rate limits must be positive")
	}
	if c.RateLimit.PublicBurst < 1 || c.RateLimit.BrandBurst < 1 {
		return errors.New("rate limit bursts must be >= 1")
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
