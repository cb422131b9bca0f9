package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/backoffice/internal/domain"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DefaultOrg string
	Store      StoreConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Gateway    GatewayConfig
	Payslip    PayslipConfig
}

// StoreConfig selects the collection backend.
type StoreConfig struct {
	Backend    string
	SQLitePath string
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

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// GatewayConfig holds the payment simulator settings.
type GatewayConfig struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	BankRate    float64
	MomoRate    float64
	DefaultRate float64
}

// PayslipConfig holds payslip export settings.
type PayslipConfig struct {
	Dir        string
	PDFEnabled bool
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("BACKOFFICE_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("BACKOFFICE_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("BACKOFFICE_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	minDelay, err := getEnvDuration("BACKOFFICE_GATEWAY_MIN_DELAY", 800*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	maxDelay, err := getEnvDuration("BACKOFFICE_GATEWAY_MAX_DELAY", 1800*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	bankRate, err := getEnvFloat("BACKOFFICE_GATEWAY_BANK_RATE", 0.90)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	momoRate, err := getEnvFloat("BACKOFFICE_GATEWAY_MOMO_RATE", 0.92)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	defaultRate, err := getEnvFloat("BACKOFFICE_GATEWAY_DEFAULT_RATE", 0.99)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	pdfEnabled, err := getEnvBool("BACKOFFICE_PAYSLIP_PDF", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := &Config{
		DefaultOrg: getEnv("BACKOFFICE_DEFAULT_ORG", domain.DefaultOrg),
		Store: StoreConfig{
			Backend:    strings.ToLower(getEnv("BACKOFFICE_STORE_BACKEND", BackendSQLite)),
			SQLitePath: getEnv("BACKOFFICE_SQLITE_PATH", "backoffice.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("BACKOFFICE_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("BACKOFFICE_DB_USER", "backoffice"),
			Password: getEnv("BACKOFFICE_DB_PASSWORD", ""),
			DBName:   getEnv("BACKOFFICE_DB_NAME", "backoffice_dev"),
			SSLMode:  getEnv("BACKOFFICE_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("BACKOFFICE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("BACKOFFICE_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Gateway: GatewayConfig{
			MinDelay:    minDelay,
			MaxDelay:    maxDelay,
			BankRate:    bankRate,
			MomoRate:    momoRate,
			DefaultRate: defaultRate,
		},
		Payslip: PayslipConfig{
			Dir:        getEnv("BACKOFFICE_PAYSLIP_DIR", "."),
			PDFEnabled: pdfEnabled,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	backends := []string{BackendMemory, BackendSQLite, BackendRedis, BackendPostgres}
	if !slices.Contains(backends, c.Store.Backend) {
		return fmt.Errorf("BACKOFFICE_STORE_BACKEND must be one of %s, got %q", strings.Join(backends, ", "), c.Store.Backend)
	}
	if c.Store.Backend == BackendSQLite && c.Store.SQLitePath == "" {
		return errors.New("BACKOFFICE_SQLITE_PATH is required for the sqlite backend")
	}

	if c.Store.Backend == BackendPostgres && c.Database.SSLMode == "disable" {
		log.Warn().Msg("BACKOFFICE_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("BACKOFFICE_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("BACKOFFICE_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Gateway.MinDelay < 0 {
		return fmt.Errorf("BACKOFFICE_GATEWAY_MIN_DELAY must not be negative, got %s", c.Gateway.MinDelay)
	}
	if c.Gateway.MaxDelay < c.Gateway.MinDelay {
		return fmt.Errorf("BACKOFFICE_GATEWAY_MAX_DELAY must be >= BACKOFFICE_GATEWAY_MIN_DELAY, got %s < %s",
			c.Gateway.MaxDelay, c.Gateway.MinDelay)
	}

	rates := []struct {
		key  string
		rate float64
	}{
		{"BACKOFFICE_GATEWAY_BANK_RATE", c.Gateway.BankRate},
		{"BACKOFFICE_GATEWAY_MOMO_RATE", c.Gateway.MomoRate},
		{"BACKOFFICE_GATEWAY_DEFAULT_RATE", c.Gateway.DefaultRate},
	}
	for _, r := range rates {
		if r.rate < 0 || r.rate > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %g", r.key, r.rate)
		}
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
