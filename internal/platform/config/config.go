// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	HTTPAddr string

	LogLevel  string
	LogFormat string

	DB DBConfig

	Redis RedisConfig

	JWT JWTConfig

	OTPSecret string
	OTPPeriod time.Duration

	SMTP SMTPConfig

	CacheTTL          time.Duration
	MailMaxAttempts   int
	MailRatePerMinute int

	CORSAllowedOrigins []string
}

// DBConfig selects and addresses the relational database.
type DBConfig struct {
	Driver   string // postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// InstanceConnectionName routes through the Cloud SQL unix socket when set.
	InstanceConnectionName string
	SQLitePath             string
	RunMigrations          bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// JWTConfig holds token secrets and lifetimes.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// SMTPConfig addresses the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP relay is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using process environment")
	}

	var errs []error
	cfg := &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		DB: DBConfig{
			Driver:                 strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:                   getEnv("DB_HOST", "localhost"),
			Port:                   getEnv("DB_PORT", "5432"),
			User:                   os.Getenv("DB_USER"),
			Password:               os.Getenv("DB_PASSWORD"),
			Name:                   getEnv("DB_NAME", "book_catalog"),
			SSLMode:                getEnv("DB_SSLMODE", "disable"),
			InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),
			SQLitePath:             getEnv("SQLITE_PATH", "book_catalog.db"),
			RunMigrations:          getBool("RUN_MIGRATIONS", true, &errs),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:     getDuration("JWT_ACCESS_TTL", 15*time.Minute, &errs),
			RefreshTTL:    getDuration("JWT_REFRESH_TTL", 7*24*time.Hour, &errs),
		},
		OTPSecret: os.Getenv("OTP_SECRET"),
		OTPPeriod: getDuration("OTP_PERIOD", 5*time.Minute, &errs),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getInt("SMTP_PORT", 587, &errs),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "no-reply@book-catalog.local"),
		},
		CacheTTL:           getDuration("CACHE_TTL", 5*time.Minute, &errs),
		MailMaxAttempts:    getInt("MAIL_MAX_ATTEMPTS", 5, &errs),
		MailRatePerMinute:  getInt("MAIL_RATE_PER_MINUTE", 30, &errs),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required secrets are present and consistent.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET environment variable is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET environment variable is required"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.OTPSecret == "" {
		errs = append(errs, errors.New("OTP_SECRET environment variable is required"))
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
