package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const EnvDevelopment = "development"

type Config struct {
	Port           string
	Env            string
	DBDriver       string
	DatabaseURL    string
	JWTSecret      string
	JWTExpiresIn   time.Duration
	AllowedOrigins []string
	RedisURL       string
	LockTTL        time.Duration
	BcryptCost     int
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Env:         getEnv("APP_ENV", "production"),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	var err error
	if cfg.JWTExpiresIn, err = ParseDuration(getEnv("JWT_EXPIRES_IN", "24h")); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	if cfg.LockTTL, err = ParseDuration(getEnv("LOCK_TTL", "10s")); err != nil {
		return nil, fmt.Errorf("LOCK_TTL: %w", err)
	}

	cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil || cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	cfg.AllowedOrigins = parseList(os.Getenv("ALLOWED_ORIGINS"))
	if client := strings.TrimSpace(os.Getenv("CLIENT_URL")); client != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, client)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = types.DefaultOrigins
	}

	return cfg, nil
}

// ParseDuration accepts Go durations ("90m", "24h") and whole days ("7d").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", value)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", value)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
