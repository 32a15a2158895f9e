package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/qs-lzh/movie-review/internal/util"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required but not set")

type Config struct {
	DatabaseDSN string
	Addr        string
	CacheURL    string
	MQURL       string
	JWTSecret   string
	Env         string
	CORSOrigins []string

	// signup and login requests allowed per minute and client, after a burst
	AuthRatePerMinute int
	AuthRateBurst     int

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func LoadConfig() (*Config, error) {
	if err := util.LoadEnv(); err != nil {
		return nil, err
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	ratePerMinute, err := getEnvInt("AUTH_RATE_PER_MINUTE", 10)
	if err != nil {
		return nil, err
	}
	rateBurst, err := getEnvInt("AUTH_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}
	return &Config{
		DatabaseDSN:       getEnv("DATABASE_DSN", "file:movie-review.db"),
		Addr:              getEnv("ADDR", ":4000"),
		CacheURL:          os.Getenv("CACHE_URL"),
		MQURL:             os.Getenv("RABBIT_MQ_URL"),
		JWTSecret:         jwtSecret,
		Env:               getEnv("APP_ENV", EnvDevelopment),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		AuthRatePerMinute: ratePerMinute,
		AuthRateBurst:     rateBurst,
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
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
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
