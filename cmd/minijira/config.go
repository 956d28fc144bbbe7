package main

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/devadeboye/mini-jira/internal/logger"
)

type Config struct {
	// Address the API listens on
	ListenAddr string `env:"RUN_ADDRESS"`

	// Database to connect to
	DatabaseDSN string `env:"DATABASE_URI"`

	// Symmetric key for signing tokens, see cmd/gensecret
	SecretKey string `env:"SECRET_KEY"`

	LogLevel    string `env:"LOG_LEVEL"`
	Environment string `env:"ENVIRONMENT"`

	// Token lifetimes
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"`

	// Refresh cookie gets the Secure attribute. Off by default so local
	// plain-http setups keep working.
	SecureCookies bool `env:"SECURE_COOKIES"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Login and register rate limit, per client IP
	AuthRateRPS   float64 `env:"AUTH_RATE_RPS"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:      "localhost:8000",
		LogLevel:        logger.LevelInfo,
		Environment:     logger.EnvProduction,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		AllowedOrigins:  []string{"http://localhost:3000"},
		AuthRateRPS:     5,
		AuthRateBurst:   10,
	}
}

// NewConfig layers configuration sources. Flags win over environment
// variables, environment wins over '.env', defaults fill the rest.
func NewConfig(args []string) (*Config, error) {
	c := &Config{}

	if err := c.loadDotEnv(os.Getwd); err != nil {
		return nil, err
	}

	if err := env.Parse(c); err != nil {
		return nil, err
	}

	if err := c.parseFlags(args); err != nil {
		return nil, err
	}

	// Whatever is still unset falls back to the default
	if err := mergo.Merge(c, defaultConfig()); err != nil {
		return nil, err
	}

	return c, nil
}

// Load variables from '.env' at the working directory into the process
// environment, without overriding variables already set
func (c *Config) loadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		for key, value := range envMap {
			if _, set := os.LookupEnv(key); !set {
				os.Setenv(key, value)
			}
		}
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) parseFlags(args []string) error {
	fs := pflag.NewFlagSet("minijira", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key for token signing")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringSliceVar(&c.AllowedOrigins, "cors-origins", c.AllowedOrigins, "Allowed CORS origins")

	return fs.Parse(args)
}
