package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

type Config struct {
	Address     string        `env:"RUN_ADDRESS"`
	DatabaseURI string        `env:"DATABASE_URI"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"`
	LogLevel    string        `env:"LOG_LEVEL"`

	SuperAdminLogin    string `env:"SUPER_ADMIN_LOGIN"`
	SuperAdminPassword string `env:"SUPER_ADMIN_PASSWORD"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC"`

	EmailProviderURL  string        `env:"EMAIL_PROVIDER_URL"`
	EmailAPIKey       string        `env:"EMAIL_API_KEY"`
	EmailFrom         string        `env:"EMAIL_FROM"`
	EmailPollInterval time.Duration `env:"EMAIL_POLL_INTERVAL"`
	EmailBatchSize    int           `env:"EMAIL_BATCH_SIZE"`
	EmailWorkers      int           `env:"EMAIL_WORKERS"`
	EmailMaxAttempts  int           `env:"EMAIL_MAX_ATTEMPTS"`
}

func NewConfig() (Config, error) {
	return newConfig(os.Args[1:])
}

func newConfig(args []string) (Config, error) {
	// .env never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("cannot load .env file: %w", err)
	}

	config := defaultConfig()

	if err := config.parseFlags(args); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, err
	}

	if err := config.validateConfig(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func defaultConfig() Config {
	return Config{
		Address:           ":8080",
		TokenTTL:          3 * time.Hour,
		LogLevel:          "info",
		KafkaTopic:        "order-status",
		EmailFrom:         "orders@gofood.local",
		EmailPollInterval: 30 * time.Second,
		EmailBatchSize:    50,
		EmailWorkers:      4,
		EmailMaxAttempts:  5,
	}
}

func (c *Config) parseFlags(args []string) error {
	flags := flag.NewFlagSet("gofood", flag.ContinueOnError)

	flags.StringVar(&c.Address, "a", c.Address, "Service address")
	flags.StringVar(&c.DatabaseURI, "d", c.DatabaseURI, "Database URI")
	flags.StringVar(&c.JWTSecret, "s", c.JWTSecret, "JWT signing secret")
	flags.StringVar(&c.LogLevel, "l", c.LogLevel, "Log level")

	return flags.Parse(args)
}

func (c *Config) validateConfig() error {
	if c.DatabaseURI == "" {
		return errors.New("database URI is required")
	}

	if c.JWTSecret == "" {
		return errors.New("JWT secret is required")
	}

	if (c.SuperAdminLogin == "") != (c.SuperAdminPassword == "") {
		return errors.New("super admin login and password must be set together")
	}

	if c.EmailProviderURL != "" {
		if _, err := url.ParseRequestURI(c.EmailProviderURL); err != nil {
			return fmt.Errorf("invalid email provider URL: %w", err)
		}
	}

	if c.EmailBatchSize <= 0 || c.EmailWorkers <= 0 || c.EmailMaxAttempts <= 0 || c.EmailPollInterval <= 0 {
		return errors.New("email worker settings must be positive")
	}

	return nil
}
