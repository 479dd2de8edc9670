package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

const (
	CartStoreMemory = "memory"
	CartStoreSQLite = "sqlite"
	CartStoreRedis  = "redis"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	API         APIConfig
	Kafka       KafkaConfig
	Storefront  StorefrontConfig
	CartStore   CartStoreConfig
	Currency    string
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type APIConfig struct {
	KeyHash string
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	PollInterval time.Duration
}

// StorefrontConfig is how the shopper side reaches the order API
type StorefrontConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type CartStoreConfig struct {
	SessionID     string
	Driver        string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("KAFKA_TOPIC", "storefront.order-events")
	viper.SetDefault("CART_STORE", CartStoreSQLite)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	pollInterval, err := getDurationOrViper("EVENT_POLL_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := getDurationOrViper("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDurationOrViper("CART_SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		API: APIConfig{
			KeyHash: getEnvOrViper("API_KEY_HASH", ""),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(getEnvOrViper("KAFKA_BROKERS", "")),
			Topic:        getEnvOrViper("KAFKA_TOPIC", "storefront.order-events"),
			PollInterval: pollInterval,
		},
		Storefront: StorefrontConfig{
			BaseURL: getEnvOrViper("STOREFRONT_API_URL", "http://localhost:8080/v1"),
			APIKey:  getEnvOrViper("STOREFRONT_API_KEY", ""),
			Timeout: httpTimeout,
		},
		CartStore: CartStoreConfig{
			SessionID:     getEnvOrViper("STOREFRONT_SESSION", ""),
			Driver:        getEnvOrViper("CART_STORE", CartStoreSQLite),
			SQLitePath:    getEnvOrViper("CART_SQLITE_PATH", "storefront-carts.db"),
			RedisAddr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnvOrViper("REDIS_PASSWORD", ""),
			SessionTTL:    sessionTTL,
		},
		Currency: getEnvOrViper("CURRENCY", "USD"),
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// ValidateServer checks the fields the order API needs
func (c *Config) ValidateServer() error {
	if c.API.KeyHash == "" {
		return fmt.Errorf("API_KEY_HASH is required")
	}
	return nil
}

// ValidateClient checks the fields the storefront CLI needs
func (c *Config) ValidateClient() error {
	if c.Storefront.BaseURL == "" {
		return fmt.Errorf("STOREFRONT_API_URL is required")
	}
	if c.Storefront.APIKey == "" {
		return fmt.Errorf("STOREFRONT_API_KEY is required")
	}
	switch c.CartStore.Driver {
	case CartStoreMemory, CartStoreSQLite, CartStoreRedis:
	default:
		return fmt.Errorf("CART_STORE must be one of %s, %s, %s", CartStoreMemory, CartStoreSQLite, CartStoreRedis)
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("CURRENCY[%s] is not valid: %w", c.Currency, err)
	}
	return nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDurationOrViper(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrViper(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
