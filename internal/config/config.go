package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the application configuration.
type Config struct {
	Port          string        `mapstructure:"PORT"`
	StorageDriver string        `mapstructure:"STORAGE_DRIVER"`
	MongoURI      string        `mapstructure:"MONGO_URI"`
	DBName        string        `mapstructure:"MONGO_DB"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	DBTimeout     time.Duration `mapstructure:"DB_TIMEOUT"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TokenExpiry   time.Duration `mapstructure:"TOKEN_EXPIRY"`

	// FriendRequestRate is the number of friend requests a user may send per minute.
	FriendRequestRate  int      `mapstructure:"FRIEND_REQUEST_RATE"`
	FriendRequestBurst int      `mapstructure:"FRIEND_REQUEST_BURST"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	LogLevel           string   `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]interface{}{
	"PORT":                 "8080",
	"STORAGE_DRIVER":       DriverMongo,
	"MONGO_URI":            "mongodb://localhost:27017",
	"MONGO_DB":             "friend_manager",
	"DATABASE_URL":         "",
	"DB_TIMEOUT":           "10s",
	"JWT_SECRET":           "",
	"TOKEN_EXPIRY":         "72h",
	"FRIEND_REQUEST_RATE":  20,
	"FRIEND_REQUEST_BURST": 5,
	"CORS_ORIGINS":         []string{"http://localhost:3000"},
	"LOG_LEVEL":            "info",
}

// Load reads .env (if present) and the environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		logrus.Warn("No .env file found, reading configuration from the environment")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig is Load for main packages: any error is fatal.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// Validate checks the settings a server cannot start without.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMongo:
		if c.MongoURI == "" || c.DBName == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DB are required for the %s driver", DriverMongo)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.TokenExpiry <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY must be positive")
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
