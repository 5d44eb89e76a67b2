package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration
type Config struct {
	ListenAddr       string
	BaseURL          string
	EventDetailsFile string

	StorageDriver string
	DataDir       string

	SessionTTL time.Duration

	WhatsAppEnabled bool
	WhatsAppDataDir string

	LogLevel  string
	LogPretty bool
}

// LoadConfig loads configuration from a .env file, environment variables
// and defaults, in that order of precedence from lowest to highest.
func LoadConfig() (*Config, error) {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg := &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		BaseURL:          strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		EventDetailsFile: getEnv("EVENT_DETAILS_FILE", "data/event.json"),
		StorageDriver:    getEnv("STORAGE_DRIVER", DriverJSON),
		DataDir:          getEnv("DATA_DIR", "data"),
		SessionTTL:       ttl,
		WhatsAppEnabled:  getBool("WHATSAPP_ENABLED", false),
		WhatsAppDataDir:  getEnv("WHATSAPP_DATA_DIR", "data"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getBool("LOG_PRETTY", false),
	}

	switch cfg.StorageDriver {
	case DriverJSON, DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q (want %q or %q)", cfg.StorageDriver, DriverJSON, DriverSQLite)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
