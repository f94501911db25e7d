package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Remote pricing service settings
	PricingServiceBaseURL string
	PricingPairInterval   time.Duration
	PricingRequestTimeout time.Duration
	PricingCacheTTL       time.Duration

	// Months of stored rates preloaded into the rate table at startup.
	SnapshotSeedMonths int
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
// It centralizes all configuration logic for the application.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}
	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found. Relying on OS environment variables (expected in production).")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./networth.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		PricingServiceBaseURL: strings.TrimRight(getEnv("PRICING_SERVICE_BASE_URL", "https://api.pricing.example.com"), "/"),
		PricingPairInterval:   getEnvAsDuration("PRICING_PAIR_INTERVAL", 250*time.Millisecond),
		PricingRequestTimeout: getEnvAsDuration("PRICING_REQUEST_TIMEOUT", 20*time.Second),
		PricingCacheTTL:       getEnvAsDuration("PRICING_CACHE_TTL", 24*time.Hour),

		SnapshotSeedMonths: getEnvAsInt("SNAPSHOT_SEED_MONTHS", 24),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, PricingURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.PricingServiceBaseURL)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
