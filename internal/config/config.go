package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for the BoQ engine.
type Config struct {
	HTTPPort  string
	JWTSecret []byte
	// APIKeys are the plaintext keys accepted on the calculation endpoints.
	APIKeys   []string
	Logging   LoggingConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Feed      FeedConfig
	Pricing   PricingConfig
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	Level       string
	Format      string // json, console
	Development bool
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled      bool
	Address      string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PriceTTL     time.Duration
}

// FeedConfig holds raw pricing feed settings.
type FeedConfig struct {
	// Enabled controls whether the Cloud Catalog client is constructed at
	// startup. Disabled deployments can still refresh from a static source.
	Enabled         bool
	ServiceID       string
	CredentialsJSON string
	RequestTimeout  time.Duration
}

// PricingConfig carries the pricing tables every engine component receives
// explicitly: fallback unit prices, discount percentages, and the catalog
// retention window. Keeping them here rather than in package globals lets
// tests run the engine with alternate tables.
type PricingConfig struct {
	// Heuristic compute estimate, applied when no catalog entry matches.
	BaseVCPUPricePerHour   float64
	BaseMemoryPricePerHour float64 // per GB

	// Per disk type fallback prices, per GB-month.
	StorageFallbackPrices map[string]float64
	DefaultStoragePrice   float64

	// Per GPU type fallback prices, per GPU-hour.
	GPUFallbackPrices map[string]float64
	DefaultGPUPrice   float64

	// External IP surcharge per hour.
	ExternalIPPricePerHour float64

	// Hours of a billing month, used to normalize storage costs.
	HoursPerMonth float64

	// Discount rule table.
	SpotDiscountPercent     float64
	CUD1YearDiscountPercent float64
	CUD3YearDiscountPercent float64
	SUDThresholdHours       float64
	SUDStepHours            float64
	SUDStepPercent          float64
	SUDMaxPercent           float64

	// Catalog lifecycle.
	RetentionWindow time.Duration
	InsertBatchSize int
}

// DefaultPricingConfig returns the reference pricing tables.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BaseVCPUPricePerHour:   0.0475,
		BaseMemoryPricePerHour: 0.0063,

		StorageFallbackPrices: map[string]float64{
			"pd-standard": 0.040,
			"pd-balanced": 0.100,
			"pd-ssd":      0.170,
		},
		DefaultStoragePrice: 0.040,

		GPUFallbackPrices: map[string]float64{
			"nvidia-tesla-t4":   0.35,
			"nvidia-tesla-p4":   0.60,
			"nvidia-tesla-p100": 1.46,
			"nvidia-tesla-v100": 2.48,
			"nvidia-tesla-a100": 2.93,
			"nvidia-l4":         0.71,
		},
		DefaultGPUPrice: 1.00,

		ExternalIPPricePerHour: 0.004,
		HoursPerMonth:          730,

		SpotDiscountPercent:     60,
		CUD1YearDiscountPercent: 25,
		CUD3YearDiscountPercent: 37,
		SUDThresholdHours:       183,
		SUDStepHours:            73,
		SUDStepPercent:          5,
		SUDMaxPercent:           30,

		RetentionWindow: 90 * 24 * time.Hour,
		InsertBatchSize: 1000,
	}
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getEnvFloat(key string, defaultValue float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}

	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val == "true" || val == "1"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pricing := DefaultPricingConfig()
	pricing.BaseVCPUPricePerHour = getEnvFloat("PRICING_BASE_VCPU_PRICE", pricing.BaseVCPUPricePerHour)
	pricing.BaseMemoryPricePerHour = getEnvFloat("PRICING_BASE_MEMORY_PRICE", pricing.BaseMemoryPricePerHour)
	pricing.ExternalIPPricePerHour = getEnvFloat("PRICING_EXTERNAL_IP_PRICE", pricing.ExternalIPPricePerHour)
	pricing.RetentionWindow = getEnvDuration("CATALOG_RETENTION_WINDOW", pricing.RetentionWindow)
	pricing.InsertBatchSize = getEnvInt("CATALOG_INSERT_BATCH_SIZE", pricing.InsertBatchSize)

	cfg := &Config{
		HTTPPort:  getEnvString("HTTP_PORT", "8080"),
		JWTSecret: []byte(getEnvString("JWT_SECRET", "supersecretkey")),
		APIKeys:   splitNonEmpty(getEnvString("API_KEYS", "")),
		Logging: LoggingConfig{
			Level:       getEnvString("LOG_LEVEL", "info"),
			Format:      getEnvString("LOG_FORMAT", "json"),
			Development: getEnvBool("LOG_DEVELOPMENT", false),
		},
		Database: DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Address:      getEnvString("REDIS_ADDRESS", "localhost:6379"),
			Password:     getEnvString("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PriceTTL:     getEnvDuration("REDIS_PRICE_TTL", 15*time.Minute),
		},
		Feed: FeedConfig{
			Enabled:         getEnvBool("FEED_ENABLED", true),
			ServiceID:       getEnvString("FEED_SERVICE_ID", ""),
			CredentialsJSON: getEnvString("FEED_CREDENTIALS_JSON", ""),
			RequestTimeout:  getEnvDuration("FEED_REQUEST_TIMEOUT", 5*time.Minute),
		},
		Pricing: pricing,
	}

	return cfg, nil
}
