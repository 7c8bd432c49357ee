package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// CarsDatasetURL is the brand -> models document searched by the dataset proxy.
	CarsDatasetURL = "https://kepox.com/wp-content/uploads/2025/10/cars-full.json"
	// CountriesDatasetURL is the country -> cities document used for the country lookup.
	CountriesDatasetURL = "https://kepox.com/wp-content/uploads/2025/10/countries_cities.json"

	// MaxDatasetResults caps the records returned by the dataset proxy.
	MaxDatasetResults = 50
	// IndexPageSize is the fixed number of hits requested from the index service.
	IndexPageSize = 24

	// LivenessText is served on GET / by the dataset proxy.
	LivenessText = "Kepox Search API is running"

	DefaultPort      = "3000"
	DefaultIndexName = "cars"
	DefaultOrigin    = "*"
)

// Config is read once at startup and handed to every component that needs it.
type Config struct {
	Port string

	// Index service (Elasticsearch compatible) settings
	IndexURL    string
	IndexAPIKey string
	IndexName   string

	CORSOrigin string
	LogLevel   string

	// RateLimitMax of 0 disables the limiter
	RateLimitMax int
	RateLimitExp time.Duration

	// HistoryDB is the sqlite path for search history; empty disables it
	HistoryDB string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// UpstreamTimeout bounds dataset fetches and index responses; 0 waits indefinitely
	UpstreamTimeout time.Duration

	// Warnings lists values that could not be parsed and fell back to their
	// default. Load runs before the logger exists, so callers log them.
	Warnings []string
}

// Load reads the configuration from the environment. An optional .env file
// is loaded first; a missing file is not an error.
func Load(envPath ...string) (*Config, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
	}

	env := &envReader{}
	cfg := &Config{
		Port:         getEnv("PORT", DefaultPort),
		IndexURL:     os.Getenv("ES_URL"),
		IndexAPIKey:  os.Getenv("ES_API_KEY"),
		IndexName:    getEnv("ES_INDEX", DefaultIndexName),
		CORSOrigin:   getEnv("CORS_ORIGIN", DefaultOrigin),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RateLimitMax: env.getEnvAsInt("RATE_LIMIT_MAX", 0),
		RateLimitExp: env.getEnvAsDuration("RATE_LIMIT_EXP", time.Minute),
		HistoryDB:    os.Getenv("SEARCH_HISTORY_DB"),
		ReadTimeout:  env.getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: env.getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),

		UpstreamTimeout: env.getEnvAsDuration("UPSTREAM_TIMEOUT", 0),
	}
	cfg.Warnings = env.warnings

	if cfg.RateLimitMax < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must not be negative, got %d", cfg.RateLimitMax)
	}

	return cfg, nil
}

// IndexConfigured reports whether the index service address and credential are set.
func (c *Config) IndexConfigured() bool {
	return c.IndexURL != "" && c.IndexAPIKey != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// getEnv returns the variable or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// envReader parses typed variables and remembers the ones it had to replace
type envReader struct {
	warnings []string
}

func (r *envReader) getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("%s=%q is not an int, using default %d: %v", key, valueStr, defaultValue, err))
		return defaultValue
	}
	return value
}

func (r *envReader) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("%s=%q is not a duration, using default %s: %v", key, valueStr, defaultValue, err))
		return defaultValue
	}
	return value
}
