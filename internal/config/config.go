package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// TomorrowAPIKey authenticates against the weather provider.
	TomorrowAPIKey string

	// Completion service settings (OpenAI-compatible endpoint).
	CompletionBaseURL string
	CompletionAPIKey  string
	CompletionModel   string

	// GeocoderAPIKey enables place-name geocoding when set.
	GeocoderAPIKey string

	// HTTPTimeout bounds outbound provider calls.
	HTTPTimeout time.Duration

	// CacheTTL is the validity window of weather cache entries.
	CacheTTL time.Duration

	// WeatherMaxRetries is the number of retries after a rate-limited call.
	WeatherMaxRetries int

	// WeatherTimezone is passed to the provider's timeline endpoint.
	WeatherTimezone string

	// WarmLocations are place names whose cache entries the scheduler keeps
	// hot; WarmInterval controls how often.
	WarmLocations []string
	WarmInterval  time.Duration

	// SessionDBPath selects the sqlite session store; empty means in-memory.
	SessionDBPath string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.TomorrowAPIKey = os.Getenv("TOMORROW_API_KEY")

	cfg.CompletionBaseURL = os.Getenv("COMPLETION_BASE_URL")
	cfg.CompletionAPIKey = os.Getenv("COMPLETION_API_KEY")
	cfg.CompletionModel = getenvDefault("COMPLETION_MODEL", "gpt-4o-mini")

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Cache entries are valid for exactly 5 minutes unless overridden.
	ttlStr := getenvDefault("WEATHER_CACHE_TTL", "5m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	cfg.WeatherMaxRetries = getenvInt("WEATHER_MAX_RETRIES", 3)

	cfg.WeatherTimezone = getenvDefault("WEATHER_TIMEZONE", "UTC")

	if warm := os.Getenv("WARM_LOCATIONS"); warm != "" {
		for _, name := range strings.Split(warm, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.WarmLocations = append(cfg.WarmLocations, name)
			}
		}
	}

	warmStr := getenvDefault("WARM_INTERVAL", "4m")
	warmInterval, err := time.ParseDuration(warmStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_INTERVAL: %w", err)
	}
	cfg.WarmInterval = warmInterval

	cfg.SessionDBPath = os.Getenv("SESSION_DB_PATH")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
