package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Known provider names for WEATHER_PROVIDERS.
const (
	ProviderMock        = "mock"
	ProviderOpenMeteo   = "openmeteo"
	ProviderWeatherAPI  = "weatherapi"
	ProviderOpenWeather = "openweather"
)

type AppConfig struct {
	Port            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Providers consulted by the lookup gateway, in order.
	Providers []string

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string
	GeocodeCacheSize  int

	HTTPTimeout   time.Duration
	LookupTimeout time.Duration

	// Mock provider behaviour.
	MockLatency     time.Duration
	MockFailureRate float64

	// Session retention.
	SessionIdleTTL       time.Duration
	SessionSweepInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
// Call godotenv.Load beforehand to pick up a .env file.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getenvDefault("LOG_FORMAT", "json")),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		GeocodeCacheSize:  getenvInt("GEOCODE_CACHE_SIZE", 1000),
	}

	var err error
	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", "10s", &cfg.ShutdownTimeout},
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"LOOKUP_TIMEOUT", "30s", &cfg.LookupTimeout},
		{"MOCK_LATENCY", "500ms", &cfg.MockLatency},
		{"SESSION_IDLE_TTL", "2h", &cfg.SessionIdleTTL},
		{"SESSION_SWEEP_INTERVAL", "5m", &cfg.SessionSweepInterval},
	}
	for _, d := range durations {
		if *d.dst, err = getenvDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.MockFailureRate, err = strconv.ParseFloat(getenvDefault("MOCK_FAILURE_RATE", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_FAILURE_RATE: %w", err)
	}
	if cfg.MockFailureRate < 0 || cfg.MockFailureRate > 1 {
		return nil, fmt.Errorf("invalid MOCK_FAILURE_RATE: %v not in [0,1]", cfg.MockFailureRate)
	}

	cfg.Providers, err = loadProviders()
	if err != nil {
		return nil, err
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	return cfg, nil
}

func loadProviders() ([]string, error) {
	var provs []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(getenvDefault("WEATHER_PROVIDERS", ProviderMock), ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		switch p {
		case ProviderMock, ProviderOpenMeteo, ProviderWeatherAPI, ProviderOpenWeather:
		default:
			return nil, fmt.Errorf("unknown weather provider %q", p)
		}
		seen[p] = true
		provs = append(provs, p)
	}
	if len(provs) == 0 {
		return nil, fmt.Errorf("WEATHER_PROVIDERS must name at least one provider")
	}
	return provs, nil
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

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
