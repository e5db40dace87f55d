package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a Report. Units are metric.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedMS  float64
	Condition    Condition
}

// Provider abstracts a weather data source (e.g. Open-Meteo, WeatherAPI, OpenWeatherMap).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) (ProviderReading, error)
}

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, label string) (Coordinates, error)
}
