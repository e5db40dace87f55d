package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

const openMeteoHourLayout = "2006-01-02T15:04"

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// Open-Meteo only accepts coordinates, so text locations go through the geocoder.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder weather.Geocoder
}

// NewOpenMeteoProvider creates the provider. geocoder may be nil, in which
// case only map pins can be looked up.
func NewOpenMeteoProvider(client *http.Client, geocoder weather.Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit:  newBreaker("openmeteo"),
		geocoder: geocoder,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, q weather.Query) (weather.ProviderReading, error) {
	at, err := weather.ParseLocalTime(q.Time)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	coords, err := p.resolve(ctx, q)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	day := at.Format("2006-01-02")
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", coords.Lat))
	values.Set("longitude", fmt.Sprintf("%f", coords.Lng))
	values.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	values.Set("wind_speed_unit", "ms")
	// Local wall-clock times, matching the naive times users enter.
	values.Set("timezone", "auto")
	values.Set("start_date", day)
	values.Set("end_date", day)

	var payload struct {
		Hourly struct {
			Time        []string  `json:"time"`
			Temperature []float64 `json:"temperature_2m"`
			Humidity    []float64 `json:"relative_humidity_2m"`
			WindSpeed   []float64 `json:"wind_speed_10m"`
			WeatherCode []int     `json:"weather_code"`
		} `json:"hourly"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	h := payload.Hourly
	target := at.Truncate(time.Hour).Format(openMeteoHourLayout)
	for i, ts := range h.Time {
		if ts != target {
			continue
		}
		if i >= len(h.Temperature) || i >= len(h.Humidity) || i >= len(h.WindSpeed) || i >= len(h.WeatherCode) {
			break
		}
		return weather.ProviderReading{
			ProviderName: p.name,
			Timestamp:    at,
			TemperatureC: h.Temperature[i],
			HumidityPct:  h.Humidity[i],
			WindSpeedMS:  h.WindSpeed[i],
			Condition:    mapOpenMeteoCondition(h.WeatherCode[i]),
		}, nil
	}

	return weather.ProviderReading{}, fmt.Errorf("%w: %s", errNoData, target)
}

func (p *OpenMeteoProvider) resolve(ctx context.Context, q weather.Query) (weather.Coordinates, error) {
	if q.Coordinates != nil {
		return *q.Coordinates, nil
	}
	if p.geocoder == nil {
		return weather.Coordinates{}, errNoCoordinates
	}
	coords, err := p.geocoder.Geocode(ctx, q.Label)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("geocode %q: %w", q.Label, err)
	}
	return coords, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// WMO weather interpretation codes.
	switch {
	case code == 0:
		return weather.ConditionSunny
	case code == 1 || code == 2:
		return weather.ConditionPartlyCloudy
	case code == 3 || code == 45 || code == 48:
		return weather.ConditionCloudy
	case (code >= 51 && code <= 67) || (code >= 71 && code <= 86) || code >= 95:
		return weather.ConditionRainy
	default:
		return weather.ConditionCloudy
	}
}
