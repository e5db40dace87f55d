package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, q weather.Query) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	at, err := weather.ParseLocalTime(q.Time)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts a place name or "lat,lon".
	if q.Coordinates != nil {
		values.Set("q", fmt.Sprintf("%f,%f", q.Coordinates.Lat, q.Coordinates.Lng))
	} else {
		values.Set("q", q.Label)
	}
	values.Set("dt", at.Format("2006-01-02"))
	values.Set("hour", strconv.Itoa(at.Hour()))

	var payload struct {
		Forecast struct {
			Forecastday []struct {
				Hour []struct {
					Time      string  `json:"time"`
					TempC     float64 `json:"temp_c"`
					Humidity  float64 `json:"humidity"`
					WindKph   float64 `json:"wind_kph"`
					Condition struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	target := at.Truncate(time.Hour).Format("2006-01-02 15:04")
	for _, day := range payload.Forecast.Forecastday {
		for _, h := range day.Hour {
			if h.Time != target {
				continue
			}
			return weather.ProviderReading{
				ProviderName: p.name,
				Timestamp:    at,
				TemperatureC: h.TempC,
				HumidityPct:  h.Humidity,
				// kph to m/s
				WindSpeedMS: h.WindKph / 3.6,
				Condition:   mapConditionText(h.Condition.Text),
			}, nil
		}
	}

	return weather.ProviderReading{}, fmt.Errorf("%w: %s", errNoData, target)
}
