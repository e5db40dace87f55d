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

// OpenWeather's 5-day forecast comes in 3-hour steps; anything further than
// half a step from the requested time is treated as out of range.
const openWeatherMaxSkew = 90 * time.Minute

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, q weather.Query) (weather.ProviderReading, error) {
	if p.apiKey == "" {
		return weather.ProviderReading{}, fmt.Errorf("openweather api key is not configured")
	}

	at, err := weather.ParseLocalTime(q.Time)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if q.Coordinates != nil {
		values.Set("lat", fmt.Sprintf("%f", q.Coordinates.Lat))
		values.Set("lon", fmt.Sprintf("%f", q.Coordinates.Lng))
	} else {
		values.Set("q", q.Label)
	}

	var payload struct {
		City struct {
			Timezone int64 `json:"timezone"` // offset from UTC in seconds
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
		} `json:"list"`
	}

	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	// Shift each step into the location's wall clock so it compares with the
	// naive requested time.
	best := -1
	var bestSkew time.Duration
	for i, item := range payload.List {
		local := time.Unix(item.Dt+payload.City.Timezone, 0).UTC()
		skew := local.Sub(at)
		if skew < 0 {
			skew = -skew
		}
		if best == -1 || skew < bestSkew {
			best, bestSkew = i, skew
		}
	}
	if best == -1 || bestSkew > openWeatherMaxSkew {
		return weather.ProviderReading{}, fmt.Errorf("%w: %s", errNoData, q.Time)
	}

	item := payload.List[best]
	cond := weather.ConditionCloudy
	if len(item.Weather) > 0 {
		cond = mapConditionText(item.Weather[0].Main + " " + item.Weather[0].Description)
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    at,
		TemperatureC: item.Main.Temp,
		HumidityPct:  item.Main.Humidity,
		WindSpeedMS:  item.Wind.Speed,
		Condition:    cond,
	}, nil
}
