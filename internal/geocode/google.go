// Package geocode resolves free-text place names to coordinates for
// providers that only accept latitude/longitude.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

var (
	// ErrNoAPIKey is returned when the Google geocoder is used without a key.
	ErrNoAPIKey = errors.New("geocoder api key is not configured")
	// ErrEmptyLabel is returned for blank place names.
	ErrEmptyLabel = errors.New("empty location label")
)

// The geocoder package keeps its key in a package variable.
var apiKeyMu sync.Mutex

// Google implements weather.Geocoder on top of the Google Geocoding API.
type Google struct {
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogle configures the Google geocoder with apiKey.
func NewGoogle(apiKey string) (*Google, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	apiKeyMu.Lock()
	geocoder.ApiKey = apiKey
	apiKeyMu.Unlock()

	return &Google{lookup: geocoder.Geocoding}, nil
}

// Geocode converts a place name such as "Paris" or "Austin, TX" to coordinates.
func (g *Google) Geocode(ctx context.Context, label string) (weather.Coordinates, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return weather.Coordinates{}, ErrEmptyLabel
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	// The client library is not context aware; run it aside and stop waiting on cancel.
	done := make(chan result, 1)
	go func() {
		loc, err := g.lookup(geocoder.Address{City: label})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Coordinates{}, fmt.Errorf("google geocode: %w", r.err)
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lng: r.loc.Longitude}, nil
	}
}
