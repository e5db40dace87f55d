package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

func TestNewGoogle_RequiresKey(t *testing.T) {
	_, err := NewGoogle("")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestGoogle_Geocode(t *testing.T) {
	var seen geocoder.Address
	g := &Google{lookup: func(a geocoder.Address) (geocoder.Location, error) {
		seen = a
		return geocoder.Location{Latitude: 30.2672, Longitude: -97.7431}, nil
	}}

	got, err := g.Geocode(context.Background(), "  Austin, TX ")

	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", seen.City)
	assert.Equal(t, weather.Coordinates{Lat: 30.2672, Lng: -97.7431}, got)
}

func TestGoogle_GeocodeErrors(t *testing.T) {
	upstream := errors.New("ZERO_RESULTS")
	g := &Google{lookup: func(geocoder.Address) (geocoder.Location, error) {
		return geocoder.Location{}, upstream
	}}

	_, err := g.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyLabel)

	_, err = g.Geocode(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, upstream)
}

func TestGoogle_GeocodeStopsWaitingOnCancel(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	g := &Google{lookup: func(geocoder.Address) (geocoder.Location, error) {
		<-block
		return geocoder.Location{}, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Geocode(ctx, "Paris")
	assert.ErrorIs(t, err, context.Canceled)
}
