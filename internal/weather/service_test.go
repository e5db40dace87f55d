package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/road-trip-weather/internal/observability"
)

type stubProvider struct {
	name    string
	reading ProviderReading
	err     error
}

func (p stubProvider) Name() string { return p.name }

func (p stubProvider) Fetch(_ context.Context, _ Query) (ProviderReading, error) {
	return p.reading, p.err
}

func newTestService(providers ...Provider) *Service {
	return NewService(providers, observability.NewUnregistered(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_LookupAggregatesSuccessfulProviders(t *testing.T) {
	svc := newTestService(
		stubProvider{name: "a", reading: ProviderReading{TemperatureC: 10, HumidityPct: 80, WindSpeedMS: 2, Condition: ConditionRainy}},
		stubProvider{name: "b", err: errors.New("boom")},
		stubProvider{name: "c", reading: ProviderReading{TemperatureC: 20, HumidityPct: 60, WindSpeedMS: 4, Condition: ConditionRainy}},
	)

	got, err := svc.Lookup(context.Background(), Query{Label: "Paris", Time: "2024-06-01T10:00"})

	require.NoError(t, err)
	assert.Equal(t, 59.0, got.Temperature)
	assert.Equal(t, 70.0, got.Humidity)
	assert.Equal(t, ConditionRainy, got.Condition)
	require.Len(t, got.Providers, 2)
	assert.Equal(t, "a", got.Providers[0].ProviderName, "provider name is filled in")
	assert.Equal(t, "c", got.Providers[1].ProviderName)
}

func TestService_LookupFailsWhenEveryProviderFails(t *testing.T) {
	cause := errors.New("rate limited")
	svc := newTestService(stubProvider{name: "a", err: cause}, stubProvider{name: "b", err: cause})
	q := Query{Label: "Atlantis", Time: "2024-06-01T10:00"}

	_, err := svc.Lookup(context.Background(), q)

	require.ErrorIs(t, err, ErrLookupFailed)
	assert.ErrorIs(t, err, cause)
	var lerr *LookupError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, q, lerr.Query)
	assert.Len(t, lerr.Causes, 2)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestService_LookupWithoutProviders(t *testing.T) {
	_, err := newTestService().Lookup(context.Background(), Query{Label: "Paris"})

	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.ErrorIs(t, err, ErrNoProviders)
}

func TestService_Providers(t *testing.T) {
	svc := newTestService(stubProvider{name: "mock"}, stubProvider{name: "openmeteo"})
	assert.Equal(t, []string{"mock", "openmeteo"}, svc.Providers())
}
