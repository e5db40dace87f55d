package providers

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

func TestMockProvider_WaitsForLatency(t *testing.T) {
	fc := clockwork.NewFakeClock()
	p := NewMockProvider(WithClock(fc), WithLatency(500*time.Millisecond), WithSeed(42))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		r   weather.ProviderReading
		err error
	}
	done := make(chan result, 1)
	go func() {
		r, err := p.Fetch(ctx, weather.Query{Label: "Paris", Time: "2024-06-01T10:00"})
		done <- result{r, err}
	}()

	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	select {
	case <-done:
		t.Fatal("fetch returned before latency elapsed")
	default:
	}

	fc.Advance(500 * time.Millisecond)
	res := <-done
	require.NoError(t, res.err)

	r := res.r
	assert.Equal(t, "mock", r.ProviderName)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), r.Timestamp)

	tempF := weather.CelsiusToFahrenheit(r.TemperatureC)
	assert.GreaterOrEqual(t, tempF, 50.0-1e-9)
	assert.Less(t, tempF, 80.0)
	assert.GreaterOrEqual(t, r.HumidityPct, 40.0)
	assert.Less(t, r.HumidityPct, 80.0)
	windMph := weather.MSToMph(r.WindSpeedMS)
	assert.GreaterOrEqual(t, windMph, 5.0-1e-9)
	assert.Less(t, windMph, 25.0)
	assert.Contains(t, weather.Conditions, r.Condition)
}

func TestMockProvider_SeedIsReproducible(t *testing.T) {
	q := weather.Query{Label: "Paris", Time: "2024-06-01T10:00"}
	a := NewMockProvider(WithLatency(0), WithSeed(7))
	b := NewMockProvider(WithLatency(0), WithSeed(7))

	for range 5 {
		ra, err := a.Fetch(context.Background(), q)
		require.NoError(t, err)
		rb, err := b.Fetch(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestMockProvider_FailureRate(t *testing.T) {
	p := NewMockProvider(WithLatency(0), WithFailureRate(1), WithSeed(1))

	_, err := p.Fetch(context.Background(), weather.Query{Label: "Paris", Time: "2024-06-01T10:00"})
	assert.ErrorIs(t, err, ErrMockFailure)
}

func TestMockProvider_CancelledWhileWaiting(t *testing.T) {
	p := NewMockProvider(WithClock(clockwork.NewFakeClock()), WithLatency(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Fetch(ctx, weather.Query{Label: "Paris", Time: "2024-06-01T10:00"})
	assert.ErrorIs(t, err, context.Canceled)
}
