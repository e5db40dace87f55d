package providers

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

// ErrMockFailure is returned when the mock provider is told to fail a lookup.
var ErrMockFailure = errors.New("mock provider: simulated failure")

// MockProvider produces random weather after a fixed artificial latency.
// It stands in for a real provider during development and demos.
type MockProvider struct {
	clock       clockwork.Clock
	latency     time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// MockOption configures a MockProvider.
type MockOption func(*MockProvider)

// WithClock swaps the time source used for the artificial latency.
func WithClock(c clockwork.Clock) MockOption {
	return func(p *MockProvider) { p.clock = c }
}

// WithLatency sets the artificial latency. Zero disables it.
func WithLatency(d time.Duration) MockOption {
	return func(p *MockProvider) { p.latency = d }
}

// WithFailureRate sets the probability in [0,1] that a fetch fails.
func WithFailureRate(rate float64) MockOption {
	return func(p *MockProvider) { p.failureRate = rate }
}

// WithSeed makes the random output reproducible.
func WithSeed(seed uint64) MockOption {
	return func(p *MockProvider) { p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func NewMockProvider(opts ...MockOption) *MockProvider {
	p := &MockProvider{
		clock:   clockwork.NewRealClock(),
		latency: 500 * time.Millisecond,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MockProvider) Name() string {
	return "mock"
}

func (p *MockProvider) Fetch(ctx context.Context, q weather.Query) (weather.ProviderReading, error) {
	if p.latency > 0 {
		select {
		case <-ctx.Done():
			return weather.ProviderReading{}, ctx.Err()
		case <-p.clock.After(p.latency):
		}
	}

	p.mu.Lock()
	fail := p.failureRate > 0 && p.rng.Float64() < p.failureRate
	tempF := float64(p.rng.IntN(30) + 50)
	cond := weather.Conditions[p.rng.IntN(len(weather.Conditions))]
	humidity := float64(p.rng.IntN(40) + 40)
	windMph := float64(p.rng.IntN(20) + 5)
	p.mu.Unlock()

	if fail {
		return weather.ProviderReading{}, ErrMockFailure
	}

	ts, err := weather.ParseLocalTime(q.Time)
	if err != nil {
		ts = p.clock.Now().UTC()
	}

	return weather.ProviderReading{
		ProviderName: p.Name(),
		Timestamp:    ts,
		TemperatureC: weather.FahrenheitToCelsius(tempF),
		HumidityPct:  humidity,
		WindSpeedMS:  weather.MphToMS(windMph),
		Condition:    cond,
	}, nil
}
