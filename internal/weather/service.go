package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/i474232898/road-trip-weather/internal/observability"
)

// ErrNoProviders is returned when the service has nothing to fetch from.
var ErrNoProviders = errors.New("no weather providers configured")

// Service looks up weather for a single query by fanning out to every
// configured provider and aggregating the readings that succeed.
type Service struct {
	providers []Provider
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService creates a new Service.
func NewService(providers []Provider, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		providers: providers,
		metrics:   metrics,
		logger:    logger,
	}
}

// Providers returns the names of the configured providers.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Lookup fetches data from all providers concurrently for the given query and
// aggregates successful readings. It fails with a *LookupError only when no
// provider produced a reading.
func (s *Service) Lookup(ctx context.Context, q Query) (Report, error) {
	if len(s.providers) == 0 {
		return Report{}, &LookupError{Query: q, Causes: []error{ErrNoProviders}}
	}

	type result struct {
		reading ProviderReading
		err     error
	}

	// One slot per provider keeps aggregation independent of completion order.
	results := make([]result, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			start := time.Now()
			r, err := p.Fetch(ctx, q)
			s.metrics.ProviderDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
			if err != nil {
				s.metrics.ProviderRequests.WithLabelValues(p.Name(), "error").Inc()
				s.logger.Debug("provider fetch failed",
					"provider", p.Name(),
					"location", q.Label,
					"time", q.Time,
					"error", err,
				)
				results[i] = result{err: fmt.Errorf("%s: %w", p.Name(), err)}
				return
			}
			s.metrics.ProviderRequests.WithLabelValues(p.Name(), "success").Inc()
			if r.ProviderName == "" {
				r.ProviderName = p.Name()
			}
			results[i] = result{reading: r}
		}()
	}

	wg.Wait()

	var (
		readings []ProviderReading
		causes   []error
	)
	for _, r := range results {
		if r.err != nil {
			causes = append(causes, r.err)
			continue
		}
		readings = append(readings, r.reading)
	}

	if len(readings) == 0 {
		return Report{}, &LookupError{Query: q, Causes: causes}
	}
	if len(causes) > 0 {
		s.logger.Info("partial provider coverage",
			"location", q.Label,
			"time", q.Time,
			"succeeded", len(readings),
			"failed", len(causes),
		)
	}

	return AggregateReadings(readings), nil
}
