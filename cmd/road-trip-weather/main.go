package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/road-trip-weather/internal/api/http"
	"github.com/i474232898/road-trip-weather/internal/config"
	"github.com/i474232898/road-trip-weather/internal/geocode"
	"github.com/i474232898/road-trip-weather/internal/observability"
	"github.com/i474232898/road-trip-weather/internal/scheduler"
	"github.com/i474232898/road-trip-weather/internal/store"
	"github.com/i474232898/road-trip-weather/internal/trip"
	"github.com/i474232898/road-trip-weather/internal/weather"
	"github.com/i474232898/road-trip-weather/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provs := buildProviders(cfg, httpClient, metrics, log)
	gateway := weather.NewService(provs, metrics, log)
	log.Info("weather gateway ready", "providers", gateway.Providers())

	sessions := store.NewMemoryStore(cfg.SessionIdleTTL, clockwork.NewRealClock(), metrics)

	newOrchestrator := func(m trip.Modality) *trip.Orchestrator {
		return trip.NewOrchestrator(m, gateway, trip.Options{
			LookupTimeout: cfg.LookupTimeout,
			Logger:        log,
			Metrics:       metrics,
		})
	}

	// Evicts sessions whose page went away.
	sched := scheduler.New(sessions, cfg.SessionSweepInterval, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "road-trip-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "road-trip-weather",
			"sessions": sessions.Len(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, sessions, newOrchestrator)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()
	log.Info("listening", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

func buildProviders(cfg *config.AppConfig, client *http.Client, metrics *observability.Metrics, log *slog.Logger) []weather.Provider {
	var provs []weather.Provider
	for _, name := range cfg.Providers {
		switch name {
		case config.ProviderMock:
			provs = append(provs, providers.NewMockProvider(
				providers.WithLatency(cfg.MockLatency),
				providers.WithFailureRate(cfg.MockFailureRate),
			))
		case config.ProviderOpenMeteo:
			// Open-Meteo needs coordinates; text locations are geocoded first.
			var geo weather.Geocoder
			if g, err := geocode.NewGoogle(cfg.GeocoderAPIKey); err != nil {
				log.Warn("openmeteo: geocoder unavailable, only map pins can be looked up", "error", err)
			} else {
				geo = geocode.NewCached(g, cfg.GeocodeCacheSize, metrics)
			}
			provs = append(provs, providers.NewOpenMeteoProvider(client, geo))
		case config.ProviderWeatherAPI:
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
		case config.ProviderOpenWeather:
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
		}
	}
	return provs
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
