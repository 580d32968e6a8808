package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-chat-assistant/internal/api/http"
	"github.com/i474232898/weather-chat-assistant/internal/chat"
	"github.com/i474232898/weather-chat-assistant/internal/completion"
	"github.com/i474232898/weather-chat-assistant/internal/config"
	"github.com/i474232898/weather-chat-assistant/internal/geo"
	"github.com/i474232898/weather-chat-assistant/internal/locations"
	"github.com/i474232898/weather-chat-assistant/internal/resolve"
	"github.com/i474232898/weather-chat-assistant/internal/scheduler"
	"github.com/i474232898/weather-chat-assistant/internal/session"
	"github.com/i474232898/weather-chat-assistant/internal/weather"
	"github.com/i474232898/weather-chat-assistant/internal/weather/providers"
)

func main() {
	// Load configuration (config owns .env loading).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Weather data gateway: process-wide TTL cache in front of Tomorrow.io.
	cache := weather.NewCache(cfg.CacheTTL)
	provider := providers.NewTomorrowIOProvider(httpClient, cfg.TomorrowAPIKey, cfg.WeatherTimezone, cfg.WeatherMaxRetries)
	gateway := weather.NewGateway(cache, provider)

	// Completion gateway shared by the resolvers and the orchestrator.
	completions := completion.NewOpenAIClient(cfg.CompletionBaseURL, cfg.CompletionAPIKey, cfg.CompletionModel)

	// Session store: sqlite when configured, in-memory otherwise.
	var sessions session.Store
	if cfg.SessionDBPath != "" {
		sqlStore, err := session.NewSQLiteStore(cfg.SessionDBPath)
		if err != nil {
			log.Fatalf("failed to open session store: %v", err)
		}
		defer sqlStore.Close()
		sessions = sqlStore
	} else {
		sessions = session.NewMemoryStore()
	}

	saved := locations.NewMemoryStore()
	geocoder := geo.New(cfg.GeocoderAPIKey)

	locationResolver := resolve.NewLocationResolver(completions, saved)
	temporalResolver := resolve.NewTemporalResolver(completions)

	orch := chat.NewOrchestrator(completions, locationResolver, temporalResolver, gateway, sessions, geocoder)

	// Scheduler that keeps cache entries hot for configured locations.
	sched := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, gateway)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-chat-assistant",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-chat-assistant",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, orch, sessions, saved)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
