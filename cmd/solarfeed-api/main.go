package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/vkoshel/solarfeed/internal/api/http"
	"github.com/vkoshel/solarfeed/internal/config"
	"github.com/vkoshel/solarfeed/internal/poller"
	"github.com/vkoshel/solarfeed/internal/store"
	"github.com/vkoshel/solarfeed/internal/telemetry"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// CSV-backed stream store; read-only from this process.
	csvStore, err := store.NewCSVStore(cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	// Core service deriving snapshots from the stream.
	service := telemetry.NewService(csvStore, telemetry.ServiceConfig{
		WindowSize:    cfg.WindowSize,
		ViewWindow:    cfg.ViewWindow,
		TrendEpsilonW: cfg.TrendEpsilonW,
		Thresholds:    cfg.Thresholds,
	}, time.Now)

	// Poller that refreshes the cached snapshot on a fixed period.
	p := poller.New(service, cfg.RefreshInterval)
	if err := p.Start(); err != nil {
		log.Fatalf("failed to start poller: %v", err)
	}
	defer p.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "solarfeed-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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
			"service": "solarfeed-api",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, p)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
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
