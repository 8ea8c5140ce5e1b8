package main

import (
	"context"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/vkoshel/solarfeed/internal/config"
	"github.com/vkoshel/solarfeed/internal/store"
	"github.com/vkoshel/solarfeed/internal/telemetry"
	"github.com/vkoshel/solarfeed/internal/writer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	csvStore, err := store.NewCSVStore(cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sampler := telemetry.NewSampler(cfg.Sampler, rng, time.Now)

	w := writer.New(csvStore, sampler, writer.Config{
		Interval:          cfg.TickInterval,
		MaxRows:           cfg.MaxRows,
		MaxAppendFailures: uint32(cfg.AppendMaxFailures),
	})

	log.Printf("writing live data to %s every %v", csvStore.Path(), cfg.TickInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run returns nil on cancellation or row limit; anything else is fatal.
	if err := w.Run(ctx); err != nil {
		log.Fatalf("writer failed: %v", err)
	}
}
