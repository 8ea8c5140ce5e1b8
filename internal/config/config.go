package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/vkoshel/solarfeed/internal/telemetry"
)

// AppConfig is the explicit configuration passed to the writer, store, and
// service at construction; there is no process-wide singleton.
type AppConfig struct {
	// StorePath is the location of the append-only CSV stream.
	StorePath string

	// TickInterval is the producer's sampling period.
	TickInterval time.Duration

	// RefreshInterval is the consumer's snapshot poll period.
	RefreshInterval time.Duration

	// MaxRows stops the producer after N rows (0 = run forever).
	MaxRows int

	// AppendMaxFailures is the producer's append retry budget.
	AppendMaxFailures int

	// WindowSize is the rolling-aggregate window; ViewWindow is the larger
	// slice handed to the presentation layer.
	WindowSize    int
	ViewWindow    int
	TrendEpsilonW float64

	Thresholds telemetry.Thresholds
	Sampler    telemetry.SamplerConfig

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.StorePath = getenvDefault("STORE_PATH", "data/live_data.csv")
	cfg.Port = getenvDefault("PORT", "8080")

	tick, err := getenvDuration("TICK_INTERVAL", "2s")
	if err != nil {
		return nil, err
	}
	cfg.TickInterval = tick

	refresh, err := getenvDuration("REFRESH_INTERVAL", "2s")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = refresh

	cfg.MaxRows = getenvInt("MAX_ROWS", 0)
	cfg.AppendMaxFailures = getenvInt("APPEND_MAX_FAILURES", 5)

	cfg.WindowSize = getenvInt("WINDOW_SIZE", 20)
	cfg.ViewWindow = getenvInt("VIEW_WINDOW", 120)
	cfg.TrendEpsilonW = getenvFloat("TREND_EPSILON_W", 5)

	stale, err := getenvDuration("STALE_AFTER", "30s")
	if err != nil {
		return nil, err
	}

	cfg.Thresholds = telemetry.Thresholds{
		TempHighC:         getenvFloat("TEMP_HIGH_C", 38),
		TempLowC:          getenvFloat("TEMP_LOW_C", 16),
		PowerHighW:        getenvFloat("POWER_HIGH_W", 2500),
		PowerLowW:         getenvFloat("POWER_LOW_W", 150),
		SpikeW:            getenvFloat("SPIKE_W", 400),
		StaleAfter:        stale,
		DaylightStartHour: getenvInt("DAYLIGHT_START_HOUR", 7),
		DaylightEndHour:   getenvInt("DAYLIGHT_END_HOUR", 19),
	}

	cfg.Sampler = telemetry.SamplerConfig{
		BaseTempC:       getenvFloat("BASE_TEMP_C", 25),
		TempStepC:       getenvFloat("TEMP_STEP_C", 0.6),
		TempMinC:        getenvFloat("TEMP_MIN_C", 10),
		TempMaxC:        getenvFloat("TEMP_MAX_C", 55),
		BasePowerW:      getenvFloat("BASE_POWER_W", 900),
		PowerAmplitudeW: getenvFloat("POWER_AMPLITUDE_W", 180),
		PowerNoiseW:     getenvFloat("POWER_NOISE_W", 40),
		PowerMaxW:       getenvFloat("POWER_MAX_W", 6000),
	}

	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("WINDOW_SIZE must be positive")
	}
	if cfg.ViewWindow < cfg.WindowSize {
		return nil, fmt.Errorf("VIEW_WINDOW must be at least WINDOW_SIZE")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
