package telemetry

import (
	"errors"
	"time"
)

// ErrNoReadings is returned when the stream holds no readings yet.
var ErrNoReadings = errors.New("no readings in stream")

// Reading is a single simulated PV sensor sample.
// Readings are immutable once appended to the stream.
type Reading struct {
	Timestamp    time.Time `json:"timestamp"` // always UTC
	TemperatureC float64   `json:"temperatureC"`
	PowerW       float64   `json:"powerW"`
}

// Trend is a coarse classification of recent power movement.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// Aggregate holds rolling statistics over the most recent window of readings.
type Aggregate struct {
	MovingAvgPowerW float64 `json:"movingAvgPowerW"`
	Trend           Trend   `json:"trend"`
	SampleCount     int     `json:"sampleCount"`
}

// Status is the operator-facing health classification.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusLowOutput Status = "low_output"
	StatusOverheat  Status = "overheat"
	StatusNoData    Status = "no_data"
)

// StatusLabel pairs a status with a human-readable message for display.
type StatusLabel struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Level grades an insight for display purposes.
type Level string

const (
	LevelOK   Level = "ok"
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Insight is a single human-readable observation about the recent stream.
type Insight struct {
	Text  string `json:"text"`
	Level Level  `json:"level"`
}

// Freshness describes how recent the newest reading is.
type Freshness string

const (
	FreshnessLive   Freshness = "live"
	FreshnessStale  Freshness = "stale"
	FreshnessNoData Freshness = "no_data"
)

// Snapshot is the consumer-facing bundle handed to the presentation layer.
// It is derived on every refresh and never persisted.
type Snapshot struct {
	Readings    []Reading   `json:"readings"`
	Latest      *Reading    `json:"latest,omitempty"`
	Aggregate   Aggregate   `json:"aggregate"`
	Status      StatusLabel `json:"status"`
	Insights    []Insight   `json:"insights"`
	Freshness   Freshness   `json:"freshness"`
	GeneratedAt time.Time   `json:"generatedAt"`
}

// Store is the contract the CSV-backed stream store (and any future
// persistent store) must satisfy. Append is the only mutator; readers
// get point-in-time slices and never observe partial records.
type Store interface {
	Append(r Reading) error
	LoadAll() ([]Reading, error)
	LoadTail(n int) ([]Reading, error)
}
