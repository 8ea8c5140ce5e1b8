package telemetry

import (
	"log"
	"time"
)

// ServiceConfig controls how snapshots are derived from the stream.
type ServiceConfig struct {
	// WindowSize is the number of readings the rolling aggregate covers.
	WindowSize int
	// ViewWindow is the number of readings handed to the presentation layer.
	ViewWindow int
	// TrendEpsilonW is the dead-band for trend classification.
	TrendEpsilonW float64

	Thresholds Thresholds
}

// Service derives consumer-facing snapshots from the persisted stream. It is
// the only contract the presentation layer needs; it never reaches into
// generator internals.
type Service struct {
	store Store
	cfg   ServiceConfig
	now   func() time.Time
}

// NewService creates a Service. The clock is injected so tests can pin "now".
func NewService(store Store, cfg ServiceConfig, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, cfg: cfg, now: now}
}

// Snapshot loads the tail of the stream and derives the aggregate, status,
// insights, and freshness over it. A store read failure degrades to a no-data
// snapshot rather than an error: the consumer must keep rendering.
func (s *Service) Snapshot() Snapshot {
	now := s.now().UTC()

	readings, err := s.store.LoadTail(s.cfg.ViewWindow)
	if err != nil {
		log.Printf("snapshot: load failed, degrading to empty view: %v", err)
		readings = nil
	}

	agg := AggregateWindow(readings, s.cfg.WindowSize, s.cfg.TrendEpsilonW)

	var latest *Reading
	if len(readings) > 0 {
		latest = &readings[len(readings)-1]
	}

	return Snapshot{
		Readings:    readings,
		Latest:      latest,
		Aggregate:   agg,
		Status:      Classify(latest, agg, now, s.cfg.Thresholds),
		Insights:    ComputeInsights(readings, now, s.cfg.Thresholds),
		Freshness:   freshness(latest, now, s.cfg.Thresholds.StaleAfter),
		GeneratedAt: now,
	}
}

// Latest returns the most recent reading, or ErrNoReadings.
func (s *Service) Latest() (Reading, error) {
	readings, err := s.store.LoadTail(1)
	if err != nil {
		return Reading{}, err
	}
	if len(readings) == 0 {
		return Reading{}, ErrNoReadings
	}
	return readings[len(readings)-1], nil
}

// Tail returns up to n of the most recent readings, oldest first.
func (s *Service) Tail(n int) ([]Reading, error) {
	return s.store.LoadTail(n)
}

// ViewWindow exposes the configured default view size for the HTTP layer.
func (s *Service) ViewWindow() int {
	return s.cfg.ViewWindow
}

func freshness(latest *Reading, now time.Time, staleAfter time.Duration) Freshness {
	if latest == nil {
		return FreshnessNoData
	}
	if now.Sub(latest.Timestamp) > staleAfter {
		return FreshnessStale
	}
	return FreshnessLive
}
