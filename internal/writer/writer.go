package writer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/vkoshel/solarfeed/internal/telemetry"
)

// Config controls the producer loop.
type Config struct {
	// Interval is the tick period. Wake times are computed as
	// start + k*interval, so scheduling jitter does not accumulate.
	Interval time.Duration

	// MaxRows stops the loop after that many persisted readings (0 = run
	// until cancelled).
	MaxRows int

	// MaxAppendFailures is the number of consecutive failed appends
	// tolerated before the writer gives up and reports fatal.
	MaxAppendFailures uint32
}

// Writer owns the sampler and drives the tick loop: sample, persist, sleep
// until the next tick boundary. A failed append is retried with the same
// reading on the next tick; once the retry budget is exhausted the loop stops
// with an error so the process can exit non-zero.
type Writer struct {
	store   telemetry.Store
	sampler *telemetry.Sampler
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	runID   string

	last *telemetry.Reading // last successfully persisted reading
}

// New creates a Writer around the given store and sampler.
func New(store telemetry.Store, sampler *telemetry.Sampler, cfg Config) *Writer {
	if cfg.MaxAppendFailures == 0 {
		cfg.MaxAppendFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "store-append",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxAppendFailures
		},
	})

	return &Writer{
		store:   store,
		sampler: sampler,
		cfg:     cfg,
		breaker: cb,
		runID:   uuid.NewString(),
	}
}

// Run executes the tick loop until ctx is cancelled, the configured row limit
// is reached, or the append retry budget is exhausted. Cancellation is
// honored at tick boundaries only; an in-flight append always completes.
func (w *Writer) Run(ctx context.Context) error {
	log.Printf("writer %s: starting, interval %v, store appends via circuit breaker (budget %d)",
		w.runID, w.cfg.Interval, w.cfg.MaxAppendFailures)

	start := time.Now()
	rows := 0
	var pending *telemetry.Reading

	for k := 1; ; k++ {
		if pending == nil {
			r := w.sampler.Next(w.last)
			w.ensureMonotonic(&r)
			pending = &r
		}

		_, err := w.breaker.Execute(func() (interface{}, error) {
			return nil, w.store.Append(*pending)
		})
		switch {
		case errors.Is(err, gobreaker.ErrOpenState):
			return fmt.Errorf("writer %s: append retry budget exhausted: %w", w.runID, err)
		case err != nil:
			log.Printf("writer %s: append failed, retrying same reading next tick: %v", w.runID, err)
		default:
			w.last = pending
			pending = nil
			rows++
			if rows%10 == 0 {
				log.Printf("writer %s: wrote %d rows, latest %.1f°C %.0f W",
					w.runID, rows, w.last.TemperatureC, w.last.PowerW)
			}
			if w.cfg.MaxRows > 0 && rows >= w.cfg.MaxRows {
				log.Printf("writer %s: reached %d rows, stopping", w.runID, rows)
				return nil
			}
		}

		next := start.Add(time.Duration(k) * w.cfg.Interval)
		select {
		case <-ctx.Done():
			log.Printf("writer %s: stopped after %d rows", w.runID, rows)
			return nil
		case <-time.After(time.Until(next)):
		}
	}
}

// ensureMonotonic keeps the stream invariant of strictly increasing
// timestamps even when the wall clock did not advance (retry on the same
// second, or clock skew).
func (w *Writer) ensureMonotonic(r *telemetry.Reading) {
	if w.last != nil && !r.Timestamp.After(w.last.Timestamp) {
		r.Timestamp = w.last.Timestamp.Add(time.Second)
	}
}
