package poller

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vkoshel/solarfeed/internal/telemetry"
)

// Poller periodically refreshes a cached snapshot of the stream for the HTTP
// layer, so every request does not re-read the store. This is the consumer
// poll loop: a fixed refresh period, cancellation honored between cycles.
type Poller struct {
	scheduler *gocron.Scheduler
	service   *telemetry.Service
	interval  time.Duration

	mu     sync.RWMutex
	latest telemetry.Snapshot
	ready  bool
}

// New creates a Poller refreshing every interval.
func New(service *telemetry.Service, interval time.Duration) *Poller {
	return &Poller{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
	}
}

// Start schedules the periodic refresh and runs one refresh immediately so
// the cache is populated before the first request.
func (p *Poller) Start() error {
	seconds := int(p.interval.Seconds())
	if seconds <= 0 {
		seconds = 2
	}

	if _, err := p.scheduler.Every(seconds).Seconds().Do(p.refresh); err != nil {
		return err
	}

	p.refresh()
	p.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler; a refresh already in flight completes.
func (p *Poller) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// Latest returns the cached snapshot. ok is false until the first refresh
// has completed.
func (p *Poller) Latest() (telemetry.Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.ready
}

func (p *Poller) refresh() {
	snap := p.service.Snapshot()

	p.mu.Lock()
	if p.ready && p.latest.Status.Status != snap.Status.Status {
		log.Printf("poller: status changed %s -> %s (%s)",
			p.latest.Status.Status, snap.Status.Status, snap.Status.Message)
	}
	p.latest = snap
	p.ready = true
	p.mu.Unlock()
}
