package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// SamplerConfig holds the bounds and shape parameters of the synthetic signal.
type SamplerConfig struct {
	BaseTempC float64
	TempStepC float64 // max random-walk step per tick
	TempMinC  float64
	TempMaxC  float64

	BasePowerW      float64
	PowerAmplitudeW float64 // diurnal wave amplitude
	PowerNoiseW     float64 // max uniform noise per tick
	PowerMaxW       float64
}

// Sampler produces one synthetic reading per tick. Temperature follows a
// bounded random walk with a slow wave component; power follows a compressed
// diurnal curve with noise and occasional load spikes/dips, so the downstream
// trend and status logic has a non-degenerate signal to work on.
type Sampler struct {
	cfg  SamplerConfig
	rng  *rand.Rand
	now  func() time.Time
	tick int
}

// NewSampler creates a Sampler. The random source and clock are injected so
// tests can supply deterministic sequences.
func NewSampler(cfg SamplerConfig, rng *rand.Rand, now func() time.Time) *Sampler {
	if now == nil {
		now = time.Now
	}
	return &Sampler{cfg: cfg, rng: rng, now: now}
}

// Next generates the reading that follows prev. Pass nil for the first call;
// the walk then starts at the configured base temperature. All outputs are
// clamped, so Next never fails.
func (s *Sampler) Next(prev *Reading) Reading {
	t := float64(s.tick)
	s.tick++

	temp := s.cfg.BaseTempC
	if prev != nil {
		temp = prev.TemperatureC
	}

	// Random walk plus the delta of a slow wave, so the walk drifts with a
	// daily-ish shape instead of wandering freely.
	step := s.uniform(-s.cfg.TempStepC, s.cfg.TempStepC)
	wave := 2.5 * (math.Sin(t/35.0) - math.Sin((t-1)/35.0))
	temp = clamp(temp+step+wave, s.cfg.TempMinC, s.cfg.TempMaxC)

	power := s.cfg.BasePowerW +
		s.cfg.PowerAmplitudeW*math.Sin(t/12.0) +
		s.uniform(-s.cfg.PowerNoiseW, s.cfg.PowerNoiseW)

	// Occasional spikes (load switching) and dips (cloud cover / load off).
	if s.rng.Float64() < 0.08 {
		power += s.uniform(250, 700)
	}
	if s.rng.Float64() < 0.05 {
		power -= s.uniform(150, 400)
	}
	power = clamp(power, 0, s.cfg.PowerMaxW)

	return Reading{
		Timestamp:    s.now().UTC().Truncate(time.Second),
		TemperatureC: round(temp, 2),
		PowerW:       round(power, 1),
	}
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
