package telemetry

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSamplerConfig() SamplerConfig {
	return SamplerConfig{
		BaseTempC:       25,
		TempStepC:       0.6,
		TempMinC:        10,
		TempMaxC:        55,
		BasePowerW:      900,
		PowerAmplitudeW: 180,
		PowerNoiseW:     40,
		PowerMaxW:       6000,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSampler_FirstReadingStartsAtBase(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	s := NewSampler(testSamplerConfig(), rand.New(rand.NewSource(1)), fixedClock(now))

	r := s.Next(nil)

	assert.Equal(t, now, r.Timestamp)
	assert.InDelta(t, 25, r.TemperatureC, 1.0)
}

func TestSampler_OutputsAlwaysClamped(t *testing.T) {
	cfg := testSamplerConfig()
	cfg.TempStepC = 50 // force the walk against its bounds
	cfg.PowerNoiseW = 10000

	s := NewSampler(cfg, rand.New(rand.NewSource(42)), fixedClock(time.Now()))

	var prev *Reading
	for i := 0; i < 500; i++ {
		r := s.Next(prev)
		require.GreaterOrEqual(t, r.TemperatureC, cfg.TempMinC)
		require.LessOrEqual(t, r.TemperatureC, cfg.TempMaxC)
		require.GreaterOrEqual(t, r.PowerW, 0.0)
		require.LessOrEqual(t, r.PowerW, cfg.PowerMaxW)
		prev = &r
	}
}

func TestSampler_DeterministicWithSeed(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	a := NewSampler(testSamplerConfig(), rand.New(rand.NewSource(7)), fixedClock(now))
	b := NewSampler(testSamplerConfig(), rand.New(rand.NewSource(7)), fixedClock(now))

	var prevA, prevB *Reading
	for i := 0; i < 50; i++ {
		ra := a.Next(prevA)
		rb := b.Next(prevB)
		require.Equal(t, ra, rb)
		prevA, prevB = &ra, &rb
	}
}

func TestSampler_SuccessiveValuesAreCorrelated(t *testing.T) {
	// Temperature is a bounded walk, not i.i.d. noise: consecutive samples
	// must stay within one step plus the wave component of each other.
	cfg := testSamplerConfig()
	s := NewSampler(cfg, rand.New(rand.NewSource(3)), fixedClock(time.Now()))

	prev := s.Next(nil)
	for i := 0; i < 200; i++ {
		r := s.Next(&prev)
		assert.LessOrEqual(t, r.TemperatureC-prev.TemperatureC, cfg.TempStepC+2.5)
		assert.GreaterOrEqual(t, r.TemperatureC-prev.TemperatureC, -(cfg.TempStepC + 2.5))
		prev = r
	}
}
