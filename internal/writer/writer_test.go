package writer

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkoshel/solarfeed/internal/telemetry"
)

// stubStore records appends and can fail a configurable number of times.
type stubStore struct {
	mu        sync.Mutex
	readings  []telemetry.Reading
	failFirst int // fail this many appends before succeeding
	failAll   bool
	attempts  int
}

func (s *stubStore) Append(r telemetry.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.failAll || s.attempts <= s.failFirst {
		return errors.New("disk full")
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *stubStore) LoadAll() ([]telemetry.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.Reading(nil), s.readings...), nil
}

func (s *stubStore) LoadTail(n int) ([]telemetry.Reading, error) {
	all, _ := s.LoadAll()
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func testSampler(now func() time.Time) *telemetry.Sampler {
	cfg := telemetry.SamplerConfig{
		BaseTempC: 25, TempStepC: 0.6, TempMinC: 10, TempMaxC: 55,
		BasePowerW: 900, PowerAmplitudeW: 180, PowerNoiseW: 40, PowerMaxW: 6000,
	}
	return telemetry.NewSampler(cfg, rand.New(rand.NewSource(1)), now)
}

func TestWriter_StopsAtMaxRows(t *testing.T) {
	st := &stubStore{}
	w := New(st, testSampler(time.Now), Config{
		Interval: time.Millisecond,
		MaxRows:  5,
	})

	err := w.Run(context.Background())

	require.NoError(t, err)
	all, _ := st.LoadAll()
	assert.Len(t, all, 5)
}

func TestWriter_TimestampsStrictlyIncreasingUnderFrozenClock(t *testing.T) {
	// The wall clock never advances; the writer must synthesize
	// monotonically increasing timestamps rather than persist duplicates.
	frozen := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	st := &stubStore{}
	w := New(st, testSampler(func() time.Time { return frozen }), Config{
		Interval: time.Millisecond,
		MaxRows:  10,
	})

	require.NoError(t, w.Run(context.Background()))

	all, _ := st.LoadAll()
	require.Len(t, all, 10)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i].Timestamp.After(all[i-1].Timestamp),
			"timestamp %d not after its predecessor", i)
	}
}

func TestWriter_TimestampsStrictlyIncreasingUnderClockSkew(t *testing.T) {
	// Randomized tick timing including a clock that occasionally jumps
	// backwards must never produce a non-monotonic stream.
	rng := rand.New(rand.NewSource(99))
	current := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	skewed := func() time.Time {
		// Jump forward 0-3s, or backwards 1s a quarter of the time.
		current = current.Add(time.Duration(rng.Intn(4)-1) * time.Second)
		return current
	}

	st := &stubStore{}
	w := New(st, testSampler(skewed), Config{
		Interval: time.Millisecond,
		MaxRows:  50,
	})

	require.NoError(t, w.Run(context.Background()))

	all, _ := st.LoadAll()
	require.Len(t, all, 50)
	for i := 1; i < len(all); i++ {
		require.True(t, all[i].Timestamp.After(all[i-1].Timestamp),
			"timestamp %d not after its predecessor", i)
	}
}

func TestWriter_RetriesSameReadingThenSucceeds(t *testing.T) {
	st := &stubStore{failFirst: 2}
	w := New(st, testSampler(time.Now), Config{
		Interval:          time.Millisecond,
		MaxRows:           3,
		MaxAppendFailures: 5,
	})

	require.NoError(t, w.Run(context.Background()))

	all, _ := st.LoadAll()
	require.Len(t, all, 3)
	// Two failed attempts plus three successes.
	assert.Equal(t, 5, st.attempts)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}
}

func TestWriter_FatalAfterRetryBudgetExhausted(t *testing.T) {
	st := &stubStore{failAll: true}
	w := New(st, testSampler(time.Now), Config{
		Interval:          time.Millisecond,
		MaxAppendFailures: 3,
	})

	err := w.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry budget exhausted")
}

func TestWriter_StopsOnCancellation(t *testing.T) {
	st := &stubStore{}
	w := New(st, testSampler(time.Now), Config{Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err, "cancellation is a clean stop, not a failure")
	case <-time.After(time.Second):
		t.Fatal("writer did not stop after cancellation")
	}

	all, _ := st.LoadAll()
	assert.NotEmpty(t, all)
}
