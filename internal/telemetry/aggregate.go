package telemetry

// AggregateWindow computes rolling statistics over the last n readings.
// The trend compares the mean of the second half of the window against the
// first half; epsilonW is a dead-band that keeps near-flat signals from
// flapping between rising and falling every tick.
//
// An empty stream yields {0, stable, 0} rather than an error so callers can
// render the "no data yet" case without special-casing.
func AggregateWindow(readings []Reading, n int, epsilonW float64) Aggregate {
	if n > len(readings) {
		n = len(readings)
	}
	if n <= 0 {
		return Aggregate{Trend: TrendStable}
	}

	window := readings[len(readings)-n:]

	var sum float64
	for _, r := range window {
		sum += r.PowerW
	}

	trend := TrendStable
	if n >= 2 {
		// Symmetric halves; the middle element is excluded when n is odd.
		half := n / 2
		first := meanPower(window[:half])
		second := meanPower(window[n-half:])

		switch diff := second - first; {
		case diff > epsilonW:
			trend = TrendRising
		case diff < -epsilonW:
			trend = TrendFalling
		}
	}

	return Aggregate{
		MovingAvgPowerW: sum / float64(n),
		Trend:           trend,
		SampleCount:     n,
	}
}

func meanPower(readings []Reading) float64 {
	var sum float64
	for _, r := range readings {
		sum += r.PowerW
	}
	return sum / float64(len(readings))
}
