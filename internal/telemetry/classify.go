package telemetry

import (
	"fmt"
	"time"
)

// Thresholds are the tunable limits driving status classification and
// insights. They are configuration, not constants; defaults live in
// internal/config.
type Thresholds struct {
	TempHighC float64
	TempLowC  float64

	PowerHighW float64
	PowerLowW  float64

	// SpikeW is the per-tick power delta that counts as a spike or drop.
	SpikeW float64

	// StaleAfter is how old the newest reading may be before the feed is
	// considered stale.
	StaleAfter time.Duration

	// Daylight window in whole UTC hours, [start, end).
	DaylightStartHour int
	DaylightEndHour   int
}

// Classify derives the operator-facing status from the latest reading and the
// rolling aggregate. Overheat takes priority over low output: a thermal fault
// is more urgent to surface than a yield fault. Low average power outside
// daylight hours is expected and classified as normal.
func Classify(latest *Reading, agg Aggregate, now time.Time, th Thresholds) StatusLabel {
	if agg.SampleCount == 0 || latest == nil {
		return StatusLabel{Status: StatusNoData, Message: "no readings yet"}
	}

	if latest.TemperatureC > th.TempHighC {
		return StatusLabel{
			Status:  StatusOverheat,
			Message: fmt.Sprintf("temperature %.1f°C exceeds %.1f°C limit", latest.TemperatureC, th.TempHighC),
		}
	}

	if agg.MovingAvgPowerW < th.PowerLowW && isDaylight(now, th) {
		return StatusLabel{
			Status:  StatusLowOutput,
			Message: fmt.Sprintf("average power %.0f W below %.0f W during daylight", agg.MovingAvgPowerW, th.PowerLowW),
		}
	}

	return StatusLabel{
		Status:  StatusNormal,
		Message: fmt.Sprintf("temperature %.1f°C, average power %.0f W", latest.TemperatureC, agg.MovingAvgPowerW),
	}
}

func isDaylight(now time.Time, th Thresholds) bool {
	h := now.UTC().Hour()
	return h >= th.DaylightStartHour && h < th.DaylightEndHour
}

// ComputeInsights produces display-ready observations over the recent view:
// temperature and power level checks, spike/drop detection against the
// previous reading, and feed freshness.
func ComputeInsights(readings []Reading, now time.Time, th Thresholds) []Insight {
	if len(readings) < 3 {
		return []Insight{{Text: "waiting for more data points", Level: LevelInfo}}
	}

	latest := readings[len(readings)-1]
	prev := readings[len(readings)-2]

	var insights []Insight

	switch {
	case latest.TemperatureC >= th.TempHighC:
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("high temperature detected: %.1f°C", latest.TemperatureC),
			Level: LevelWarn,
		})
	case latest.TemperatureC <= th.TempLowC:
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("low temperature detected: %.1f°C", latest.TemperatureC),
			Level: LevelWarn,
		})
	default:
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("temperature normal: %.1f°C", latest.TemperatureC),
			Level: LevelOK,
		})
	}

	switch {
	case latest.PowerW >= th.PowerHighW:
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("high power usage: %.0f W", latest.PowerW),
			Level: LevelWarn,
		})
	case latest.PowerW <= th.PowerLowW:
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("very low power output: %.0f W", latest.PowerW),
			Level: LevelInfo,
		})
	default:
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("power stable: %.0f W", latest.PowerW),
			Level: LevelOK,
		})
	}

	delta := latest.PowerW - prev.PowerW
	if delta > th.SpikeW {
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("load spike detected: +%.0f W since last reading", delta),
			Level: LevelWarn,
		})
	} else if delta < -th.SpikeW {
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("load drop detected: %.0f W since last reading", delta),
			Level: LevelInfo,
		})
	}

	if age := now.Sub(latest.Timestamp); age > th.StaleAfter {
		insights = append(insights, Insight{
			Text:  fmt.Sprintf("data delay: last reading %ds ago", int(age.Seconds())),
			Level: LevelWarn,
		})
	} else {
		insights = append(insights, Insight{Text: "live feed healthy", Level: LevelOK})
	}

	return insights
}
