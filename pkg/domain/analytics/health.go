package analytics

import (
	"math"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
)

// Component point caps and neutral fallbacks for the health score.
const (
	progressMax  = 30.0
	scheduleMax  = 30.0
	stabilityMax = 20.0
	trendMax     = 20.0

	scheduleNeutral  = 15.0
	stabilityNeutral = 10.0
	trendNeutral     = 10.0

	// scheduleScaleDays controls how quickly the tanh schedule curve
	// saturates; at ±45 buffer days the component is within 2% of its
	// asymptote.
	scheduleScaleDays = 20.0

	// stabilityDecayCV is the coefficient of variation at which the
	// stability component reaches zero.
	stabilityDecayCV = 1.5

	// stabilityWindow caps how many trailing weeks feed the CV.
	stabilityWindow = 10

	// trendMinRecords is the minimum history for a half-split comparison.
	trendMinRecords = 4

	// trendFullSwingPercent is the velocity change that moves the trend
	// component from neutral to an extreme (±10 points per ±50%).
	trendFullSwingPercent = 50.0
)

// HealthScore is a composite 0-100 project health rating built from four
// weighted components. Total is always round(sum of components) clamped to
// [0,100].
type HealthScore struct {
	Progress  float64 `json:"progress"`  // 0-30, completion percentage
	Schedule  float64 `json:"schedule"`  // 0-30, buffer-day sigmoid
	Stability float64 `json:"stability"` // 0-20, velocity dispersion
	Trend     float64 `json:"trend"`     // 0-20, velocity direction
	Total     int     `json:"total"`     // 0-100
}

// ComputeHealthScore derives the composite score from a completion
// percentage, optional schedule day counts, and the filtered weekly series.
// Either nil day count leaves the schedule component at its neutral 15.
// Stability and trend fall back to neutral 10 when the series is too short or
// its mean is zero; no input can make the computation fail.
//
// Stability and trend deliberately re-derive their statistics from the series
// rather than reusing a forecast: the forecast favors recency, while these
// components weigh all sampled weeks equally.
func ComputeHealthScore(completionPct float64, daysToDeadline, daysToCompletion *float64, series []metrics.WeeklyRecord) HealthScore {
	score := HealthScore{
		Progress:  progressComponent(completionPct),
		Schedule:  scheduleComponent(daysToDeadline, daysToCompletion),
		Stability: stabilityComponent(series),
		Trend:     trendComponent(series),
	}

	total := math.Round(score.Progress + score.Schedule + score.Stability + score.Trend)
	score.Total = int(clamp(total, 0, 100))
	return score
}

func progressComponent(completionPct float64) float64 {
	return clamp(completionPct, 0, 100) / 100 * progressMax
}

// scheduleComponent maps buffer days through a symmetric tanh sigmoid:
// 0 buffer scores the neutral 15, +45 days approaches 29.7, -45 days
// approaches 0.3, with no step discontinuity anywhere.
func scheduleComponent(daysToDeadline, daysToCompletion *float64) float64 {
	if daysToDeadline == nil || daysToCompletion == nil {
		return scheduleNeutral
	}
	bufferDays := *daysToDeadline - *daysToCompletion
	return (math.Tanh(bufferDays/scheduleScaleDays) + 1) * (scheduleMax / 2)
}

// stabilityComponent scores velocity consistency over the trailing
// min(10, n) weeks: 20 at CV=0 decaying linearly to 0 at CV>=1.5.
func stabilityComponent(series []metrics.WeeklyRecord) float64 {
	window := series
	if len(window) > stabilityWindow {
		window = window[len(window)-stabilityWindow:]
	}
	if len(window) < 2 {
		return stabilityNeutral
	}

	counts := make([]float64, len(window))
	for i, rec := range window {
		counts[i] = float64(rec.Completed())
	}

	mean := meanOf(counts)
	if mean == 0 {
		return stabilityNeutral
	}

	cv := stdevOf(counts, mean) / mean
	return stabilityMax * math.Max(0, 1-cv/stabilityDecayCV)
}

// trendComponent splits the series at its midpoint and compares the mean
// velocity of the two halves: +50% change scores the full 20, -50% scores 0,
// neutral 10 in between and whenever too little history exists.
func trendComponent(series []metrics.WeeklyRecord) float64 {
	if len(series) < trendMinRecords {
		return trendNeutral
	}

	mid := len(series) / 2
	olderMean := meanCompleted(series[:mid])
	recentMean := meanCompleted(series[mid:])

	if olderMean == 0 {
		return trendNeutral
	}

	velocityChangePct := (recentMean - olderMean) / olderMean * 100
	return clamp(trendNeutral+velocityChangePct/trendFullSwingPercent*trendNeutral, 0, trendMax)
}

func meanCompleted(records []metrics.WeeklyRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, rec := range records {
		sum += float64(rec.Completed())
	}
	return sum / float64(len(records))
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdevOf computes the population standard deviation around a known mean.
func stdevOf(values []float64, mean float64) float64 {
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
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
