// Package analytics derives short-horizon forecasts, trend classifications,
// and composite health scores from a filtered weekly series. Every function is
// a pure, deterministic computation over the snapshot it is handed; numeric
// edge cases (zero variance, zero mean, minimal history) resolve to documented
// neutral values rather than errors.
package analytics

import (
	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
)

// Confidence stages how much history backs a forecast.
type Confidence string

const (
	// ConfidenceBuilding indicates 2-3 weeks of history; the forecast uses
	// equal weights because there is not enough data to favor recency.
	ConfidenceBuilding Confidence = "building"
	// ConfidenceEstablished indicates a full 4-week window with
	// recency-weighted averaging.
	ConfidenceEstablished Confidence = "established"
)

// establishedWeights is the recency weighting applied once four complete
// weeks are available, oldest to newest.
var establishedWeights = []float64{0.1, 0.2, 0.3, 0.4}

// forecastWindow caps how many trailing weeks feed the forecast.
const forecastWindow = 4

// minForecastRecords is the floor below which no forecast is produced.
const minForecastRecords = 2

// ForecastRange is the expected band for a bidirectional metric.
type ForecastRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v falls inside the band, inclusive.
func (fr ForecastRange) Contains(v float64) bool {
	return v >= fr.Lower && v <= fr.Upper
}

// ForecastResult is a short-horizon weighted forecast over the trailing
// complete weeks of a series.
type ForecastResult struct {
	Value            float64        `json:"value"`
	Range            *ForecastRange `json:"range,omitempty"`
	HistoricalValues []float64      `json:"historical_values"`
	Weights          []float64      `json:"weights"`
	WeeksUsed        int            `json:"weeks_used"`
	Confidence       Confidence     `json:"confidence"`
}

// IsEstablished reports whether the forecast rests on a full 4-week window.
func (f ForecastResult) IsEstablished() bool {
	return f.Confidence == ConfidenceEstablished
}

// ComputeForecast produces a weighted forecast from the trailing
// min(4, len(series)) records of an already-filtered series, oldest to newest.
// With exactly four records the weights are 0.1/0.2/0.3/0.4 and confidence is
// established; with two or three the weights are equal and confidence is still
// building. Bidirectional metrics additionally carry an expected range of
// ±20% around the forecast value.
//
// Fewer than two qualifying records yield nil: no forecast exists. Callers
// must treat nil as "unavailable", never as a forecast of zero.
func ComputeForecast(series []metrics.WeeklyRecord, extract metrics.Extractor, bidirectional bool) *ForecastResult {
	if len(series) < minForecastRecords {
		return nil
	}

	window := series
	if len(window) > forecastWindow {
		window = window[len(window)-forecastWindow:]
	}
	n := len(window)

	values := make([]float64, n)
	for i, rec := range window {
		v := extract(rec)
		if v < 0 {
			v = 0
		}
		values[i] = v
	}

	weights := make([]float64, n)
	confidence := ConfidenceBuilding
	if n == forecastWindow {
		copy(weights, establishedWeights)
		confidence = ConfidenceEstablished
	} else {
		equal := 1.0 / float64(n)
		for i := range weights {
			weights[i] = equal
		}
	}

	value := 0.0
	for i, v := range values {
		value += weights[i] * v
	}

	result := &ForecastResult{
		Value:            value,
		HistoricalValues: values,
		Weights:          weights,
		WeeksUsed:        n,
		Confidence:       confidence,
	}

	if bidirectional {
		result.Range = &ForecastRange{
			Lower: value * 0.8,
			Upper: value * 1.2,
		}
	}

	return result
}
