package analytics

import (
	"fmt"
	"math"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
)

// TrendDirection classifies a current-period value against its forecast.
type TrendDirection string

const (
	// TrendRising indicates the value sits more than 10% above forecast.
	TrendRising TrendDirection = "rising"
	// TrendNeutral indicates the value is within ±10% of forecast.
	TrendNeutral TrendDirection = "neutral"
	// TrendFalling indicates the value sits more than 10% below forecast.
	TrendFalling TrendDirection = "falling"
)

// Favorability judges a trend against the metric's polarity. The
// bidirectional table has three outcomes, so a plain boolean cannot carry it:
// a below-range reading is marginal, neither healthy nor alarming.
type Favorability string

const (
	// FavorabilityFavorable marks a healthy reading.
	FavorabilityFavorable Favorability = "favorable"
	// FavorabilityMarginal marks a below-range bidirectional reading.
	FavorabilityMarginal Favorability = "marginal"
	// FavorabilityUnfavorable marks an unhealthy reading.
	FavorabilityUnfavorable Favorability = "unfavorable"
)

// directionBandPercent is the deviation band, in percent, inside which a
// reading is considered neutral.
const directionBandPercent = 10.0

// ZeroForecastDeviation is the sentinel deviation reported when the forecast
// value is zero but the current value is not. Any finite percentage against a
// zero baseline is undefined; callers should render this as "no meaningful
// baseline" rather than as a number.
const ZeroForecastDeviation = 999.0

// TrendResult describes how the current period compares to its forecast.
type TrendResult struct {
	Direction        TrendDirection `json:"direction"`
	DeviationPercent float64        `json:"deviation_percent"`
	Favorability     Favorability   `json:"favorability"`
	StatusText       string         `json:"status_text"`
}

// IsFavorable reports whether the reading is healthy. Marginal readings are
// not favorable.
func (t TrendResult) IsFavorable() bool {
	return t.Favorability == FavorabilityFavorable
}

// Classify compares currentValue against the forecast and judges the result
// according to the metric's polarity. The deviation band is ±10%: above it the
// trend is rising, below it falling, inside it neutral. Directional metrics
// take favorability straight from direction and polarity; bidirectional
// metrics are judged against the forecast's expected range instead (inside is
// favorable, above unfavorable, below marginal).
//
// A zero forecast value cannot anchor a percentage: the deviation is defined
// as 0 when the current value is also zero, and ZeroForecastDeviation
// otherwise.
func Classify(currentValue float64, forecast ForecastResult, polarity metrics.Polarity) TrendResult {
	deviation := deviationPercent(currentValue, forecast.Value)

	var direction TrendDirection
	switch {
	case deviation > directionBandPercent:
		direction = TrendRising
	case deviation < -directionBandPercent:
		direction = TrendFalling
	default:
		direction = TrendNeutral
	}

	favorability := judge(currentValue, direction, forecast, polarity)

	return TrendResult{
		Direction:        direction,
		DeviationPercent: deviation,
		Favorability:     favorability,
		StatusText:       statusText(direction, deviation),
	}
}

func deviationPercent(current, forecast float64) float64 {
	if forecast == 0 {
		if current == 0 {
			return 0
		}
		return ZeroForecastDeviation
	}
	return (current - forecast) / forecast * 100
}

func judge(current float64, direction TrendDirection, forecast ForecastResult, polarity metrics.Polarity) Favorability {
	if polarity.IsBidirectional() {
		band := forecast.Range
		if band == nil {
			// Forecast was computed without a range; fall back to the
			// ±20% band it would have carried.
			band = &ForecastRange{Lower: forecast.Value * 0.8, Upper: forecast.Value * 1.2}
		}
		switch {
		case band.Contains(current):
			return FavorabilityFavorable
		case current > band.Upper:
			return FavorabilityUnfavorable
		default:
			return FavorabilityMarginal
		}
	}

	unfavorableDirection := TrendFalling
	if polarity == metrics.LowerIsBetter {
		unfavorableDirection = TrendRising
	}
	if direction == unfavorableDirection {
		return FavorabilityUnfavorable
	}
	return FavorabilityFavorable
}

func statusText(direction TrendDirection, deviation float64) string {
	if deviation == ZeroForecastDeviation {
		return "activity resumed from a zero-output baseline"
	}
	magnitude := math.Abs(deviation)
	switch direction {
	case TrendRising:
		return fmt.Sprintf("up %.1f%% vs forecast", magnitude)
	case TrendFalling:
		return fmt.Sprintf("down %.1f%% vs forecast", magnitude)
	default:
		return fmt.Sprintf("on forecast (%+.1f%%)", deviation)
	}
}
