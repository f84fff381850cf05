package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
)

func seriesWithCounts(counts ...int) []metrics.WeeklyRecord {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	records := make([]metrics.WeeklyRecord, len(counts))
	for i, c := range counts {
		records[i] = metrics.WeeklyRecord{
			PeriodStart:    start.AddDate(0, 0, 7*i),
			CompletedCount: c,
		}
	}
	return records
}

func TestComputeForecast_FourWeekWeighting(t *testing.T) {
	series := seriesWithCounts(10, 12, 11, 13)

	got := ComputeForecast(series, metrics.CompletedCountOf, false)
	if got == nil {
		t.Fatal("ComputeForecast() = nil, want a forecast")
	}

	// 0.1*10 + 0.2*12 + 0.3*11 + 0.4*13 = 11.9
	if math.Abs(got.Value-11.9) > 1e-9 {
		t.Errorf("Value = %v, want 11.9", got.Value)
	}
	if got.WeeksUsed != 4 {
		t.Errorf("WeeksUsed = %d, want 4", got.WeeksUsed)
	}
	if got.Confidence != ConfidenceEstablished {
		t.Errorf("Confidence = %q, want %q", got.Confidence, ConfidenceEstablished)
	}
	if got.Range != nil {
		t.Errorf("Range = %+v, want nil for a directional metric", got.Range)
	}
}

func TestComputeForecast_UsesOnlyTrailingFourWeeks(t *testing.T) {
	series := seriesWithCounts(100, 100, 10, 12, 11, 13)

	got := ComputeForecast(series, metrics.CompletedCountOf, false)
	if got == nil {
		t.Fatal("ComputeForecast() = nil, want a forecast")
	}
	if math.Abs(got.Value-11.9) > 1e-9 {
		t.Errorf("Value = %v, want 11.9 (older records must not leak in)", got.Value)
	}
	if len(got.HistoricalValues) != 4 {
		t.Errorf("len(HistoricalValues) = %d, want 4", len(got.HistoricalValues))
	}
}

func TestComputeForecast_EqualWeightsBelowFourWeeks(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   float64
	}{
		{"two weeks", []int{10, 14}, 12},
		{"three weeks", []int{9, 12, 15}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeForecast(seriesWithCounts(tt.counts...), metrics.CompletedCountOf, false)
			if got == nil {
				t.Fatal("ComputeForecast() = nil, want a forecast")
			}
			if math.Abs(got.Value-tt.want) > 1e-9 {
				t.Errorf("Value = %v, want %v", got.Value, tt.want)
			}
			if got.Confidence != ConfidenceBuilding {
				t.Errorf("Confidence = %q, want %q", got.Confidence, ConfidenceBuilding)
			}
			for i, w := range got.Weights {
				want := 1.0 / float64(len(tt.counts))
				if math.Abs(w-want) > 1e-9 {
					t.Errorf("Weights[%d] = %v, want %v", i, w, want)
				}
			}
		})
	}
}

func TestComputeForecast_WeightsAlwaysSumToOne(t *testing.T) {
	for n := 2; n <= 6; n++ {
		counts := make([]int, n)
		for i := range counts {
			counts[i] = i + 1
		}
		got := ComputeForecast(seriesWithCounts(counts...), metrics.CompletedCountOf, false)
		if got == nil {
			t.Fatalf("n=%d: ComputeForecast() = nil, want a forecast", n)
		}
		sum := 0.0
		for _, w := range got.Weights {
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("n=%d: weights sum to %v, want 1.0±1e-6", n, sum)
		}
	}
}

func TestComputeForecast_InsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		series []metrics.WeeklyRecord
	}{
		{"empty", nil},
		{"single record", seriesWithCounts(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeForecast(tt.series, metrics.CompletedCountOf, false); got != nil {
				t.Errorf("ComputeForecast() = %+v, want nil (unavailable)", got)
			}
		})
	}
}

func TestComputeForecast_BidirectionalRange(t *testing.T) {
	got := ComputeForecast(seriesWithCounts(10, 10, 10, 10), metrics.CompletedCountOf, true)
	if got == nil {
		t.Fatal("ComputeForecast() = nil, want a forecast")
	}
	if got.Range == nil {
		t.Fatal("Range = nil, want a range for a bidirectional metric")
	}
	if math.Abs(got.Range.Lower-8.0) > 1e-9 || math.Abs(got.Range.Upper-12.0) > 1e-9 {
		t.Errorf("Range = [%v, %v], want [8, 12]", got.Range.Lower, got.Range.Upper)
	}
	if !got.Range.Contains(10) || got.Range.Contains(12.1) || got.Range.Contains(7.9) {
		t.Error("Range.Contains() boundaries are wrong")
	}
}

func TestComputeForecast_Deterministic(t *testing.T) {
	series := seriesWithCounts(3, 7, 5, 9, 4)

	a := ComputeForecast(series, metrics.CompletedCountOf, true)
	b := ComputeForecast(series, metrics.CompletedCountOf, true)

	if a == nil || b == nil {
		t.Fatal("ComputeForecast() = nil, want forecasts")
	}
	if a.Value != b.Value || a.WeeksUsed != b.WeeksUsed || a.Confidence != b.Confidence {
		t.Errorf("identical inputs produced different forecasts: %+v vs %+v", a, b)
	}
}

func TestComputeForecast_ClampsNegativeExtractedValues(t *testing.T) {
	series := seriesWithCounts(10, 10, 10, 10)
	series[0].CreatedCount = 50 // net flow goes negative

	got := ComputeForecast(series, metrics.NetFlowOf, false)
	if got == nil {
		t.Fatal("ComputeForecast() = nil, want a forecast")
	}
	for i, v := range got.HistoricalValues {
		if v < 0 {
			t.Errorf("HistoricalValues[%d] = %v, want >= 0", i, v)
		}
	}
}
