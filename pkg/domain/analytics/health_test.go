package analytics

import (
	"math"
	"testing"
)

func days(v float64) *float64 { return &v }

func TestProgressComponent(t *testing.T) {
	tests := []struct {
		name string
		pct  float64
		want float64
	}{
		{"zero", 0, 0},
		{"half", 50, 15},
		{"complete", 100, 30},
		{"over-reported clamps", 130, 30},
		{"negative clamps", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHealthScore(tt.pct, nil, nil, nil)
			if math.Abs(got.Progress-tt.want) > 1e-9 {
				t.Errorf("Progress = %v, want %v", got.Progress, tt.want)
			}
		})
	}
}

func TestScheduleComponent(t *testing.T) {
	tests := []struct {
		name             string
		deadline, finish *float64
		want             float64
		tolerance        float64
	}{
		{"missing deadline is neutral", nil, days(10), 15, 1e-9},
		{"missing completion is neutral", days(10), nil, 15, 1e-9},
		{"zero buffer", days(30), days(30), 15, 1e-9},
		{"45 days ahead", days(60), days(15), 29.7, 0.05},
		{"45 days behind", days(15), days(60), 0.33, 0.05},
		{"slightly ahead stays smooth", days(31), days(30), 15.75, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHealthScore(0, tt.deadline, tt.finish, nil)
			if math.Abs(got.Schedule-tt.want) > tt.tolerance {
				t.Errorf("Schedule = %v, want %v ± %v", got.Schedule, tt.want, tt.tolerance)
			}
		})
	}
}

func TestStabilityComponent(t *testing.T) {
	tests := []struct {
		name      string
		counts    []int
		want      float64
		tolerance float64
	}{
		{"constant velocity scores full marks", []int{10, 10, 10, 10}, 20, 1e-9},
		{"cv 0.75 scores half", []int{7, 1}, 10, 1e-9},
		{"cv above 1.5 scores zero", []int{0, 0, 0, 9}, 0, 1e-9},
		{"single record is neutral", []int{10}, 10, 1e-9},
		{"zero mean is neutral", []int{0, 0, 0}, 10, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHealthScore(0, nil, nil, seriesWithCounts(tt.counts...))
			if math.Abs(got.Stability-tt.want) > tt.tolerance {
				t.Errorf("Stability = %v, want %v", got.Stability, tt.want)
			}
		})
	}
}

func TestStabilityComponent_UsesTrailingTenWeeks(t *testing.T) {
	// Two wild leading weeks must fall outside the 10-week window.
	counts := []int{100, 0, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10}

	got := ComputeHealthScore(0, nil, nil, seriesWithCounts(counts...))
	if math.Abs(got.Stability-20) > 1e-9 {
		t.Errorf("Stability = %v, want 20 (older records must not leak in)", got.Stability)
	}
}

func TestTrendComponent(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   float64
	}{
		{"flat velocity is neutral", []int{10, 10, 10, 10}, 10},
		{"plus 30 percent", []int{10, 10, 13, 13}, 16},
		{"plus 50 percent caps gains at linear scale", []int{10, 10, 15, 15}, 20},
		{"runaway growth clamps to 20", []int{10, 10, 30, 30}, 20},
		{"total collapse clamps to 0", []int{10, 10, 0, 0}, 0},
		{"too little history is neutral", []int{10, 12, 14}, 10},
		{"zero older mean is neutral", []int{0, 0, 5, 5}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHealthScore(0, nil, nil, seriesWithCounts(tt.counts...))
			if math.Abs(got.Trend-tt.want) > 1e-9 {
				t.Errorf("Trend = %v, want %v", got.Trend, tt.want)
			}
		})
	}
}

func TestComputeHealthScore_TotalInvariant(t *testing.T) {
	inputs := []struct {
		name             string
		pct              float64
		deadline, finish *float64
		counts           []int
	}{
		{"everything empty", 0, nil, nil, nil},
		{"thriving project", 95, days(60), days(30), []int{10, 10, 10, 10, 11, 12, 11, 12}},
		{"collapsing project", 10, days(10), days(70), []int{19, 1, 19, 1, 11, 1, 11, 1}},
		{"absurd inputs", -50, days(10000), days(-10000), []int{-5, -5, -5, -5}},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHealthScore(tt.pct, tt.deadline, tt.finish, seriesWithCounts(tt.counts...))
			if got.Total < 0 || got.Total > 100 {
				t.Errorf("Total = %d, want within [0,100]", got.Total)
			}
			sum := got.Progress + got.Schedule + got.Stability + got.Trend
			want := int(clamp(math.Round(sum), 0, 100))
			if got.Total != want {
				t.Errorf("Total = %d, want round(sum)=%d", got.Total, want)
			}
		})
	}
}

func TestComputeHealthScore_ThrivingProject(t *testing.T) {
	// 95% complete, 30 buffer days, tight velocity spread, +15% recent uptick.
	series := seriesWithCounts(10, 10, 10, 10, 11, 12, 11, 12)

	got := ComputeHealthScore(95, days(60), days(30), series)
	if got.Total < 85 {
		t.Errorf("Total = %d, want >= 85 for a thriving project", got.Total)
	}
}

func TestComputeHealthScore_CollapsingProject(t *testing.T) {
	// 10% complete, 60 days over deadline, erratic velocity, -40% slide.
	series := seriesWithCounts(19, 1, 19, 1, 11, 1, 11, 1)

	got := ComputeHealthScore(10, days(10), days(70), series)
	if got.Total > 20 {
		t.Errorf("Total = %d, want <= 20 for a collapsing project", got.Total)
	}
}

func TestComputeHealthScore_ZeroVelocityNeverPanics(t *testing.T) {
	series := seriesWithCounts(0, 0, 0, 0)

	got := ComputeHealthScore(0, nil, nil, series)
	if got.Stability != stabilityNeutral {
		t.Errorf("Stability = %v, want neutral %v for a zero-velocity series", got.Stability, stabilityNeutral)
	}
	if got.Trend != trendNeutral {
		t.Errorf("Trend = %v, want neutral %v for a zero-velocity series", got.Trend, trendNeutral)
	}
}

func TestComputeHealthScore_Deterministic(t *testing.T) {
	series := seriesWithCounts(4, 9, 2, 11, 6)

	a := ComputeHealthScore(40, days(30), days(25), series)
	b := ComputeHealthScore(40, days(30), days(25), series)
	if a != b {
		t.Errorf("identical inputs produced different scores: %+v vs %+v", a, b)
	}
}
