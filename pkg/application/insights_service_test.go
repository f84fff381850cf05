package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/niksavis/burndown-chart/pkg/domain/analytics"
	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
)

type stubStatistics struct {
	series []metrics.WeeklyRecord
	err    error
}

func (s stubStatistics) WeeklySeries(_ context.Context) ([]metrics.WeeklyRecord, error) {
	return s.series, s.err
}

type stubSchedule struct {
	schedule *project.Schedule
	err      error
}

func (s stubSchedule) ProjectSchedule(_ context.Context) (*project.Schedule, error) {
	return s.schedule, s.err
}

func testSeries(counts ...int) []metrics.WeeklyRecord {
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

// fixedNow falls well after every test series week, so no filtering applies
// unless a test appends an open week.
var fixedNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestService(stats StatisticsProvider, schedule ScheduleProvider) *InsightsService {
	return NewInsightsService(stats, schedule, nil).WithClock(func() time.Time { return fixedNow })
}

func TestInsightsService_Snapshot(t *testing.T) {
	deadline := 60.0
	completion := 30.0
	svc := newTestService(
		stubStatistics{series: testSeries(10, 10, 10, 10, 12)},
		stubSchedule{schedule: &project.Schedule{
			CompletionPct:    80,
			DaysToDeadline:   &deadline,
			DaysToCompletion: &completion,
		}},
	)

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if got.WeeksTotal != 5 || got.WeeksAnalyzed != 5 {
		t.Errorf("weeks = %d/%d, want 5/5", got.WeeksAnalyzed, got.WeeksTotal)
	}
	if got.Forecast == nil {
		t.Fatal("Forecast = nil, want a forecast")
	}
	// trailing window 10,10,10,12 weighted 0.1/0.2/0.3/0.4
	if math.Abs(got.Forecast.Value-10.8) > 1e-9 {
		t.Errorf("Forecast.Value = %v, want 10.8", got.Forecast.Value)
	}
	if got.Trend == nil {
		t.Fatal("Trend = nil, want a classification")
	}
	// newest week (12) vs baseline over 10,10,10,10 = 10 -> +20% rising
	if got.Trend.Direction != analytics.TrendRising {
		t.Errorf("Trend.Direction = %q, want %q", got.Trend.Direction, analytics.TrendRising)
	}
	if !got.Trend.IsFavorable() {
		t.Error("Trend.IsFavorable() = false, want true for rising completed work")
	}
	if got.Health.Total <= 0 || got.Health.Total > 100 {
		t.Errorf("Health.Total = %d, want within (0,100]", got.Health.Total)
	}
	if got.ID == uuid.Nil {
		t.Error("snapshot ID is zero, want a generated uuid")
	}
}

func TestInsightsService_SnapshotFiltersOpenWeek(t *testing.T) {
	series := testSeries(10, 10, 10, 10)
	// Append a record for the ISO week containing fixedNow (Mon 2025-06-02).
	series = append(series, metrics.WeeklyRecord{
		PeriodStart:    time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		CompletedCount: 1,
	})

	svc := newTestService(stubStatistics{series: series}, nil)

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got.WeeksTotal != 5 {
		t.Errorf("WeeksTotal = %d, want 5", got.WeeksTotal)
	}
	if got.WeeksAnalyzed != 4 {
		t.Errorf("WeeksAnalyzed = %d, want 4 (open week excluded)", got.WeeksAnalyzed)
	}
	if got.Forecast == nil || math.Abs(got.Forecast.Value-10) > 1e-9 {
		t.Errorf("Forecast = %+v, want value 10 without the open week", got.Forecast)
	}
}

func TestInsightsService_SnapshotInsufficientHistory(t *testing.T) {
	svc := newTestService(stubStatistics{series: testSeries(10)}, nil)

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got.Forecast != nil {
		t.Errorf("Forecast = %+v, want nil (unavailable, not zero)", got.Forecast)
	}
	if got.Trend != nil {
		t.Errorf("Trend = %+v, want nil without a baseline", got.Trend)
	}
	// Neutral defaults: progress 0 + schedule 15 + stability 10 + trend 10.
	if got.Health.Total != 35 {
		t.Errorf("Health.Total = %d, want 35 from neutral components", got.Health.Total)
	}
}

func TestInsightsService_SnapshotWithoutScheduleProvider(t *testing.T) {
	svc := newTestService(stubStatistics{series: testSeries(10, 10, 10, 10)}, nil)

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got.Health.Schedule != 15 {
		t.Errorf("Health.Schedule = %v, want neutral 15 without a schedule", got.Health.Schedule)
	}
}

func TestInsightsService_SnapshotStatisticsError(t *testing.T) {
	svc := newTestService(stubStatistics{err: errors.New("tracker unreachable")}, nil)

	if _, err := svc.Snapshot(context.Background()); err == nil {
		t.Error("Snapshot() error = nil, want provider failure surfaced")
	}
}

func TestInsightsService_SnapshotUnknownMetric(t *testing.T) {
	svc := NewInsightsService(
		stubStatistics{series: testSeries(10, 10)},
		nil,
		&project.Settings{Metric: "story_velocity"},
	)

	if _, err := svc.Snapshot(context.Background()); err == nil {
		t.Error("Snapshot() error = nil, want unknown metric rejected")
	}
}

func TestInsightsService_PointsOutlook(t *testing.T) {
	series := testSeries(10, 10, 10, 10)
	for i := range series {
		series[i].CompletedPoints = float64(20 + i)
	}

	svc := NewInsightsService(
		stubStatistics{series: series},
		nil,
		&project.Settings{Metric: metrics.MetricCompletedCount, PointsForecast: true},
	).WithClock(func() time.Time { return fixedNow })

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got.PointsOutlook == nil {
		t.Fatal("PointsOutlook = nil, want a points forecast")
	}
	// 0.1*20 + 0.2*21 + 0.3*22 + 0.4*23 = 22.0
	if math.Abs(got.PointsOutlook.Value-22.0) > 1e-9 {
		t.Errorf("PointsOutlook.Value = %v, want 22.0", got.PointsOutlook.Value)
	}
}

func TestInsightsService_BidirectionalMetricCarriesRange(t *testing.T) {
	series := testSeries(0, 0, 0, 0)
	for i := range series {
		series[i].CreatedCount = 10
	}

	svc := NewInsightsService(
		stubStatistics{series: series},
		nil,
		&project.Settings{Metric: metrics.MetricCreatedCount},
	).WithClock(func() time.Time { return fixedNow })

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got.Forecast == nil || got.Forecast.Range == nil {
		t.Fatalf("Forecast = %+v, want a range for a bidirectional metric", got.Forecast)
	}
	if got.Trend == nil || got.Trend.Favorability != analytics.FavorabilityFavorable {
		t.Errorf("Trend = %+v, want in-range intake judged favorable", got.Trend)
	}
}
