package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/niksavis/burndown-chart/pkg/domain/analytics"
	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
)

// StatisticsProvider supplies the ordered weekly series. Implementations own
// all retrieval mechanics (files, tracker APIs, caching); the analytics core
// only ever sees the snapshot they return.
type StatisticsProvider interface {
	WeeklySeries(ctx context.Context) ([]metrics.WeeklyRecord, error)
}

// ScheduleProvider supplies completion percentage and day counts. A nil
// schedule is a valid answer for projects without one.
type ScheduleProvider interface {
	ProjectSchedule(ctx context.Context) (*project.Schedule, error)
}

// InsightsService derives the dashboard artifacts from provider snapshots:
// it filters the still-open week, forecasts the configured metric, classifies
// the newest complete week against that forecast, and composes the health
// score. Every call is a stateless derivation; the service holds no caches.
type InsightsService struct {
	stats    StatisticsProvider
	schedule ScheduleProvider
	settings *project.Settings
	now      func() time.Time
}

// NewInsightsService creates an insights service. schedule may be nil when no
// schedule source exists; settings may be nil to use defaults.
func NewInsightsService(stats StatisticsProvider, schedule ScheduleProvider, settings *project.Settings) *InsightsService {
	if settings == nil {
		settings = project.DefaultSettings()
	}
	return &InsightsService{
		stats:    stats,
		schedule: schedule,
		settings: settings,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests use this to pin the ISO-week
// boundary decisions.
func (s *InsightsService) WithClock(now func() time.Time) *InsightsService {
	s.now = now
	return s
}

// Snapshot computes one dashboard reading. An unavailable forecast (fewer
// than two complete weeks) leaves Forecast and Trend nil; the health score is
// always present because every component has a documented neutral fallback.
func (s *InsightsService) Snapshot(ctx context.Context) (*project.Snapshot, error) {
	def, ok := metrics.DefinitionFor(s.settings.Metric)
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", s.settings.Metric)
	}

	series, err := s.stats.WeeklySeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weekly series: %w", err)
	}

	now := s.now()
	filtered := metrics.FilterCompleteWeeks(series, now)

	snapshot := &project.Snapshot{
		ID:            uuid.New(),
		GeneratedAt:   now,
		Metric:        def.Name,
		WeeksTotal:    len(series),
		WeeksAnalyzed: len(filtered),
	}

	snapshot.Forecast = analytics.ComputeForecast(filtered, def.Extract, def.Polarity.IsBidirectional())
	if s.settings.PointsForecast {
		snapshot.PointsOutlook = analytics.ComputeForecast(filtered, metrics.CompletedPointsOf, false)
	}

	// Classify the newest complete week against a baseline forecast built
	// from the weeks before it, so the compared value never feeds its own
	// baseline.
	if len(filtered) > 0 {
		baseline := analytics.ComputeForecast(filtered[:len(filtered)-1], def.Extract, def.Polarity.IsBidirectional())
		if baseline != nil {
			trend := analytics.Classify(def.Extract(filtered[len(filtered)-1]), *baseline, def.Polarity)
			snapshot.Trend = &trend
		}
	}

	var schedule *project.Schedule
	if s.schedule != nil {
		schedule, err = s.schedule.ProjectSchedule(ctx)
		if err != nil {
			return nil, fmt.Errorf("load schedule: %w", err)
		}
	}

	completionPct := 0.0
	var daysToDeadline, daysToCompletion *float64
	if schedule != nil {
		completionPct = schedule.CompletionPct
		daysToDeadline = schedule.DaysToDeadline
		daysToCompletion = schedule.DaysToCompletion
	}
	snapshot.Health = analytics.ComputeHealthScore(completionPct, daysToDeadline, daysToCompletion, filtered)

	return snapshot, nil
}

// repositoryStatistics adapts a workspace repository into a StatisticsProvider.
type repositoryStatistics struct {
	repo project.WorkspaceRepository
}

// NewRepositoryStatistics returns a StatisticsProvider backed by the
// workspace's persisted series.
func NewRepositoryStatistics(repo project.WorkspaceRepository) StatisticsProvider {
	return repositoryStatistics{repo: repo}
}

func (p repositoryStatistics) WeeklySeries(_ context.Context) ([]metrics.WeeklyRecord, error) {
	return p.repo.LoadSeries()
}

// repositorySchedule adapts a workspace repository into a ScheduleProvider.
type repositorySchedule struct {
	repo project.WorkspaceRepository
}

// NewRepositorySchedule returns a ScheduleProvider backed by the workspace's
// schedule.yaml, answering nil when none exists.
func NewRepositorySchedule(repo project.WorkspaceRepository) ScheduleProvider {
	return repositorySchedule{repo: repo}
}

func (p repositorySchedule) ProjectSchedule(_ context.Context) (*project.Schedule, error) {
	return p.repo.LoadSchedule()
}
