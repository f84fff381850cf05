// Package project holds the workspace-level artifacts around the analytics
// core: the schedule inputs, metric settings, and the derived dashboard
// snapshot, plus the repository contract for persisting them.
package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/niksavis/burndown-chart/pkg/domain/analytics"
	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
)

// Schedule carries the schedule-provider inputs for health scoring. The day
// counts are nullable: a project without a deadline simply has no schedule
// signal, and the composer falls back to its neutral component.
type Schedule struct {
	CompletionPct    float64  `yaml:"completion_pct" json:"completion_pct"`
	DaysToDeadline   *float64 `yaml:"days_to_deadline,omitempty" json:"days_to_deadline,omitempty"`
	DaysToCompletion *float64 `yaml:"days_to_completion,omitempty" json:"days_to_completion,omitempty"`
}

// BufferDays returns the schedule slack, or nil when either input is absent.
func (s *Schedule) BufferDays() *float64 {
	if s == nil || s.DaysToDeadline == nil || s.DaysToCompletion == nil {
		return nil
	}
	buffer := *s.DaysToDeadline - *s.DaysToCompletion
	return &buffer
}

// Settings is the serialized representation of settings.yaml.
type Settings struct {
	// Metric names the series metric driving forecast and trend.
	Metric string `yaml:"metric" json:"metric"`
	// PointsForecast additionally forecasts completed story points.
	PointsForecast bool `yaml:"points_forecast" json:"points_forecast"`
	// Tracker selects the statistics source: empty for the workspace
	// series file, "jira" for the Jira Cloud provider.
	Tracker string `yaml:"tracker,omitempty" json:"tracker,omitempty"`
}

// DefaultSettings returns the configuration used when settings.yaml is absent.
func DefaultSettings() *Settings {
	return &Settings{Metric: metrics.MetricCompletedCount}
}

// Snapshot is one computed dashboard reading: the forecast, trend, and health
// artifacts over a single series state, ready for a renderer to consume
// without re-deriving any business meaning.
type Snapshot struct {
	ID            uuid.UUID                 `json:"id"`
	GeneratedAt   time.Time                 `json:"generated_at"`
	Metric        string                    `json:"metric"`
	WeeksTotal    int                       `json:"weeks_total"`
	WeeksAnalyzed int                       `json:"weeks_analyzed"`
	Forecast      *analytics.ForecastResult `json:"forecast,omitempty"`
	PointsOutlook *analytics.ForecastResult `json:"points_outlook,omitempty"`
	Trend         *analytics.TrendResult    `json:"trend,omitempty"`
	Health        analytics.HealthScore     `json:"health"`
}

// HasForecast reports whether enough history existed to forecast.
func (s *Snapshot) HasForecast() bool {
	return s != nil && s.Forecast != nil
}

// WorkspaceRepository handles persistence of project artifacts in the
// .burndown/ directory.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveSeries(series []metrics.WeeklyRecord) error
	LoadSeries() ([]metrics.WeeklyRecord, error)
	SaveSchedule(schedule *Schedule) error
	LoadSchedule() (*Schedule, error)
	SaveSettings(settings *Settings) error
	LoadSettings() (*Settings, error)
	AppendSnapshot(snapshot *Snapshot) error
	LoadSnapshots() ([]Snapshot, error)
}
