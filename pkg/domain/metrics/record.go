// Package metrics defines the weekly work-completion records and metric
// definitions that the analytics layer derives forecasts and scores from.
package metrics

import (
	"time"
)

// WeeklyRecord aggregates work-item activity for one ISO week (Monday-Sunday).
// Records are produced by an ingestion boundary and arrive ordered ascending
// by PeriodStart, at most one per week. The newest record may describe a week
// that is still in progress.
type WeeklyRecord struct {
	PeriodStart     time.Time `json:"period_start"`
	CompletedCount  int       `json:"completed_count"`
	CompletedPoints float64   `json:"completed_points,omitempty"`
	CreatedCount    int       `json:"created_count"`
}

// Completed returns the completed item count clamped to zero. Negative counts
// are an upstream contract violation; they are absorbed here so they can never
// surface as negative scores downstream.
func (r WeeklyRecord) Completed() int {
	if r.CompletedCount < 0 {
		return 0
	}
	return r.CompletedCount
}

// Points returns the completed story points clamped to zero.
func (r WeeklyRecord) Points() float64 {
	if r.CompletedPoints < 0 {
		return 0
	}
	return r.CompletedPoints
}

// Created returns the created item count clamped to zero.
func (r WeeklyRecord) Created() int {
	if r.CreatedCount < 0 {
		return 0
	}
	return r.CreatedCount
}

// Extractor selects a single metric value from a weekly record.
type Extractor func(WeeklyRecord) float64

// CompletedCountOf extracts the completed item count.
func CompletedCountOf(r WeeklyRecord) float64 { return float64(r.Completed()) }

// CompletedPointsOf extracts the completed story points.
func CompletedPointsOf(r WeeklyRecord) float64 { return r.Points() }

// CreatedCountOf extracts the created item count.
func CreatedCountOf(r WeeklyRecord) float64 { return float64(r.Created()) }

// NetFlowOf extracts completed minus created, the backlog drain rate.
func NetFlowOf(r WeeklyRecord) float64 { return float64(r.Completed() - r.Created()) }

// Polarity describes which direction of change is healthy for a metric.
type Polarity string

const (
	// HigherIsBetter marks metrics where rising values are favorable,
	// e.g. completed items per week.
	HigherIsBetter Polarity = "higher_is_better"
	// LowerIsBetter marks metrics where falling values are favorable,
	// e.g. newly created defects per week.
	LowerIsBetter Polarity = "lower_is_better"
	// Bidirectional marks metrics with a healthy target range rather than
	// a direction, e.g. work-in-progress load.
	Bidirectional Polarity = "bidirectional"
)

// IsBidirectional reports whether the metric is judged against a range.
func (p Polarity) IsBidirectional() bool { return p == Bidirectional }

// StartOfWeek returns the Monday 00:00:00 of the ISO week containing t,
// in t's location.
func StartOfWeek(t time.Time) time.Time {
	daysBack := int(t.Weekday()) - 1
	if daysBack < 0 {
		daysBack = 6 // Sunday
	}
	monday := t.AddDate(0, 0, -daysBack)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// EndOfWeek returns the Sunday 23:59:59 boundary of the ISO week containing t.
func EndOfWeek(t time.Time) time.Time {
	monday := StartOfWeek(t)
	sunday := monday.AddDate(0, 0, 6)
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, sunday.Location())
}

// SameISOWeek reports whether a and b fall in the same ISO week.
func SameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}
