package metrics

import (
	"time"
)

// FilterCompleteWeeks returns the series with a trailing still-in-progress
// week removed. The last record is excluded only when its period is the ISO
// week containing now and now is still before that week's Sunday 23:59:59
// boundary; in every other case the series is returned as-is.
//
// This guards downstream statistics against partial-period distortion: a
// Wednesday read would otherwise show an artificially low weekly count and be
// misclassified as a regression. The function is pure and never fails; an
// empty series yields an empty result.
func FilterCompleteWeeks(series []WeeklyRecord, now time.Time) []WeeklyRecord {
	if len(series) == 0 {
		return series
	}

	last := series[len(series)-1]
	if !SameISOWeek(last.PeriodStart, now) {
		return series
	}
	if !now.Before(EndOfWeek(last.PeriodStart)) {
		// The week has closed; the record is complete.
		return series
	}

	return series[:len(series)-1]
}
