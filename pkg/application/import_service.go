package application

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
)

// seriesSchemaJSON is the contract for imported series files: an array of
// weekly entries keyed by the Monday the week starts on.
const seriesSchemaJSON = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["period_start", "completed_count"],
    "properties": {
      "period_start": { "type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$" },
      "completed_count": { "type": "integer", "minimum": 0 },
      "completed_points": { "type": "number", "minimum": 0 },
      "created_count": { "type": "integer", "minimum": 0 }
    },
    "additionalProperties": false
  }
}`

var seriesSchemaLoader = gojsonschema.NewStringLoader(seriesSchemaJSON)

// seriesEntry is the wire form of one imported weekly record.
type seriesEntry struct {
	PeriodStart     string  `json:"period_start"`
	CompletedCount  int     `json:"completed_count"`
	CompletedPoints float64 `json:"completed_points"`
	CreatedCount    int     `json:"created_count"`
}

// ImportService validates and normalizes externally produced series files
// before they reach the workspace. It is the ingestion boundary: everything
// downstream assumes the series it persists is ordered and non-negative.
type ImportService struct {
	repo project.WorkspaceRepository
}

// NewImportService creates an import service over the given workspace.
func NewImportService(repo project.WorkspaceRepository) *ImportService {
	return &ImportService{repo: repo}
}

// ImportFile reads, validates, and persists a series JSON file, returning the
// number of weekly records stored.
func (s *ImportService) ImportFile(path string) (int, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied import path
	if err != nil {
		return 0, fmt.Errorf("read series file: %w", err)
	}
	return s.ImportSeries(data)
}

// ImportSeries validates raw series JSON against the embedded schema,
// normalizes it (anchor periods to their Monday, sort ascending, collapse
// duplicate weeks keeping the later entry), and persists the result.
func (s *ImportService) ImportSeries(data []byte) (int, error) {
	result, err := gojsonschema.Validate(seriesSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return 0, fmt.Errorf("validate series: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return 0, fmt.Errorf("series file is not valid: %s", strings.Join(issues, "; "))
	}

	var entries []seriesEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("decode series: %w", err)
	}

	series, err := normalizeSeries(entries)
	if err != nil {
		return 0, err
	}

	if err := s.repo.SaveSeries(series); err != nil {
		return 0, fmt.Errorf("persist series: %w", err)
	}
	return len(series), nil
}

func normalizeSeries(entries []seriesEntry) ([]metrics.WeeklyRecord, error) {
	records := make([]metrics.WeeklyRecord, 0, len(entries))
	for _, e := range entries {
		start, err := time.Parse("2006-01-02", e.PeriodStart)
		if err != nil {
			return nil, fmt.Errorf("parse period_start %q: %w", e.PeriodStart, err)
		}
		records = append(records, metrics.WeeklyRecord{
			PeriodStart:     metrics.StartOfWeek(start.UTC()),
			CompletedCount:  e.CompletedCount,
			CompletedPoints: e.CompletedPoints,
			CreatedCount:    e.CreatedCount,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PeriodStart.Before(records[j].PeriodStart)
	})

	// Collapse duplicate weeks; the later entry wins because re-exports
	// supersede earlier ones.
	deduped := records[:0]
	for _, rec := range records {
		if len(deduped) > 0 && metrics.SameISOWeek(deduped[len(deduped)-1].PeriodStart, rec.PeriodStart) {
			deduped[len(deduped)-1] = rec
			continue
		}
		deduped = append(deduped, rec)
	}

	return deduped, nil
}
