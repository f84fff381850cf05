package wiring

import (
	"fmt"

	"github.com/niksavis/burndown-chart/internal/infrastructure/tracker"
	"github.com/niksavis/burndown-chart/pkg/application"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Insights  *application.InsightsService
	Import    *application.ImportService
}

// BuildAppServices constructs the services for a workspace root. When the
// workspace settings select an external tracker, the statistics provider is
// swapped for it; the schedule always comes from the workspace files.
func BuildAppServices(root string) (*AppServices, error) {
	workspace := NewWorkspace(root)

	stats := application.NewRepositoryStatistics(workspace.Repo)
	switch workspace.Settings.Tracker {
	case "", "workspace":
		// series.json in the workspace
	case "jira":
		provider, err := tracker.NewJiraProvider(tracker.JiraConfig{})
		if err != nil {
			return nil, fmt.Errorf("wire jira tracker: %w", err)
		}
		stats = provider
	default:
		return nil, fmt.Errorf("unknown tracker %q in settings", workspace.Settings.Tracker)
	}

	schedule := application.NewRepositorySchedule(workspace.Repo)

	return &AppServices{
		Workspace: workspace,
		Insights:  application.NewInsightsService(stats, schedule, workspace.Settings),
		Import:    application.NewImportService(workspace.Repo),
	}, nil
}

// BuildAppServicesWithStatistics allows callers to supply their own
// statistics provider, bypassing the tracker selection in settings.
func BuildAppServicesWithStatistics(root string, stats application.StatisticsProvider) *AppServices {
	workspace := NewWorkspace(root)
	schedule := application.NewRepositorySchedule(workspace.Repo)

	return &AppServices{
		Workspace: workspace,
		Insights:  application.NewInsightsService(stats, schedule, workspace.Settings),
		Import:    application.NewImportService(workspace.Repo),
	}
}
