package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/niksavis/burndown-chart/pkg/domain/project"
	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Score project health from progress, schedule, stability and trend",
	Long: `Health combines four components into a 0-100 score:

  Progress  (0-30)  completion percentage
  Schedule  (0-30)  buffer between forecast completion and the deadline
  Stability (0-20)  week-to-week output consistency
  Trend     (0-20)  recent output versus the preceding weeks

Set completion and deadline data with a schedule.yaml in the workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		snap, err := services.Insights.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		if healthJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"metric": snap.Metric,
				"health": snap.Health,
			})
		}

		fmt.Print(renderHealthReport(snap))
		return nil
	},
}

func renderHealthReport(snap *project.Snapshot) string {
	h := snap.Health
	var b strings.Builder
	fmt.Fprintf(&b, "Project health: %d/100\n", h.Total)
	fmt.Fprintf(&b, "- Progress:  %4.1f/30\n", h.Progress)
	fmt.Fprintf(&b, "- Schedule:  %4.1f/30\n", h.Schedule)
	fmt.Fprintf(&b, "- Stability: %4.1f/20\n", h.Stability)
	fmt.Fprintf(&b, "- Trend:     %4.1f/20\n", h.Trend)
	fmt.Fprintf(&b, "\nJudged over %d complete weeks of %s.\n", snap.WeeksAnalyzed, snap.Metric)
	return b.String()
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(healthCmd)
}
