package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/niksavis/burndown-chart/pkg/domain/analytics"
	"github.com/spf13/cobra"
)

var (
	forecastJSON   bool
	forecastPoints bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast next week's output from recent complete weeks",
	Long: `Forecast computes a weighted projection of next week's output from the
most recent complete weeks. Four or more weeks of history produce an
established forecast that favors recent weeks; two or three produce an
equal-weight building forecast; fewer than two produce none.

Flags:
  --points  Also forecast completed story points
  --json    Output in JSON format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		snap, err := services.Insights.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		if forecastJSON {
			out := map[string]any{
				"metric":         snap.Metric,
				"weeks_analyzed": snap.WeeksAnalyzed,
				"forecast":       snap.Forecast,
			}
			if forecastPoints {
				out["points_outlook"] = snap.PointsOutlook
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if !snap.HasForecast() {
			fmt.Printf("Not enough history to forecast %s: %d complete weeks recorded, need at least 2.\n",
				snap.Metric, snap.WeeksAnalyzed)
			return nil
		}

		printForecast(snap.Metric, snap.Forecast)
		if forecastPoints {
			if snap.PointsOutlook != nil {
				fmt.Println()
				printForecast("completed_points", snap.PointsOutlook)
			} else {
				fmt.Println("\nPoints outlook unavailable (enable points_forecast in settings).")
			}
		}
		return nil
	},
}

func printForecast(metric string, f *analytics.ForecastResult) {
	fmt.Printf("Forecast for %s: %.1f per week\n", metric, f.Value)
	fmt.Printf("Based on %d complete weeks (confidence: %s)\n", f.WeeksUsed, f.Confidence)
	if f.Range != nil {
		fmt.Printf("Expected range: %.1f to %.1f\n", f.Range.Lower, f.Range.Upper)
	}
	fmt.Printf("Recent weeks (oldest first): ")
	for i, v := range f.HistoricalValues {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%.1f", v)
	}
	fmt.Println()
}

func init() {
	forecastCmd.Flags().BoolVar(&forecastPoints, "points", false, "Also forecast completed story points")
	forecastCmd.Flags().BoolVar(&forecastJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(forecastCmd)
}
