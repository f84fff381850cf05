package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var trendJSON bool

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Compare the latest complete week against its forecast",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		snap, err := services.Insights.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		if trendJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"metric": snap.Metric,
				"trend":  snap.Trend,
			})
		}

		if snap.Trend == nil {
			fmt.Printf("Not enough history to judge a trend for %s: the latest week needs a forecast built from at least 2 earlier weeks.\n",
				snap.Metric)
			return nil
		}

		t := snap.Trend
		fmt.Printf("Trend for %s: %s\n", snap.Metric, t.Direction)
		fmt.Printf("Deviation vs forecast: %+.1f%%\n", t.DeviationPercent)
		fmt.Printf("Assessment: %s (%s)\n", t.Favorability, t.StatusText)
		return nil
	},
}

func init() {
	trendCmd.Flags().BoolVar(&trendJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(trendCmd)
}
