package cli

import (
	"fmt"
	"strings"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
	"github.com/niksavis/burndown-chart/pkg/storage"
	"github.com/spf13/cobra"
)

var initMetric string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a burndown workspace in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}

		repo := storage.NewFilesystemRepository(root)
		if repo.IsInitialized() {
			return fmt.Errorf("workspace already initialized at %s", root)
		}
		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		settings := project.DefaultSettings()
		if initMetric != "" {
			if _, ok := metrics.DefinitionFor(initMetric); !ok {
				return fmt.Errorf("unknown metric %q (available: %s)",
					initMetric, strings.Join(metrics.MetricNames(), ", "))
			}
			settings.Metric = initMetric
		}
		if err := repo.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}

		fmt.Printf("Initialized burndown workspace in %s (metric: %s)\n", root, settings.Metric)
		fmt.Println("Next: add weekly data with 'burndown import <file.json>'")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initMetric, "metric", "",
		"Tracked metric (completed_count, completed_points, created_count)")
	RootCmd.AddCommand(initCmd)
}
