package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a weekly series from a JSON file",
	Long: `Import validates a JSON file of weekly records against the series schema,
normalizes it (week anchoring, ordering, duplicate weeks) and stores it in the
workspace. The file is an array of objects:

  [{"period_start": "2025-05-05", "completed_count": 12,
    "completed_points": 34.5, "created_count": 9}]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		count, err := services.Import.ImportFile(args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Imported %d weekly records from %s\n", count, args[0])
		return nil
	},
}

func init() {
	RootCmd.AddCommand(importCmd)
}
