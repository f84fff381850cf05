package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var projectPath string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "burndown",
	Version: Version,
	Short:   "Burndown analytics for weekly delivery data",
	Long: `Burndown turns weekly throughput data into delivery insight.
It answers three questions about a project:
1. How much are we finishing each week?
2. What should next week look like?
3. Is the project healthy?`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&projectPath, "project", "",
		"Path to the project workspace (defaults to the current directory)")
}
