package main

import (
	"os"

	"github.com/niksavis/burndown-chart/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
