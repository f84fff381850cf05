package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/niksavis/burndown-chart/pkg/domain/analytics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
	"github.com/spf13/cobra"
)

var (
	statusJSON bool
	statusSave bool
)

var cardStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	Width(26)

var cardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7D56F4"))

var goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var badStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a high-level summary of the project state",
	Long: `Show forecast, trend and health for the tracked metric at a glance.

Flags:
  --save  Append this snapshot to the workspace history (snapshots.jsonl)
  --json  Output in JSON format`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}

		snap, err := services.Insights.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		if statusSave {
			if err := services.Workspace.Repo.AppendSnapshot(snap); err != nil {
				return fmt.Errorf("failed to record snapshot: %w", err)
			}
		}

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		fmt.Println(renderStatusCards(snap))
		if statusSave {
			fmt.Println("Snapshot recorded.")
		}
		return nil
	},
}

func renderStatusCards(snap *project.Snapshot) string {
	forecast := cardStyle.Render(renderForecastCard(snap))
	trend := cardStyle.Render(renderTrendCard(snap))
	health := cardStyle.Render(renderHealthCard(snap))

	header := cardTitleStyle.Render(fmt.Sprintf("Burndown: %s", snap.Metric)) +
		fmt.Sprintf("  (%d of %d weeks complete)", snap.WeeksAnalyzed, snap.WeeksTotal)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, forecast, trend, health),
	)
}

func renderForecastCard(snap *project.Snapshot) string {
	lines := []string{cardTitleStyle.Render("Forecast")}
	if !snap.HasForecast() {
		lines = append(lines, "unavailable", "need 2+ complete weeks")
		return strings.Join(lines, "\n")
	}
	f := snap.Forecast
	lines = append(lines,
		fmt.Sprintf("%.1f per week", f.Value),
		fmt.Sprintf("confidence: %s", f.Confidence),
	)
	if f.Range != nil {
		lines = append(lines, fmt.Sprintf("range %.1f-%.1f", f.Range.Lower, f.Range.Upper))
	}
	return strings.Join(lines, "\n")
}

func renderTrendCard(snap *project.Snapshot) string {
	lines := []string{cardTitleStyle.Render("Trend")}
	if snap.Trend == nil {
		lines = append(lines, "unavailable", "need 3+ complete weeks")
		return strings.Join(lines, "\n")
	}
	t := snap.Trend
	style := warnStyle
	switch t.Favorability {
	case analytics.FavorabilityFavorable:
		style = goodStyle
	case analytics.FavorabilityUnfavorable:
		style = badStyle
	}
	lines = append(lines,
		style.Render(string(t.Direction)),
		fmt.Sprintf("%+.1f%% vs forecast", t.DeviationPercent),
		string(t.Favorability),
	)
	return strings.Join(lines, "\n")
}

func renderHealthCard(snap *project.Snapshot) string {
	h := snap.Health
	style := warnStyle
	switch {
	case h.Total >= 70:
		style = goodStyle
	case h.Total < 40:
		style = badStyle
	}
	return strings.Join([]string{
		cardTitleStyle.Render("Health"),
		style.Render(fmt.Sprintf("%d/100", h.Total)),
		fmt.Sprintf("P%.1f S%.1f St%.1f T%.1f", h.Progress, h.Schedule, h.Stability, h.Trend),
	}, "\n")
}

func init() {
	statusCmd.Flags().BoolVar(&statusSave, "save", false,
		"Append this snapshot to the workspace history")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
