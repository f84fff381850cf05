package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
	"github.com/niksavis/burndown-chart/pkg/domain/project"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("BURNDOWN_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialModel(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

type dashboardModel struct {
	table    table.Model
	snapshot *project.Snapshot
	series   []metrics.WeeklyRecord
	err      error
}

func initialModel(ctx context.Context) dashboardModel {
	services, err := loadServicesForCurrentDir()
	if err != nil {
		return dashboardModel{err: err}
	}

	snap, err := services.Insights.Snapshot(ctx)
	if err != nil {
		return dashboardModel{err: err}
	}

	series, err := services.Workspace.Repo.LoadSeries()
	if err != nil {
		return dashboardModel{err: err}
	}

	columns := []table.Column{
		{Title: "Week of", Width: 12},
		{Title: "Completed", Width: 10},
		{Title: "Points", Width: 8},
		{Title: "Created", Width: 8},
	}

	rows := make([]table.Row, 0, len(series))
	// newest week first
	for i := len(series) - 1; i >= 0; i-- {
		r := series[i]
		rows = append(rows, table.Row{
			r.PeriodStart.Format("2006-01-02"),
			fmt.Sprintf("%d", r.Completed()),
			fmt.Sprintf("%.1f", r.Points()),
			fmt.Sprintf("%d", r.Created()),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	return dashboardModel{
		table:    t,
		snapshot: snap,
		series:   series,
	}
}

func (m dashboardModel) Init() tea.Cmd { return nil }

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("Burndown: %s", m.snapshot.Metric))

	summary := renderStatusCards(m.snapshot)

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			summary,
			"\nWeekly series:",
			m.table.View(),
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
