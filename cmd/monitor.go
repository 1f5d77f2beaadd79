package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/prismwm/prism/internal/ui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the running compositor's statistics live",
	RunE:  runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	model := ui.NewMonitorModel(socketPath)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor UI: %w", err)
	}
	return nil
}
