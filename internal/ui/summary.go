// Package ui renders terminal output for the mailforge CLI.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/forgebit/mailforge/internal/domain"
)

var (
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// Summary renders the end-of-run summary box.
func Summary(report domain.Report, path string) string {
	body := fmt.Sprintf("%s\n%s   %s\n%s",
		titleStyle.Render("batch complete"),
		okStyle.Render(fmt.Sprintf("created: %d", report.Created)),
		failStyle.Render(fmt.Sprintf("failed: %d", report.Failed)),
		dimStyle.Render("report: "+path),
	)
	return boxStyle.Render(body)
}
