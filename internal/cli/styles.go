package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/borca-dev/borca/internal/domain"
)

// Colors defines the color palette for terminal output.
var Colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow
}

// Styles contains the lipgloss styles used by the CLI.
type Styles struct {
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
	TaskName lipgloss.Style
	Default  lipgloss.Style

	StatusUpToDate lipgloss.Style
	StatusStale    lipgloss.Style
	StatusAlways   lipgloss.Style
}

// DefaultStyles returns the default styles for the CLI.
func DefaultStyles() Styles {
	return Styles{
		Success:  lipgloss.NewStyle().Foreground(Colors.Success).Bold(true),
		Failure:  lipgloss.NewStyle().Foreground(Colors.Error).Bold(true),
		Warning:  lipgloss.NewStyle().Foreground(Colors.Warning),
		Muted:    lipgloss.NewStyle().Foreground(Colors.Muted),
		TaskName: lipgloss.NewStyle().Bold(true),
		Default:  lipgloss.NewStyle().Foreground(Colors.Primary).Bold(true),

		StatusUpToDate: lipgloss.NewStyle().Foreground(Colors.Success),
		StatusStale:    lipgloss.NewStyle().Foreground(Colors.Warning),
		StatusAlways:   lipgloss.NewStyle().Foreground(Colors.Muted),
	}
}

// StatusStyle returns the style for a task status.
func (s Styles) StatusStyle(status domain.TaskStatus) lipgloss.Style {
	switch status {
	case domain.StatusUpToDate:
		return s.StatusUpToDate
	case domain.StatusStale:
		return s.StatusStale
	default:
		return s.StatusAlways
	}
}
