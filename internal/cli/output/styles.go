package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the terminal styles used by the renderer. Off a terminal
// every style renders its input unchanged.
type Styles struct {
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Address lipgloss.Style
	Owner   lipgloss.Style
}

func newStyles(isTTY bool) Styles {
	if !isTTY {
		plain := lipgloss.NewStyle()
		return Styles{Bold: plain, Muted: plain, Error: plain, Success: plain, Address: plain, Owner: plain}
	}
	return Styles{
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Address: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Owner:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
}
