package ui

import "github.com/charmbracelet/lipgloss"

// Palette for the dashboard, kept deliberately small.
var (
	colPrimary = lipgloss.Color("#03BF87")
	colText    = lipgloss.Color("252")
	colMuted   = lipgloss.Color("243")
	colWarn    = lipgloss.Color("214")
	colFail    = lipgloss.Color("196")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colPrimary).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colMuted)
	spinnerStyle  = lipgloss.NewStyle().Foreground(colPrimary)
	rowStyle      = lipgloss.NewStyle().Foreground(colText)
	selectedStyle = lipgloss.NewStyle().Foreground(colPrimary).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(colMuted)
	warnStyle     = lipgloss.NewStyle().Foreground(colWarn).Bold(true)
	failStyle     = lipgloss.NewStyle().Foreground(colFail).Bold(true)
)
