// Package ui provides the live monitoring TUI for the prism CLI
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - consistent across the application
var (
	ColorPrimary = lipgloss.Color("39")  // Bright blue
	ColorSuccess = lipgloss.Color("82")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red

	ColorText   = lipgloss.Color("252") // Light gray
	ColorSubtle = lipgloss.Color("241") // Medium gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StatStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Width(14)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			MarginTop(1)
)
