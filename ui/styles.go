package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorRed    = lipgloss.Color("#FF5555")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorWhite  = lipgloss.Color("#F8F8F2")
	colorGray   = lipgloss.Color("#6272A4")
	colorPanel  = lipgloss.Color("#44475A")

	summaryStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	headerStyle   = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	sortStyle     = headerStyle.Bold(true).Foreground(colorCyan)
	runningStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	messageStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
)
