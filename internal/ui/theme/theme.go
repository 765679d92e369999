// Package theme holds the lipgloss styles used to render sync reports.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Success = lipgloss.Color("#22C55E") // Green
	Info    = lipgloss.Color("#14B8A6") // Teal
	Warning = lipgloss.Color("#F97316") // Orange
	Error   = lipgloss.Color("#F43F5E") // Rose
	Text    = lipgloss.Color("#F8FAFC") // White
	TextDim = lipgloss.Color("#94A3B8") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Outcomes
var (
	Created = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Updated = lipgloss.NewStyle().
		Foreground(Info).
		Bold(true)

	Skipped = lipgloss.NewStyle().
		Foreground(Warning)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Indent is the left padding of entry lines under a section title.
var Indent = lipgloss.NewStyle().PaddingLeft(2)
