package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, bright track colors on a dark background
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Warning   = lipgloss.Color("#EAB308") // Amber
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate

	Player   = lipgloss.Color("#38BDF8") // Sky
	Opponent = lipgloss.Color("#F43F5E") // Rose
	Finish   = lipgloss.Color("#FACC15") // Yellow
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Disabled = lipgloss.NewStyle().
			Foreground(TextDim)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Race track
var (
	Lane = lipgloss.NewStyle().
		Foreground(Border)

	PlayerCar = lipgloss.NewStyle().
			Foreground(Player).
			Bold(true)

	OpponentCar = lipgloss.NewStyle().
			Foreground(Opponent).
			Bold(true)

	FinishLine = lipgloss.NewStyle().
			Foreground(Finish)

	Hazard = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)
)

// Status badges for lesson progress.
var (
	BadgeLocked = lipgloss.NewStyle().
			Foreground(TextDim)

	BadgeInProgress = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	BadgeCompleted = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)
)
