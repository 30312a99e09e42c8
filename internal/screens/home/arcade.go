package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/ui/theme"
)

const arcadeTitleFull = ` ___  _   _ ___ _____ ____      _    ____ _____
/ _ \| | | |_ _|__  /|  _ \    / \  / ___| ____|
| | | | | | || |  / / | |_) |  / _ \| |   |  _|
| |_| | |_| || | / /_ |  _ <  / ___ \ |___| |___
 \__\_\\___/|___/____||_| \_\/_/   \_\____|_____|`

const arcadeTitleCompact = "Q · U · I · Z · R · A · C · E"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Cabinet border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Finish).
		Bold(true)

	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(title))
}

// renderStatsBar shows completed lessons across all subjects.
func renderStatsBar(completed, total, subjects, cw int, compact bool) string {
	doneStyle := lipgloss.NewStyle().Foreground(theme.Finish).Bold(true)
	subjStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s",
			doneStyle.Render(fmt.Sprintf("★%d/%d", completed, total)),
			subjStyle.Render(fmt.Sprintf("▤%d", subjects)),
		)
	} else {
		stats = fmt.Sprintf("%s  %s",
			doneStyle.Render(fmt.Sprintf("★ %d/%d LESSONS", completed, total)),
			subjStyle.Render(fmt.Sprintf("▤ %d SUBJECTS", subjects)),
		)
	}

	inner := cw - 2
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(inner).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

const buttonWidth = 30

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(labels, details []string, selected int, cw int) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgCard).
		Background(theme.Finish).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Finish).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, label := range labels {
		if details[i] != "" {
			label += "  " + details[i]
		}
		if i == selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		} else {
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as plain lines for terminals
// too small for bordered buttons.
func renderArcadeMenuCompact(labels, details []string, selected int, cw int) string {
	var lines []string
	for i, label := range labels {
		if details[i] != "" {
			label += " " + details[i]
		}
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgCard).
				Background(theme.Finish).
				Bold(true).
				Render(" ▸ "+label+" "))
		} else {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   "+label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderCabinetFrame wraps content in a double-border frame, centered
// within the given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	innerW, innerH := width-2, height-2
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(innerW).
		Height(innerH).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
