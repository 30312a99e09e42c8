package race

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/ui/components"
	"github.com/abhisek/quizrace/internal/ui/theme"
)

// trackLength is the distance shown across the full lane width.
const trackLength = 200.0

var weatherGlyph = map[game.Weather]string{
	game.WeatherClear: "☀ clear",
	game.WeatherRain:  "☂ rain",
	game.WeatherFog:   "≋ fog",
	game.WeatherSnow:  "❄ snow",
}

func (s *RaceScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n" + s.errMsg + "\n\nPress Esc to go back.")
	}
	if s.machine == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Getting the cars ready...")
	}

	v := s.view
	var b strings.Builder

	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n")
	b.WriteString(renderLane("YOU", v.PlayerPosition, theme.PlayerCar, width))
	b.WriteString("\n")
	b.WriteString(renderLane("CPU", v.AIPosition, theme.OpponentCar, width))
	b.WriteString("\n\n")

	boost := components.NewProgressBar("Boost", float64(v.Boost)/100, true, min(width-4, 60))
	boost.Fill = theme.Accent
	b.WriteString("  " + boost.View())
	if v.SpeedPenalty {
		b.WriteString("  " + theme.Incorrect.Render("slowed!"))
	}
	b.WriteString("\n\n")

	b.WriteString(s.renderQuestion(width))
	return b.String()
}

func (s *RaceScreen) renderInfoLine(width int) string {
	v := s.view
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Q %d/%d", min(v.QuestionsAnswered+1, v.MaxQuestions), v.MaxQuestions))

	diff := string(v.CurrentDifficulty)
	if v.HazardActive {
		diff = theme.Hazard.Render("⚠ " + diff)
	}
	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s   %s   opponent jumps after %ds",
			weatherGlyph[v.Weather], diff, v.OpponentTimeoutSeconds))

	pad := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return left + strings.Repeat(" ", pad) + right
}

// renderLane draws one racer on a lane scaled to trackLength.
func renderLane(label string, pos float64, car lipgloss.Style, width int) string {
	laneWidth := max(width-14, 10)
	col := int(math.Round(math.Min(pos, trackLength) / trackLength * float64(laneWidth-1)))
	col = min(max(col, 0), laneWidth-1)

	lane := theme.Lane.Render(strings.Repeat("·", col)) +
		car.Render("▶") +
		theme.Lane.Render(strings.Repeat("·", laneWidth-1-col))

	return fmt.Sprintf("  %-4s", label) + lane + theme.FinishLine.Render(" ▌")
}

func (s *RaceScreen) renderQuestion(width int) string {
	v := s.view
	q := v.CurrentQuestion
	if q == nil || (v.IsLoading && v.Feedback == nil) {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Next question coming up...")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.pad.View()))

	if fb := v.Feedback; fb != nil {
		msg := theme.Correct.Render("Correct! Boost up.")
		if !fb.Correct {
			msg = theme.Incorrect.Render("Not quite. The answer was " + fb.CorrectAnswer + ".")
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, msg))
	}

	if s.timerInput != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			"Opponent timer (seconds): "+s.timerInput.View()))
	}

	if v.HazardActive {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("Hard question: watch out for the hazard!")))
	}
	return b.String()
}
