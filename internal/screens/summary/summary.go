package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/router"
	"github.com/abhisek/quizrace/internal/screen"
	"github.com/abhisek/quizrace/internal/ui/layout"
	"github.com/abhisek/quizrace/internal/ui/theme"
)

// SummaryScreen displays the result of a finished race.
type SummaryScreen struct {
	result game.Result
	lesson string
	again  func() screen.Screen
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a summary. again, if set, builds a fresh race for the same
// lesson when the player asks for a rematch.
func New(result game.Result, lesson string, again func() screen.Screen) *SummaryScreen {
	return &SummaryScreen{result: result, lesson: lesson, again: again}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Race Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	if s.again != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Race again"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			if s.again != nil {
				next := s.again()
				return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	res := s.result
	st := res.Stats
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text) + "\n"
	}

	var b strings.Builder

	headline := "Race complete!"
	if res.Reason == game.ReasonLives {
		headline = "Out of lives!"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), headline))
	if s.lesson != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), s.lesson))
	}
	b.WriteString("\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		"Time: "+game.FormatElapsed(st.Duration)))
	b.WriteString("\n")

	statsLine := fmt.Sprintf("Score: %d%%        Correct: %d/%d        Points: %d",
		st.Score, st.CorrectAnswers, st.QuestionsAnswered, st.Points)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		"Finished on "+string(st.Difficulty)+" questions"))
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	switch c := res.Completion; {
	case res.Practice:
		b.WriteString(center(theme.Hint, "Practice race: progress is not saved."))
	case c == nil:
		b.WriteString(center(theme.Hint, "Progress could not be saved."))
	default:
		if c.FirstCompletion {
			b.WriteString(center(theme.Correct, "Lesson completed!"))
		} else if c.Passed {
			b.WriteString(center(theme.Correct, "Passed!"))
		} else {
			b.WriteString(center(theme.Incorrect, "Not passed yet. Keep racing!"))
		}
		if c.UnlockedLesson != 0 {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
				fmt.Sprintf("New lesson unlocked: #%d", c.UnlockedLesson)))
		}
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
			fmt.Sprintf("Best: %d%%   Average: %.0f%%   Attempts: %d",
				c.Progress.HighScore, c.Progress.AverageScore, c.Progress.Attempts)))
	}

	return b.String()
}
