// Package history shows the recent games of one lesson.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizrace/internal/game"
	"github.com/abhisek/quizrace/internal/progression"
	"github.com/abhisek/quizrace/internal/screen"
	"github.com/abhisek/quizrace/internal/ui/layout"
	"github.com/abhisek/quizrace/internal/ui/theme"
)

type historyLoadedMsg struct {
	Games []progression.GameStats
	Err   error
}

// HistoryScreen lists a lesson's history ring buffer, newest first.
type HistoryScreen struct {
	progress  *progression.Store
	subjectID string
	lessonID  int
	lesson    string

	games    []progression.GameStats
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates the history screen of one lesson.
func New(progress *progression.Store, subjectID string, lessonID int, lesson string) *HistoryScreen {
	return &HistoryScreen{
		progress:  progress,
		subjectID: subjectID,
		lessonID:  lessonID,
		lesson:    lesson,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	progress, subjectID, lessonID := s.progress, s.subjectID, s.lessonID
	return func() tea.Msg {
		games, err := progress.History(context.Background(), subjectID, lessonID)
		return historyLoadedMsg{Games: games, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History: " + s.lesson
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		// Stored oldest first.
		s.games = make([]progression.GameStats, len(msg.Games))
		for i, g := range msg.Games {
			s.games[len(msg.Games)-1-i] = g
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.games)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := func(style lipgloss.Style, text string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(text)) + "\n"
	}

	if s.errMsg != "" && len(s.games) == 0 {
		return "\n\n" + center(lipgloss.NewStyle().Foreground(theme.Error), "Error: "+s.errMsg)
	}
	if !s.loaded {
		return "\n\n" + center(lipgloss.NewStyle().Foreground(theme.TextDim), "Loading history...")
	}
	if len(s.games) == 0 {
		return "\n\n" + center(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true),
			"No races yet. Go race!")
	}

	var b strings.Builder
	b.WriteString("\n")
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	for i, g := range s.games {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}

		line := fmt.Sprintf("%s%s  %3d%%  %d/%d correct  %s",
			prefix, g.Timestamp.Local().Format("Jan 02 15:04"),
			g.Score, g.CorrectAnswers, g.QuestionsAnswered, game.FormatElapsed(g.Duration))
		b.WriteString(center(style, line))

		if s.expanded[i] {
			b.WriteString(center(dim, fmt.Sprintf("    %d points, finished on %s questions", g.Points, g.Difficulty)))
		}
	}

	return b.String()
}
